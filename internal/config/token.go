package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/danieljhkim/opskit/internal/fsops"
)

// JobTokenEnv is set by GitLab CI for every job.
const JobTokenEnv = "CI_JOB_TOKEN"

// TokenSource says where a token came from.
type TokenSource string

const (
	TokenFromFlag    TokenSource = "flag"
	TokenFromJobEnv  TokenSource = "job-env"
	TokenFromDefault TokenSource = "default-file"
)

// Token is a resolved GitLab credential.
type Token struct {
	Value  string
	Source TokenSource
	// Path is the file the token was read from, empty for the env source.
	Path string
}

// IsJobToken reports whether the token must be sent as a CI job token.
func (t Token) IsJobToken() bool {
	return t.Source == TokenFromJobEnv
}

// TokenResolver reads tokens through an fsops.FS.
type TokenResolver struct {
	FS     fsops.FS
	Getenv func(string) string
}

// NewTokenResolver uses the real filesystem and environment.
func NewTokenResolver() *TokenResolver {
	return &TokenResolver{FS: fsops.NewRealFS(), Getenv: os.Getenv}
}

// Resolve picks the token: flagPath file, then CI_JOB_TOKEN, then defaultPath.
func (r *TokenResolver) Resolve(flagPath, defaultPath string) (Token, error) {
	if flagPath != "" {
		return r.fromFile(flagPath, TokenFromFlag)
	}
	if v := strings.TrimSpace(r.Getenv(JobTokenEnv)); v != "" {
		return Token{Value: v, Source: TokenFromJobEnv}, nil
	}
	if defaultPath == "" {
		return Token{}, fmt.Errorf("%w: no token file configured and %s is not set", ErrConfig, JobTokenEnv)
	}
	return r.fromFile(defaultPath, TokenFromDefault)
}

func (r *TokenResolver) fromFile(path string, source TokenSource) (Token, error) {
	expanded, err := fsops.ExpandPath(path)
	if err != nil {
		return Token{}, fmt.Errorf("token path %q: %w", path, err)
	}

	data, err := r.FS.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Token{}, fmt.Errorf("%w: token file %s does not exist", ErrConfig, expanded)
		}
		return Token{}, fmt.Errorf("%w: failed to read token file %s: %w", ErrConfig, expanded, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return Token{}, fmt.Errorf("%w: token file %s is empty", ErrConfig, expanded)
	}
	return Token{Value: value, Source: source, Path: expanded}, nil
}
