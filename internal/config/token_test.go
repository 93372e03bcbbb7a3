package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/opskit/internal/fsops"
)

func resolver(env map[string]string) *TokenResolver {
	return &TokenResolver{
		FS:     fsops.NewRealFS(),
		Getenv: func(k string) string { return env[k] },
	}
}

func TestTokenResolver_Order(t *testing.T) {
	dir := t.TempDir()
	flagFile := filepath.Join(dir, "flag-token")
	defaultFile := filepath.Join(dir, "default-token")
	require.NoError(t, os.WriteFile(flagFile, []byte("flag-secret\n"), 0600))
	require.NoError(t, os.WriteFile(defaultFile, []byte("  default-secret  "), 0600))

	t.Run("flag wins over env", func(t *testing.T) {
		tok, err := resolver(map[string]string{JobTokenEnv: "job"}).Resolve(flagFile, defaultFile)
		require.NoError(t, err)
		assert.Equal(t, "flag-secret", tok.Value)
		assert.Equal(t, TokenFromFlag, tok.Source)
		assert.False(t, tok.IsJobToken())
	})

	t.Run("env wins over default file", func(t *testing.T) {
		tok, err := resolver(map[string]string{JobTokenEnv: "job"}).Resolve("", defaultFile)
		require.NoError(t, err)
		assert.Equal(t, "job", tok.Value)
		assert.True(t, tok.IsJobToken())
		assert.Empty(t, tok.Path)
	})

	t.Run("default file last", func(t *testing.T) {
		tok, err := resolver(nil).Resolve("", defaultFile)
		require.NoError(t, err)
		assert.Equal(t, "default-secret", tok.Value)
		assert.Equal(t, TokenFromDefault, tok.Source)
		assert.Equal(t, defaultFile, tok.Path)
	})
}

func TestTokenResolver_TildeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".gittoken"), []byte("abc"), 0600))

	tok, err := resolver(nil).Resolve("", "~/.gittoken")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.Value)
}

func TestTokenResolver_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0600))

	t.Run("empty file", func(t *testing.T) {
		_, err := resolver(nil).Resolve(empty, "")
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := resolver(nil).Resolve(filepath.Join(dir, "absent"), "")
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := resolver(nil).Resolve("", "")
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("blank path", func(t *testing.T) {
		_, err := resolver(nil).Resolve("  ", "")
		require.ErrorIs(t, err, fsops.ErrPath)
	})
}
