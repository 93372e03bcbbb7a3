package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyGitLabURL         = "gitlab_url"
	KeyDefaultNamespace  = "default_namespace"
	KeyDefaultGroupPath  = "default_group_path"
	KeyDefaultProjects   = "default_projects"
	KeyProtectedBranches = "protected_branches"
	KeyMonths            = "months"
	KeyFormat            = "format"
	KeyTokenFile         = "token_file"
	KeyRequestsPerSecond = "requests_per_second"
	KeyWorkers           = "workers"
)

// Settings is the resolved configuration.
type Settings struct {
	GitLabURL         string   `mapstructure:"gitlab_url"`
	DefaultNamespace  string   `mapstructure:"default_namespace"`
	DefaultGroupPath  string   `mapstructure:"default_group_path"`
	DefaultProjects   []string `mapstructure:"default_projects"`
	ProtectedBranches []string `mapstructure:"protected_branches"`
	Months            int      `mapstructure:"months"`
	Format            string   `mapstructure:"format"`
	TokenFile         string   `mapstructure:"token_file"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second"`
	Workers           int      `mapstructure:"workers"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		GitLabURL:         "https://gitlab.com",
		DefaultNamespace:  "mycompany",
		DefaultGroupPath:  "mycompany/devops",
		DefaultProjects:   []string{"apps", "devops", "aws-terraform", "gcp-terraform", "helm-charts"},
		ProtectedBranches: []string{"master", "main"},
		Months:            3,
		Format:            "yaml",
		TokenFile:         "~/.gittoken",
		RequestsPerSecond: 10,
		Workers:           1,
	}
}

// NewViper returns a viper instance with defaults and environment binding
// applied but no file read yet.
func NewViper() *viper.Viper {
	v := viper.New()

	d := Defaults()
	v.SetDefault(KeyGitLabURL, d.GitLabURL)
	v.SetDefault(KeyDefaultNamespace, d.DefaultNamespace)
	v.SetDefault(KeyDefaultGroupPath, d.DefaultGroupPath)
	v.SetDefault(KeyDefaultProjects, d.DefaultProjects)
	v.SetDefault(KeyProtectedBranches, d.ProtectedBranches)
	v.SetDefault(KeyMonths, d.Months)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyTokenFile, d.TokenFile)
	v.SetDefault(KeyRequestsPerSecond, d.RequestsPerSecond)
	v.SetDefault(KeyWorkers, d.Workers)

	v.SetEnvPrefix("OPSKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any) and environment into Settings. A missing
// file in the search path is not an error; a missing explicit file is.
func Load(v *viper.Viper, paths *Paths) (*Settings, error) {
	if v == nil {
		v = NewViper()
	}

	if paths != nil && paths.File != "" {
		v.SetConfigFile(paths.File)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		if paths != nil {
			for _, dir := range paths.Dirs {
				v.AddConfigPath(dir)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: failed to read config: %w", ErrConfig, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config: %w", ErrConfig, err)
	}
	s.Source = v.ConfigFileUsed()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects settings the tool cannot run with.
func (s *Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.GitLabURL) == "" {
		problems = append(problems, "gitlab_url is empty")
	}
	if s.Months < 0 {
		problems = append(problems, fmt.Sprintf("months must not be negative, got %d", s.Months))
	}
	switch strings.ToLower(s.Format) {
	case "yaml", "yml", "json":
	default:
		problems = append(problems, fmt.Sprintf("format must be yaml or json, got %q", s.Format))
	}
	if s.Workers < 1 {
		problems = append(problems, fmt.Sprintf("workers must be at least 1, got %d", s.Workers))
	}
	if s.RequestsPerSecond < 0 {
		problems = append(problems, fmt.Sprintf("requests_per_second must not be negative, got %v", s.RequestsPerSecond))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}
