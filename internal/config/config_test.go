package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigName+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	s, err := Load(nil, &Paths{Dirs: []string{t.TempDir()}})
	require.NoError(t, err)

	want := Defaults()
	assert.Equal(t, want.GitLabURL, s.GitLabURL)
	assert.Equal(t, want.DefaultProjects, s.DefaultProjects)
	assert.Equal(t, []string{"master", "main"}, s.ProtectedBranches)
	assert.Equal(t, 3, s.Months)
	assert.Equal(t, "yaml", s.Format)
	assert.Equal(t, 1, s.Workers)
	assert.Empty(t, s.Source)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
gitlab_url: https://gitlab.example.com
default_namespace: acme
default_projects: [infra, web]
protected_branches: [main, develop, "release/*"]
months: 6
workers: 4
`)

	s, err := Load(nil, &Paths{Dirs: []string{filepath.Join(dir, "missing"), dir}})
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.example.com", s.GitLabURL)
	assert.Equal(t, "acme", s.DefaultNamespace)
	assert.Equal(t, "mycompany/devops", s.DefaultGroupPath)
	assert.Equal(t, []string{"infra", "web"}, s.DefaultProjects)
	assert.Equal(t, []string{"main", "develop", "release/*"}, s.ProtectedBranches)
	assert.Equal(t, 6, s.Months)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, path, s.Source)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "months: 6\n")
	t.Setenv("OPSKIT_MONTHS", "12")
	t.Setenv("OPSKIT_GITLAB_URL", "https://env.example.com")

	s, err := Load(nil, &Paths{Dirs: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, 12, s.Months)
	assert.Equal(t, "https://env.example.com", s.GitLabURL)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0644))

	paths := (&Paths{Dirs: []string{dir}}).WithFile(path)
	s, err := Load(nil, paths)
	require.NoError(t, err)
	assert.Equal(t, "json", s.Format)

	_, err = Load(nil, (&Paths{}).WithFile(filepath.Join(dir, "absent.yaml")))
	require.ErrorIs(t, err, ErrConfig)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "months: [not, a, number\n")

	_, err := Load(nil, &Paths{Dirs: []string{dir}})
	require.ErrorIs(t, err, ErrConfig)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"negative months", func(s *Settings) { s.Months = -1 }},
		{"unknown format", func(s *Settings) { s.Format = "toml" }},
		{"empty url", func(s *Settings) { s.GitLabURL = " " }},
		{"zero workers", func(s *Settings) { s.Workers = 0 }},
		{"negative rate", func(s *Settings) { s.RequestsPerSecond = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			require.ErrorIs(t, s.Validate(), ErrConfig)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		s := Defaults()
		require.NoError(t, s.Validate())
	})
}

func TestDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Run("without override", func(t *testing.T) {
		t.Setenv("OPSKIT_CONFIG_DIR", "")
		paths, err := DefaultPaths()
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(home, ".config", "opskit"), "."}, paths.Dirs)
		assert.Empty(t, paths.File)
	})

	t.Run("override searched first", func(t *testing.T) {
		t.Setenv("OPSKIT_CONFIG_DIR", "/etc/opskit")
		paths, err := DefaultPaths()
		require.NoError(t, err)
		assert.Equal(t, "/etc/opskit", paths.Dirs[0])
		assert.Len(t, paths.Dirs, 3)
	})
}
