package config_test

import (
	"os"
	"path/filepath"
	"testing"

	appconfig "github.com/archlint/archlint/internal/adapters/outbound/config"
	"github.com/archlint/archlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".archlint.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
layers:
  - pattern: core
    layer: domain
  - pattern: rest
    layer: api
exclude_paths:
  - legacy
fail_on: warning
disabled_rules:
  - naming-convention
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Layers, 2)
	assert.Equal(t, "core", cfg.Layers[0].Pattern)
	assert.Equal(t, domain.LayerDomain, cfg.Layers[0].Layer)
	assert.Equal(t, domain.LayerApi, cfg.Layers[1].Layer)
	assert.Equal(t, []string{"legacy"}, cfg.ExcludePaths)
	assert.Equal(t, domain.FailOnWarning, cfg.FailOn)
	assert.Equal(t, []string{"naming-convention"}, cfg.DisabledRules)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .archlint.yaml")
}

func TestYAMLLoader_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
layers:
  - pattern: core
    layer: presentation
`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .archlint.yaml")
	assert.Contains(t, err.Error(), "unknown layer")
}

func TestYAMLLoader_UnknownFailOnRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `fail_on: fatal`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fail_on")
}

func TestYAMLLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fail_on: none\n"), 0644))

	cfg, err := appconfig.New().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.FailOnNone, cfg.FailOn)
}

func TestYAMLLoader_LoadFileMissingIsError(t *testing.T) {
	_, err := appconfig.New().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestYAMLLoader_ConfiguredFixture(t *testing.T) {
	loader := appconfig.New()
	cfg, err := loader.Load("../../../../testdata/spring-layered/configured")
	require.NoError(t, err)

	require.Len(t, cfg.Layers, 2)
	assert.Equal(t, domain.FailOnWarning, cfg.FailOn)
	assert.Contains(t, cfg.ExcludePaths, "legacy")
	assert.True(t, cfg.IsRuleDisabled("naming-convention"))
}
