package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromDir(t *testing.T, dir string) (*Config, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFromDir(t, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Weights.Lane)
	assert.Equal(t, 0.5, cfg.Weights.Spec)
	assert.Equal(t, 10.0, cfg.Weights.Requirement)
	assert.Equal(t, 10.0, cfg.Weights.Exemption)
	assert.Equal(t, 10.0, cfg.Weights.FTA)
	assert.Equal(t, 5.0, cfg.Weights.Transaction)
	assert.Equal(t, 5.0, cfg.Weights.Trader)

	assert.Equal(t, 5000, cfg.Limits.MaxScoredDeclarations)
	assert.Equal(t, 50, cfg.Limits.MaxPreparers)
	assert.Equal(t, 100, cfg.Limits.MaxImporters)
	assert.Equal(t, 50, cfg.Limits.MaxForwarders)
	assert.Equal(t, 20000, cfg.Limits.PruneRowThreshold)

	assert.Equal(t, 100.0, cfg.Thresholds.Low)
	assert.Equal(t, 200.0, cfg.Thresholds.High)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yml := []byte("weights:\n  lane: 2.5\nlimits:\n  max_importers: 25\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(dir+"/config.yaml", yml, 0o644))

	cfg, err := loadFromDir(t, dir)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Weights.Lane)
	assert.Equal(t, 25, cfg.Limits.MaxImporters)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep defaults.
	assert.Equal(t, 0.5, cfg.Weights.Spec)
	assert.Equal(t, 50, cfg.Limits.MaxPreparers)
}

func TestValidate_RejectsNonPositiveWeight(t *testing.T) {
	dir := t.TempDir()
	yml := []byte("weights:\n  fta: -1\n")
	require.NoError(t, os.WriteFile(dir+"/config.yaml", yml, 0o644))

	_, err := loadFromDir(t, dir)
	assert.Error(t, err)
}

func TestValidate_RejectsInvertedThresholds(t *testing.T) {
	dir := t.TempDir()
	yml := []byte("thresholds:\n  low: 300\n  high: 200\n")
	require.NoError(t, os.WriteFile(dir+"/config.yaml", yml, 0o644))

	_, err := loadFromDir(t, dir)
	assert.Error(t, err)
}
