package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9000
artifacts:
  model_type: random_forest
  model_path: models/forest.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, 9000, cfg.Http.Port)
	assert.Equal(t, 30*time.Second, cfg.Http.Timeout)
	assert.Equal(t, "random_forest", cfg.Artifacts.ModelType)
	assert.Equal(t, filepath.Join(dir, "models", "forest.json"), cfg.Artifacts.ModelPath)
	assert.Equal(t, "standard", cfg.Artifacts.ScalerType)
	assert.Equal(t, filepath.Join(dir, "artifacts", "scaler.json"), cfg.Artifacts.ScalerPath)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, "", cfg.Log.File)
}

func TestLoadParsesDurationsAndLogFile(t *testing.T) {
	path := writeConfig(t, `
http:
  timeout: 5s
log:
  level: debug
  file: logs/app.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Http.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "logs", "app.log"), cfg.Log.File)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "http:\n  port: 70000\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "cache:\n  size: -1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "http: [not, a, map]\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFind(t *testing.T) {
	_, err := Find("definitely-not-here.yaml")
	assert.Error(t, err)
}
