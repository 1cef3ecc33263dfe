package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/internal/maintenance"
)

func TestLoadConfigFileMissing(t *testing.T) {
	config, err := LoadConfigFile(filepath.Join(t.TempDir(), "vellum.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vellum.yaml")
	content := `
build:
  executable: tectonic
  args: ["-X", "compile", "%f"]
  onSave: true
completionLimit: 25
maintenanceIntervalMs: 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tectonic", config.Build.Executable)
	assert.Equal(t, []string{"-X", "compile", "%f"}, config.Build.Args)
	assert.True(t, config.Build.OnSave)
	assert.Equal(t, 25, config.CompletionLimit)
	assert.Equal(t, 250*time.Millisecond, config.Interval())
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vellum.yaml")
	require.NoError(t, os.WriteFile(path, []byte("build: [not a mapping"), 0644))

	_, err := LoadConfigFile(path)
	assert.Error(t, err)
}

func TestIntervalFallsBackToDefault(t *testing.T) {
	assert.Equal(t, maintenance.DefaultInterval, Config{}.Interval())
	assert.Equal(t, maintenance.DefaultInterval, Config{MaintenanceIntervalMs: -5}.Interval())
}

func TestApplyInitializationOptions(t *testing.T) {
	base := DefaultConfig()
	base.Build.Executable = "latexmk"

	merged := applyInitializationOptions(base, map[string]any{
		"completionLimit": 10,
	})
	assert.Equal(t, 10, merged.CompletionLimit)
	assert.Equal(t, "latexmk", merged.Build.Executable)

	// Nil and undecodable options leave the configuration untouched.
	assert.Equal(t, base, applyInitializationOptions(base, nil))
	assert.Equal(t, base, applyInitializationOptions(base, "not an object"))
}