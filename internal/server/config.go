package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"vellum/internal/build"
	"vellum/internal/feature"
	"vellum/internal/maintenance"
)

// BuildConfig selects the external build tool and when it runs.
type BuildConfig struct {
	Executable string   `yaml:"executable" json:"executable"`
	Args       []string `yaml:"args" json:"args"`
	OnSave     bool     `yaml:"onSave" json:"onSave"`

	ForwardSearchExecutable string   `yaml:"forwardSearchExecutable" json:"forwardSearchExecutable"`
	ForwardSearchArgs       []string `yaml:"forwardSearchArgs" json:"forwardSearchArgs"`
}

// Config is the server configuration. Values come from an optional
// vellum.yaml next to the workspace root, overridden by the client's
// initializationOptions.
type Config struct {
	Build BuildConfig `yaml:"build" json:"build"`

	// CompletionLimit caps merged completion results.
	CompletionLimit int `yaml:"completionLimit" json:"completionLimit"`

	// MaintenanceIntervalMs is the background refresh period.
	MaintenanceIntervalMs int `yaml:"maintenanceIntervalMs" json:"maintenanceIntervalMs"`

	// DatabasePath overrides the component database location.
	DatabasePath string `yaml:"databasePath" json:"databasePath"`
}

// DefaultConfig returns the configuration used when the client sends
// nothing.
func DefaultConfig() Config {
	return Config{
		CompletionLimit:       feature.DefaultCompletionLimit,
		MaintenanceIntervalMs: int(maintenance.DefaultInterval / time.Millisecond),
	}
}

// Interval converts the configured refresh period, falling back to the
// default for non-positive values.
func (c Config) Interval() time.Duration {
	if c.MaintenanceIntervalMs <= 0 {
		return maintenance.DefaultInterval
	}
	return time.Duration(c.MaintenanceIntervalMs) * time.Millisecond
}

func (c Config) buildConfig() build.Config {
	return build.Config{
		Executable:              c.Build.Executable,
		Args:                    c.Build.Args,
		ForwardSearchExecutable: c.Build.ForwardSearchExecutable,
		ForwardSearchArgs:       c.Build.ForwardSearchArgs,
	}
}

// databasePath resolves the component database file, defaulting to the
// user cache directory.
func (c Config) databasePath() (string, error) {
	if c.DatabasePath != "" {
		return c.DatabasePath, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	dir := filepath.Join(cacheDir, "vellum")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}
	return filepath.Join(dir, "components.db"), nil
}

// LoadConfigFile reads a YAML configuration file. A missing file yields the
// defaults without error.
func LoadConfigFile(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config: %w", err)
	}
	return config, nil
}

// applyInitializationOptions overlays the client's initializationOptions,
// which arrive as untyped JSON, onto an existing configuration. Options
// that fail to decode are ignored in favor of what is already set.
func applyInitializationOptions(config Config, options any) Config {
	if options == nil {
		return config
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return config
	}
	if err := json.Unmarshal(raw, &config); err != nil {
		return config
	}
	return config
}
