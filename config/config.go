// Package config loads and saves Verdigris's TOML configuration file,
// following the nested-struct layout and platform-path conventions of the
// original arm-emu configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the toolchain's configuration.
type Config struct {
	// Execution settings
	Execution struct {
		MaxHeapBytes uint32 `toml:"max_heap_bytes"` // 0 = unbounded
		StackSize    uint   `toml:"stack_size"`
		DefaultEntry string `toml:"default_entry"`
		EnableTrace  bool   `toml:"enable_trace"`
	} `toml:"execution"`

	// Assembler settings
	Assembler struct {
		WarningsFatal bool `toml:"warnings_fatal"`
	} `toml:"assembler"`

	// REPL settings
	REPL struct {
		Prompt       string `toml:"prompt"`
		NumberFormat string `toml:"number_format"` // hex, dec
		HistorySize  int    `toml:"history_size"`
	} `toml:"repl"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxHeapBytes = 16 * 1024 * 1024 // 16MiB
	cfg.Execution.StackSize = 65536               // 64KB
	cfg.Execution.DefaultEntry = "0"
	cfg.Execution.EnableTrace = false

	cfg.Assembler.WarningsFatal = false

	cfg.REPL.Prompt = ">>> "
	cfg.REPL.NumberFormat = "dec"
	cfg.REPL.HistorySize = 1000

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "verdigris")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "verdigris")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file
// yields the default configuration, not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
