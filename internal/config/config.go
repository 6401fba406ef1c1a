// Package config handles application configuration and command-line argument parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexflint/go-arg"
)

// Config holds the application configuration
type Config struct {
	OriginPath      string `arg:"-o,--origin" help:"Origin directory path"`
	DestPath        string `arg:"-d,--dest" help:"Destination directory path"`
	DatedSubfolders bool   `arg:"--dated" help:"Route copies into MM-DD-YYYY subfolders derived from file creation time"`
	Pattern         string `arg:"-p,--pattern" help:"Optional glob filter for origin files (e.g. \"*.nef\")"`
	StateDir        string `arg:"--state-dir" help:"Directory for persisted grants and the transfer journal"`
	LogLevel        string `arg:"--log-level" default:"info" help:"Log level: debug|info|warn|error"`
	InteractiveMode bool   `arg:"-i,--interactive" help:"Run in interactive mode"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Compares an origin folder against a destination and selectively copies the files that haven't been transferred yet"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "shuttle 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
	}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	// If no roots were provided, default to interactive mode; persisted
	// grants may still resolve roots at startup.
	if cfg.OriginPath == "" && cfg.DestPath == "" {
		cfg.InteractiveMode = true
	}

	if cfg.StateDir == "" {
		dir, err := DefaultStateDir()
		if err != nil {
			return nil, err
		}

		cfg.StateDir = dir
	}

	// Validate paths if both were given explicitly
	if !cfg.InteractiveMode {
		if err := cfg.ValidatePaths(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// DefaultStateDir returns the per-user state directory for grants and
// the transfer journal.
func DefaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user config dir: %w", err)
	}

	return filepath.Join(base, "shuttle"), nil
}

// ValidatePaths validates that origin and destination paths are usable directories
func (cfg *Config) ValidatePaths() error {
	if cfg.OriginPath == "" {
		return fmt.Errorf("origin path is required")
	}

	if cfg.DestPath == "" {
		return fmt.Errorf("destination path is required")
	}

	err := checkDir("origin", cfg.OriginPath)
	if err != nil {
		return err
	}

	return checkDir("destination", cfg.DestPath)
}

func checkDir(label, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s path does not exist: %s", label, path)
	}
	if err != nil {
		return fmt.Errorf("cannot access %s path: %w", label, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s path is not a directory: %s", label, path)
	}

	return nil
}
