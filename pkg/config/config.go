/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/binscript/pkg/stream"
	"github.com/ssargent/binscript/pkg/xlog"
)

// Config represents the binscript configuration
type Config struct {
	Schema    string  `yaml:"schema"`
	Direction string  `yaml:"direction"`
	End       End     `yaml:"end"`
	Logging   Logging `yaml:"logging"`
	Archive   Archive `yaml:"archive"`
	Server    Server  `yaml:"server"`
	Metrics   Metrics `yaml:"metrics"`
}

// End selects how a binary stream ends
type End struct {
	Mode  string `yaml:"mode"`  // null, bytes or statements
	Limit int    `yaml:"limit"` // budget for the size modes
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Archive contains capture archive configuration
type Archive struct {
	Dir string `yaml:"dir"`
}

// Server contains HTTP API configuration
type Server struct {
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// Metrics contains metrics export configuration
type Metrics struct {
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Direction: "decode",
		End: End{
			Mode: "null",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Archive: Archive{
			Dir: "./captures",
		},
		Server: Server{
			Bind: "127.0.0.1",
			Port: 9300,
		},
	}
}

// LoadConfig loads configuration from the specified path. Fields missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold the API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks every enumerated field and the numeric ranges
func (c *Config) Validate() error {
	var errs []error

	if _, err := stream.ParseDirection(c.Direction); err != nil {
		errs = append(errs, err)
	}
	mode, err := stream.ParseEndMode(c.End.Mode)
	if err != nil {
		errs = append(errs, err)
	}
	if c.End.Limit < 0 {
		errs = append(errs, fmt.Errorf("end limit must not be negative, got %d", c.End.Limit))
	}
	if err == nil && mode != stream.NullTerminated && c.End.Limit == 0 {
		errs = append(errs, fmt.Errorf("end mode %s needs a limit", mode))
	}
	if _, err := xlog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns the configured log level, info when it cannot be parsed
func (c *Config) Level() slog.Level {
	level, err := xlog.ParseLevel(c.Logging.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key
func BootstrapConfig(configPath string, schema string) (*Config, error) {
	config := DefaultConfig()
	if schema != "" {
		config.Schema = schema
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./binscript.yaml"
	}

	// ~/.config/binscript/config.yaml on Linux and macOS
	configDir := filepath.Join(homeDir, ".config", "binscript")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
