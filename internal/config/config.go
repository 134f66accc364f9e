// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/n1rna/automate/internal/version"
)

const (
	// ProductName is the name of the runtime
	ProductName = "automate"
	// RuntimeVersion is the version of the runtime, recorded in every toolkit it builds
	RuntimeVersion = "0.4.0"

	envPrefix      = "AUTOMATE"
	configFileName = "automate"
)

// Config holds global configuration settings
type Config struct {
	// BaseDir is the root directory for patterns, toolkits and drafts
	BaseDir string `mapstructure:"home"`
	// ExportDir is where built toolkits are written
	ExportDir string `mapstructure:"export_dir"`
	// Debug turns on debug logging
	Debug bool `mapstructure:"debug"`
	// LogLevel is the minimum level logged when Debug is off
	LogLevel string `mapstructure:"log_level"`
}

// Metadata describes the running runtime
type Metadata struct {
	ProductName    string
	RuntimeVersion string
	BaseDir        string
	ExportDir      string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	baseDir := getDefaultBaseDir()
	return &Config{
		BaseDir:   baseDir,
		ExportDir: filepath.Join(baseDir, "export"),
		LogLevel:  "warn",
	}
}

// getDefaultBaseDir returns the default base directory path
func getDefaultBaseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".automate"
	}
	return filepath.Join(homeDir, ".automate")
}

// LoadConfig loads configuration from defaults, an optional automate.yaml in the base
// directory, and AUTOMATE_ environment variables. A non-empty baseDir overrides them all.
func LoadConfig(baseDir string) (*Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("home", defaults.BaseDir)
	v.SetDefault("debug", false)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("export_dir", "")

	home := baseDir
	if home == "" {
		home = v.GetString("home")
	}
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(home)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if baseDir != "" {
		cfg.BaseDir = baseDir
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(cfg.BaseDir, "export")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}

	absPath, err := filepath.Abs(c.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	c.BaseDir = absPath

	absExport, err := filepath.Abs(c.ExportDir)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	c.ExportDir = absExport

	return nil
}

// Metadata returns the runtime metadata for this configuration
func (c *Config) Metadata() Metadata {
	return Metadata{
		ProductName:    ProductName,
		RuntimeVersion: version.MustParse(RuntimeVersion).String(),
		BaseDir:        c.BaseDir,
		ExportDir:      c.ExportDir,
	}
}

// EnsureDirectories creates necessary directories if they don't exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.BaseDir,
		c.PatternsDir(),
		c.ToolkitsDir(),
		c.DraftsDir(),
		c.CodeTemplatesDir(),
		c.ExportDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// PatternsDir holds one file per authored pattern
func (c *Config) PatternsDir() string { return filepath.Join(c.BaseDir, "patterns") }

// ToolkitsDir holds one file per installed toolkit
func (c *Config) ToolkitsDir() string { return filepath.Join(c.BaseDir, "toolkits") }

// DraftsDir holds one file per draft
func (c *Config) DraftsDir() string { return filepath.Join(c.BaseDir, "drafts") }

// CodeTemplatesDir holds the uploaded content of code templates, one directory per pattern
func (c *Config) CodeTemplatesDir() string { return filepath.Join(c.BaseDir, "codetemplates") }

// StateFile is the local state record
func (c *Config) StateFile() string { return filepath.Join(c.BaseDir, "state.json") }
