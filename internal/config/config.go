package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/declutter/internal/classify"
)

// Config represents the application configuration
type Config struct {
	Categories []classify.Category `yaml:"categories" toml:"categories"`
	OtherFiles OtherFilesConfig    `yaml:"other_files" toml:"other_files"`
	Collision  CollisionConfig     `yaml:"collision" toml:"collision"`
	DryRun     bool                `yaml:"dry_run" toml:"dry_run"`
	Log        LogConfig           `yaml:"log" toml:"log"`
	History    HistoryConfig       `yaml:"history" toml:"history"`
}

// OtherFilesConfig controls extensionless and unrecognized files
type OtherFilesConfig struct {
	// Relocate moves them into other_files/; otherwise they stay put
	Relocate bool `yaml:"relocate" toml:"relocate"`
}

// CollisionConfig controls destination name collisions
type CollisionConfig struct {
	MaxAttempts int `yaml:"max_attempts" toml:"max_attempts"` // numeric suffixes tried
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // console, json
}

// HistoryConfig controls the run journal
type HistoryConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Dir      string `yaml:"dir,omitempty" toml:"dir,omitempty"` // empty means the default state dir
	KeepDays int    `yaml:"keep_days" toml:"keep_days"`         // 0 keeps records forever
}

// Load loads configuration from a file. A missing file yields the defaults;
// keys absent from the file keep their default values. Files ending in
// .toml are parsed as TOML, everything else as YAML.
func Load(configPath string) (*Config, error) {
	cfg := GetDefault()

	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A categories list in the file replaces the defaults instead of
	// extending them.
	cfg.Categories = nil
	if isTOML(configPath) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = classify.DefaultCategories()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a file, as TOML or YAML by extension
func Save(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isTOML(configPath) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if _, err := classify.NewTable(c.Categories); err != nil {
		return err
	}

	if c.Collision.MaxAttempts < 1 {
		return fmt.Errorf("collision max_attempts must be >= 1")
	}

	if c.History.KeepDays < 0 {
		return fmt.Errorf("history keep_days must be >= 0")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}

	return nil
}

// Table builds the category lookup table
func (c *Config) Table() (*classify.Table, error) {
	return classify.NewTable(c.Categories)
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "declutter")
	return filepath.Join(configDir, "config.yaml"), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
