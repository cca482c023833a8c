// Package config handles configuration loading and validation for worklog.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	// JournalDir holds the weekly documents. Relative paths are resolved
	// against DataDir; "~" expands to the home directory.
	JournalDir string       `yaml:"journal_dir"`
	Defaults   Defaults     `yaml:"defaults"`
	Backup     BackupConfig `yaml:"backup"`
	// Theme names the palette for human-readable output.
	Theme      string       `yaml:"theme"`
	DataDir    string       `yaml:"-"` // set by caller, not from config file
}

// Defaults are applied to new items when the caller leaves a field empty.
type Defaults struct {
	Kind          item.Kind          `yaml:"kind"`
	Status        item.Status        `yaml:"status"`
	Priority      item.Priority      `yaml:"priority"`
	CheckInterval item.CheckInterval `yaml:"check_interval"`
}

// BackupConfig controls journal backups taken before each overwrite.
type BackupConfig struct {
	Enabled       bool `yaml:"enabled"`
	MaxPerWeek    int  `yaml:"max_per_week"`
	RetentionDays int  `yaml:"retention_days"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		JournalDir: "journal",
		Defaults: Defaults{
			Kind:          item.KindGeneral,
			Status:        item.StatusTodo,
			Priority:      item.PriorityMedium,
			CheckInterval: item.CheckWeekly,
		},
		Backup: BackupConfig{
			Enabled:       true,
			MaxPerWeek:    50,
			RetentionDays: 90,
		},
		Theme: styles.DefaultTheme,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.JournalDir == "" {
		c.JournalDir = defaults.JournalDir
	}
	if c.Defaults.Kind == "" {
		c.Defaults.Kind = defaults.Defaults.Kind
	}
	if c.Defaults.Status == "" {
		c.Defaults.Status = defaults.Defaults.Status
	}
	if c.Defaults.Priority == "" {
		c.Defaults.Priority = defaults.Defaults.Priority
	}
	if c.Defaults.CheckInterval == "" {
		c.Defaults.CheckInterval = defaults.Defaults.CheckInterval
	}
	if c.Backup.MaxPerWeek == 0 {
		c.Backup.MaxPerWeek = defaults.Backup.MaxPerWeek
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = defaults.Backup.RetentionDays
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if !c.Defaults.Kind.IsValid() {
		return fmt.Errorf("defaults.kind %q is not a known kind", c.Defaults.Kind)
	}
	if !c.Defaults.Status.IsValid() {
		return fmt.Errorf("defaults.status %q is not a known status", c.Defaults.Status)
	}
	if !c.Defaults.Priority.IsValid() {
		return fmt.Errorf("defaults.priority %q is not a known priority", c.Defaults.Priority)
	}
	if !c.Defaults.CheckInterval.IsValid() {
		return fmt.Errorf("defaults.check_interval %q is not a known interval", c.Defaults.CheckInterval)
	}

	if c.Backup.MaxPerWeek < 1 {
		return fmt.Errorf("backup.max_per_week must be at least 1")
	}
	if c.Backup.RetentionDays < 1 {
		return fmt.Errorf("backup.retention_days must be at least 1")
	}

	if _, ok := styles.GetPalette(c.Theme); !ok {
		return fmt.Errorf("theme %q is not one of %s", c.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	return nil
}

// ItemsDir returns the directory holding one markdown file per item.
func (c *Config) ItemsDir() string {
	return filepath.Join(c.DataDir, "tasks")
}

// JournalPath returns the resolved journal directory.
func (c *Config) JournalPath() string {
	dir := c.JournalDir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.DataDir, dir)
	}
	return dir
}

// BackupsDir returns the root of the journal backup tree.
func (c *Config) BackupsDir() string {
	return filepath.Join(c.DataDir, "backups")
}

// LogFile returns the default log file location.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "worklog.log")
}
