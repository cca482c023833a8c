package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
)

// ValidateDeep performs Validate and then checks that the config file and
// the directories it names are usable. An empty configPath skips the config
// file check.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("tasks_dir", c.ItemsDir(), isDirectoryOrNotExist),
		criterio.Run("journal_dir", c.JournalPath(), isDirectoryOrNotExist),
		criterio.Run("backup.dir", c.BackupsDir(), isDirectoryOrNotExist),
	)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.Backup.Enabled {
		warnings = append(warnings, ValidationWarning{
			Category: "backup",
			Message:  "backups are disabled; journal overwrites cannot be undone",
		})
	}
	if c.Backup.RetentionDays < 7 {
		warnings = append(warnings, ValidationWarning{
			Category: "backup",
			Message:  fmt.Sprintf("retention_days is %d; backups will not outlive the week", c.Backup.RetentionDays),
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
