package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/worklog/internal/core/item"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, item.KindGeneral, cfg.Defaults.Kind)
	assert.Equal(t, item.StatusTodo, cfg.Defaults.Status)
	assert.Equal(t, item.PriorityMedium, cfg.Defaults.Priority)
	assert.Equal(t, item.CheckWeekly, cfg.Defaults.CheckInterval)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, 50, cfg.Backup.MaxPerWeek)
	assert.Equal(t, 90, cfg.Backup.RetentionDays)
	assert.Equal(t, filepath.Join(dataDir, "journal"), cfg.JournalPath())
	assert.Equal(t, filepath.Join(dataDir, "tasks"), cfg.ItemsDir())
	assert.Equal(t, "tokyo-night", cfg.Theme)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
journal_dir: /srv/journal
defaults:
  priority: high
backup:
  enabled: false
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, "/srv/journal", cfg.JournalPath())
	assert.Equal(t, item.PriorityHigh, cfg.Defaults.Priority)
	assert.Equal(t, item.KindGeneral, cfg.Defaults.Kind)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, 50, cfg.Backup.MaxPerWeek)
	assert.Equal(t, "/data", cfg.DataDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown kind",
			content: "defaults:\n  kind: spaceship\n",
			wantErr: "defaults.kind",
		},
		{
			name:    "unknown interval",
			content: "defaults:\n  check_interval: hourly\n",
			wantErr: "defaults.check_interval",
		},
		{
			name:    "negative backups",
			content: "backup:\n  max_per_week: -1\n",
			wantErr: "max_per_week",
		},
		{
			name:    "unknown theme",
			content: "theme: solarized\n",
			wantErr: "theme",
		},
		{
			name:    "malformed yaml",
			content: "defaults: [\n",
			wantErr: "parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), "/data")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestJournalPath_HomeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.DataDir = "/data"
	cfg.JournalDir = "~/notes/journal"

	assert.Equal(t, filepath.Join(home, "notes", "journal"), cfg.JournalPath())
}
