// Package worklog wires the item, journal, and summary services together.
package worklog

import (
	"github.com/rs/zerolog"

	"github.com/hay-kot/worklog/internal/core/config"
	"github.com/hay-kot/worklog/internal/store/mdfile"
)

// App is the central entry point for all worklog operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Items     *ItemService
	Journal   *JournalService
	Summaries *SummaryService

	Journals *mdfile.JournalStore
	Backups  *mdfile.Backups
	Config   *config.Config
}

// NewApp constructs an App backed by markdown files under the configured
// directories.
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	var (
		itemStore = mdfile.NewItemStore(cfg.DataDir, log)
		backups   = mdfile.NewBackups(cfg.DataDir, mdfile.BackupOptions{
			MaxPerWeek:    cfg.Backup.MaxPerWeek,
			RetentionDays: cfg.Backup.RetentionDays,
		}, log)
	)

	// A nil backup manager disables backup-before-overwrite.
	var saveBackups *mdfile.Backups
	if cfg.Backup.Enabled {
		saveBackups = backups
	}
	journalStore := mdfile.NewJournalStore(cfg.JournalPath(), saveBackups, log)

	items := NewItemService(itemStore, cfg.Defaults, log)

	return &App{
		Items:     items,
		Journal:   NewJournalService(items, journalStore, log),
		Summaries: NewSummaryService(items, journalStore, log),
		Journals:  journalStore,
		Backups:   backups,
		Config:    cfg,
	}
}
