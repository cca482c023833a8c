package mdfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hay-kot/worklog/internal/core/journal"
	"github.com/hay-kot/worklog/internal/core/logging"
)

var _ journal.Store = (*JournalStore)(nil)

// JournalStore implements journal.Store with one markdown document per ISO
// week.
type JournalStore struct {
	dir     string
	backups *Backups
	log     zerolog.Logger
}

// NewJournalStore returns a store for documents in dir. A nil backups
// disables backups before overwrite.
func NewJournalStore(dir string, backups *Backups, log zerolog.Logger) *JournalStore {
	return &JournalStore{
		dir:     dir,
		backups: backups,
		log:     logging.Component(log, "journal-store"),
	}
}

// Path returns the location of the week's document.
func (s *JournalStore) Path(key journal.WeekKey) string {
	return filepath.Join(s.dir, key.String()+".md")
}

// SummaryPath returns the location of the week's summary document.
func (s *JournalStore) SummaryPath(key journal.WeekKey) string {
	return filepath.Join(s.dir, key.String()+"-summary.md")
}

// Load parses the week's document. A missing document yields an empty
// skeleton.
func (s *JournalStore) Load(ctx context.Context, key journal.WeekKey) (*journal.Week, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return journal.NewWeek(key), nil
		}
		return nil, fmt.Errorf("read journal %s: %w", key, err)
	}
	return journal.Parse(key, data), nil
}

// Exists reports whether the week has a document on disk.
func (s *JournalStore) Exists(ctx context.Context, key journal.WeekKey) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Save renders and writes the week. The previous document is backed up
// first when backups are enabled; a failed backup is logged and does not
// block the write.
func (s *JournalStore) Save(ctx context.Context, w *journal.Week) error {
	path := s.Path(w.Key)

	if s.backups != nil {
		if _, _, err := s.backups.Create(path, w.Key, TriggerSave); err != nil {
			s.log.Warn().Err(err).Str("week", w.Key.String()).Msg("journal backup failed")
		}
	}

	if err := writeFile(path, bytes.NewReader(journal.Render(w))); err != nil {
		return fmt.Errorf("save journal %s: %w", w.Key, err)
	}
	return nil
}

// SaveSummary writes the standalone weekly summary document.
func (s *JournalStore) SaveSummary(ctx context.Context, sum journal.WeeklySummary, lookup journal.Lookup) error {
	data := journal.RenderSummary(sum, lookup)
	if err := writeFile(s.SummaryPath(sum.Key), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save summary %s: %w", sum.Key, err)
	}
	return nil
}
