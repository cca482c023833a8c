package worklog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/worklog/internal/core/config"
	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/core/journal"
	"github.com/hay-kot/worklog/internal/store/mdfile"
)

// wednesday is inside ISO week 2026-W07.
var wednesday = time.Date(2026, time.February, 11, 10, 0, 0, 0, time.Local)

type fixture struct {
	now       time.Time
	items     *ItemService
	journal   *JournalService
	summaries *SummaryService
	itemStore *mdfile.ItemStore
	journals  *mdfile.JournalStore
	backups   *mdfile.Backups
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	log := zerolog.Nop()

	f := &fixture{now: wednesday}
	clock := func() time.Time { return f.now }

	f.itemStore = mdfile.NewItemStore(dir, log)
	f.backups = mdfile.NewBackups(dir, mdfile.BackupOptions{}, log)
	f.journals = mdfile.NewJournalStore(filepath.Join(dir, "journal"), f.backups, log)

	f.items = NewItemService(f.itemStore, config.DefaultConfig().Defaults, log)
	f.items.now = clock

	f.journal = NewJournalService(f.items, f.journals, log)
	f.journal.now = clock

	f.summaries = NewSummaryService(f.items, f.journals, log)
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) create(t *testing.T, fields item.Fields) item.Item {
	t.Helper()
	it, err := f.items.Create(context.Background(), fields)
	require.NoError(t, err)
	return it
}

func (f *fixture) status(t *testing.T, id string) item.Status {
	t.Helper()
	it, err := f.items.Get(context.Background(), id)
	require.NoError(t, err)
	return it.Status
}

// editDay loads the week containing date, lets fn change the day, and saves
// it back, the way a person editing the document would.
func (f *fixture) editDay(t *testing.T, date time.Time, fn func(d *journal.DaySection)) {
	t.Helper()
	ctx := context.Background()

	w, err := f.journals.Load(ctx, journal.KeyFor(date))
	require.NoError(t, err)
	fn(w.Day(date))
	require.NoError(t, f.journals.Save(ctx, w))
}

func (f *fixture) day(t *testing.T, date time.Time) *journal.DaySection {
	t.Helper()
	w, err := f.journals.Load(context.Background(), journal.KeyFor(date))
	require.NoError(t, err)
	return w.Day(date)
}

func ids(items []item.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
