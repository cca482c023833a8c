package mdfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/worklog/internal/core/journal"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newBackups(t *testing.T, opts BackupOptions) (*Backups, *clock, string) {
	t.Helper()
	dir := t.TempDir()
	c := &clock{t: time.Date(2026, 2, 10, 9, 0, 0, 0, time.Local)}
	b := NewBackups(dir, opts, zerolog.Nop())
	b.now = c.now
	return b, c, dir
}

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

var week7 = journal.WeekKey{Year: 2026, Week: 7}

func TestBackups_CreateMissingSource(t *testing.T) {
	b, _, dir := newBackups(t, BackupOptions{})

	_, ok, err := b.Create(filepath.Join(dir, "nope.md"), week7, TriggerManual)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackups_CreateAndList(t *testing.T) {
	b, c, dir := newBackups(t, BackupOptions{})
	doc := filepath.Join(dir, "journal", "2026-W07.md")
	writeDoc(t, doc, "v1")

	first, ok, err := b.Create(doc, week7, TriggerManual)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-02-10T09-00-00", first.Name)
	assert.FileExists(t, filepath.Join(b.Dir(), "2026-W07", "2026-02-10T09-00-00.meta"))

	writeDoc(t, doc, "v2")
	c.advance(time.Minute)
	_, _, err = b.Create(doc, week7, TriggerSave)
	require.NoError(t, err)

	list, err := b.List(week7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-02-10T09-01-00", list[0].Name)
	assert.Equal(t, TriggerSave, list[0].Trigger)
	assert.Equal(t, TriggerManual, list[1].Trigger)

	data, err := os.ReadFile(list[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestBackups_SameSecondDoesNotOverwrite(t *testing.T) {
	b, _, dir := newBackups(t, BackupOptions{})
	doc := filepath.Join(dir, "2026-W07.md")

	writeDoc(t, doc, "v1")
	_, _, err := b.Create(doc, week7, TriggerSave)
	require.NoError(t, err)
	writeDoc(t, doc, "v2")
	second, _, err := b.Create(doc, week7, TriggerSave)
	require.NoError(t, err)

	assert.Equal(t, "2026-02-10T09-00-00-2", second.Name)

	list, err := b.List(week7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Name, list[0].Name)
}

func TestBackups_MaxPerWeek(t *testing.T) {
	b, c, dir := newBackups(t, BackupOptions{MaxPerWeek: 3})
	doc := filepath.Join(dir, "2026-W07.md")
	writeDoc(t, doc, "content")

	for range 5 {
		_, _, err := b.Create(doc, week7, TriggerSave)
		require.NoError(t, err)
		c.advance(time.Second)
	}

	list, err := b.List(week7)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2026-02-10T09-00-04", list[0].Name)
	assert.Equal(t, "2026-02-10T09-00-02", list[2].Name)
	assert.NoFileExists(t, filepath.Join(b.Dir(), "2026-W07", "2026-02-10T09-00-00.meta"))
}

func TestBackups_Restore(t *testing.T) {
	b, c, dir := newBackups(t, BackupOptions{})
	doc := filepath.Join(dir, "2026-W07.md")

	writeDoc(t, doc, "good")
	good, _, err := b.Create(doc, week7, TriggerManual)
	require.NoError(t, err)

	writeDoc(t, doc, "broken")
	c.advance(time.Minute)

	pre, err := b.Restore(week7, good.Name, doc)
	require.NoError(t, err)
	require.NotNil(t, pre)
	assert.Equal(t, TriggerPreRestore, pre.Trigger)

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, "good", string(data))

	saved, err := os.ReadFile(pre.Path)
	require.NoError(t, err)
	assert.Equal(t, "broken", string(saved))
}

func TestBackups_RestoreUnknown(t *testing.T) {
	b, _, dir := newBackups(t, BackupOptions{})

	_, err := b.Restore(week7, "2020-01-01T00-00-00", filepath.Join(dir, "x.md"))
	require.ErrorIs(t, err, ErrBackupNotFound)

	_, err = b.Restore(week7, "../../etc/passwd", filepath.Join(dir, "x.md"))
	require.ErrorIs(t, err, ErrBackupNotFound)
}

func TestBackups_Cleanup(t *testing.T) {
	b, c, dir := newBackups(t, BackupOptions{RetentionDays: 10})
	doc := filepath.Join(dir, "2026-W07.md")
	writeDoc(t, doc, "content")

	old := journal.WeekKey{Year: 2026, Week: 1}
	_, _, err := b.Create(doc, old, TriggerSave)
	require.NoError(t, err)

	c.advance(20 * 24 * time.Hour)
	_, _, err = b.Create(doc, week7, TriggerSave)
	require.NoError(t, err)

	removed, err := b.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoDirExists(t, filepath.Join(b.Dir(), "2026-W01"))
	list, err := b.List(week7)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBackups_CleanupNoDir(t *testing.T) {
	b, _, _ := newBackups(t, BackupOptions{})
	removed, err := b.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestBackups_SameSecondOrdersBySequence(t *testing.T) {
	b, _, dir := newBackups(t, BackupOptions{MaxPerWeek: 10})
	doc := filepath.Join(dir, "2026-W07.md")
	writeDoc(t, doc, "content")

	for range 12 {
		_, _, err := b.Create(doc, week7, TriggerSave)
		require.NoError(t, err)
	}

	list, err := b.List(week7)
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.Equal(t, "2026-02-10T09-00-00-12", list[0].Name)
	assert.Equal(t, "2026-02-10T09-00-00-11", list[1].Name)
	assert.Equal(t, "2026-02-10T09-00-00-10", list[2].Name)
	assert.Equal(t, "2026-02-10T09-00-00-9", list[3].Name)
	assert.Equal(t, "2026-02-10T09-00-00-3", list[9].Name)

	weekDir := filepath.Join(b.Dir(), "2026-W07")
	assert.NoFileExists(t, filepath.Join(weekDir, "2026-02-10T09-00-00.md"))
	assert.NoFileExists(t, filepath.Join(weekDir, "2026-02-10T09-00-00-2.md"))
	assert.FileExists(t, filepath.Join(weekDir, "2026-02-10T09-00-00-10.md"))
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name    string
		wantSeq int
		wantOK  bool
	}{
		{name: "2026-02-10T09-00-00", wantSeq: 1, wantOK: true},
		{name: "2026-02-10T09-00-00-2", wantSeq: 2, wantOK: true},
		{name: "2026-02-10T09-00-00-10", wantSeq: 10, wantOK: true},
		{name: "2026-02-10T09-00-00-x", wantOK: false},
		{name: "2026-02-10T09-00-00_old", wantOK: false},
		{name: "notes", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, seq, ok := parseBackupName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSeq, seq)
		})
	}
}
