package mdfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/hay-kot/worklog/internal/core/journal"
	"github.com/hay-kot/worklog/internal/core/logging"
)

const (
	backupsDir      = "backups"
	backupLayout    = "2006-01-02T15-04-05"
	backupExt       = ".md"
	backupMetaExt   = ".meta"
	defaultMaxWeek  = 50
	defaultKeepDays = 90
)

// Backup triggers recorded in the metadata sidecar.
const (
	TriggerSave       = "save"
	TriggerManual     = "manual"
	TriggerPreRestore = "pre-restore"
)

// ErrBackupNotFound is returned when a named backup does not exist.
var ErrBackupNotFound = errors.New("backup not found")

// Backup describes one stored copy of a journal document.
type Backup struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Week      string    `json:"week"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`

	seq int
}

type backupMeta struct {
	Trigger   string    `json:"trigger"`
	Original  string    `json:"original"`
	Timestamp time.Time `json:"timestamp"`
	Week      string    `json:"week"`
}

// BackupOptions bound how many copies are kept.
type BackupOptions struct {
	MaxPerWeek    int
	RetentionDays int
}

// Backups keeps timestamped copies of journal documents under
// <data_dir>/backups/<year>-W<ww>/.
type Backups struct {
	dir        string
	maxPerWeek int
	retention  time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewBackups returns a backup manager rooted at <dataDir>/backups. Zero
// options fall back to 50 copies per week and 90 days of retention.
func NewBackups(dataDir string, opts BackupOptions, log zerolog.Logger) *Backups {
	if opts.MaxPerWeek <= 0 {
		opts.MaxPerWeek = defaultMaxWeek
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = defaultKeepDays
	}

	return &Backups{
		dir:        filepath.Join(dataDir, backupsDir),
		maxPerWeek: opts.MaxPerWeek,
		retention:  time.Duration(opts.RetentionDays) * 24 * time.Hour,
		now:        time.Now,
		log:        logging.Component(log, "backups"),
	}
}

// Dir returns the root backup directory.
func (b *Backups) Dir() string { return b.dir }

func (b *Backups) weekDir(key journal.WeekKey) string {
	return filepath.Join(b.dir, key.String())
}

// Create copies the document at path into the week's backup directory. It
// reports false without error when there is nothing to back up.
func (b *Backups) Create(path string, key journal.WeekKey, trigger string) (Backup, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Backup{}, false, nil
		}
		return Backup{}, false, fmt.Errorf("read %s for backup: %w", path, err)
	}

	now := b.now()
	dir := b.weekDir(key)
	name := b.freeName(dir, now.Format(backupLayout))
	dest := filepath.Join(dir, name+backupExt)

	if err := writeFile(dest, bytes.NewReader(data)); err != nil {
		return Backup{}, false, err
	}

	meta, err := json.MarshalIndent(backupMeta{
		Trigger:   trigger,
		Original:  path,
		Timestamp: now,
		Week:      key.String(),
	}, "", "  ")
	if err != nil {
		return Backup{}, false, fmt.Errorf("encode backup meta: %w", err)
	}
	if err := writeFile(filepath.Join(dir, name+backupMetaExt), bytes.NewReader(meta)); err != nil {
		return Backup{}, false, err
	}

	if err := b.enforceLimit(key); err != nil {
		b.log.Warn().Err(err).Str("week", key.String()).Msg("failed to prune backups")
	}

	b.log.Debug().Str("week", key.String()).Str("trigger", trigger).Str("backup", name).Msg("backup created")

	return Backup{
		Name:      name,
		Path:      dest,
		Week:      key.String(),
		Trigger:   trigger,
		Timestamp: now,
	}, true, nil
}

// freeName avoids clobbering a backup taken within the same second. The
// suffix always grows past the highest one on disk, so a name freed by
// pruning is never reused for a newer backup.
func (b *Backups) freeName(dir, stem string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return stem
	}

	highest := 0
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), backupExt)
		if !ok || !strings.HasPrefix(name, stem) {
			continue
		}
		if _, seq, ok := parseBackupName(name); ok && seq > highest {
			highest = seq
		}
	}

	if highest == 0 {
		return stem
	}
	return fmt.Sprintf("%s-%d", stem, highest+1)
}

// List returns the week's backups, newest first. Files whose names do not
// carry a timestamp are ignored.
func (b *Backups) List(key journal.WeekKey) ([]Backup, error) {
	dir := b.weekDir(key)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return []Backup{}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "*"+backupExt)
	if err != nil {
		return nil, fmt.Errorf("glob backups: %w", err)
	}

	backups := make([]Backup, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(m, backupExt)
		ts, seq, ok := parseBackupName(name)
		if !ok {
			continue
		}

		backups = append(backups, Backup{
			Name:      name,
			Path:      filepath.Join(dir, m),
			Week:      key.String(),
			Trigger:   readTrigger(filepath.Join(dir, name+backupMetaExt)),
			Timestamp: ts,
			seq:       seq,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].seq > backups[j].seq
	})

	return backups, nil
}

// Restore copies the named backup over dest. The current content of dest is
// backed up first. It returns that pre-restore backup, if one was taken.
func (b *Backups) Restore(key journal.WeekKey, name, dest string) (*Backup, error) {
	name = strings.TrimSuffix(name, backupExt)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("restore %q: %w", name, ErrBackupNotFound)
	}

	src := filepath.Join(b.weekDir(key), name+backupExt)
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("restore %s/%s: %w", key, name, ErrBackupNotFound)
		}
		return nil, fmt.Errorf("read backup %s: %w", src, err)
	}

	var pre *Backup
	bk, ok, err := b.Create(dest, key, TriggerPreRestore)
	if err != nil {
		return nil, err
	}
	if ok {
		pre = &bk
	}

	if err := writeFile(dest, bytes.NewReader(data)); err != nil {
		return pre, err
	}

	b.log.Info().Str("week", key.String()).Str("backup", name).Msg("journal restored")
	return pre, nil
}

// Cleanup removes backups older than the retention period and deletes week
// directories left empty. It returns the number of backups removed.
func (b *Backups) Cleanup() (int, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read backup dir: %w", err)
	}

	cutoff := b.now().Add(-b.retention)
	removed := 0

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		key, err := journal.ParseWeekKey(e.Name())
		if err != nil {
			continue
		}

		backups, err := b.List(key)
		if err != nil {
			return removed, err
		}
		for _, bk := range backups {
			if !bk.Timestamp.Before(cutoff) {
				continue
			}
			if err := b.remove(bk); err != nil {
				return removed, err
			}
			removed++
		}

		dir := b.weekDir(key)
		if rest, err := os.ReadDir(dir); err == nil && len(rest) == 0 {
			if err := os.Remove(dir); err != nil {
				return removed, fmt.Errorf("remove empty backup dir: %w", err)
			}
		}
	}

	if removed > 0 {
		b.log.Info().Int("removed", removed).Msg("old backups cleaned up")
	}
	return removed, nil
}

func (b *Backups) enforceLimit(key journal.WeekKey) error {
	backups, err := b.List(key)
	if err != nil {
		return err
	}
	if len(backups) <= b.maxPerWeek {
		return nil
	}
	for _, bk := range backups[b.maxPerWeek:] {
		if err := b.remove(bk); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backups) remove(bk Backup) error {
	if err := os.Remove(bk.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove backup %s: %w", bk.Name, err)
	}
	meta := strings.TrimSuffix(bk.Path, backupExt) + backupMetaExt
	if err := os.Remove(meta); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove backup meta %s: %w", bk.Name, err)
	}
	return nil
}

// parseBackupName reads the timestamp and same-second sequence from a backup
// stem. An unsuffixed stem is sequence 1; "-N" suffixes start at 2.
func parseBackupName(name string) (time.Time, int, bool) {
	if len(name) < len(backupLayout) {
		return time.Time{}, 0, false
	}
	ts, err := time.ParseInLocation(backupLayout, name[:len(backupLayout)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}

	rest := name[len(backupLayout):]
	if rest == "" {
		return ts, 1, true
	}
	suffix, ok := strings.CutPrefix(rest, "-")
	if !ok {
		return time.Time{}, 0, false
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 2 {
		return time.Time{}, 0, false
	}
	return ts, seq, true
}

func readTrigger(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	var meta backupMeta
	if err := json.Unmarshal(data, &meta); err != nil || meta.Trigger == "" {
		return "unknown"
	}
	return meta.Trigger
}
