// Package mdfile persists items and journals as human-editable markdown files.
package mdfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"

	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/core/logging"
)

const (
	itemsDir = "tasks"
	itemExt  = ".md"
	filePerm = 0o644
	dirPerm  = 0o755
)

var _ item.Store = (*ItemStore)(nil)

// ItemStore implements item.Store with one markdown file per item.
type ItemStore struct {
	dir string
	log zerolog.Logger
}

// NewItemStore returns a store rooted at <dataDir>/tasks.
func NewItemStore(dataDir string, log zerolog.Logger) *ItemStore {
	return &ItemStore{
		dir: filepath.Join(dataDir, itemsDir),
		log: logging.Component(log, "item-store"),
	}
}

// Dir returns the directory holding item files.
func (s *ItemStore) Dir() string { return s.dir }

func (s *ItemStore) path(id string) string {
	return filepath.Join(s.dir, id+itemExt)
}

// Get loads a single item.
func (s *ItemStore) Get(ctx context.Context, id string) (item.Item, error) {
	if !item.IsValidID(id) {
		return item.Item{}, fmt.Errorf("get %s: %w", id, item.ErrNotFound)
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return item.Item{}, fmt.Errorf("get %s: %w", id, item.ErrNotFound)
		}
		return item.Item{}, fmt.Errorf("read item %s: %w", id, err)
	}

	it, err := item.Decode(data)
	if err != nil {
		return item.Item{}, fmt.Errorf("decode item %s: %w", id, err)
	}
	if it.ID != id {
		return item.Item{}, &item.ValidationError{Field: "id", Value: it.ID, Msg: "does not match file name " + id}
	}
	return it, nil
}

// LoadAll reads every item file. Files that cannot be read or decoded are
// reported in the result and logged, never returned as an error.
func (s *ItemStore) LoadAll(ctx context.Context) (item.LoadResult, error) {
	result := item.LoadResult{Items: []item.Item{}}

	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}

	matches, err := doublestar.Glob(os.DirFS(s.dir), "*"+itemExt)
	if err != nil {
		return result, fmt.Errorf("glob items: %w", err)
	}

	for _, name := range matches {
		path := filepath.Join(s.dir, name)

		it, err := s.loadFile(path)
		if err != nil {
			rec := item.CorruptRecord{Path: path, Err: err}
			result.Skipped = append(result.Skipped, rec)
			s.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable item")
			continue
		}
		result.Items = append(result.Items, it)
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		a, b := result.Items[i], result.Items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return result, nil
}

func (s *ItemStore) loadFile(path string) (item.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return item.Item{}, err
	}

	it, err := item.Decode(data)
	if err != nil {
		return item.Item{}, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), itemExt)
	if it.ID != stem {
		return item.Item{}, &item.ValidationError{Field: "id", Value: it.ID, Msg: "does not match file name " + stem}
	}
	return it, nil
}

// Save writes the item, replacing any previous version atomically.
func (s *ItemStore) Save(ctx context.Context, it item.Item) error {
	if err := item.Validate(it); err != nil {
		return err
	}

	data, err := item.Encode(it)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", it.ID, err)
	}

	return writeFile(s.path(it.ID), bytes.NewReader(data))
}

// Delete removes the item file. It reports false if the item did not exist.
func (s *ItemStore) Delete(ctx context.Context, id string) (bool, error) {
	if !item.IsValidID(id) {
		return false, nil
	}

	err := os.Remove(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("delete item %s: %w", id, err)
	}
	return true, nil
}

// Exists reports whether an item file is present for id.
func (s *ItemStore) Exists(ctx context.Context, id string) bool {
	if !item.IsValidID(id) {
		return false
	}
	_, err := os.Stat(s.path(id))
	return err == nil
}

// writeFile creates the parent directory and atomically replaces path with
// the reader's content. If r fails, the previous file is left untouched.
func writeFile(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	// atomic.WriteFile keeps the mode of an existing file but creates new
	// ones 0600.
	if isNew {
		if err := os.Chmod(path, filePerm); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}
	return nil
}
