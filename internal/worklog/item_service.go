package worklog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/worklog/internal/core/config"
	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/core/logging"
	"github.com/hay-kot/worklog/internal/core/validate"
)

const maxIDAttempts = 5

// ItemService applies the item lifecycle rules on top of item.Store.
type ItemService struct {
	store    item.Store
	defaults config.Defaults
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewItemService creates a new ItemService.
func NewItemService(store item.Store, defaults config.Defaults, log zerolog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		defaults: defaults,
		log:      logging.Component(log, "item-service"),
		now:      time.Now,
		newID:    item.NewID,
	}
}

// Stats are aggregate counts over all readable items.
type Stats struct {
	Total      int                   `json:"total"`
	ByStatus   map[item.Status]int   `json:"by_status"`
	ByKind     map[item.Kind]int     `json:"by_kind"`
	ByPriority map[item.Priority]int `json:"by_priority"`
	Overdue    int                   `json:"overdue"`
	NeedsCheck int                   `json:"needs_check"`
}

// DependencyReport resolves an item's dependency list. Missing lists ids
// that no longer exist.
type DependencyReport struct {
	Item     item.Item   `json:"item"`
	Resolved []item.Item `json:"resolved"`
	Missing  []string    `json:"missing"`
}

func (s *ItemService) timestamp() time.Time {
	return s.now().Truncate(time.Second)
}

// Create allocates an id, fills defaults, and persists the new item.
func (s *ItemService) Create(ctx context.Context, f item.Fields) (item.Item, error) {
	f.Title = strings.TrimSpace(f.Title)
	if err := item.ValidateFields(f); err != nil {
		return item.Item{}, err
	}

	id, err := s.allocateID(ctx)
	if err != nil {
		return item.Item{}, err
	}

	now := s.timestamp()
	it := item.Item{
		ID:            id,
		Title:         f.Title,
		Description:   strings.TrimSpace(f.Description),
		Kind:          orDefault(f.Kind, s.defaults.Kind),
		Status:        orDefault(f.Status, s.defaults.Status),
		Priority:      orDefault(f.Priority, s.defaults.Priority),
		CheckInterval: orDefault(f.CheckInterval, s.defaults.CheckInterval),
		ETA:           f.ETA,
		NotifyAt:      f.NotifyAt,
		Tags:          nonEmpty(f.Tags),
		Dependencies:  nonEmpty(f.Dependencies),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Save(ctx, it); err != nil {
		return item.Item{}, fmt.Errorf("create item: %w", err)
	}

	ctx = logging.WithItemID(ctx, it.ID)
	s.log.Info().Ctx(ctx).Str("kind", string(it.Kind)).Msg("item created")
	return it, nil
}

func (s *ItemService) allocateID(ctx context.Context) (string, error) {
	for range maxIDAttempts {
		id := s.newID()
		if !s.store.Exists(ctx, id) {
			return id, nil
		}
		s.log.Debug().Ctx(ctx).Str("id", id).Msg("id collision, retrying")
	}
	return "", item.ErrCollision
}

// Get returns the item with id.
func (s *ItemService) Get(ctx context.Context, id string) (item.Item, error) {
	return s.store.Get(ctx, id)
}

// Update merges the patch into the stored item and bumps updated_at.
func (s *ItemService) Update(ctx context.Context, id string, p item.Patch) (item.Item, error) {
	if err := item.ValidatePatch(p); err != nil {
		return item.Item{}, err
	}

	return s.mutate(ctx, id, "item updated", func(it *item.Item) {
		p.Apply(it)
	})
}

// AddNote appends a timestamped note.
func (s *ItemService) AddNote(ctx context.Context, id, text string) (item.Item, error) {
	if err := validate.NonBlank(text); err != nil {
		return item.Item{}, &item.ValidationError{Field: "note", Msg: err.Error()}
	}

	return s.mutate(ctx, id, "note added", func(it *item.Item) {
		it.Notes = append(it.Notes, item.Note{
			Timestamp: s.now().Truncate(time.Minute),
			Text:      strings.TrimSpace(text),
		})
	})
}

// SetStatus changes the item's status. Setting the current status is a
// no-op and does not touch updated_at.
func (s *ItemService) SetStatus(ctx context.Context, id string, status item.Status) (item.Item, error) {
	if !status.IsValid() {
		return item.Item{}, &item.ValidationError{Field: "status", Value: string(status), Msg: "unknown status"}
	}

	it, err := s.store.Get(ctx, id)
	if err != nil {
		return item.Item{}, err
	}
	if it.Status == status {
		return it, nil
	}

	from := it.Status
	it.Status = status
	it.UpdatedAt = s.timestamp()
	if err := s.store.Save(ctx, it); err != nil {
		return item.Item{}, fmt.Errorf("set status %s: %w", id, err)
	}

	ctx = logging.WithItemID(ctx, id)
	s.log.Info().Ctx(ctx).Str("from", string(from)).Str("to", string(status)).Msg("status changed")
	return it, nil
}

// MarkChecked records a periodic review, resetting the needs-check clock.
func (s *ItemService) MarkChecked(ctx context.Context, id string) (item.Item, error) {
	return s.mutate(ctx, id, "item checked", func(it *item.Item) {
		now := s.timestamp()
		it.LastChecked = &now
	})
}

func (s *ItemService) mutate(ctx context.Context, id, msg string, fn func(*item.Item)) (item.Item, error) {
	it, err := s.store.Get(ctx, id)
	if err != nil {
		return item.Item{}, err
	}

	fn(&it)
	it.UpdatedAt = s.timestamp()

	if err := s.store.Save(ctx, it); err != nil {
		return item.Item{}, fmt.Errorf("save item %s: %w", id, err)
	}

	s.log.Debug().Ctx(logging.WithItemID(ctx, id)).Msg(msg)
	return it, nil
}

// Delete removes the item. It reports false if the item did not exist.
// Items that depend on it keep the dangling reference.
func (s *ItemService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info().Ctx(logging.WithItemID(ctx, id)).Msg("item deleted")
	}
	return ok, nil
}

// Load returns every readable item along with the files that were skipped.
func (s *ItemService) Load(ctx context.Context) (item.LoadResult, error) {
	res, err := s.store.LoadAll(ctx)
	if err != nil {
		return item.LoadResult{}, fmt.Errorf("load items: %w", err)
	}
	return res, nil
}

// All returns every readable item ordered by creation time.
func (s *ItemService) All(ctx context.Context) ([]item.Item, error) {
	res, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// List returns items matching every criterion in f.
func (s *ItemService) List(ctx context.Context, f item.Filter) ([]item.Item, error) {
	return s.where(ctx, f.Match)
}

// Search returns items whose title or description contains q.
func (s *ItemService) Search(ctx context.Context, q string) ([]item.Item, error) {
	return s.List(ctx, item.Filter{Search: q})
}

// Overdue returns unfinished items whose ETA has passed.
func (s *ItemService) Overdue(ctx context.Context) ([]item.Item, error) {
	now := s.now()
	return s.where(ctx, func(it item.Item) bool { return it.IsOverdue(now) })
}

// NeedingCheck returns unfinished items due for periodic review.
func (s *ItemService) NeedingCheck(ctx context.Context) ([]item.Item, error) {
	now := s.now()
	return s.where(ctx, func(it item.Item) bool { return it.NeedsCheck(now) })
}

// NeedingNotification returns unfinished items whose notify_at has passed.
func (s *ItemService) NeedingNotification(ctx context.Context) ([]item.Item, error) {
	now := s.now()
	return s.where(ctx, func(it item.Item) bool { return it.NeedsNotification(now) })
}

// InProgress returns items with status in-progress.
func (s *ItemService) InProgress(ctx context.Context) ([]item.Item, error) {
	return s.List(ctx, item.Filter{Status: item.StatusInProgress})
}

// DueBy returns unfinished items with an ETA on or before the end of day.
func (s *ItemService) DueBy(ctx context.Context, day time.Time) ([]item.Item, error) {
	return s.where(ctx, func(it item.Item) bool { return it.DueBy(day) })
}

func (s *ItemService) where(ctx context.Context, keep func(item.Item) bool) ([]item.Item, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]item.Item, 0, len(all))
	for _, it := range all {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Stats counts items by status, kind, and priority. Every enum value is
// present in the maps, including those with zero items.
func (s *ItemService) Stats(ctx context.Context) (Stats, error) {
	all, err := s.All(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Total:      len(all),
		ByStatus:   make(map[item.Status]int, len(item.Statuses)),
		ByKind:     make(map[item.Kind]int, len(item.Kinds)),
		ByPriority: make(map[item.Priority]int, len(item.Priorities)),
	}
	for _, v := range item.Statuses {
		st.ByStatus[v] = 0
	}
	for _, v := range item.Kinds {
		st.ByKind[v] = 0
	}
	for _, v := range item.Priorities {
		st.ByPriority[v] = 0
	}

	now := s.now()
	for _, it := range all {
		st.ByStatus[it.Status]++
		st.ByKind[it.Kind]++
		st.ByPriority[it.Priority]++
		if it.IsOverdue(now) {
			st.Overdue++
		}
		if it.NeedsCheck(now) {
			st.NeedsCheck++
		}
	}
	return st, nil
}

// Dependencies resolves the item's dependency list.
func (s *ItemService) Dependencies(ctx context.Context, id string) (DependencyReport, error) {
	it, err := s.store.Get(ctx, id)
	if err != nil {
		return DependencyReport{}, err
	}

	report := DependencyReport{Item: it, Resolved: []item.Item{}, Missing: []string{}}
	for _, dep := range it.Dependencies {
		d, err := s.store.Get(ctx, dep)
		switch {
		case err == nil:
			report.Resolved = append(report.Resolved, d)
		case errors.Is(err, item.ErrNotFound):
			report.Missing = append(report.Missing, dep)
		default:
			return DependencyReport{}, fmt.Errorf("resolve dependency %s: %w", dep, err)
		}
	}
	return report, nil
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func nonEmpty(s []string) []string {
	var out []string
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
