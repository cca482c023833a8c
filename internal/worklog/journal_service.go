package worklog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/core/journal"
	"github.com/hay-kot/worklog/internal/core/logging"
)

// JournalService keeps the weekly journal and item statuses in agreement.
//
// The journal is the place where work is ticked off during the day; items
// are the source of truth for status. Sync reads checkboxes and moves
// statuses, EndDay writes the derived sections back, and ReflectStatus pushes
// status changes made elsewhere into the current week's checkboxes.
type JournalService struct {
	items    *ItemService
	journals journal.Store
	log      zerolog.Logger
	now      func() time.Time
}

// NewJournalService creates a new JournalService.
func NewJournalService(items *ItemService, journals journal.Store, log zerolog.Logger) *JournalService {
	return &JournalService{
		items:    items,
		journals: journals,
		log:      logging.Component(log, "journal-service"),
		now:      time.Now,
	}
}

// StartDayResult reports what StartDay planned.
type StartDayResult struct {
	Date           time.Time       `json:"date"`
	Week           journal.WeekKey `json:"week"`
	Added          []string        `json:"added"`
	AlreadyStarted bool            `json:"already_started"`
}

// SyncResult reports the status changes a sync applied.
type SyncResult struct {
	Date      time.Time `json:"date"`
	Completed []string  `json:"completed"`
	Reopened  []string  `json:"reopened"`
	Unknown   []string  `json:"unknown"`
}

// EndDayResult reports the day's derived sections after EndDay. InProgress
// lists the referenced ids still in progress; that section is not rewritten.
type EndDayResult struct {
	Date       time.Time  `json:"date"`
	Sync       SyncResult `json:"sync"`
	Completed  []string   `json:"completed"`
	Blocked    []string   `json:"blocked"`
	InProgress []string   `json:"in_progress"`
}

func newSyncResult(date time.Time) SyncResult {
	return SyncResult{Date: date, Completed: []string{}, Reopened: []string{}, Unknown: []string{}}
}

// Current loads the week containing now.
func (s *JournalService) Current(ctx context.Context) (*journal.Week, error) {
	return s.Week(ctx, s.now())
}

// Week loads the week containing date.
func (s *JournalService) Week(ctx context.Context, date time.Time) (*journal.Week, error) {
	return s.journals.Load(ctx, journal.KeyFor(date))
}

// StartDay fills an empty Planned section for date with in-progress items,
// items due by the end of the day, items needing a check, and overdue items,
// in that order and without repeats. A day that already has plans is left
// untouched.
func (s *JournalService) StartDay(ctx context.Context, date time.Time) (StartDayResult, error) {
	ctx = logging.WithOperation(ctx, "journal.start-day")
	key := journal.KeyFor(date)
	res := StartDayResult{Date: date, Week: key, Added: []string{}}

	w, err := s.journals.Load(ctx, key)
	if err != nil {
		return res, err
	}
	day := w.Day(date)

	if len(day.Planned) > 0 {
		res.AlreadyStarted = true
		s.log.Info().Ctx(ctx).Str("week", key.String()).Msg("day already started")
		return res, nil
	}

	groups := []func(context.Context) ([]item.Item, error){
		s.items.InProgress,
		func(ctx context.Context) ([]item.Item, error) { return s.items.DueBy(ctx, date) },
		s.items.NeedingCheck,
		s.items.Overdue,
	}

	seen := make(map[string]bool)
	for _, load := range groups {
		items, err := load(ctx)
		if err != nil {
			return res, err
		}
		for _, it := range items {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			day.Planned = append(day.Planned, journal.RefEntry(it, false))
			res.Added = append(res.Added, it.ID)
		}
	}

	if err := s.journals.Save(ctx, w); err != nil {
		return res, err
	}

	s.log.Info().Ctx(ctx).Str("week", key.String()).Int("planned", len(res.Added)).Msg("day started")
	return res, nil
}

// Sync applies the checkbox state of date's Planned and In Progress sections
// to item statuses. A ticked id is marked done; an unticked id that is done
// is reopened. The journal itself is not rewritten, so repeated syncs are
// no-ops.
func (s *JournalService) Sync(ctx context.Context, date time.Time) (SyncResult, error) {
	ctx = logging.WithOperation(ctx, "journal.sync")

	w, err := s.journals.Load(ctx, journal.KeyFor(date))
	if err != nil {
		return newSyncResult(date), err
	}
	day := w.Day(date)

	return s.reconcile(ctx, date, day.ActiveRefs(), day.CheckedState())
}

// SyncWeek reconciles every day of the week containing date. When an id
// appears on several days, the latest day that carries a checkbox for it
// decides.
func (s *JournalService) SyncWeek(ctx context.Context, date time.Time) (SyncResult, error) {
	ctx = logging.WithOperation(ctx, "journal.sync-week")

	w, err := s.journals.Load(ctx, journal.KeyFor(date))
	if err != nil {
		return newSyncResult(date), err
	}

	var order []string
	state := make(map[string]bool)
	for i := range w.Days {
		d := &w.Days[i]
		order = append(order, d.ActiveRefs()...)
		for id, checked := range d.CheckedState() {
			state[id] = checked
		}
	}

	return s.reconcile(ctx, date, order, state)
}

func (s *JournalService) reconcile(ctx context.Context, date time.Time, order []string, state map[string]bool) (SyncResult, error) {
	res := newSyncResult(date)
	visited := make(map[string]bool, len(order))

	for _, id := range order {
		checked, ok := state[id]
		if !ok || visited[id] {
			continue
		}
		visited[id] = true

		it, err := s.items.Get(ctx, id)
		if err != nil {
			if errors.Is(err, item.ErrNotFound) {
				res.Unknown = append(res.Unknown, id)
				s.log.Warn().Ctx(logging.WithItemID(ctx, id)).Msg("journal references unknown item")
				continue
			}
			return res, err
		}

		switch {
		case checked && it.Status != item.StatusDone:
			if _, err := s.items.SetStatus(ctx, id, item.StatusDone); err != nil {
				return res, err
			}
			res.Completed = append(res.Completed, id)
		case !checked && it.Status == item.StatusDone:
			if _, err := s.items.SetStatus(ctx, id, item.StatusTodo); err != nil {
				return res, err
			}
			res.Reopened = append(res.Reopened, id)
		}
	}

	s.log.Info().Ctx(ctx).
		Int("completed", len(res.Completed)).
		Int("reopened", len(res.Reopened)).
		Int("unknown", len(res.Unknown)).
		Msg("journal synced")
	return res, nil
}

// EndDay syncs date and then rewrites the day's Completed and Blocked item
// lines from current statuses. Free-text lines in those sections are kept and
// In Progress is left as written, since its checkboxes feed Sync. The week is
// always written.
func (s *JournalService) EndDay(ctx context.Context, date time.Time) (EndDayResult, error) {
	ctx = logging.WithOperation(ctx, "journal.end-day")
	res := EndDayResult{Date: date, Completed: []string{}, Blocked: []string{}, InProgress: []string{}}

	sync, err := s.Sync(ctx, date)
	res.Sync = sync
	if err != nil {
		return res, err
	}

	key := journal.KeyFor(date)
	w, err := s.journals.Load(ctx, key)
	if err != nil {
		return res, err
	}
	day := w.Day(date)

	var completed, blocked []journal.Entry
	for _, id := range dayRefs(day) {
		it, err := s.items.Get(ctx, id)
		if err != nil {
			if errors.Is(err, item.ErrNotFound) {
				continue
			}
			return res, err
		}

		switch it.Status {
		case item.StatusDone:
			completed = append(completed, journal.PlainRefEntry(it))
			res.Completed = append(res.Completed, id)
		case item.StatusBlocked:
			blocked = append(blocked, journal.PlainRefEntry(it))
			res.Blocked = append(res.Blocked, id)
		case item.StatusInProgress:
			res.InProgress = append(res.InProgress, id)
		}
	}

	day.Completed = journal.ReplaceRefs(day.Completed, completed)
	day.Blocked = journal.ReplaceRefs(day.Blocked, blocked)

	if err := s.journals.Save(ctx, w); err != nil {
		return res, err
	}

	s.log.Info().Ctx(ctx).Str("week", key.String()).
		Int("completed", len(res.Completed)).
		Int("blocked", len(res.Blocked)).
		Msg("day ended")
	return res, nil
}

// dayRefs lists the ids a day refers to: planned and in-progress lines
// first, then ids already recorded as completed or blocked.
func dayRefs(day *journal.DaySection) []string {
	ids := day.ActiveRefs()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, list := range [][]journal.Entry{day.Completed, day.Blocked} {
		for _, e := range list {
			if e.IsRef() && !seen[e.ID] {
				seen[e.ID] = true
				ids = append(ids, e.ID)
			}
		}
	}
	return ids
}

// ReflectStatus sets the current week's checkboxes for it to match its
// status: ticked when done, unticked otherwise. Only the week containing now
// is rewritten. Earlier weeks that still reference the item keep their boxes,
// so a later SyncWeek over such a week applies that week's boxes again.
func (s *JournalService) ReflectStatus(ctx context.Context, it item.Item) error {
	key := journal.KeyFor(s.now())
	if !s.journals.Exists(ctx, key) {
		return nil
	}

	w, err := s.journals.Load(ctx, key)
	if err != nil {
		return err
	}

	checked := it.Status == item.StatusDone
	changed := false
	for i := range w.Days {
		if w.Days[i].SetChecked(it.ID, checked) {
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := s.journals.Save(ctx, w); err != nil {
		return fmt.Errorf("reflect status of %s: %w", it.ID, err)
	}
	s.log.Debug().Ctx(logging.WithItemID(ctx, it.ID)).Bool("checked", checked).Msg("journal checkboxes updated")
	return nil
}
