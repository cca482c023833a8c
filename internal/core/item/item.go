// Package item defines the tracked work item domain model and its on-disk
// document format.
package item

import (
	"slices"
	"strings"
	"time"
)

// Kind classifies the type of work an item represents.
type Kind string

const (
	KindTicket      Kind = "ticket"
	KindCrossTeam   Kind = "cross-team"
	KindProject     Kind = "project"
	KindTrainingRun Kind = "training-run"
	KindGeneral     Kind = "general"
)

// Kinds lists every valid Kind in display order.
var Kinds = []Kind{KindTicket, KindCrossTeam, KindProject, KindTrainingRun, KindGeneral}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool { return slices.Contains(Kinds, k) }

// Status represents the lifecycle state of an item.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusWaiting    Status = "waiting"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusWaiting, StatusBlocked, StatusDone}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool { return slices.Contains(Statuses, s) }

// Priority is the relative urgency of an item.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every valid Priority in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool { return slices.Contains(Priorities, p) }

// CheckInterval is the cadence at which an item must be reviewed.
type CheckInterval string

const (
	CheckDaily    CheckInterval = "daily"
	CheckWeekly   CheckInterval = "weekly"
	CheckBiweekly CheckInterval = "biweekly"
	CheckMonthly  CheckInterval = "monthly"
)

// CheckIntervals lists every valid CheckInterval.
var CheckIntervals = []CheckInterval{CheckDaily, CheckWeekly, CheckBiweekly, CheckMonthly}

// IsValid reports whether c is a known interval.
func (c CheckInterval) IsValid() bool { return slices.Contains(CheckIntervals, c) }

// Duration returns the review period for the interval.
func (c CheckInterval) Duration() time.Duration {
	day := 24 * time.Hour
	switch c {
	case CheckDaily:
		return day
	case CheckBiweekly:
		return 14 * day
	case CheckMonthly:
		return 30 * day
	default:
		return 7 * day
	}
}

// Note is a timestamped, append-only remark on an item.
type Note struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// Item is a single tracked unit of work.
type Item struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Kind          Kind          `json:"kind"`
	Status        Status        `json:"status"`
	Priority      Priority      `json:"priority"`
	CheckInterval CheckInterval `json:"check_interval"`
	ETA           *time.Time    `json:"eta,omitempty"`
	NotifyAt      *time.Time    `json:"notify_at,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	Dependencies  []string      `json:"dependencies,omitempty"`
	Notes         []Note        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LastChecked   *time.Time    `json:"last_checked,omitempty"`
}

// IsOverdue reports whether the item's ETA has passed and it is not done.
func (it Item) IsOverdue(now time.Time) bool {
	if it.ETA == nil || it.Status == StatusDone {
		return false
	}
	return it.ETA.Before(now)
}

// NeedsCheck reports whether the item is due for a periodic review. Items
// that were never checked are always due.
func (it Item) NeedsCheck(now time.Time) bool {
	if it.Status == StatusDone {
		return false
	}
	if it.LastChecked == nil {
		return true
	}
	return now.Sub(*it.LastChecked) >= it.CheckInterval.Duration()
}

// NeedsNotification reports whether the notify_at time has been reached.
func (it Item) NeedsNotification(now time.Time) bool {
	if it.NotifyAt == nil || it.Status == StatusDone {
		return false
	}
	return !now.Before(*it.NotifyAt)
}

// DueBy reports whether the item has an ETA on or before the end of the given day
// and is not done.
func (it Item) DueBy(day time.Time) bool {
	if it.ETA == nil || it.Status == StatusDone {
		return false
	}
	y, m, d := day.Date()
	endOfDay := time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
	return it.ETA.Before(endOfDay)
}

// HasAnyTag reports whether the item carries at least one of the tags.
func (it Item) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if slices.Contains(it.Tags, t) {
			return true
		}
	}
	return false
}

// Matches reports whether query is a case-insensitive substring of the
// item's title or description.
func (it Item) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(it.Title), q) ||
		strings.Contains(strings.ToLower(it.Description), q)
}

// Fields are the caller-provided values for a new item. Zero values are
// replaced by configured defaults.
type Fields struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Kind          Kind          `json:"kind"`
	Status        Status        `json:"status"`
	Priority      Priority      `json:"priority"`
	CheckInterval CheckInterval `json:"check_interval"`
	ETA           *time.Time    `json:"eta"`
	NotifyAt      *time.Time    `json:"notify_at"`
	Tags          []string      `json:"tags"`
	Dependencies  []string      `json:"dependencies"`
}

// Patch is a partial update. Only non-nil fields are applied.
type Patch struct {
	Title         *string
	Description   *string
	Kind          *Kind
	Status        *Status
	Priority      *Priority
	CheckInterval *CheckInterval
	ETA           *time.Time
	NotifyAt      *time.Time
	Tags          []string
	Dependencies  []string
}

// IsEmpty reports whether the patch carries no changes.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Kind == nil && p.Status == nil &&
		p.Priority == nil && p.CheckInterval == nil && p.ETA == nil && p.NotifyAt == nil &&
		p.Tags == nil && p.Dependencies == nil
}

// Apply merges the patch into it. It does not touch timestamps.
func (p Patch) Apply(it *Item) {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = strings.TrimSpace(*p.Description)
	}
	if p.Kind != nil {
		it.Kind = *p.Kind
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	if p.CheckInterval != nil {
		it.CheckInterval = *p.CheckInterval
	}
	if p.ETA != nil {
		eta := *p.ETA
		it.ETA = &eta
	}
	if p.NotifyAt != nil {
		at := *p.NotifyAt
		it.NotifyAt = &at
	}
	if p.Tags != nil {
		it.Tags = nonEmpty(p.Tags)
	}
	if p.Dependencies != nil {
		it.Dependencies = nonEmpty(p.Dependencies)
	}
}

// Filter selects items in List. Non-zero fields are combined with AND;
// Tags matches if any tag is present.
type Filter struct {
	Status   Status
	Kind     Kind
	Priority Priority
	Tags     []string
	Search   string
}

// Match reports whether it satisfies every set criterion.
func (f Filter) Match(it Item) bool {
	if f.Status != "" && it.Status != f.Status {
		return false
	}
	if f.Kind != "" && it.Kind != f.Kind {
		return false
	}
	if f.Priority != "" && it.Priority != f.Priority {
		return false
	}
	if len(f.Tags) > 0 && !it.HasAnyTag(f.Tags) {
		return false
	}
	if f.Search != "" && !it.Matches(f.Search) {
		return false
	}
	return true
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}
