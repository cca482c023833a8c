package journal

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hay-kot/worklog/internal/core/item"
)

// Lookup resolves an item id to its current record.
type Lookup func(id string) (item.Item, bool)

// WeeklySummary is derived from a journal week and never edited by hand.
type WeeklySummary struct {
	Key        WeekKey   `json:"key"`
	WeekStart  time.Time `json:"week_start"`
	WeekEnd    time.Time `json:"week_end"`
	Completed  []string  `json:"completed"`
	InProgress []string  `json:"in_progress"`
	Blockers   []string  `json:"blockers"`
	Notes      string    `json:"notes,omitempty"`
}

// QuarterlySummary aggregates the weekly summaries of a quarter. It is
// recomputed on demand and never persisted.
type QuarterlySummary struct {
	Year            int       `json:"year"`
	Quarter         int       `json:"quarter"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Weeks           []WeekKey `json:"weeks"`
	WeeksTracked    int       `json:"weeks_tracked"`
	Completed       []string  `json:"completed"`
	InProgress      []string  `json:"in_progress"`
	Blockers        []string  `json:"blockers"`
	TotalCompleted  int       `json:"total_completed"`
	TotalInProgress int       `json:"total_in_progress"`
}

// Summarize derives the weekly summary from all seven day sections.
//
// Completed ids come from the Completed sections and from ticked reference
// lines. In-progress ids come from the In Progress sections, minus anything
// completed that week. Blockers are free-text lines from the Blocked sections
// plus the titles of blocked items.
func Summarize(w *Week, lookup Lookup) WeeklySummary {
	s := WeeklySummary{
		Key:        w.Key,
		WeekStart:  w.Start(),
		WeekEnd:    w.End(),
		Completed:  []string{},
		InProgress: []string{},
		Blockers:   []string{},
	}

	var notes []string
	for i := range w.Days {
		d := &w.Days[i]

		for _, id := range refIDs(d.Completed) {
			s.Completed = appendUnique(s.Completed, id)
		}
		for _, list := range [][]Entry{d.Planned, d.InProgress} {
			for _, e := range list {
				if e.IsRef() && e.Checked() {
					s.Completed = appendUnique(s.Completed, e.ID)
				}
			}
		}
		for _, id := range refIDs(d.InProgress) {
			s.InProgress = appendUnique(s.InProgress, id)
		}
		for _, e := range d.Blocked {
			s.Blockers = appendUnique(s.Blockers, blockerText(e, lookup))
		}

		if n := strings.TrimSpace(d.Notes); n != "" {
			notes = append(notes, fmt.Sprintf("%s: %s", d.Weekday(), n))
		}
	}

	s.InProgress = slices.DeleteFunc(s.InProgress, func(id string) bool {
		return slices.Contains(s.Completed, id)
	})
	s.Notes = strings.Join(notes, "\n\n")

	return s
}

func blockerText(e Entry, lookup Lookup) string {
	if e.IsRef() && lookup != nil {
		if it, ok := lookup(e.ID); ok {
			return it.Title
		}
	}
	if e.Text != "" {
		return e.Text
	}
	return e.ID
}

// Aggregate unions weekly summaries into a quarterly report. An id completed
// in any week is not reported as in progress.
func Aggregate(year, quarter int, start, end time.Time, weeks []WeeklySummary) QuarterlySummary {
	q := QuarterlySummary{
		Year:       year,
		Quarter:    quarter,
		Start:      start,
		End:        end,
		Weeks:      []WeekKey{},
		Completed:  []string{},
		InProgress: []string{},
		Blockers:   []string{},
	}

	for _, ws := range weeks {
		q.Weeks = append(q.Weeks, ws.Key)
		for _, id := range ws.Completed {
			q.Completed = appendUnique(q.Completed, id)
		}
		for _, id := range ws.InProgress {
			q.InProgress = appendUnique(q.InProgress, id)
		}
		q.Blockers = append(q.Blockers, ws.Blockers...)
	}

	q.InProgress = slices.DeleteFunc(q.InProgress, func(id string) bool {
		return slices.Contains(q.Completed, id)
	})
	q.WeeksTracked = len(q.Weeks)
	q.TotalCompleted = len(q.Completed)
	q.TotalInProgress = len(q.InProgress)

	return q
}

// SummaryTitle is the heading of the standalone summary document.
func SummaryTitle(k WeekKey) string {
	return fmt.Sprintf("# Week %d Summary - %d", k.Week, k.Year)
}

// RenderSummary writes the standalone weekly summary document.
func RenderSummary(s WeeklySummary, lookup Lookup) []byte {
	var buf bytes.Buffer

	buf.WriteString(SummaryTitle(s.Key))
	buf.WriteString("\n\n")
	fmt.Fprintf(&buf, "**Period:** %s - %s\n", s.WeekStart.Format("Jan 02"), s.WeekEnd.Format("Jan 02, 2006"))
	fmt.Fprintf(&buf, "**Completed:** %d\n", len(s.Completed))
	fmt.Fprintf(&buf, "**In Progress:** %d\n\n", len(s.InProgress))

	buf.WriteString("## Accomplished This Week\n\n")
	if len(s.Completed) == 0 {
		buf.WriteString("No items completed this week.\n")
	}
	for _, id := range s.Completed {
		buf.WriteString(summaryLine(id, lookup, false))
	}
	buf.WriteString("\n")

	buf.WriteString("## Still In Progress\n\n")
	if len(s.InProgress) == 0 {
		buf.WriteString("No items in progress.\n")
	}
	for _, id := range s.InProgress {
		buf.WriteString(summaryLine(id, lookup, true))
	}
	buf.WriteString("\n")

	if len(s.Blockers) > 0 {
		buf.WriteString("## Blockers\n\n")
		for _, b := range s.Blockers {
			fmt.Fprintf(&buf, "- %s\n", b)
		}
		buf.WriteString("\n")
	}

	if s.Notes != "" {
		buf.WriteString("## Notes\n\n")
		buf.WriteString(s.Notes)
		buf.WriteString("\n")
	}

	return append(bytes.TrimRight(buf.Bytes(), "\n"), '\n')
}

func summaryLine(id string, lookup Lookup, withETA bool) string {
	if lookup == nil {
		return fmt.Sprintf("- %s\n", id)
	}
	it, ok := lookup(id)
	if !ok {
		return fmt.Sprintf("- %s\n", id)
	}

	line := fmt.Sprintf("- **%s** (%s) %s\n", it.Title, it.Kind, it.ID)
	if withETA && it.ETA != nil {
		line += fmt.Sprintf("  - ETA: %s\n", it.ETA.Format("Jan 02, 2006"))
	}
	return line
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
