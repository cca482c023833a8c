package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/worklog/internal/core/item"
)

func lookupOf(items ...item.Item) Lookup {
	byID := make(map[string]item.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return func(id string) (item.Item, bool) {
		it, ok := byID[id]
		return it, ok
	}
}

func summaryWeek() *Week {
	w := NewWeek(WeekKey{2026, 7})

	w.Days[0].Planned = []Entry{
		ParseEntry("- [x] task-aaaa0001: shipped monday"),
		ParseEntry("- [ ] task-aaaa0002: still going"),
	}
	w.Days[0].InProgress = []Entry{ParseEntry("- task-aaaa0002: still going")}
	w.Days[0].Notes = "kickoff"

	w.Days[1].InProgress = []Entry{
		ParseEntry("- task-aaaa0003: finished tuesday"),
		ParseEntry("- task-aaaa0002: still going"),
	}
	w.Days[1].Completed = []Entry{ParseEntry("- task-aaaa0003: finished tuesday")}
	w.Days[1].Blocked = []Entry{
		ParseEntry("- waiting on vendor"),
		ParseEntry("- task-aaaa0004: stuck"),
	}

	w.Days[2].Blocked = []Entry{ParseEntry("- waiting on vendor")}
	w.Days[4].Notes = "demo went well"
	return w
}

func TestSummarize(t *testing.T) {
	lookup := lookupOf(item.Item{ID: "task-aaaa0004", Title: "Stuck on access"})
	s := Summarize(summaryWeek(), lookup)

	assert.Equal(t, WeekKey{2026, 7}, s.Key)
	assert.Equal(t, time.Monday, s.WeekStart.Weekday())
	assert.Equal(t, time.Sunday, s.WeekEnd.Weekday())
	assert.Equal(t, []string{"task-aaaa0001", "task-aaaa0003"}, s.Completed)
	assert.Equal(t, []string{"task-aaaa0002"}, s.InProgress)
	assert.Equal(t, []string{"waiting on vendor", "Stuck on access"}, s.Blockers)
	assert.Equal(t, "Monday: kickoff\n\nFriday: demo went well", s.Notes)
}

func TestSummarize_EmptyWeek(t *testing.T) {
	s := Summarize(NewWeek(WeekKey{2026, 7}), nil)

	assert.Empty(t, s.Completed)
	assert.NotNil(t, s.Completed)
	assert.Empty(t, s.InProgress)
	assert.Empty(t, s.Blockers)
	assert.Empty(t, s.Notes)
}

func TestSummarize_UnknownBlockedRefFallsBack(t *testing.T) {
	w := NewWeek(WeekKey{2026, 7})
	w.Days[0].Blocked = []Entry{ParseEntry("- task-aaaa0009: gone now")}

	s := Summarize(w, lookupOf())
	assert.Equal(t, []string{"gone now"}, s.Blockers)
}

func TestAggregate(t *testing.T) {
	weeks := []WeeklySummary{
		{Key: WeekKey{2026, 1}, Completed: []string{"a"}, InProgress: []string{"b", "c"}, Blockers: []string{"x"}},
		{Key: WeekKey{2026, 2}, Completed: []string{"b", "a"}, InProgress: []string{"c", "d"}, Blockers: []string{"x", "y"}},
	}

	start, end, err := QuarterRange(2026, 1)
	require.NoError(t, err)

	q := Aggregate(2026, 1, start, end, weeks)
	assert.Equal(t, []WeekKey{{2026, 1}, {2026, 2}}, q.Weeks)
	assert.Equal(t, 2, q.WeeksTracked)
	assert.Equal(t, []string{"a", "b"}, q.Completed)
	assert.Equal(t, []string{"c", "d"}, q.InProgress)
	assert.Equal(t, []string{"x", "x", "y"}, q.Blockers)
	assert.Equal(t, 2, q.TotalCompleted)
	assert.Equal(t, 2, q.TotalInProgress)
}

func TestAggregate_NoWeeks(t *testing.T) {
	start, end, err := QuarterRange(2026, 2)
	require.NoError(t, err)

	q := Aggregate(2026, 2, start, end, nil)
	assert.Equal(t, 0, q.WeeksTracked)
	assert.Empty(t, q.Completed)
	assert.NotNil(t, q.Weeks)
}

func TestRenderSummary(t *testing.T) {
	eta := time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)
	lookup := lookupOf(
		item.Item{ID: "task-aaaa0001", Title: "Shipped", Kind: item.KindTicket},
		item.Item{ID: "task-aaaa0002", Title: "Going", Kind: item.KindProject, ETA: &eta},
	)

	s := WeeklySummary{
		Key:        WeekKey{2026, 7},
		WeekStart:  WeekStart(WeekKey{2026, 7}),
		WeekEnd:    WeekStart(WeekKey{2026, 7}).AddDate(0, 0, 6),
		Completed:  []string{"task-aaaa0001", "task-aaaa0099"},
		InProgress: []string{"task-aaaa0002"},
		Blockers:   []string{"waiting on vendor"},
		Notes:      "Monday: kickoff",
	}

	out := string(RenderSummary(s, lookup))

	assert.True(t, strings.HasPrefix(out, "# Week 7 Summary - 2026\n\n"))
	assert.Contains(t, out, "**Period:** Feb 09 - Feb 15, 2026\n")
	assert.Contains(t, out, "**Completed:** 2\n")
	assert.Contains(t, out, "- **Shipped** (ticket) task-aaaa0001\n")
	assert.Contains(t, out, "- task-aaaa0099\n")
	assert.Contains(t, out, "- **Going** (project) task-aaaa0002\n  - ETA: Feb 20, 2026\n")
	assert.Contains(t, out, "## Blockers\n\n- waiting on vendor\n")
	assert.True(t, strings.HasSuffix(out, "## Notes\n\nMonday: kickoff\n"))
}

func TestRenderSummary_Empty(t *testing.T) {
	s := WeeklySummary{Key: WeekKey{2026, 7}, WeekStart: WeekStart(WeekKey{2026, 7}), WeekEnd: WeekStart(WeekKey{2026, 7}).AddDate(0, 0, 6)}
	out := string(RenderSummary(s, nil))

	assert.Contains(t, out, "No items completed this week.")
	assert.Contains(t, out, "No items in progress.")
	assert.NotContains(t, out, "## Blockers")
	assert.NotContains(t, out, "## Notes")
}
