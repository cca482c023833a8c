package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/hay-kot/worklog/internal/core/journal"
)

// JournalCheck inspects one week's journal for references to unknown items.
type JournalCheck struct {
	journals journal.Store
	items    ItemLoader
	key      journal.WeekKey
}

// NewJournalCheck creates a check for the journal of the given week.
func NewJournalCheck(journals journal.Store, items ItemLoader, key journal.WeekKey) *JournalCheck {
	return &JournalCheck{journals: journals, items: items, key: key}
}

func (c *JournalCheck) Name() string {
	return "Journal"
}

func (c *JournalCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	label := c.key.String()

	if !c.journals.Exists(ctx, c.key) {
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: "no journal yet; run 'worklog journal start-day'",
		})
		return result
	}

	w, err := c.journals.Load(ctx, c.key)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: label, Status: StatusFail, Detail: err.Error()})
		return result
	}

	res, err := c.items.Load(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: label, Status: StatusFail, Detail: err.Error()})
		return result
	}

	known := make(map[string]bool, len(res.Items))
	for _, it := range res.Items {
		known[it.ID] = true
	}

	var (
		unknown []string
		seen    = make(map[string]bool)
	)
	for i := range w.Days {
		d := &w.Days[i]
		for _, list := range [][]journal.Entry{d.Planned, d.InProgress, d.Blocked, d.Completed} {
			for _, e := range list {
				if !e.IsRef() || known[e.ID] || seen[e.ID] {
					continue
				}
				seen[e.ID] = true
				unknown = append(unknown, e.ID)
			}
		}
	}

	if len(unknown) > 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: fmt.Sprintf("references unknown items: %s", strings.Join(unknown, ", ")),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{Label: label, Status: StatusPass})
	return result
}
