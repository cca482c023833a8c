package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/hay-kot/worklog/internal/core/item"
)

// ItemLoader loads every stored item along with the files it had to skip.
type ItemLoader interface {
	Load(ctx context.Context) (item.LoadResult, error)
}

// ItemsCheck reports unreadable item files and dependencies on items that
// no longer exist.
type ItemsCheck struct {
	items ItemLoader
}

// NewItemsCheck creates a new items check.
func NewItemsCheck(items ItemLoader) *ItemsCheck {
	return &ItemsCheck{items: items}
}

func (c *ItemsCheck) Name() string {
	return "Items"
}

func (c *ItemsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	res, err := c.items.Load(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "item files",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "item files",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d readable", len(res.Items)),
	})

	for _, rec := range res.Skipped {
		result.Items = append(result.Items, CheckItem{
			Label:  rec.Path,
			Status: StatusFail,
			Detail: rec.Err.Error(),
		})
	}

	known := make(map[string]bool, len(res.Items))
	for _, it := range res.Items {
		known[it.ID] = true
	}

	for _, it := range res.Items {
		var missing []string
		for _, dep := range it.Dependencies {
			if !known[dep] {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			result.Items = append(result.Items, CheckItem{
				Label:  it.ID,
				Status: StatusWarn,
				Detail: "depends on missing " + strings.Join(missing, ", "),
			})
		}
	}

	return result
}
