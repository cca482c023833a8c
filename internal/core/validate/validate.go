// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/worklog/internal/core/item"
)

// NonBlank validates a string is non-empty after trimming whitespace.
func NonBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

// ItemID validates the canonical item id form.
func ItemID(id string) error {
	if !item.IsValidID(id) {
		return fmt.Errorf("%q is not an item id (want %s<hex>)", id, item.IDPrefix)
	}
	return nil
}

// Quarter validates a calendar quarter number.
func Quarter(q int) error {
	if q < 1 || q > 4 {
		return fmt.Errorf("must be between 1 and 4, got %d", q)
	}
	return nil
}

// Year validates a positive calendar year.
func Year(y int) error {
	if y < 1 {
		return fmt.Errorf("must be positive, got %d", y)
	}
	return nil
}

// ItemIDField returns a criterio validator for item ids.
func ItemIDField(field, id string) error {
	return criterio.Run(field, id, ItemID)
}

// NonBlankField returns a criterio validator for required text.
func NonBlankField(field, s string) error {
	return criterio.Run(field, s, NonBlank)
}
