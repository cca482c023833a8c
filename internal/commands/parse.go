package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/core/validate"
)

// timeLayouts are tried in order when parsing --eta, --notify-at, and --date.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseWhen parses a user supplied time in the local zone. Besides the
// layouts above it accepts today, tomorrow, and yesterday, which resolve to
// midnight of that day.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)

	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch strings.ToLower(s) {
	case "today":
		return midnight, nil
	case "tomorrow":
		return midnight.AddDate(0, 0, 1), nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want YYYY-MM-DD, YYYY-MM-DD HH:MM, or RFC3339)", s)
}

// optionalTime parses s when non-empty.
func optionalTime(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseWhen(s, now)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dateOrToday parses --date, defaulting to now.
func dateOrToday(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	return parseWhen(s, now)
}

// itemIDArg returns the first positional argument as a validated item id.
func itemIDArg(args []string, usage string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	id := strings.TrimSpace(args[0])
	if err := validate.ItemID(id); err != nil {
		return "", &item.ValidationError{Field: "id", Value: id, Msg: err.Error()}
	}
	return id, nil
}
