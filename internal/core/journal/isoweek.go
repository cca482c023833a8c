package journal

import (
	"fmt"
	"time"
)

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// String renders the key as "2026-W07".
func (k WeekKey) String() string {
	return fmt.Sprintf("%d-W%02d", k.Year, k.Week)
}

// ParseWeekKey parses the "2026-W07" form produced by String.
func ParseWeekKey(s string) (WeekKey, error) {
	var k WeekKey
	if _, err := fmt.Sscanf(s, "%d-W%d", &k.Year, &k.Week); err != nil {
		return WeekKey{}, fmt.Errorf("parse week key %q: %w", s, err)
	}
	if k.Week < 1 || k.Week > 53 {
		return WeekKey{}, fmt.Errorf("parse week key %q: week out of range", s)
	}
	return k, nil
}

// KeyFor returns the ISO week containing t. Weeks start on Monday and belong
// to the year containing their Thursday.
func KeyFor(t time.Time) WeekKey {
	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// WeekStart returns midnight of the Monday that begins the week, in the local
// time zone.
func WeekStart(k WeekKey) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(k.Year, time.January, 4, 0, 0, 0, 0, time.Local)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(k.Week-1)*7)
}

// Day returns the date of the i-th day of the week (0 = Monday).
func (k WeekKey) Day(i int) time.Time {
	return WeekStart(k).AddDate(0, 0, i)
}

// DayIndex returns the position of t within its ISO week (0 = Monday).
func DayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// QuarterRange returns the first and last calendar day of a quarter.
func QuarterRange(year, quarter int) (start, end time.Time, err error) {
	if quarter < 1 || quarter > 4 {
		return time.Time{}, time.Time{}, fmt.Errorf("quarter must be between 1 and 4, got %d", quarter)
	}
	if year < 1 {
		return time.Time{}, time.Time{}, fmt.Errorf("year must be positive, got %d", year)
	}

	firstMonth := time.Month((quarter-1)*3 + 1)
	start = time.Date(year, firstMonth, 1, 0, 0, 0, 0, time.Local)
	end = start.AddDate(0, 3, -1)
	return start, end, nil
}

// QuarterOf returns the quarter (1-4) containing t.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// QuarterWeeks lists the ISO weeks whose Thursday falls inside the quarter.
func QuarterWeeks(year, quarter int) ([]WeekKey, error) {
	start, end, err := QuarterRange(year, quarter)
	if err != nil {
		return nil, err
	}

	var keys []WeekKey
	monday := WeekStart(KeyFor(start))
	for {
		thursday := monday.AddDate(0, 0, 3)
		if thursday.After(end) {
			break
		}
		if !thursday.Before(start) {
			keys = append(keys, KeyFor(thursday))
		}
		monday = monday.AddDate(0, 0, 7)
	}
	return keys, nil
}
