// Package journal models the weekly journal document: seven day sections of
// checkbox lines that reference items, plus the weekly and quarterly rollups
// derived from them.
package journal

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/hay-kot/worklog/internal/core/item"
)

// EntryKind tags a journal line as a machine-addressable item reference or
// free text.
type EntryKind string

const (
	EntryText EntryKind = "text"
	EntryRef  EntryKind = "ref"
)

// Box is the checkbox state of a line.
type Box string

const (
	BoxNone    Box = ""
	BoxOpen    Box = "open"
	BoxChecked Box = "checked"
)

var (
	boxLine    = regexp.MustCompile(`^\s*[-*]\s+\[([ xX])\]\s?(.*)$`)
	bulletLine = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)
	refPrefix  = regexp.MustCompile(`^(` + item.IDPattern.String() + `):\s*(.*)$`)
	boxMarker  = regexp.MustCompile(`\[[ xX]\]`)
)

// Entry is one line of a day's list section. Line is kept verbatim so human
// formatting survives a parse/render cycle.
type Entry struct {
	Kind EntryKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
	Box  Box       `json:"box,omitempty"`
	Text string    `json:"text"`
	Line string    `json:"-"`
}

// ParseEntry classifies a raw line. Only lines whose content starts with a
// canonical item id followed by a colon become references.
func ParseEntry(line string) Entry {
	e := Entry{Kind: EntryText, Line: line}

	rest := strings.TrimSpace(line)
	if m := boxLine.FindStringSubmatch(line); m != nil {
		e.Box = BoxOpen
		if m[1] != " " {
			e.Box = BoxChecked
		}
		rest = m[2]
	} else if m := bulletLine.FindStringSubmatch(line); m != nil {
		rest = m[1]
	}

	if m := refPrefix.FindStringSubmatch(rest); m != nil {
		e.Kind = EntryRef
		e.ID = m[1]
		e.Text = strings.TrimSpace(m[2])
		return e
	}

	e.Text = strings.TrimSpace(rest)
	return e
}

// RefEntry builds the canonical checkbox line for an item.
func RefEntry(it item.Item, checked bool) Entry {
	box, mark := BoxOpen, " "
	if checked {
		box, mark = BoxChecked, "x"
	}
	text := fmt.Sprintf("%s (%s, %s)", it.Title, it.Kind, it.Priority)
	return Entry{
		Kind: EntryRef,
		ID:   it.ID,
		Box:  box,
		Text: text,
		Line: fmt.Sprintf("- [%s] %s: %s", mark, it.ID, text),
	}
}

// PlainRefEntry builds a reference line without a checkbox, used in the
// derived sections.
func PlainRefEntry(it item.Item) Entry {
	return Entry{
		Kind: EntryRef,
		ID:   it.ID,
		Text: it.Title,
		Line: fmt.Sprintf("- %s: %s", it.ID, it.Title),
	}
}

// IsRef reports whether the entry references an item.
func (e Entry) IsRef() bool { return e.Kind == EntryRef }

// HasBox reports whether the line carries a checkbox.
func (e Entry) HasBox() bool { return e.Box != BoxNone }

// Checked reports whether the checkbox is ticked.
func (e Entry) Checked() bool { return e.Box == BoxChecked }

// WithChecked returns the entry with its checkbox set. Entries without a
// checkbox are returned unchanged.
func (e Entry) WithChecked(checked bool) Entry {
	if !e.HasBox() || e.Checked() == checked {
		return e
	}
	mark, box := "[ ]", BoxOpen
	if checked {
		mark, box = "[x]", BoxChecked
	}

	replaced := false
	e.Line = boxMarker.ReplaceAllStringFunc(e.Line, func(s string) string {
		if replaced {
			return s
		}
		replaced = true
		return mark
	})
	e.Box = box
	return e
}

// DaySection is one day of the journal.
type DaySection struct {
	Date       time.Time `json:"date"`
	Planned    []Entry   `json:"planned"`
	InProgress []Entry   `json:"in_progress"`
	Blocked    []Entry   `json:"blocked"`
	Completed  []Entry   `json:"completed"`
	Notes      string    `json:"notes,omitempty"`
}

// Weekday returns the day's name.
func (d *DaySection) Weekday() string {
	return d.Date.Weekday().String()
}

// ActiveRefs returns the ids referenced in Planned and In Progress, in order
// of first appearance.
func (d *DaySection) ActiveRefs() []string {
	return refIDs(d.Planned, d.InProgress)
}

// CheckedState reports, for each id carrying a checkbox in Planned or In
// Progress, whether any of its lines is ticked.
func (d *DaySection) CheckedState() map[string]bool {
	state := make(map[string]bool)
	for _, list := range [][]Entry{d.Planned, d.InProgress} {
		for _, e := range list {
			if !e.IsRef() || !e.HasBox() {
				continue
			}
			state[e.ID] = state[e.ID] || e.Checked()
		}
	}
	return state
}

// SetChecked updates every checkbox line for id in Planned and In Progress.
// It reports whether anything changed.
func (d *DaySection) SetChecked(id string, checked bool) bool {
	changed := false
	for _, list := range [][]Entry{d.Planned, d.InProgress} {
		for i, e := range list {
			if e.ID != id || !e.HasBox() || e.Checked() == checked {
				continue
			}
			list[i] = e.WithChecked(checked)
			changed = true
		}
	}
	return changed
}

// Week is a parsed journal document.
type Week struct {
	Key      WeekKey       `json:"key"`
	Days     [7]DaySection `json:"days"`
	Preamble string        `json:"-"`
	Extra    string        `json:"-"`
}

// NewWeek returns an empty skeleton with all seven day sections.
func NewWeek(k WeekKey) *Week {
	w := &Week{Key: k}
	for i := range w.Days {
		w.Days[i].Date = k.Day(i)
	}
	return w
}

// Start returns the Monday of the week.
func (w *Week) Start() time.Time { return WeekStart(w.Key) }

// End returns the Sunday of the week.
func (w *Week) End() time.Time { return w.Start().AddDate(0, 0, 6) }

// Day returns the section for the date, or nil if the date is outside the week.
func (w *Week) Day(t time.Time) *DaySection {
	if KeyFor(t) != w.Key {
		return nil
	}
	return &w.Days[DayIndex(t)]
}

func refIDs(lists ...[]Entry) []string {
	var ids []string
	for _, list := range lists {
		for _, e := range list {
			if e.IsRef() && !slices.Contains(ids, e.ID) {
				ids = append(ids, e.ID)
			}
		}
	}
	return ids
}

func freeText(list []Entry) []Entry {
	var out []Entry
	for _, e := range list {
		if !e.IsRef() {
			out = append(out, e)
		}
	}
	return out
}

// ReplaceRefs keeps the free-text entries of list and appends refs after them.
func ReplaceRefs(list []Entry, refs []Entry) []Entry {
	return append(freeText(list), refs...)
}
