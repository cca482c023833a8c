package journal

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	sectionPlanned    = "Planned"
	sectionInProgress = "In Progress"
	sectionBlocked    = "Blocked"
	sectionCompleted  = "Completed"
	sectionNotes      = "Notes"
)

var sectionOrder = []string{sectionPlanned, sectionInProgress, sectionBlocked, sectionCompleted, sectionNotes}

// Title returns the document heading for the week.
func Title(w *Week) string {
	return fmt.Sprintf("# Week %d - %d (%s - %s)",
		w.Key.Week, w.Key.Year, w.Start().Format("Jan 02"), w.End().Format("Jan 02, 2006"))
}

// Render writes the journal document. Every day carries all five subsection
// headings so the document stays editable by hand.
func Render(w *Week) []byte {
	var buf bytes.Buffer

	buf.WriteString(Title(w))
	buf.WriteString("\n\n")

	if p := strings.TrimSpace(w.Preamble); p != "" {
		buf.WriteString(p)
		buf.WriteString("\n\n")
	}

	for i := range w.Days {
		d := &w.Days[i]
		fmt.Fprintf(&buf, "## %s, %s\n\n", d.Date.Weekday(), d.Date.Format("Jan 02"))

		for _, name := range sectionOrder {
			fmt.Fprintf(&buf, "### %s\n", name)
			if name == sectionNotes {
				if n := strings.TrimSpace(d.Notes); n != "" {
					buf.WriteString(n)
					buf.WriteString("\n")
				}
			} else {
				for _, e := range *d.list(name) {
					buf.WriteString(e.Line)
					buf.WriteString("\n")
				}
			}
			buf.WriteString("\n")
		}
	}

	if extra := strings.TrimSpace(w.Extra); extra != "" {
		buf.WriteString(extra)
		buf.WriteString("\n")
	}

	return append(bytes.TrimRight(buf.Bytes(), "\n"), '\n')
}

func (d *DaySection) list(name string) *[]Entry {
	switch name {
	case sectionPlanned:
		return &d.Planned
	case sectionInProgress:
		return &d.InProgress
	case sectionBlocked:
		return &d.Blocked
	case sectionCompleted:
		return &d.Completed
	}
	return nil
}

// Parse reads a journal document for the given week. The first "#" heading is
// the generated title; later ones before the first day stay in Preamble.
// Unknown "##" sections are kept in Extra. Unknown "###" subsections and text
// above a day's first subsection are folded into that day's notes, so nothing
// a human wrote is dropped.
func Parse(k WeekKey, content []byte) *Week {
	w := NewWeek(k)

	var (
		day      *DaySection
		section  string
		notes    = make(map[int][]string)
		dayIdx   = -1
		preamble []string
		extra    []string
		inExtra  bool
		titled   bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "# ") && day == nil && !inExtra && !titled:
			titled = true
			continue

		case strings.HasPrefix(trimmed, "## "):
			if idx, ok := weekdayIndex(strings.TrimPrefix(trimmed, "## ")); ok {
				dayIdx, day, section, inExtra = idx, &w.Days[idx], "", false
				continue
			}
			day, section, inExtra = nil, "", true
			extra = append(extra, line)
			continue

		case inExtra:
			extra = append(extra, line)
			continue

		case day == nil:
			preamble = append(preamble, line)
			continue

		case strings.HasPrefix(trimmed, "### "):
			if name, ok := sectionName(strings.TrimPrefix(trimmed, "### ")); ok {
				section = name
				continue
			}
			section = sectionNotes
			notes[dayIdx] = append(notes[dayIdx], line)
			continue
		}

		if section == sectionNotes || section == "" {
			if !isPlaceholder(trimmed) && trimmed != "---" {
				notes[dayIdx] = append(notes[dayIdx], line)
			}
			continue
		}

		if trimmed == "" || trimmed == "---" || isPlaceholder(trimmed) {
			continue
		}

		list := day.list(section)
		*list = append(*list, ParseEntry(line))
	}

	for idx, lines := range notes {
		w.Days[idx].Notes = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	w.Preamble = strings.TrimSpace(strings.Join(preamble, "\n"))
	w.Extra = strings.TrimSpace(strings.Join(extra, "\n"))

	return w
}

func isPlaceholder(s string) bool {
	return strings.HasPrefix(s, "<!--") && strings.HasSuffix(s, "-->")
}

// weekdayIndex matches "Monday, Oct 12" style headings.
func weekdayIndex(heading string) (int, bool) {
	name, _, _ := strings.Cut(heading, ",")
	name = strings.TrimSpace(name)
	for i := range 7 {
		wd := time.Weekday((i + 1) % 7)
		if strings.EqualFold(name, wd.String()) {
			return i, true
		}
	}
	return 0, false
}

// sectionName strips decorations such as emoji before matching a subsection.
func sectionName(heading string) (string, bool) {
	cleaned := strings.TrimLeftFunc(heading, func(r rune) bool { return !unicode.IsLetter(r) })
	cleaned = strings.TrimSpace(cleaned)
	for _, name := range sectionOrder {
		if strings.EqualFold(cleaned, name) {
			return name, true
		}
	}
	return "", false
}
