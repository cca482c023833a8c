package item

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// NoteTimeLayout is the timestamp layout of note lines in the body.
const NoteTimeLayout = "2006-01-02 15:04"

const (
	descriptionHeading = "## Description"
	notesHeading       = "## Notes"

	// noteIndent prefixes the continuation lines of a multi-line note.
	noteIndent = "  "
)

var (
	noteLine = regexp.MustCompile(`^[-*]\s+(\d{4}-\d{2}-\d{2} \d{2}:\d{2}):\s?(.*)$`)

	// bodyHeading matches a line that reads as one of the body headings,
	// optionally escaped with leading backslashes.
	bodyHeading = regexp.MustCompile(`(?i)^(\s*)(\\*)(## (?:notes|description))(\s*)$`)
)

// header is the YAML front matter of an item document.
type header struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Kind          Kind          `yaml:"kind"`
	Status        Status        `yaml:"status"`
	Priority      Priority      `yaml:"priority"`
	CheckInterval CheckInterval `yaml:"check_interval"`
	CreatedAt     time.Time     `yaml:"created_at"`
	UpdatedAt     time.Time     `yaml:"updated_at"`
	ETA           *time.Time    `yaml:"eta,omitempty"`
	NotifyAt      *time.Time    `yaml:"notify_at,omitempty"`
	LastChecked   *time.Time    `yaml:"last_checked,omitempty"`
	Dependencies  []string      `yaml:"dependencies"`
	Tags          []string      `yaml:"tags"`
}

// SplitFrontmatter separates a document into its front matter and body.
// Front matter must be delimited by "---" on its own line at the start of the
// file. ok is false when no front matter is present.
func SplitFrontmatter(content string) (front string, body string, ok bool) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// First line must be "---"
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return "", content, false
	}

	var (
		lines  []string
		rest   []string
		closed bool
	)
	for scanner.Scan() {
		line := scanner.Text()
		if !closed {
			if strings.TrimSpace(line) == "---" {
				closed = true
				continue
			}
			lines = append(lines, line)
			continue
		}
		rest = append(rest, line)
	}

	if !closed {
		return "", content, false
	}

	return strings.Join(lines, "\n"), strings.Join(rest, "\n"), true
}

// Decode parses an item document. Missing enum fields fall back to the
// package defaults; unknown values produce a *ValidationError.
func Decode(content []byte) (Item, error) {
	front, body, ok := SplitFrontmatter(string(content))
	if !ok {
		return Item{}, &ValidationError{Field: "header", Msg: "missing front matter"}
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(front), &raw); err != nil {
		return Item{}, &ValidationError{Field: "header", Msg: err.Error()}
	}
	if raw == nil {
		return Item{}, &ValidationError{Field: "header", Msg: "empty front matter"}
	}
	if err := validateHeader(raw); err != nil {
		return Item{}, err
	}

	var h header
	if err := yaml.Unmarshal([]byte(front), &h); err != nil {
		return Item{}, &ValidationError{Field: "header", Msg: err.Error()}
	}

	it := Item{
		ID:            h.ID,
		Title:         h.Title,
		Kind:          orDefault(h.Kind, KindGeneral),
		Status:        orDefault(h.Status, StatusTodo),
		Priority:      orDefault(h.Priority, PriorityMedium),
		CheckInterval: orDefault(h.CheckInterval, CheckWeekly),
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
		ETA:           h.ETA,
		NotifyAt:      h.NotifyAt,
		LastChecked:   h.LastChecked,
		Dependencies:  nonEmpty(h.Dependencies),
		Tags:          nonEmpty(h.Tags),
	}
	it.Description, it.Notes = parseBody(body)

	if err := Validate(it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// Encode renders an item as a front-matter document.
func Encode(it Item) ([]byte, error) {
	h := header{
		ID:            it.ID,
		Title:         it.Title,
		Kind:          it.Kind,
		Status:        it.Status,
		Priority:      it.Priority,
		CheckInterval: it.CheckInterval,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
		ETA:           it.ETA,
		NotifyAt:      it.NotifyAt,
		LastChecked:   it.LastChecked,
		Dependencies:  orEmpty(it.Dependencies),
		Tags:          orEmpty(it.Tags),
	}

	front, err := yaml.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(front)
	buf.WriteString("---\n")

	if it.Description != "" {
		buf.WriteString("\n" + descriptionHeading + "\n\n")
		for _, line := range strings.Split(strings.TrimSpace(it.Description), "\n") {
			buf.WriteString(escapeHeading(line))
			buf.WriteString("\n")
		}
	}

	if len(it.Notes) > 0 {
		buf.WriteString("\n" + notesHeading + "\n\n")
		for _, n := range it.Notes {
			buf.WriteString(FormatNote(n))
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// FormatNote renders a note as a markdown list item. Lines after the first
// are indented so they parse back as part of the same note.
func FormatNote(n Note) string {
	lines := strings.Split(n.Text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = noteIndent + escapeHeading(lines[i])
	}
	text := strings.Join(lines, "\n")

	if n.Timestamp.IsZero() {
		return "- " + text
	}
	return fmt.Sprintf("- %s: %s", n.Timestamp.Format(NoteTimeLayout), text)
}

// escapeHeading prefixes a backslash to body text that would otherwise be
// read as a Description or Notes heading.
func escapeHeading(line string) string {
	m := bodyHeading.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	return m[1] + `\` + m[2] + m[3] + m[4]
}

// unescapeHeading reverses escapeHeading.
func unescapeHeading(line string) string {
	m := bodyHeading.FindStringSubmatch(line)
	if m == nil || m[2] == "" {
		return line
	}
	return m[1] + m[2][1:] + m[3] + m[4]
}

// parseBody extracts the description and notes. Text before any heading is
// treated as description, and multiple Notes sections are merged.
func parseBody(body string) (string, []Note) {
	var (
		desc     []string
		notes    []Note
		section  = "description"
		lastNote bool
	)

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.EqualFold(trimmed, descriptionHeading):
			section, lastNote = "description", false
			continue
		case strings.EqualFold(trimmed, notesHeading):
			section, lastNote = "notes", false
			continue
		}

		switch section {
		case "description":
			desc = append(desc, unescapeHeading(line))
		case "notes":
			if rest, ok := strings.CutPrefix(line, noteIndent); ok && lastNote {
				n := &notes[len(notes)-1]
				n.Text += "\n" + unescapeHeading(rest)
				continue
			}
			n, ok := parseNote(trimmed)
			if ok {
				notes = append(notes, n)
			}
			lastNote = ok
		}
	}

	for i := range notes {
		notes[i].Text = strings.TrimRight(notes[i].Text, " \n")
	}

	return strings.TrimSpace(strings.Join(desc, "\n")), notes
}

func parseNote(line string) (Note, bool) {
	if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
		return Note{}, false
	}

	if m := noteLine.FindStringSubmatch(line); m != nil {
		ts, err := time.ParseInLocation(NoteTimeLayout, m[1], time.Local)
		if err == nil {
			return Note{Timestamp: ts, Text: strings.TrimSpace(m[2])}, true
		}
	}

	text := strings.TrimSpace(strings.TrimLeft(line, "-* "))
	if text == "" {
		return Note{}, false
	}
	return Note{Text: text}, true
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
