package item

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when an item does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrCollision is returned when no unique id could be allocated.
	ErrCollision = errors.New("item id collision")
)

// IDPrefix is the fixed prefix of every item id.
const IDPrefix = "task-"

// IDPattern matches a canonical item id anywhere in a line.
var IDPattern = regexp.MustCompile(`task-[0-9a-f]{4,32}`)

var idExact = regexp.MustCompile(`^` + IDPattern.String() + `$`)

// NewID returns a fresh short item id. Uniqueness against the store is the
// caller's responsibility.
func NewID() string {
	u := uuid.New()
	return fmt.Sprintf("%s%x", IDPrefix, u[:4])
}

// IsValidID reports whether id has the canonical form.
func IsValidID(id string) bool {
	return idExact.MatchString(id)
}

// ValidationError reports a malformed field, either in a stored document or in
// caller input.
type ValidationError struct {
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Msg)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// CorruptRecord describes a file skipped during a batch load.
type CorruptRecord struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (c CorruptRecord) Error() string {
	return fmt.Sprintf("corrupt record %s: %v", c.Path, c.Err)
}

func (c CorruptRecord) Unwrap() error { return c.Err }

// LoadResult is the outcome of loading every stored item.
type LoadResult struct {
	Items   []Item
	Skipped []CorruptRecord
}

// Store defines item persistence.
type Store interface {
	// Get returns a single item by id.
	// Returns ErrNotFound if the item does not exist and *ValidationError if
	// the stored document is malformed.
	Get(ctx context.Context, id string) (Item, error)

	// LoadAll returns every readable item. Unreadable documents are reported
	// in LoadResult.Skipped rather than failing the call.
	LoadAll(ctx context.Context) (LoadResult, error)

	// Save writes the item, replacing any previous version atomically.
	Save(ctx context.Context, it Item) error

	// Delete removes the item's document. Returns false if it did not exist.
	Delete(ctx context.Context, id string) (bool, error)

	// Exists reports whether a document for id is present.
	Exists(ctx context.Context, id string) bool
}

// Validate checks the enum and required fields of an item.
func Validate(it Item) error {
	if !IsValidID(it.ID) {
		return &ValidationError{Field: "id", Value: it.ID, Msg: "must look like " + IDPrefix + "<hex>"}
	}
	return ValidateFields(Fields{
		Title:         it.Title,
		Kind:          it.Kind,
		Status:        it.Status,
		Priority:      it.Priority,
		CheckInterval: it.CheckInterval,
	})
}

// ValidateFields checks caller-provided values. Empty enums are accepted since
// defaults are applied afterwards.
func ValidateFields(f Fields) error {
	if f.Title == "" {
		return &ValidationError{Field: "title", Msg: "is required"}
	}
	return validateEnums(f.Kind, f.Status, f.Priority, f.CheckInterval)
}

// ValidatePatch checks the enum values present in a patch.
func ValidatePatch(p Patch) error {
	if p.Title != nil && *p.Title == "" {
		return &ValidationError{Field: "title", Msg: "cannot be empty"}
	}
	var (
		k  Kind
		s  Status
		pr Priority
		ci CheckInterval
	)
	if p.Kind != nil {
		k = *p.Kind
		if k == "" {
			return &ValidationError{Field: "kind", Msg: "cannot be empty"}
		}
	}
	if p.Status != nil {
		s = *p.Status
		if s == "" {
			return &ValidationError{Field: "status", Msg: "cannot be empty"}
		}
	}
	if p.Priority != nil {
		pr = *p.Priority
		if pr == "" {
			return &ValidationError{Field: "priority", Msg: "cannot be empty"}
		}
	}
	if p.CheckInterval != nil {
		ci = *p.CheckInterval
		if ci == "" {
			return &ValidationError{Field: "check_interval", Msg: "cannot be empty"}
		}
	}
	return validateEnums(k, s, pr, ci)
}

func validateEnums(k Kind, s Status, p Priority, c CheckInterval) error {
	if k != "" && !k.IsValid() {
		return &ValidationError{Field: "kind", Value: string(k), Msg: "unknown kind"}
	}
	if s != "" && !s.IsValid() {
		return &ValidationError{Field: "status", Value: string(s), Msg: "unknown status"}
	}
	if p != "" && !p.IsValid() {
		return &ValidationError{Field: "priority", Value: string(p), Msg: "unknown priority"}
	}
	if c != "" && !c.IsValid() {
		return &ValidationError{Field: "check_interval", Value: string(c), Msg: "unknown check interval"}
	}
	return nil
}
