package journal

import "context"

// Store defines journal persistence.
type Store interface {
	// Load returns the week's document, or an empty seven-day skeleton if
	// none exists yet. The skeleton is not written until Save is called.
	Load(ctx context.Context, key WeekKey) (*Week, error)

	// Exists reports whether a document for the week is present.
	Exists(ctx context.Context, key WeekKey) bool

	// Save writes the document, replacing any previous version atomically.
	Save(ctx context.Context, w *Week) error

	// SaveSummary writes the standalone weekly summary document.
	SaveSummary(ctx context.Context, s WeeklySummary, lookup Lookup) error
}
