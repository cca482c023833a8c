package worklog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/core/journal"
	"github.com/hay-kot/worklog/internal/core/logging"
	"github.com/hay-kot/worklog/internal/core/validate"
)

// SummaryService derives weekly and quarterly rollups from journals.
type SummaryService struct {
	items    *ItemService
	journals journal.Store
	log      zerolog.Logger
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(items *ItemService, journals journal.Store, log zerolog.Logger) *SummaryService {
	return &SummaryService{
		items:    items,
		journals: journals,
		log:      logging.Component(log, "summary-service"),
	}
}

// lookup snapshots all readable items for title resolution.
func (s *SummaryService) lookup(ctx context.Context) (journal.Lookup, error) {
	all, err := s.items.All(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]item.Item, len(all))
	for _, it := range all {
		byID[it.ID] = it
	}
	return func(id string) (item.Item, bool) {
		it, ok := byID[id]
		return it, ok
	}, nil
}

// Week summarizes the week containing date and writes the summary document.
func (s *SummaryService) Week(ctx context.Context, date time.Time) (journal.WeeklySummary, error) {
	ctx = logging.WithOperation(ctx, "journal.summary")
	key := journal.KeyFor(date)

	w, err := s.journals.Load(ctx, key)
	if err != nil {
		return journal.WeeklySummary{}, err
	}

	lookup, err := s.lookup(ctx)
	if err != nil {
		return journal.WeeklySummary{}, err
	}

	sum := journal.Summarize(w, lookup)
	if err := s.journals.SaveSummary(ctx, sum, lookup); err != nil {
		return sum, err
	}

	s.log.Info().Ctx(ctx).Str("week", key.String()).
		Int("completed", len(sum.Completed)).
		Int("in_progress", len(sum.InProgress)).
		Msg("weekly summary written")
	return sum, nil
}

// Quarter aggregates the summaries of every week in the quarter that has a
// journal. Weeks belong to the quarter containing their Thursday.
func (s *SummaryService) Quarter(ctx context.Context, year, quarter int) (journal.QuarterlySummary, error) {
	ctx = logging.WithOperation(ctx, "journal.quarter")

	if err := validate.Quarter(quarter); err != nil {
		return journal.QuarterlySummary{}, &item.ValidationError{Field: "quarter", Value: fmt.Sprint(quarter), Msg: err.Error()}
	}
	if err := validate.Year(year); err != nil {
		return journal.QuarterlySummary{}, &item.ValidationError{Field: "year", Value: fmt.Sprint(year), Msg: err.Error()}
	}

	start, end, err := journal.QuarterRange(year, quarter)
	if err != nil {
		return journal.QuarterlySummary{}, err
	}
	keys, err := journal.QuarterWeeks(year, quarter)
	if err != nil {
		return journal.QuarterlySummary{}, err
	}

	lookup, err := s.lookup(ctx)
	if err != nil {
		return journal.QuarterlySummary{}, err
	}

	var weeks []journal.WeeklySummary
	for _, key := range keys {
		if !s.journals.Exists(ctx, key) {
			continue
		}
		w, err := s.journals.Load(ctx, key)
		if err != nil {
			return journal.QuarterlySummary{}, err
		}
		weeks = append(weeks, journal.Summarize(w, lookup))
	}

	q := journal.Aggregate(year, quarter, start, end, weeks)
	s.log.Info().Ctx(ctx).Int("weeks", q.WeeksTracked).Int("completed", q.TotalCompleted).Msg("quarter summarized")
	return q, nil
}
