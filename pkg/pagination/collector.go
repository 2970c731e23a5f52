package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/substack-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "substack_pages_fetched_total",
		Help: "Pages fetched by collection name",
	}, []string{"collection"})

	collectionStopsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "substack_collection_stops_total",
		Help: "Completed collections by name and stop reason",
	}, []string{"collection", "reason"})
)

// Unbounded marks a cursor with no end bound.
const Unbounded = -1

// Cursor describes the positions a collection walks: Start, Start+Step, ...
// up to but excluding End.
type Cursor struct {
	Start int
	End   int
	Step  int
}

// reached reports whether pos is at or past the end bound.
func (c Cursor) reached(pos int) bool {
	return c.End != Unbounded && pos >= c.End
}

func (c Cursor) validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("cursor step must be positive (got %d)", c.Step)
	}
	if c.Start < 0 {
		return fmt.Errorf("cursor start must not be negative (got %d)", c.Start)
	}
	if c.End != Unbounded && c.End < 0 {
		return fmt.Errorf("cursor end must be >= 0 or Unbounded (got %d)", c.End)
	}
	return nil
}

// Page is one fetched page.
type Page[T any] struct {
	// Cursor is the position this page was fetched at.
	Cursor int

	Items []T

	// Halt stops collection without appending Items.
	Halt bool

	// Last stops collection after Items are appended.
	Last bool
}

// Decision is the outcome of a stop rule.
type Decision int

const (
	// Continue appends the page and advances the cursor.
	Continue Decision = iota

	// StopAfter appends the page and stops.
	StopAfter

	// StopBefore stops without appending the page.
	StopBefore
)

// String returns the decision name used in logs.
func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case StopAfter:
		return "stop_after"
	case StopBefore:
		return "stop_before"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// PageFunc fetches the page at cursor position pos.
type PageFunc[T any] func(ctx context.Context, pos int) (Page[T], error)

// StopRule inspects a page before it is appended. Rules may keep state
// across pages, so a rule value must not be shared between collections.
type StopRule[T any] func(page Page[T]) (Decision, string, error)

// Identity is a projection that keeps items unchanged.
func Identity[T any](item T) (T, error) {
	return item, nil
}

// Collect walks cursor, fetching one page at a time, and returns the
// projected items of every appended page in order.
//
// Per page: Halt stops before appending, then each rule runs in order and the
// first non-Continue decision wins, then Last stops after appending. The end
// bound is checked before every fetch, so no page at or beyond End is ever
// requested. Any error discards the items collected so far.
func Collect[T, R any](ctx context.Context, name string, cursor Cursor, fetch PageFunc[T], project func(T) (R, error), rules ...StopRule[T]) ([]R, error) {
	if err := cursor.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	logger := logging.NewLogger(logging.ComponentPagination).With().Str("collection", name).Logger()

	results := []R{}
	pages := 0
	reason := "end_bound"

	for pos := cursor.Start; !cursor.reached(pos); pos += cursor.Step {
		page, err := fetch(ctx, pos)
		if err != nil {
			return nil, fmt.Errorf("%s: fetch page at %d: %w", name, pos, err)
		}
		page.Cursor = pos
		pages++
		pagesFetchedTotal.WithLabelValues(name).Inc()

		decision, why, err := decide(page, rules)
		if err != nil {
			return nil, fmt.Errorf("%s: page at %d: %w", name, pos, err)
		}

		logger.Debug().
			Int("cursor", pos).
			Int("items", len(page.Items)).
			Stringer("decision", decision).
			Msg("Page fetched")

		if decision == StopBefore {
			reason = why
			break
		}

		for _, item := range page.Items {
			projected, err := project(item)
			if err != nil {
				return nil, fmt.Errorf("%s: page at %d: %w", name, pos, err)
			}
			results = append(results, projected)
		}

		if decision == StopAfter {
			reason = why
			break
		}
	}

	collectionStopsTotal.WithLabelValues(name, reason).Inc()
	logger.Info().
		Int("pages", pages).
		Int("items", len(results)).
		Str("reason", reason).
		Dur("duration", time.Since(start)).
		Msg("Collection complete")

	return results, nil
}

func decide[T any](page Page[T], rules []StopRule[T]) (Decision, string, error) {
	if page.Halt {
		return StopBefore, "halted", nil
	}

	for _, rule := range rules {
		decision, why, err := rule(page)
		if err != nil {
			return Continue, "", err
		}
		if decision != Continue {
			return decision, why, nil
		}
	}

	if page.Last {
		return StopAfter, "last_page", nil
	}
	return Continue, "", nil
}
