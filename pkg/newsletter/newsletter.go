// Package newsletter collects categories, newsletters, post archives, post
// content and recommendations from the platform's public API and pages.
package newsletter

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/substack-client/pkg/client"
	"github.com/Sternrassler/substack-client/pkg/logging"
	"github.com/Sternrassler/substack-client/pkg/pagination"
	"github.com/rs/zerolog"
)

// Fetcher is the subset of *client.Client used by the service.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*client.Response, error)
	GetJSON(ctx context.Context, rawURL string, v any) (*client.Response, error)
}

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a category lookup with no match.
type NotFoundError struct {
	Key any
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v is not in the platform's list of categories", e.Key)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Range bounds a paginated collection. End is exclusive. Zero End means no
// bound rather than an empty range; to fetch nothing, skip the call.
type Range struct {
	Start int
	End   int
}

func (r Range) cursor(step int) pagination.Cursor {
	end := r.End
	if end == 0 {
		end = pagination.Unbounded
	}
	return pagination.Cursor{Start: r.Start, End: end, Step: step}
}

// Service issues newsletter lookups through a Fetcher.
type Service struct {
	fetcher   Fetcher
	endpoints client.Endpoints
	logger    zerolog.Logger
}

// NewService creates a newsletter service.
func NewService(fetcher Fetcher, endpoints client.Endpoints) *Service {
	return &Service{
		fetcher:   fetcher,
		endpoints: endpoints,
		logger:    logging.NewLogger(logging.ComponentNewsletter),
	}
}
