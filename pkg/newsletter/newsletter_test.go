package newsletter

import (
	"context"
	"errors"
	"testing"

	"github.com/Sternrassler/substack-client/internal/testutil"
	"github.com/Sternrassler/substack-client/pkg/client"
)

func newTestService(t *testing.T) (*Service, *testutil.MockSubstack) {
	t.Helper()

	mock := testutil.NewMockSubstack()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig()
	cfg.HTTPClient = mock.HTTPClient()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() failed: %v", err)
	}
	return NewService(c, mock.Endpoints()), mock
}

// failingFetcher fails every call the way an exhausted client would.
type failingFetcher struct {
	calls int
}

func (f *failingFetcher) err(rawURL string) error {
	f.calls++
	return &client.TransportError{URL: rawURL, Attempts: 5, Err: errors.New("connection refused")}
}

func (f *failingFetcher) Get(_ context.Context, rawURL string) (*client.Response, error) {
	return nil, f.err(rawURL)
}

func (f *failingFetcher) GetJSON(_ context.Context, rawURL string, _ any) (*client.Response, error) {
	return nil, f.err(rawURL)
}

func TestTransportErrorPropagates(t *testing.T) {
	svc := NewService(&failingFetcher{}, client.DefaultEndpoints())
	ctx := context.Background()

	calls := []struct {
		name string
		run  func() error
	}{
		{"Categories", func() error { _, err := svc.Categories(ctx); return err }},
		{"CategoryNameToID", func() error { _, err := svc.CategoryNameToID(ctx, "Technology"); return err }},
		{"NewslettersInCategory", func() error { _, err := svc.NewslettersInCategory(ctx, 4, Range{}); return err }},
		{"PostSlugs", func() error { _, err := svc.PostSlugs(ctx, "platformer", Range{}); return err }},
		{"PostContents", func() error { _, err := svc.PostContents(ctx, "platformer", "hello"); return err }},
		{"Recommendations", func() error { _, err := svc.Recommendations(ctx, "platformer"); return err }},
	}

	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var te *client.TransportError
			if !errors.As(err, &te) {
				t.Errorf("error = %v, want *client.TransportError", err)
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Key: "Knitting"})

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false")
	}
	if got, want := err.Error(), "Knitting is not in the platform's list of categories"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRange_Cursor(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		step    int
		wantEnd int
	}{
		{name: "zero end is unbounded", r: Range{}, step: 10, wantEnd: -1},
		{name: "explicit end", r: Range{Start: 10, End: 40}, step: 10, wantEnd: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.r.cursor(tt.step)
			if c.End != tt.wantEnd || c.Start != tt.r.Start || c.Step != tt.step {
				t.Errorf("cursor = %+v, want start %d end %d step %d", c, tt.r.Start, tt.wantEnd, tt.step)
			}
		})
	}
}
