package newsletter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Sternrassler/substack-client/internal/testutil"
	"github.com/Sternrassler/substack-client/pkg/client"
)

const recommendationsHTML = `<!DOCTYPE html>
<html><body>
<div class="recommendations">
  <div class="publication">
    <div class="publication-content">
      <a href="https://stratechery.com?utm_source=recommendations_page&amp;utm_campaign=1">
        <div class="publication-title">Stratechery</div>
      </a>
    </div>
  </div>
  <div class="publication">
    <div class="publication-content">
      <a href="https://www.garbageday.email/">
        <div class="publication-title"> Garbage Day </div>
      </a>
    </div>
  </div>
</div>
</body></html>`

func TestRecommendations(t *testing.T) {
	svc, mock := newTestService(t)
	mock.SetResponse("/platformer/recommendations", testutil.HTMLResponse(recommendationsHTML))

	got, err := svc.Recommendations(context.Background(), "platformer")
	if err != nil {
		t.Fatalf("Recommendations() error: %v", err)
	}

	want := []Recommendation{
		{Title: "Stratechery", URL: "https://stratechery.com"},
		{Title: "Garbage Day", URL: "https://www.garbageday.email/"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recommendations() = %+v, want %+v", got, want)
	}
}

func TestParseRecommendations(t *testing.T) {
	svc := NewService(nil, client.DefaultEndpoints())

	tests := []struct {
		name    string
		html    string
		want    []Recommendation
		wantErr bool
	}{
		{
			name: "titles outside link containers pair by position",
			html: `<div class="publication-content"><a href="https://a.example?x=1">A</a></div>
				<div class="publication-content"><a href="https://b.example">B</a></div>
				<div class="publication-title">First</div>
				<div class="publication-title">Second</div>`,
			want: []Recommendation{
				{Title: "First", URL: "https://a.example"},
				{Title: "Second", URL: "https://b.example"},
			},
		},
		{
			name: "extra titles dropped",
			html: `<div class="publication-content"><a href="https://a.example">A</a></div>
				<div class="publication-title">First</div>
				<div class="publication-title">Orphan</div>`,
			want: []Recommendation{
				{Title: "First", URL: "https://a.example"},
			},
		},
		{
			name: "no recommendations",
			html: `<html><body><p>Nothing here</p></body></html>`,
			want: []Recommendation{},
		},
		{
			name:    "container without anchor",
			html:    `<div class="publication-content"><span>no link</span></div><div class="publication-title">T</div>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.parseRecommendations([]byte(tt.html))
			if tt.wantErr {
				if !errors.Is(err, client.ErrUnexpectedShape) {
					t.Errorf("error = %v, want ErrUnexpectedShape", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
