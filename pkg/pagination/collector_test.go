package pagination

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"
)

type item struct {
	ID   int
	Slug string
}

func itemID(it item) (string, error) {
	return strconv.Itoa(it.ID), nil
}

func itemSlug(it item) (string, error) {
	return it.Slug, nil
}

// offsetPages serves pages keyed by offset and records every requested offset.
type offsetPages struct {
	pages     map[int][]item
	requested []int
}

func (p *offsetPages) fetch(_ context.Context, pos int) (Page[item], error) {
	p.requested = append(p.requested, pos)
	return Page[item]{Items: p.pages[pos]}, nil
}

func archiveRules() []StopRule[item] {
	return []StopRule[item]{StopOnEmpty[item](), StopOnRepeatedLastID(itemID)}
}

func TestCollect_TwoPagesThenEmpty(t *testing.T) {
	src := &offsetPages{pages: map[int][]item{
		0:  {{1, "post-1"}, {2, "post-2"}},
		10: {{3, "post-3"}, {4, "post-4"}},
	}}

	got, err := Collect(context.Background(), "test", Cursor{Start: 0, End: Unbounded, Step: 10}, src.fetch, itemSlug, archiveRules()...)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	want := []string{"post-1", "post-2", "post-3", "post-4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(src.requested, []int{0, 10, 20}) {
		t.Errorf("requested = %v, want [0 10 20]", src.requested)
	}
}

func TestCollect_EndBoundNotExceeded(t *testing.T) {
	src := &offsetPages{pages: map[int][]item{
		0:  {{1, "post-1"}, {2, "post-2"}},
		10: {{3, "post-3"}, {4, "post-4"}},
		20: {{5, "post-5"}},
	}}

	got, err := Collect(context.Background(), "test", Cursor{Start: 0, End: 20, Step: 10}, src.fetch, itemSlug, archiveRules()...)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	want := []string{"post-1", "post-2", "post-3", "post-4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(src.requested, []int{0, 10}) {
		t.Errorf("requested = %v, want [0 10] (nothing at or beyond end)", src.requested)
	}
}

func TestCollect_RepeatedLastIDExcluded(t *testing.T) {
	src := &offsetPages{pages: map[int][]item{
		0:  {{1, "a"}, {2, "b"}},
		10: {{3, "c"}, {4, "d"}},
		20: {{9, "x"}, {4, "d"}},
		30: {{5, "never"}},
	}}

	got, err := Collect(context.Background(), "test", Cursor{Start: 0, End: Unbounded, Step: 10}, src.fetch, itemSlug, archiveRules()...)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
	if len(src.requested) != 3 {
		t.Errorf("requested = %v, want 3 fetches", src.requested)
	}
}

func TestCollect_EmptyFirstPage(t *testing.T) {
	src := &offsetPages{pages: map[int][]item{}}

	got, err := Collect(context.Background(), "test", Cursor{Start: 0, End: Unbounded, Step: 10}, src.fetch, Identity[item], archiveRules()...)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Collect() = %#v, want empty non-nil slice", got)
	}
}

func TestCollect_ProjectionMatchesFull(t *testing.T) {
	pages := map[int][]item{
		0:  {{1, "post-1"}, {2, "post-2"}},
		10: {{3, "post-3"}},
	}
	cursor := Cursor{Start: 0, End: Unbounded, Step: 10}

	full, err := Collect(context.Background(), "test", cursor, (&offsetPages{pages: pages}).fetch, Identity[item], archiveRules()...)
	if err != nil {
		t.Fatalf("Collect(full) error: %v", err)
	}
	slugs, err := Collect(context.Background(), "test", cursor, (&offsetPages{pages: pages}).fetch, itemSlug, archiveRules()...)
	if err != nil {
		t.Fatalf("Collect(slugs) error: %v", err)
	}

	if len(full) != len(slugs) {
		t.Fatalf("len(full) = %d, len(slugs) = %d", len(full), len(slugs))
	}
	for i := range full {
		if full[i].Slug != slugs[i] {
			t.Errorf("slugs[%d] = %q, want %q", i, slugs[i], full[i].Slug)
		}
	}
}

func TestCollect_HaltAndLast(t *testing.T) {
	tests := []struct {
		name      string
		pages     map[int]Page[int]
		want      []int
		wantPages int
	}{
		{
			name: "last page appended then stop",
			pages: map[int]Page[int]{
				0: {Items: []int{1, 2}},
				1: {Items: []int{3}, Last: true},
				2: {Items: []int{99}},
			},
			want:      []int{1, 2, 3},
			wantPages: 2,
		},
		{
			name: "halt page not appended",
			pages: map[int]Page[int]{
				0: {Items: []int{1}},
				1: {Items: []int{99}, Halt: true},
			},
			want:      []int{1},
			wantPages: 2,
		},
		{
			name: "halt wins over last",
			pages: map[int]Page[int]{
				0: {Items: []int{7}, Halt: true, Last: true},
			},
			want:      []int{},
			wantPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetched := 0
			fetch := func(_ context.Context, pos int) (Page[int], error) {
				fetched++
				return tt.pages[pos], nil
			}

			got, err := Collect(context.Background(), "test", Cursor{Start: 0, End: Unbounded, Step: 1}, fetch, Identity[int])
			if err != nil {
				t.Fatalf("Collect() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Collect() = %v, want %v", got, tt.want)
			}
			if fetched != tt.wantPages {
				t.Errorf("fetched = %d, want %d", fetched, tt.wantPages)
			}
		})
	}
}

func TestCollect_StartOffset(t *testing.T) {
	src := &offsetPages{pages: map[int][]item{
		0:  {{1, "post-1"}},
		10: {{2, "post-2"}},
	}}

	got, err := Collect(context.Background(), "test", Cursor{Start: 10, End: Unbounded, Step: 10}, src.fetch, itemSlug, archiveRules()...)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"post-2"}) {
		t.Errorf("Collect() = %v, want [post-2]", got)
	}
}

func TestCollect_ErrorDiscardsPartialResults(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, pos int) (Page[int], error) {
		if pos == 2 {
			return Page[int]{}, boom
		}
		return Page[int]{Items: []int{pos}}, nil
	}

	got, err := Collect(context.Background(), "test", Cursor{Start: 0, End: Unbounded, Step: 1}, fetch, Identity[int])
	if !errors.Is(err, boom) {
		t.Errorf("Collect() error = %v, want wrapped boom", err)
	}
	if got != nil {
		t.Errorf("Collect() = %v, want nil on error", got)
	}
}

func TestCollect_ProjectionError(t *testing.T) {
	fetch := func(_ context.Context, pos int) (Page[int], error) {
		return Page[int]{Items: []int{1, 2}, Last: true}, nil
	}
	project := func(v int) (string, error) {
		if v == 2 {
			return "", fmt.Errorf("no slug for %d", v)
		}
		return strconv.Itoa(v), nil
	}

	if _, err := Collect(context.Background(), "test", Cursor{Start: 0, End: Unbounded, Step: 1}, fetch, project); err == nil {
		t.Error("Expected projection error")
	}
}

func TestCollect_InvalidCursor(t *testing.T) {
	fetch := func(context.Context, int) (Page[int], error) { return Page[int]{}, nil }

	tests := []struct {
		name   string
		cursor Cursor
	}{
		{name: "zero step", cursor: Cursor{Start: 0, End: Unbounded, Step: 0}},
		{name: "negative start", cursor: Cursor{Start: -1, End: Unbounded, Step: 1}},
		{name: "negative end", cursor: Cursor{Start: 0, End: -5, Step: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Collect(context.Background(), "test", tt.cursor, fetch, Identity[int]); err == nil {
				t.Error("Expected cursor validation error")
			}
		})
	}
}

func TestCollect_StartAtEnd(t *testing.T) {
	fetched := 0
	fetch := func(context.Context, int) (Page[int], error) {
		fetched++
		return Page[int]{Items: []int{1}}, nil
	}

	got, err := Collect(context.Background(), "test", Cursor{Start: 5, End: 5, Step: 1}, fetch, Identity[int])
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(got) != 0 || fetched != 0 {
		t.Errorf("got %v after %d fetches, want nothing", got, fetched)
	}
}

func TestDecision_String(t *testing.T) {
	tests := map[Decision]string{
		Continue:    "continue",
		StopAfter:   "stop_after",
		StopBefore:  "stop_before",
		Decision(9): "decision(9)",
	}
	for d, want := range tests {
		if got := d.String(); got != want {
			t.Errorf("Decision(%d).String() = %q, want %q", int(d), got, want)
		}
	}
}
