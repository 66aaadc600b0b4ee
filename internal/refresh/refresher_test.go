package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/oooAHOYooo/ahoy-search/internal/catalog"
	"github.com/oooAHOYooo/ahoy-search/internal/index"
)

type stubSource struct {
	snap  *catalog.Snapshot
	err   error
	calls atomic.Int32
}

func (s *stubSource) Load(ctx context.Context) (*catalog.Snapshot, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func TestRebuild(t *testing.T) {
	src := &stubSource{snap: &catalog.Snapshot{
		Tracks: []catalog.Track{
			{ID: "t1", Title: "Midnight City"},
			{Title: "no id, skipped"},
		},
	}}
	idx := index.New()
	r := New(idx, src, 0, Options{})

	stats, err := r.Rebuild(context.Background(), "startup")
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if stats.Indexed != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 indexed, 1 skipped", stats)
	}
	if idx.View().TotalDocs() != 1 {
		t.Errorf("index holds %d docs, want 1", idx.View().TotalDocs())
	}
}

func TestRebuildSourceFailureRetriesThenFails(t *testing.T) {
	src := &stubSource{err: errors.New("feed down")}
	r := New(index.New(), src, 0, Options{})

	if _, err := r.Rebuild(context.Background(), "startup"); err == nil {
		t.Fatal("expected error when the source is unavailable")
	}
	if got := src.calls.Load(); got != 3 {
		t.Errorf("source called %d times, want 3 retry attempts", got)
	}
}

func TestRebuildFailureKeepsPreviousGeneration(t *testing.T) {
	src := &stubSource{snap: &catalog.Snapshot{
		Tracks: []catalog.Track{{ID: "t1", Title: "Keep Me"}},
	}}
	idx := index.New()
	r := New(idx, src, 0, Options{})

	if _, err := r.Rebuild(context.Background(), "startup"); err != nil {
		t.Fatalf("initial rebuild: %v", err)
	}
	src.err = errors.New("feed down")
	if _, err := r.Rebuild(context.Background(), "interval"); err == nil {
		t.Fatal("expected error on second rebuild")
	}
	if idx.View().TotalDocs() != 1 {
		t.Error("failed rebuild must not clear the previous generation")
	}
}

func TestContentUpdateHandler(t *testing.T) {
	src := &stubSource{snap: &catalog.Snapshot{
		Tracks: []catalog.Track{{ID: "t1", Title: "Fresh"}},
	}}
	idx := index.New()
	r := New(idx, src, 0, Options{})

	payload, _ := json.Marshal(ContentUpdateEvent{Source: "cms"})
	handler := r.ContentUpdateHandler()
	if err := handler(context.Background(), []byte("cms"), payload); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if idx.View().TotalDocs() != 1 {
		t.Error("content update event should trigger a rebuild")
	}
}

func TestContentUpdateHandlerBadPayload(t *testing.T) {
	src := &stubSource{snap: &catalog.Snapshot{}}
	r := New(index.New(), src, 0, Options{})

	handler := r.ContentUpdateHandler()
	if err := handler(context.Background(), nil, []byte("{not json")); err != nil {
		t.Errorf("malformed event must be dropped, not returned: %v", err)
	}
	if src.calls.Load() != 0 {
		t.Error("malformed event must not trigger a rebuild")
	}
}
