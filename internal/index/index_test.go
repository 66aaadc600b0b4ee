package index

import (
	"math"
	"testing"

	"github.com/oooAHOYooo/ahoy-search/internal/catalog"
)

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Tracks: []catalog.Track{
			{ID: "t1", Title: "Midnight City", Artist: "M83", Genre: "electronic"},
			{ID: "t2", Title: "Harbor Lights", Artist: "Beach Fossils"},
			{Title: "orphan record without id"},
		},
		Shows: []catalog.Show{
			{ID: "s1", Title: "Midnight Talk", Host: "Dana Reyes", Description: "late night conversations"},
		},
		Artists: []catalog.Artist{
			{ID: "a1", Name: "M83", Genres: []string{"electronic"}},
		},
	}
}

func TestRebuild(t *testing.T) {
	idx := New()
	stats := idx.Rebuild(testSnapshot())

	if stats.Indexed != 4 {
		t.Errorf("Indexed = %d, want 4", stats.Indexed)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if stats.Terms == 0 {
		t.Error("Terms should be non-zero")
	}

	view := idx.View()
	if view.TotalDocs() != 4 {
		t.Errorf("TotalDocs = %d, want 4", view.TotalDocs())
	}
	if _, ok := view.Doc("t1"); !ok {
		t.Error("t1 should be indexed")
	}
	if _, ok := view.Doc("missing"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	idx := New()
	snap := testSnapshot()
	first := idx.Rebuild(snap)
	second := idx.Rebuild(snap)

	if first != second {
		t.Errorf("stats differ across identical rebuilds: %+v vs %+v", first, second)
	}
	view := idx.View()
	if view.TotalDocs() != first.Indexed {
		t.Errorf("TotalDocs = %d after second rebuild, want %d", view.TotalDocs(), first.Indexed)
	}
}

func TestRebuildReplacesPreviousGeneration(t *testing.T) {
	idx := New()
	idx.Rebuild(testSnapshot())
	idx.Rebuild(&catalog.Snapshot{
		Tracks: []catalog.Track{{ID: "t9", Title: "Solo"}},
	})

	view := idx.View()
	if view.TotalDocs() != 1 {
		t.Errorf("TotalDocs = %d, want 1", view.TotalDocs())
	}
	if _, ok := view.Doc("t1"); ok {
		t.Error("old generation document survived rebuild")
	}
	if postings := view.DocsForTerm("midnight"); len(postings) != 0 {
		t.Errorf("stale postings survived rebuild: %v", postings)
	}
}

func TestPostingsMirrorDocTerms(t *testing.T) {
	idx := New()
	idx.Rebuild(testSnapshot())
	view := idx.View()

	view.EachDocTerms(func(docID string, terms map[string]struct{}) {
		for term := range terms {
			if _, ok := view.DocsForTerm(term)[docID]; !ok {
				t.Errorf("doc %s has term %q but is missing from its postings", docID, term)
			}
		}
	})
	for docID := range map[string]struct{}{"t1": {}, "t2": {}, "s1": {}, "a1": {}} {
		for term := range view.TermsOf(docID) {
			if _, ok := view.DocsForTerm(term)[docID]; !ok {
				t.Errorf("TermsOf(%s) and DocsForTerm(%q) disagree", docID, term)
			}
		}
	}
}

func TestTFIDF(t *testing.T) {
	idx := New()
	idx.Rebuild(testSnapshot())
	view := idx.View()

	// "city" appears only in t1's title (weight 3.0), df=1, corpus=4.
	want := 3.0 * math.Log(4.0/1.0)
	if got := view.TFIDF("city", "t1"); math.Abs(got-want) > 1e-9 {
		t.Errorf("TFIDF(city, t1) = %v, want %v", got, want)
	}

	// "midnight" appears in t1 and s1, df=2.
	want = 3.0 * math.Log(4.0/2.0)
	if got := view.TFIDF("midnight", "t1"); math.Abs(got-want) > 1e-9 {
		t.Errorf("TFIDF(midnight, t1) = %v, want %v", got, want)
	}

	if got := view.TFIDF("city", "t2"); got != 0 {
		t.Errorf("TFIDF for absent term = %v, want 0", got)
	}
	if got := view.TFIDF("nosuchterm", "t1"); got != 0 {
		t.Errorf("TFIDF for unknown term = %v, want 0", got)
	}
	if got := view.TFIDF("city", "nosuchdoc"); got != 0 {
		t.Errorf("TFIDF for unknown doc = %v, want 0", got)
	}
}

func TestFieldWeights(t *testing.T) {
	idx := New()
	idx.Rebuild(&catalog.Snapshot{
		Tracks: []catalog.Track{
			{ID: "title-hit", Title: "sunset"},
			{ID: "desc-hit", Description: "sunset"},
			{ID: "filler", Title: "unrelated"},
		},
	})
	view := idx.View()

	titleScore := view.TFIDF("sunset", "title-hit")
	descScore := view.TFIDF("sunset", "desc-hit")
	if titleScore <= descScore {
		t.Errorf("title match (%v) should outweigh description match (%v)", titleScore, descScore)
	}
	if ratio := titleScore / descScore; math.Abs(ratio-3.0) > 1e-9 {
		t.Errorf("title/description weight ratio = %v, want 3", ratio)
	}
}

func TestClear(t *testing.T) {
	idx := New()
	idx.Rebuild(testSnapshot())
	idx.Clear()

	view := idx.View()
	if view.TotalDocs() != 0 || view.TermCount() != 0 {
		t.Errorf("index not empty after Clear: %d docs, %d terms", view.TotalDocs(), view.TermCount())
	}
	idx.Clear()
}

func TestViewIsStableDuringRebuild(t *testing.T) {
	idx := New()
	idx.Rebuild(testSnapshot())

	view := idx.View()
	before := view.TotalDocs()
	idx.Rebuild(&catalog.Snapshot{})
	if view.TotalDocs() != before {
		t.Errorf("held view changed size across rebuild: %d -> %d", before, view.TotalDocs())
	}
	if idx.View().TotalDocs() != 0 {
		t.Error("fresh view should see the new empty generation")
	}
}

func TestRebuildConcurrentReaders(t *testing.T) {
	idx := New()
	idx.Rebuild(testSnapshot())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			idx.Rebuild(testSnapshot())
		}
	}()
	for i := 0; ; i++ {
		select {
		case <-done:
			return
		default:
		}
		view := idx.View()
		if n := view.TotalDocs(); n != 4 {
			t.Fatalf("reader %d observed partial generation: %d docs", i, n)
		}
		if _, ok := view.Doc("t1"); !ok {
			t.Fatal("reader observed generation without t1")
		}
	}
}

func TestWeightForDefault(t *testing.T) {
	known := map[string]float64{
		"title": 3.0, "name": 3.0,
		"tags": 2.0, "genres": 2.0, "artist": 2.0, "host": 2.0,
		"album": 1.5, "category": 1.5,
		"description": 1.0, "summary": 1.0,
	}
	for field, want := range known {
		if got := weightFor(field); got != want {
			t.Errorf("weightFor(%q) = %v, want %v", field, got, want)
		}
	}
	if got := weightFor("unknown_field"); got != 1.0 {
		t.Errorf("weightFor(unknown) = %v, want 1.0", got)
	}
}
