// Package index implements the in-memory inverted index over the content
// catalog: documents, term postings, and weighted term frequencies, with
// TF-IDF scoring lookups. The whole index is rebuilt from a fresh catalog
// snapshot; there is no per-document mutation.
package index

import (
	"log/slog"
	"math"
	"sync"

	"github.com/oooAHOYooo/ahoy-search/internal/catalog"
	"github.com/oooAHOYooo/ahoy-search/internal/index/analyzer"
)

// fieldWeights biases relevance toward titles and names over descriptions.
// The weights are part of the scoring model, not configuration.
var fieldWeights = map[string]float64{
	"title":       3.0,
	"name":        3.0,
	"tags":        2.0,
	"genres":      2.0,
	"artist":      2.0,
	"host":        2.0,
	"album":       1.5,
	"category":    1.5,
	"description": 1.0,
	"summary":     1.0,
}

func weightFor(field string) float64 {
	if w, ok := fieldWeights[field]; ok {
		return w
	}
	return 1.0
}

// state is one immutable index generation. Rebuild constructs a fresh state
// and publishes it with a single pointer swap, so readers never observe a
// mix of old and new postings.
type state struct {
	docs      map[string]*Document
	termDocs  map[string]map[string]struct{}
	docTerms  map[string]map[string]struct{}
	termFreqs map[string]map[string]float64
}

func emptyState() *state {
	return &state{
		docs:      make(map[string]*Document),
		termDocs:  make(map[string]map[string]struct{}),
		docTerms:  make(map[string]map[string]struct{}),
		termFreqs: make(map[string]map[string]float64),
	}
}

// Index owns all indexed documents. Rebuild and Clear are the only mutation
// points; queries run against a View of a single generation.
type Index struct {
	mu     sync.RWMutex
	state  *state
	logger *slog.Logger
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		state:  emptyState(),
		logger: slog.Default().With("component", "index"),
	}
}

// RebuildStats summarises one rebuild for logging and metrics.
type RebuildStats struct {
	Indexed int
	Skipped int
	Terms   int
}

// Rebuild replaces the entire index contents from the snapshot. Records
// without ids are skipped and counted; they never abort the batch. The new
// generation becomes visible atomically once fully built.
func (idx *Index) Rebuild(snap *catalog.Snapshot) RebuildStats {
	next := emptyState()
	var stats RebuildStats

	absorb := func(doc *Document, ok bool) {
		if !ok {
			stats.Skipped++
			return
		}
		next.add(doc)
		stats.Indexed++
	}

	for _, t := range snap.Tracks {
		absorb(FromTrack(t))
	}
	for _, s := range snap.Shows {
		absorb(FromShow(s))
	}
	for _, a := range snap.Artists {
		absorb(FromArtist(a))
	}
	stats.Terms = len(next.termDocs)

	idx.mu.Lock()
	idx.state = next
	idx.mu.Unlock()

	idx.logger.Info("index rebuilt",
		"documents", stats.Indexed,
		"skipped", stats.Skipped,
		"terms", stats.Terms,
	)
	return stats
}

// Clear empties the index. Safe to call on an already-empty index.
func (idx *Index) Clear() {
	idx.mu.Lock()
	idx.state = emptyState()
	idx.mu.Unlock()
}

// add absorbs one document into an under-construction state. For every
// (field, text) pair each term's frequency is incremented by the field's
// weight, and the postings structures are kept mirrored.
func (s *state) add(doc *Document) {
	s.docs[doc.ID] = doc
	for _, field := range doc.Fields {
		weight := weightFor(field.Name)
		for _, term := range analyzer.Tokenize(field.Text) {
			postings, ok := s.termDocs[term]
			if !ok {
				postings = make(map[string]struct{})
				s.termDocs[term] = postings
			}
			postings[doc.ID] = struct{}{}

			terms, ok := s.docTerms[doc.ID]
			if !ok {
				terms = make(map[string]struct{})
				s.docTerms[doc.ID] = terms
			}
			terms[term] = struct{}{}

			freqs, ok := s.termFreqs[doc.ID]
			if !ok {
				freqs = make(map[string]float64)
				s.termFreqs[doc.ID] = freqs
			}
			freqs[term] += weight
		}
	}
}

// View is a read-only handle on one index generation. All lookups made
// through the same View are mutually consistent even while a rebuild swaps
// in a new generation.
type View struct {
	s *state
}

// View returns the current index generation.
func (idx *Index) View() View {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return View{s: idx.state}
}

// TotalDocs returns the corpus size of this generation.
func (v View) TotalDocs() int {
	return len(v.s.docs)
}

// TermCount returns the number of distinct terms in this generation.
func (v View) TermCount() int {
	return len(v.s.termDocs)
}

// Doc returns the document with the given id.
func (v View) Doc(id string) (*Document, bool) {
	doc, ok := v.s.docs[id]
	return doc, ok
}

// DocsForTerm returns the postings set for a term. The returned map is owned
// by the index and must not be mutated.
func (v View) DocsForTerm(term string) map[string]struct{} {
	return v.s.termDocs[term]
}

// TermsOf returns the term set of a document. The returned map is owned by
// the index and must not be mutated.
func (v View) TermsOf(docID string) map[string]struct{} {
	return v.s.docTerms[docID]
}

// EachDocTerms calls fn for every document's term set. Used by the fuzzy
// expansion's full-corpus scan.
func (v View) EachDocTerms(fn func(docID string, terms map[string]struct{})) {
	for docID, terms := range v.s.docTerms {
		fn(docID, terms)
	}
}

// TFIDF returns the weighted term frequency times ln(totalDocs/df) for a
// term in a document, or 0 when the term is absent from the document or has
// zero document frequency.
func (v View) TFIDF(term, docID string) float64 {
	freqs, ok := v.s.termFreqs[docID]
	if !ok {
		return 0
	}
	tf, ok := freqs[term]
	if !ok {
		return 0
	}
	df := len(v.s.termDocs[term])
	if df == 0 {
		return 0
	}
	return tf * math.Log(float64(len(v.s.docs))/float64(df))
}
