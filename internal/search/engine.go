// Package search implements the query engine: term expansion (exact and
// fuzzy), TF-IDF scoring with prefix boosts, kind filtering, sorting, and
// pagination over the inverted index.
package search

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/oooAHOYooo/ahoy-search/internal/index"
	"github.com/oooAHOYooo/ahoy-search/internal/index/analyzer"
	"github.com/oooAHOYooo/ahoy-search/internal/search/fuzzy"
	"github.com/oooAHOYooo/ahoy-search/pkg/config"
)

// prefixBoost is the flat score added for every indexed term that starts
// with a query term. It rewards partial matches independently of TF-IDF and
// can apply several times per document.
const prefixBoost = 0.5

// Engine answers ranked free-text queries against an Index.
type Engine struct {
	idx          *index.Index
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// NewEngine creates an Engine over idx with the configured result limits.
func NewEngine(idx *index.Index, cfg config.SearchConfig) *Engine {
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	return &Engine{
		idx:          idx,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-engine"),
	}
}

type scoredDoc struct {
	id    string
	score float64
	doc   *index.Document
}

// Search runs one query. A blank query or one that tokenizes to nothing
// yields an empty, well-formed Response; Search never fails.
func (e *Engine) Search(req Request) Response {
	limit := req.Limit
	if limit <= 0 {
		limit = e.defaultLimit
	}
	if limit > e.maxResults {
		limit = e.maxResults
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	sortMode := req.Sort
	if sortMode == "" {
		sortMode = SortRelevance
	}

	resp := Response{
		Results: []Result{},
		Query:   req.Query,
		Limit:   limit,
		Offset:  offset,
	}
	if strings.TrimSpace(req.Query) == "" {
		return resp
	}
	terms := analyzer.Tokenize(req.Query)
	if len(terms) == 0 {
		return resp
	}

	view := e.idx.View()
	candidates := e.expand(view, terms)

	kinds := make(map[index.Kind]struct{}, len(req.Kinds))
	for _, k := range req.Kinds {
		if kind, ok := index.ParseKind(k); ok {
			kinds[kind] = struct{}{}
		}
	}

	scored := make([]scoredDoc, 0, len(candidates))
	for docID := range candidates {
		doc, ok := view.Doc(docID)
		if !ok {
			continue
		}
		if len(kinds) > 0 {
			if _, ok := kinds[doc.Kind]; !ok {
				continue
			}
		}
		scored = append(scored, scoredDoc{
			id:    docID,
			score: e.score(view, terms, docID),
			doc:   doc,
		})
	}

	sortDocs(scored, sortMode)

	resp.Total = len(scored)
	page := paginate(scored, offset, limit)
	for _, sd := range page {
		resp.Results = append(resp.Results, buildResult(sd, terms))
	}
	return resp
}

// expand collects candidate documents for the query terms: exact postings
// plus a brute-force fuzzy scan over every document's term set. The scan is
// O(corpus terms x query terms); fine at catalog scale, a known limit beyond
// it.
func (e *Engine) expand(view index.View, terms []string) map[string]struct{} {
	candidates := make(map[string]struct{})
	for _, term := range terms {
		for docID := range view.DocsForTerm(term) {
			candidates[docID] = struct{}{}
		}
		view.EachDocTerms(func(docID string, docTerms map[string]struct{}) {
			if _, ok := candidates[docID]; ok {
				return
			}
			for docTerm := range docTerms {
				if fuzzy.Match(term, docTerm) {
					candidates[docID] = struct{}{}
					return
				}
			}
		})
	}
	return candidates
}

// score sums TF-IDF per query term plus the flat prefix boost for every
// indexed term sharing a query term as a literal prefix.
func (e *Engine) score(view index.View, terms []string, docID string) float64 {
	var score float64
	docTerms := view.TermsOf(docID)
	for _, term := range terms {
		score += view.TFIDF(term, docID)
		for docTerm := range docTerms {
			if strings.HasPrefix(docTerm, term) {
				score += prefixBoost
			}
		}
	}
	return score
}

func sortDocs(scored []scoredDoc, sortMode string) {
	switch sortMode {
	case SortRecent:
		// Raw string comparison on the added-date, preserved from the
		// original system. Mixed date formats will order incorrectly.
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].doc.AddedDate != scored[j].doc.AddedDate {
				return scored[i].doc.AddedDate > scored[j].doc.AddedDate
			}
			return scored[i].id < scored[j].id
		})
	default:
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].score != scored[j].score {
				return scored[i].score > scored[j].score
			}
			return scored[i].id < scored[j].id
		})
	}
}

func paginate(scored []scoredDoc, offset, limit int) []scoredDoc {
	if offset >= len(scored) {
		return nil
	}
	end := offset + limit
	if end > len(scored) {
		end = len(scored)
	}
	return scored[offset:end]
}

func buildResult(sd scoredDoc, terms []string) Result {
	doc := sd.doc
	r := Result{
		ID:      doc.ID,
		Kind:    string(doc.Kind),
		Title:   doc.Title,
		URL:     doc.URL,
		Summary: doc.Summary,
		Tags:    doc.Tags,
		Genres:  doc.Genres,
		Score:   math.Round(sd.score*1000) / 1000,
		Snippet: buildSnippet(doc, terms),
	}
	// Keep tags and genres as JSON arrays even when the record had none.
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Genres == nil {
		r.Genres = []string{}
	}
	switch doc.Kind {
	case index.KindTrack:
		r.Artist = doc.FieldText("artist")
		r.Album = doc.FieldText("album")
		r.Duration = doc.Duration
		r.CoverArt = doc.CoverArt
	case index.KindShow:
		r.Host = doc.FieldText("host")
		r.Duration = doc.Duration
		r.Thumbnail = doc.Thumbnail
	case index.KindArtist:
		r.Name = doc.FieldText("name")
		r.Image = doc.Image
	}
	return r
}
