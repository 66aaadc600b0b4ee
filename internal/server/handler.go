// Package server exposes the search engine over HTTP: the search endpoint,
// the admin reindex trigger, and cache introspection.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oooAHOYooo/ahoy-search/internal/analytics"
	"github.com/oooAHOYooo/ahoy-search/internal/index"
	"github.com/oooAHOYooo/ahoy-search/internal/index/analyzer"
	"github.com/oooAHOYooo/ahoy-search/internal/refresh"
	"github.com/oooAHOYooo/ahoy-search/internal/search"
	"github.com/oooAHOYooo/ahoy-search/internal/search/cache"
	apperrors "github.com/oooAHOYooo/ahoy-search/pkg/errors"
	"github.com/oooAHOYooo/ahoy-search/pkg/logger"
	"github.com/oooAHOYooo/ahoy-search/pkg/metrics"
	"github.com/oooAHOYooo/ahoy-search/pkg/middleware"
	"github.com/oooAHOYooo/ahoy-search/pkg/tracing"
)

// Handler serves the search API. The cache, refresher, collector, and
// metrics collaborators are all optional.
type Handler struct {
	engine    *search.Engine
	cache     *cache.QueryCache
	refresher *refresh.Refresher
	collector *analytics.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Handler.
func New(engine *search.Engine, queryCache *cache.QueryCache, refresher *refresh.Refresher, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		engine:    engine,
		cache:     queryCache,
		refresher: refresher,
		collector: collector,
		metrics:   m,
		logger:    logger.WithComponent("search-handler"),
	}
}

// Search handles GET /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	req, err := parseSearchRequest(r)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	ctx, span := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	span.SetAttr("query", req.Query)

	var resp *search.Response
	cacheHit := false
	if h.cache != nil {
		resp, cacheHit, err = h.cache.GetOrCompute(ctx, req, func() (*search.Response, error) {
			_, execSpan := tracing.StartChildSpan(ctx, "engine-search")
			result := h.engine.Search(req)
			execSpan.End()
			return &result, nil
		})
		if err != nil {
			log.Error("search execution failed", "query", req.Query, "error", err)
			h.writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
	} else {
		_, execSpan := tracing.StartChildSpan(ctx, "engine-search")
		result := h.engine.Search(req)
		execSpan.End()
		resp = &result
	}

	span.SetAttr("total", resp.Total)
	span.SetAttr("cache_hit", cacheHit)
	span.End()
	span.Log()

	latencyMs := time.Since(start).Milliseconds()
	h.recordSearchMetrics(resp, cacheHit, time.Since(start))

	log.Info("search completed",
		"query", req.Query,
		"total", resp.Total,
		"returned", len(resp.Results),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)

	if h.collector != nil {
		eventType := analytics.EventSearch
		if resp.Total == 0 {
			eventType = analytics.EventZeroResult
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      eventType,
			Query:     req.Query,
			Terms:     analyzer.Tokenize(req.Query),
			Kinds:     req.Kinds,
			Sort:      req.Sort,
			Total:     resp.Total,
			Returned:  len(resp.Results),
			LatencyMs: latencyMs,
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Reindex handles POST /api/v1/reindex.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		h.writeError(w, http.StatusServiceUnavailable, "reindexing is not configured")
		return
	}
	start := time.Now()
	stats, err := h.refresher.Rebuild(r.Context(), "api")
	if err != nil {
		h.logger.Error("reindex failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "reindex failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"documents":   stats.Indexed,
		"skipped":     stats.Skipped,
		"terms":       stats.Terms,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func parseSearchRequest(r *http.Request) (search.Request, error) {
	q := r.URL.Query()
	req := search.Request{
		Query: q.Get("q"),
		Sort:  q.Get("sort"),
	}
	if req.Query == "" {
		return req, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required")
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return req, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer")
		}
		req.Limit = limit
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return req, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "offset must be a non-negative integer")
		}
		req.Offset = offset
	}
	if kindsStr := q.Get("kinds"); kindsStr != "" {
		for _, k := range strings.Split(kindsStr, ",") {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if _, ok := index.ParseKind(k); !ok {
				return req, apperrors.Newf(apperrors.ErrKindUnknown, http.StatusBadRequest, "unknown kind %q", k)
			}
			req.Kinds = append(req.Kinds, k)
		}
	}
	switch req.Sort {
	case "", search.SortRelevance, search.SortRecent:
	default:
		return req, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "sort must be %q or %q", search.SortRelevance, search.SortRecent)
	}
	return req, nil
}

func (h *Handler) recordSearchMetrics(resp *search.Response, cacheHit bool, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	resultType := "hit"
	if resp.Total == 0 {
		resultType = "zero_result"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache != nil {
		h.metrics.CacheMissesTotal.Inc()
	} else {
		cacheStatus = "none"
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(resp.Results)))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
