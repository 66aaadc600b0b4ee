// Package refresh rebuilds the search index from fresh catalog snapshots:
// on startup, on a fixed interval, on demand from the HTTP surface, and on
// content-update events arriving over Kafka.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oooAHOYooo/ahoy-search/internal/analytics"
	"github.com/oooAHOYooo/ahoy-search/internal/catalog"
	"github.com/oooAHOYooo/ahoy-search/internal/index"
	"github.com/oooAHOYooo/ahoy-search/internal/search/cache"
	"github.com/oooAHOYooo/ahoy-search/pkg/kafka"
	"github.com/oooAHOYooo/ahoy-search/pkg/metrics"
	"github.com/oooAHOYooo/ahoy-search/pkg/resilience"
)

// ContentUpdateEvent is the Kafka message the content pipeline publishes
// when the catalog changes.
type ContentUpdateEvent struct {
	Source    string    `json:"source"`
	ChangedAt time.Time `json:"changed_at"`
}

// IndexCompleteEvent is published after every successful rebuild.
type IndexCompleteEvent struct {
	Documents   int       `json:"documents"`
	Skipped     int       `json:"skipped"`
	Terms       int       `json:"terms"`
	Trigger     string    `json:"trigger"`
	CompletedAt time.Time `json:"completed_at"`
}

// Refresher coordinates index rebuilds. Rebuilds are serialised; the index
// itself swaps generations atomically, so readers are never blocked.
type Refresher struct {
	idx       *index.Index
	source    catalog.Source
	cache     *cache.QueryCache
	producer  *kafka.Producer
	collector *analytics.Collector
	metrics   *metrics.Metrics
	interval  time.Duration
	mu        sync.Mutex
	logger    *slog.Logger
}

// Options carries the optional collaborators; any of them may be nil.
type Options struct {
	Cache     *cache.QueryCache
	Producer  *kafka.Producer
	Collector *analytics.Collector
	Metrics   *metrics.Metrics
}

// New creates a Refresher over the given index and catalog source.
func New(idx *index.Index, source catalog.Source, interval time.Duration, opts Options) *Refresher {
	return &Refresher{
		idx:       idx,
		source:    source,
		cache:     opts.Cache,
		producer:  opts.Producer,
		collector: opts.Collector,
		metrics:   opts.Metrics,
		interval:  interval,
		logger:    slog.Default().With("component", "refresher"),
	}
}

// Rebuild loads a fresh snapshot (with retries) and rebuilds the index from
// it, then invalidates the query cache and announces completion. trigger
// names what initiated the rebuild ("startup", "interval", "api", "kafka").
func (r *Refresher) Rebuild(ctx context.Context, trigger string) (index.RebuildStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	var snap *catalog.Snapshot
	err := resilience.Retry(ctx, "catalog-load", resilience.RetryConfig{}, func() error {
		var loadErr error
		snap, loadErr = r.source.Load(ctx)
		return loadErr
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.RebuildsTotal.WithLabelValues("error").Inc()
		}
		return index.RebuildStats{}, fmt.Errorf("loading catalog snapshot: %w", err)
	}

	stats := r.idx.Rebuild(snap)
	elapsed := time.Since(start)

	if r.metrics != nil {
		r.metrics.RebuildsTotal.WithLabelValues("ok").Inc()
		r.metrics.RebuildDuration.Observe(elapsed.Seconds())
		r.metrics.DocsIndexedTotal.Add(float64(stats.Indexed))
		r.metrics.DocsSkippedTotal.Add(float64(stats.Skipped))
		r.metrics.IndexDocCount.Set(float64(stats.Indexed))
		r.metrics.IndexTermCount.Set(float64(stats.Terms))
	}

	if r.cache != nil {
		if err := r.cache.Invalidate(ctx); err != nil {
			r.logger.Error("cache invalidation after rebuild failed", "error", err)
		}
	}

	if r.producer != nil {
		event := IndexCompleteEvent{
			Documents:   stats.Indexed,
			Skipped:     stats.Skipped,
			Terms:       stats.Terms,
			Trigger:     trigger,
			CompletedAt: time.Now().UTC(),
		}
		if err := r.producer.Publish(ctx, kafka.Event{Key: trigger, Value: event}); err != nil {
			r.logger.Error("failed to publish index complete event", "error", err)
		}
	}

	if r.collector != nil {
		r.collector.Track(analytics.ReindexEvent{
			Type:       analytics.EventReindex,
			Documents:  stats.Indexed,
			Skipped:    stats.Skipped,
			Terms:      stats.Terms,
			DurationMs: elapsed.Milliseconds(),
			Trigger:    trigger,
			Timestamp:  time.Now().UTC(),
		})
	}

	r.logger.Info("rebuild complete",
		"trigger", trigger,
		"documents", stats.Indexed,
		"skipped", stats.Skipped,
		"duration_ms", elapsed.Milliseconds(),
	)
	return stats, nil
}

// StartLoop rebuilds on the configured interval until ctx is cancelled. A
// non-positive interval disables the loop.
func (r *Refresher) StartLoop(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("periodic refresh disabled")
		return
	}
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.logger.Info("refresh loop stopping")
				return
			case <-ticker.C:
				if _, err := r.Rebuild(ctx, "interval"); err != nil {
					r.logger.Error("periodic rebuild failed", "error", err)
				}
			}
		}
	}()
	r.logger.Info("refresh loop started", "interval", r.interval)
}

// ContentUpdateHandler returns a Kafka MessageHandler that rebuilds the
// index whenever the content pipeline announces a change. Errors are
// reported but not returned, so a bad event never wedges the consumer on
// redelivery.
func (r *Refresher) ContentUpdateHandler() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ContentUpdateEvent](value)
		if err != nil {
			r.logger.Error("failed to decode content update event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		r.logger.Info("content update received", "source", event.Source)
		if _, err := r.Rebuild(ctx, "kafka"); err != nil {
			r.logger.Error("event-triggered rebuild failed", "error", err)
		}
		return nil
	}
}
