// Package analytics collects search usage events and ships them to Kafka in
// the background, keeping event tracking off the query hot path.
package analytics

import "time"

// EventType classifies a search analytics event.
type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventReindex    EventType = "reindex"
)

// SearchEvent captures one answered query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	Kinds     []string  `json:"kinds"`
	Sort      string    `json:"sort"`
	Total     int       `json:"total"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// ReindexEvent captures one completed index rebuild.
type ReindexEvent struct {
	Type       EventType `json:"type"`
	Documents  int       `json:"documents"`
	Skipped    int       `json:"skipped"`
	Terms      int       `json:"terms"`
	DurationMs int64     `json:"duration_ms"`
	Trigger    string    `json:"trigger"`
	Timestamp  time.Time `json:"timestamp"`
}
