package catalog

import "context"

// Source supplies a fresh catalog Snapshot. Implementations perform all I/O
// up front so the index rebuild itself stays pure in-memory work.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
}
