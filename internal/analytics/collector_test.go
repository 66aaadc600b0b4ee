package analytics

import (
	"context"
	"sync"
	"testing"

	"github.com/oooAHOYooo/ahoy-search/pkg/kafka"
)

type recordingPublisher struct {
	mu      sync.Mutex
	single  []kafka.Event
	batches [][]kafka.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.single = append(p.single, event)
	return nil
}

func (p *recordingPublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, events)
	return nil
}

func TestCollectorFlushesBufferedEventsOnClose(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 16)

	// Enqueue before Start so everything is still buffered when the
	// loop sees the quit signal and drains in one batch.
	c.Track(map[string]string{"query": "midnight"})
	c.Track(map[string]string{"query": "harbor"})
	c.Start(context.Background())
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	total := len(pub.single)
	for _, b := range pub.batches {
		total += len(b)
	}
	if total != 2 {
		t.Errorf("published %d events, want 2 (single=%d batches=%v)", total, len(pub.single), pub.batches)
	}
}

func TestCollectorTrackAfterClose(t *testing.T) {
	c := NewCollector(&recordingPublisher{}, 2)
	c.Start(context.Background())
	c.Close()

	// Late events are dropped once shutdown completes; Track must stay
	// safe to call, including past the buffer capacity.
	for i := 0; i < 5; i++ {
		c.Track(map[string]int{"n": i})
	}
}

func TestCollectorStopsOnContextCancel(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 16)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()
	<-c.done

	c.Track(map[string]string{"query": "late"})
}
