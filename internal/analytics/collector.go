package analytics

import (
	"context"
	"log/slog"

	"github.com/oooAHOYooo/ahoy-search/pkg/kafka"
)

// Publisher is the event sink the collector flushes to, normally a
// *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers events in memory and publishes them to Kafka from a
// single background goroutine. Track never blocks; events are dropped when
// the buffer is full.
type Collector struct {
	producer Publisher
	eventCh  chan any
	logger   *slog.Logger
	quit     chan struct{}
	done     chan struct{}
}

// NewCollector creates a Collector with the given buffer size.
func NewCollector(producer Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background publish loop.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event := <-c.eventCh:
				if err := c.producer.Publish(ctx, kafka.Event{
					Key:   "analytics",
					Value: event,
				}); err != nil {
					c.logger.Error("failed to publish analytics event", "error", err)
				}
			case <-c.quit:
				c.drainRemaining()
				return
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event without blocking. It is safe to call at any time,
// including concurrently with Close; events arriving after shutdown are
// simply never published.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops the publish loop and waits for buffered events to flush.
func (c *Collector) Close() {
	close(c.quit)
	<-c.done
}

// drainRemaining flushes whatever is still buffered as a single batch.
func (c *Collector) drainRemaining() {
	var batch []kafka.Event
	for {
		select {
		case event := <-c.eventCh:
			batch = append(batch, kafka.Event{Key: "analytics", Value: event})
		default:
			if len(batch) == 0 {
				return
			}
			if err := c.producer.PublishBatch(context.Background(), batch); err != nil {
				c.logger.Error("failed to publish remaining events", "error", err, "count", len(batch))
			}
			return
		}
	}
}
