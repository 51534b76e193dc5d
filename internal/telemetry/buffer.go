package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/fieldsense/fieldsense/internal/infrastructure/influxdb"
)

// Logger defines the logging interface used by the ingestion pipeline.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// PointWriter is the store write operation the buffer flushes into.
type PointWriter interface {
	WritePoints(ctx context.Context, points []influxdb.Point) error
}

// defaultFlushTimeout bounds a single flush attempt so a slow store
// cannot stall the flush loop past its next tick indefinitely.
const defaultFlushTimeout = 10 * time.Second

// Buffer batches points and flushes them to the store on a timer.
//
// Delivery is at-least-once: a failed flush retains the batch for the
// next cycle, and duplicates are harmless because the store
// de-duplicates on series key and timestamp. Retention is capped at a
// maximum point count so a prolonged store outage degrades to dropping
// the oldest points instead of growing without bound.
//
// All public methods are thread-safe.
type Buffer struct {
	writer    PointWriter
	logger    Logger
	interval  time.Duration
	maxPoints int

	mu      sync.Mutex
	pending []influxdb.Point

	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewBuffer creates a write buffer flushing into the given writer.
//
// Parameters:
//   - writer: Store write target (typically the InfluxDB client)
//   - interval: Time between automatic flushes
//   - maxPoints: Retention cap; oldest points are dropped beyond it
func NewBuffer(writer PointWriter, interval time.Duration, maxPoints int) *Buffer {
	return &Buffer{
		writer:    writer,
		logger:    noopLogger{},
		interval:  interval,
		maxPoints: maxPoints,
		done:      make(chan struct{}),
	}
}

// SetLogger sets the logger for the buffer.
func (b *Buffer) SetLogger(logger Logger) {
	b.logger = logger
}

// Enqueue adds a point for the next flush.
//
// Never blocks on the store and never fails; if the buffer is at
// capacity the oldest points are dropped and the loss is logged.
func (b *Buffer) Enqueue(point influxdb.Point) {
	var dropped int

	b.mu.Lock()
	b.pending = append(b.pending, point)
	if len(b.pending) > b.maxPoints {
		dropped = len(b.pending) - b.maxPoints
		b.pending = append([]influxdb.Point(nil), b.pending[dropped:]...)
	}
	b.mu.Unlock()

	if dropped > 0 {
		b.logger.Warn("write buffer full, oldest points dropped", "dropped", dropped)
	}
}

// Len returns the number of points awaiting flush.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush submits all pending points to the store immediately.
//
// On failure the batch is re-queued ahead of anything enqueued during
// the attempt, preserving insertion order for the next cycle, and the
// retention cap is re-applied.
//
// Returns:
//   - error: nil on success or empty buffer, the write error otherwise
func (b *Buffer) Flush(ctx context.Context) error {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return nil
	}
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	if err := b.writer.WritePoints(ctx, batch); err != nil {
		b.requeue(batch)
		b.logger.Error("point flush failed, batch retained", "points", len(batch), "error", err)
		return err
	}

	b.logger.Debug("points flushed", "points", len(batch))
	return nil
}

// requeue puts a failed batch back at the head of the pending queue.
func (b *Buffer) requeue(batch []influxdb.Point) {
	var dropped int

	b.mu.Lock()
	b.pending = append(batch, b.pending...)
	if len(b.pending) > b.maxPoints {
		dropped = len(b.pending) - b.maxPoints
		b.pending = append([]influxdb.Point(nil), b.pending[dropped:]...)
	}
	b.mu.Unlock()

	if dropped > 0 {
		b.logger.Warn("write buffer full, oldest points dropped", "dropped", dropped)
	}
}

// Start launches the periodic flush loop.
func (b *Buffer) Start() {
	b.ticker = time.NewTicker(b.interval)
	b.wg.Add(1)
	go b.flushLoop()
}

// flushLoop flushes the batch on timer until done is signalled.
func (b *Buffer) flushLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), defaultFlushTimeout)
			_ = b.Flush(ctx) // failure logged; batch retained for next tick
			cancel()
		case <-b.done:
			return
		}
	}
}

// Close stops the flush loop and performs a final flush.
//
// It performs:
//  1. Stops the flush timer
//  2. Signals the flush goroutine to stop and waits for it
//  3. Flushes any remaining buffered points
//
// Returns:
//   - error: The final flush error, if any
func (b *Buffer) Close() error {
	if b == nil {
		return nil
	}

	if b.ticker != nil {
		b.ticker.Stop()
	}

	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), defaultFlushTimeout)
	defer cancel()

	return b.Flush(ctx)
}
