package influxdb

import (
	"context"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Point is a single time-series data point to be persisted.
//
// Points are write-once and append-only; the store de-duplicates on
// measurement, tag set, field key, and timestamp, which makes re-submitting
// a point after a failed flush harmless.
type Point struct {
	// Measurement is the measurement family name (e.g. "telemetry", "status").
	Measurement string

	// Tags are indexed key-value pairs. Keep cardinality low; the device
	// identity is the only tag this system writes.
	Tags map[string]string

	// Fields are the typed data values (float64 or int64).
	Fields map[string]any

	// Time is the point's timestamp. Zero means "now at write time".
	Time time.Time
}

// WritePoints writes a batch of points to the configured bucket.
//
// The write is synchronous: it returns only after the server has accepted
// the batch (or rejected it). Callers that need asynchronous behaviour,
// such as the ingestion write buffer, wrap this method in their own flush
// loop
// and retain the batch on error.
//
// Parameters:
//   - ctx: Context bounding the write; the client also applies its own
//     HTTP timeout
//   - points: Points to write (empty slice is a no-op)
//
// Returns:
//   - error: nil on success, ErrWriteFailed-wrapped otherwise
func (c *Client) WritePoints(ctx context.Context, points []Point) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if len(points) == 0 {
		return nil
	}

	batch := make([]*write.Point, 0, len(points))
	for _, p := range points {
		ts := p.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		batch = append(batch, write.NewPoint(p.Measurement, p.Tags, p.Fields, ts))
	}

	if err := c.writeAPI.WritePoint(ctx, batch...); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	return nil
}
