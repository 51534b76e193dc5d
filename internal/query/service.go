package query

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldsense/fieldsense/internal/infrastructure/influxdb"
	"github.com/fieldsense/fieldsense/internal/telemetry"
)

// Measurement and field names shared with the ingestion pipeline.
const (
	measurementTelemetry = telemetry.MeasurementTelemetry
	measurementStatus    = telemetry.MeasurementStatus
	fieldOnline          = telemetry.FieldOnline
)

// Default lookback windows, overridable via Options.
const (
	defaultStatusLookback      = 24 * time.Hour
	defaultLastReadingLookback = time.Hour
	defaultRangeStart          = "-24h"
)

// RowQuerier is the store read capability the service consumes.
type RowQuerier interface {
	QueryRows(ctx context.Context, flux string) ([]influxdb.Row, error)
}

// StatusSource is the in-memory liveness fast path for GetStatus.
type StatusSource interface {
	Status(device string) (int, bool)
}

// Sample is one (time, value) point of a history series.
type Sample struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Stats summarises the raw samples of a history range.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Last float64 `json:"last"`
}

// History is a downsampled series plus its raw-sample summary.
type History struct {
	Series []Sample `json:"series"`
	Stats  Stats    `json:"stats"`
}

// Options configures a query service.
type Options struct {
	// Bucket is the store bucket to query.
	Bucket string

	// StatusLookback bounds the search for the last status point.
	// Zero means 24h.
	StatusLookback time.Duration

	// LastReadingLookback bounds the search for the latest telemetry
	// point. Zero means 1h.
	LastReadingLookback time.Duration
}

// Service answers status, latest-value, and history queries by composing
// range queries against the store.
//
// It is read-only: nothing here mutates liveness state or writes points.
// Absence of data is never an error; only store failures are.
type Service struct {
	store               RowQuerier
	live                StatusSource
	bucket              string
	statusLookback      time.Duration
	lastReadingLookback time.Duration
}

// NewService creates a query service.
//
// Parameters:
//   - store: Store read capability (typically the InfluxDB client)
//   - live: In-memory liveness snapshot; may be nil, in which case
//     GetStatus always falls through to persisted history
//   - opts: Bucket and lookback configuration
func NewService(store RowQuerier, live StatusSource, opts Options) *Service {
	statusLookback := opts.StatusLookback
	if statusLookback <= 0 {
		statusLookback = defaultStatusLookback
	}
	lastReadingLookback := opts.LastReadingLookback
	if lastReadingLookback <= 0 {
		lastReadingLookback = defaultLastReadingLookback
	}

	return &Service{
		store:               store,
		live:                live,
		bucket:              opts.Bucket,
		statusLookback:      statusLookback,
		lastReadingLookback: lastReadingLookback,
	}
}

// GetStatus returns a device's liveness flag, 1 or 0.
//
// The in-memory state is consulted first; for devices not tracked this
// process lifetime (e.g. after a restart) the most recent persisted
// status point within the lookback window decides. A device with no
// record anywhere is 0, never an error.
func (s *Service) GetStatus(ctx context.Context, device string) (int, error) {
	if s.live != nil {
		if status, tracked := s.live.Status(device); tracked {
			return status, nil
		}
	}

	rows, err := s.store.QueryRows(ctx, lastStatusFlux(s.bucket, device, s.statusLookback))
	if err != nil {
		return 0, fmt.Errorf("querying status for %s: %w", device, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if value, ok := toFloat64(rows[0].Value); ok && value != 0 {
		return 1, nil
	}
	return 0, nil
}

// GetLastReading returns the most recent value of every telemetry field
// for a device as a flat field→value mapping.
//
// The mapping is empty (not nil, not an error) when the device has no
// telemetry within the lookback window.
func (s *Service) GetLastReading(ctx context.Context, device string) (map[string]any, error) {
	rows, err := s.store.QueryRows(ctx, lastReadingFlux(s.bucket, device, s.lastReadingLookback))
	if err != nil {
		return nil, fmt.Errorf("querying last reading for %s: %w", device, err)
	}

	reading := make(map[string]any, len(rows))
	for _, row := range rows {
		if row.Field == "" {
			continue
		}
		reading[row.Field] = row.Value
	}
	return reading, nil
}

// GetHistory returns a downsampled series and raw-sample summary for one
// field of a device.
//
// The window size is a fixed function of the requested range so the
// series stays bounded regardless of how far back the caller asks.
// The summary is computed over the raw samples of the full range, never
// over the windowed series.
//
// Parameters:
//   - device: Device identity
//   - field: Field name; required (ErrFieldRequired if empty)
//   - start: Negative range offset like "-24h" or "-7d"; empty means -24h
//
// Returns:
//   - History: Ordered series with empty windows omitted, plus stats
//     (all zero when the range holds no samples)
//   - error: ErrFieldRequired/ErrInvalidRange for bad requests, wrapped
//     store errors otherwise
func (s *Service) GetHistory(ctx context.Context, device, field, start string) (History, error) {
	if field == "" {
		return History{}, ErrFieldRequired
	}
	if start == "" {
		start = defaultRangeStart
	}

	lookback, err := parseRangeStart(start)
	if err != nil {
		return History{}, err
	}
	window := windowFor(lookback)

	seriesRows, err := s.store.QueryRows(ctx, historySeriesFlux(s.bucket, device, field, lookback, window))
	if err != nil {
		return History{}, fmt.Errorf("querying history for %s: %w", device, err)
	}

	series := make([]Sample, 0, len(seriesRows))
	for _, row := range seriesRows {
		value, ok := toFloat64(row.Value)
		if !ok {
			continue
		}
		series = append(series, Sample{Time: row.Time, Value: value})
	}

	stats, err := s.queryStats(ctx, device, field, lookback)
	if err != nil {
		return History{}, err
	}

	return History{Series: series, Stats: stats}, nil
}

// queryStats runs the raw-sample summary query and maps the labelled
// streams into a Stats value.
func (s *Service) queryStats(ctx context.Context, device, field string, lookback time.Duration) (Stats, error) {
	rows, err := s.store.QueryRows(ctx, historyStatsFlux(s.bucket, device, field, lookback))
	if err != nil {
		return Stats{}, fmt.Errorf("querying statistics for %s: %w", device, err)
	}

	var stats Stats
	for _, row := range rows {
		value, ok := toFloat64(row.Value)
		if !ok {
			continue
		}
		switch row.Tag("stat") {
		case "min":
			stats.Min = value
		case "max":
			stats.Max = value
		case "mean":
			stats.Mean = value
		case "last":
			stats.Last = value
		}
	}
	return stats, nil
}

// toFloat64 coerces the numeric types the store returns.
func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
