package influxdb

import (
	"context"
	"fmt"
	"time"
)

// Flux result columns that are part of the protocol rather than user data.
// Everything else in a record is treated as a tag column.
var protocolColumns = map[string]struct{}{
	"result":       {},
	"table":        {},
	"_start":       {},
	"_stop":        {},
	"_time":        {},
	"_value":       {},
	"_field":       {},
	"_measurement": {},
}

// Row is one decoded record from a Flux query result.
type Row struct {
	// Time is the record's _time column.
	Time time.Time

	// Measurement is the record's _measurement column.
	Measurement string

	// Field is the record's _field column.
	Field string

	// Value is the record's _value column (float64 or int64 for the
	// measurements this system writes).
	Value any

	// Tags holds the remaining string-valued columns (device, stat, ...).
	Tags map[string]string
}

// Tag returns the named tag column, or "" if absent.
func (r Row) Tag(key string) string {
	return r.Tags[key]
}

// QueryRows executes a Flux query and drains the streaming result fully
// into decoded rows before returning.
//
// Draining up front keeps the query layer free of partially-consumed
// iterator state: a returned slice is either complete or the call failed.
// Response sizes are bounded by the callers' downsampling windows and
// lookback limits.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - flux: Flux query text (callers must quote interpolated values)
//
// Returns:
//   - []Row: All records in table order (empty slice when no data matched)
//   - error: ErrQueryFailed-wrapped on transport or query errors
func (c *Client) QueryRows(ctx context.Context, flux string) ([]Row, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	rows := make([]Row, 0, 64)
	for result.Next() {
		record := result.Record()

		row := Row{
			Time:        record.Time(),
			Measurement: record.Measurement(),
			Field:       record.Field(),
			Value:       record.Value(),
			Tags:        make(map[string]string),
		}
		for key, value := range record.Values() {
			if _, isProtocol := protocolColumns[key]; isProtocol {
				continue
			}
			if s, ok := value.(string); ok {
				row.Tags[key] = s
			}
		}

		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	return rows, nil
}
