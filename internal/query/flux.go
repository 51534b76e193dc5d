package query

import (
	"fmt"
	"strings"
	"time"
)

// fluxEscaper escapes string literals interpolated into Flux queries.
// Device identities come straight from URL paths, so every interpolated
// value is quoted through this.
var fluxEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// fluxQuote renders a Flux string literal.
func fluxQuote(s string) string {
	return `"` + fluxEscaper.Replace(s) + `"`
}

// fluxDuration renders a duration as a Flux duration literal in whole
// seconds.
func fluxDuration(d time.Duration) string {
	return fmt.Sprintf("%ds", int64(d.Seconds()))
}

// lastStatusFlux queries the most recent status point for a device
// within the lookback window.
func lastStatusFlux(bucket, device string, lookback time.Duration) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: -%s)
  |> filter(fn: (r) => r._measurement == %s)
  |> filter(fn: (r) => r.device == %s)
  |> filter(fn: (r) => r._field == %s)
  |> last()`,
		fluxQuote(bucket),
		fluxDuration(lookback),
		fluxQuote(measurementStatus),
		fluxQuote(device),
		fluxQuote(fieldOnline),
	)
}

// lastReadingFlux queries the most recent value of every telemetry field
// for a device within the lookback window. Results arrive grouped per
// field, so last() yields one row per field.
func lastReadingFlux(bucket, device string, lookback time.Duration) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: -%s)
  |> filter(fn: (r) => r._measurement == %s)
  |> filter(fn: (r) => r.device == %s)
  |> last()`,
		fluxQuote(bucket),
		fluxDuration(lookback),
		fluxQuote(measurementTelemetry),
		fluxQuote(device),
	)
}

// historySeriesFlux queries the windowed mean series for one field.
// Empty windows are omitted rather than interpolated.
func historySeriesFlux(bucket, device, field string, lookback, window time.Duration) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: -%s)
  |> filter(fn: (r) => r._measurement == %s)
  |> filter(fn: (r) => r.device == %s)
  |> filter(fn: (r) => r._field == %s)
  |> aggregateWindow(every: %s, fn: mean, createEmpty: false)
  |> sort(columns: ["_time"])`,
		fluxQuote(bucket),
		fluxDuration(lookback),
		fluxQuote(measurementTelemetry),
		fluxQuote(device),
		fluxQuote(field),
		fluxDuration(window),
	)
}

// historyStatsFlux queries min/max/mean/last over the raw, unwindowed
// samples of one field. Each stream is labelled with a "stat" column so
// the four single-row results can be told apart after the union.
//
// Computing these over raw samples rather than the windowed series keeps
// the summary unbiased: the mean is sum/count of every sample, and
// min/max are true extrema, not per-window approximations.
func historyStatsFlux(bucket, device, field string, lookback time.Duration) string {
	return fmt.Sprintf(`base = from(bucket: %s)
  |> range(start: -%s)
  |> filter(fn: (r) => r._measurement == %s)
  |> filter(fn: (r) => r.device == %s)
  |> filter(fn: (r) => r._field == %s)

union(tables: [
  base |> min() |> set(key: "stat", value: "min"),
  base |> max() |> set(key: "stat", value: "max"),
  base |> mean() |> set(key: "stat", value: "mean"),
  base |> last() |> set(key: "stat", value: "last"),
])`,
		fluxQuote(bucket),
		fluxDuration(lookback),
		fluxQuote(measurementTelemetry),
		fluxQuote(device),
		fluxQuote(field),
	)
}
