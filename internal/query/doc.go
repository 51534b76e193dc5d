// Package query answers read requests against the time-series store.
//
// It composes Flux range queries for three operations:
//
//   - GetStatus: current liveness flag, in-memory fast path with a
//     persisted-history fallback, defaulting to 0 when nothing is known
//   - GetLastReading: latest value of every telemetry field as a flat map
//   - GetHistory: windowed mean series plus a raw-sample min/max/mean/last
//     summary over the requested range
//
// # Downsampling
//
// History series are averaged into fixed windows chosen by a lookup
// table on the requested range (5m up to a day, 30m up to a week, 2h up
// to a month, 1d beyond). The summary block deliberately bypasses the
// windows and aggregates the raw samples, so its mean is sum/count over
// every sample and min/max are true extrema.
//
// # Error Discipline
//
// Missing data is an answer, not an error: status 0, an empty reading
// map, an empty series. Bad requests fail with ErrFieldRequired or
// ErrInvalidRange before any store query is issued; store failures are
// wrapped and surfaced so the HTTP layer can distinguish them.
package query
