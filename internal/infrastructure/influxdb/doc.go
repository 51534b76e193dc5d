// Package influxdb provides time-series store connectivity for FieldSense.
//
// It wraps the official InfluxDB v2 Go client with connection management,
// blocking batch writes, and Flux queries decoded into flat rows.
//
// # Purpose
//
// This package is the single persistence layer for:
//   - Telemetry points (sensor field values per device)
//   - Status points (server-computed and device-reported liveness flags)
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.WritePoints(ctx, []influxdb.Point{{
//	    Measurement: "telemetry",
//	    Tags:        map[string]string{"device": "sensorA"},
//	    Fields:      map[string]any{"temperature": 22.5},
//	}})
//
// # Write Semantics
//
// WritePoints is deliberately synchronous. The ingestion write buffer owns
// batching and flush timing; it needs the error from a failed flush so it
// can retain the batch. Duplicate submissions after a partial failure are
// safe because the store de-duplicates on series key and timestamp.
//
// # Query Semantics
//
// QueryRows drains the client's streaming Flux result completely before
// returning, so the query layer composes responses from a finished slice
// rather than threading callback stages.
package influxdb
