// Package api provides the HTTP REST API for FieldSense.
//
// It exposes the read side of the telemetry pipeline to dashboards and
// other clients:
//
//	GET /api/health                 server and dependency health
//	GET /api/status/{device}        current liveness flag
//	GET /api/last-data/{device}     latest value of every field
//	GET /api/history/{device}       downsampled series + summary stats
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Bad requests answer 400; store failures answer 502 with a descriptive
// message and never leak internal error detail.
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
