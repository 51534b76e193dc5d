// Package logging provides structured logging for FieldSense.
//
// It wraps the standard library log/slog with configuration-driven
// format and level selection, plus default service attributes.
//
// # Usage
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("MQTT connected", "broker", addr)
//
//	componentLog := log.With("component", "ingest")
//
// Before configuration is available, use logging.Default().
package logging
