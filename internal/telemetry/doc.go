// Package telemetry implements the FieldSense ingestion pipeline.
//
// It turns inbound MQTT messages from field sensor units into persisted
// time-series points and tracks each unit's liveness.
//
// # Components
//
//   - Reading / ParseReading: decode and validate device payloads
//   - EncodeReading / EncodeStatus: build tagged store points
//   - Buffer: interval-flushed batch writer with at-least-once delivery
//   - Tracker: debounced online/offline state machine with periodic sweep
//   - Dispatcher: subscribes device topics and routes messages
//
// # Data Flow
//
//	broker → Dispatcher → ParseReading → EncodeReading → Buffer → store
//	                    └→ Tracker ──(transition)──→ Buffer → store
//
// # Liveness Model
//
// A device is online from its first valid reading until it has been
// silent past the offline threshold, detected by the sweep. Status
// points are written only on transitions, which keeps status write
// volume bounded while letting uptime history be reconstructed from
// the store alone, including after a process restart.
//
// # Error Discipline
//
// Ingestion errors are local: malformed payloads are logged and
// discarded, flush failures retain the batch for the next cycle, and
// nothing on this path crashes the process or reaches the query path.
package telemetry
