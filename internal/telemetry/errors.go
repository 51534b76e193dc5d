package telemetry

import "errors"

// Sentinel errors for the ingestion pipeline.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, telemetry.ErrInvalidPayload) {
//	    // Discard the message, log, keep processing
//	}
var (
	// ErrInvalidPayload indicates an inbound message could not be parsed
	// into a telemetry reading or status flag.
	ErrInvalidPayload = errors.New("telemetry: invalid payload")

	// ErrMissingDevice indicates a reading without a device identity.
	ErrMissingDevice = errors.New("telemetry: device identity missing")
)
