package telemetry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Recognised reading fields. Everything else in a payload is ignored.
//
// All fields are floats except wind_direction, which is an integer
// compass degree.
var floatFields = []string{
	"temperature",
	"humidity",
	"soil_moisture",
	"battery",
	"wind_speed",
}

const fieldWindDirection = "wind_direction"

// Reading is one decoded telemetry message from a device.
//
// Fields holds only the recognised values that were present and numeric
// in the payload. Missing or non-numeric fields are omitted rather than
// zero-filled; a zero would be indistinguishable from a real zero sample
// and corrupt aggregate statistics downstream.
type Reading struct {
	// Device is the unit's identity from the message topic.
	Device string

	// Fields maps field name to float64, except wind_direction (int64).
	Fields map[string]any

	// At is the capture time. Zero means "now at write time".
	At time.Time
}

// ParseReading decodes a JSON telemetry payload for a device.
//
// Field values may arrive as JSON numbers or as numeric strings (some
// firmware serialises everything as strings); both are accepted. Values
// that are absent, non-numeric, or not finite are omitted. A payload
// that yields no recognised fields at all is an error.
//
// Parameters:
//   - deviceID: Device identity extracted from the message topic
//   - payload: Raw JSON message body
//
// Returns:
//   - Reading: Decoded reading with only the present, numeric fields
//   - error: ErrInvalidPayload-wrapped if the payload is not a JSON
//     object or contains no usable fields
func ParseReading(deviceID string, payload []byte) (Reading, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	fields := make(map[string]any)
	for _, name := range floatFields {
		if value, ok := toFloat(raw[name]); ok {
			fields[name] = value
		}
	}
	if value, ok := toFloat(raw[fieldWindDirection]); ok {
		fields[fieldWindDirection] = int64(math.Round(value))
	}

	if len(fields) == 0 {
		return Reading{}, fmt.Errorf("%w: no recognised numeric fields", ErrInvalidPayload)
	}

	return Reading{Device: deviceID, Fields: fields}, nil
}

// toFloat coerces a decoded JSON value to a finite float64.
func toFloat(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseStatusFlag decodes a device-reported liveness payload.
//
// The payload is a bare integer; any non-zero value means online.
//
// Returns:
//   - bool: true if the device reports itself online
//   - error: ErrInvalidPayload-wrapped if the payload is not an integer
func ParseStatusFlag(payload []byte) (bool, error) {
	s := strings.TrimSpace(string(payload))
	value, err := strconv.Atoi(s)
	if err != nil {
		return false, fmt.Errorf("%w: status flag %q", ErrInvalidPayload, s)
	}
	return value != 0, nil
}
