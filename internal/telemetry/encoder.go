package telemetry

import (
	"time"

	"github.com/fieldsense/fieldsense/internal/infrastructure/influxdb"
)

// Measurement and tag names for the two persisted point families.
const (
	// MeasurementTelemetry holds sensor field values.
	MeasurementTelemetry = "telemetry"

	// MeasurementStatus holds liveness transitions.
	MeasurementStatus = "status"

	// TagDevice is the device identity tag on every point.
	TagDevice = "device"

	// FieldOnline is the status measurement's single field, 1 or 0.
	FieldOnline = "online"
)

// EncodeReading translates a reading into one telemetry point tagged with
// the device identity, containing exactly the fields present in the input.
//
// Returns:
//   - influxdb.Point: Point ready for the write buffer
//   - error: ErrMissingDevice if the reading has no device identity
func EncodeReading(r Reading) (influxdb.Point, error) {
	if r.Device == "" {
		return influxdb.Point{}, ErrMissingDevice
	}

	// Copy so later mutation of the reading cannot reach the buffered point.
	fields := make(map[string]any, len(r.Fields))
	for name, value := range r.Fields {
		fields[name] = value
	}

	return influxdb.Point{
		Measurement: MeasurementTelemetry,
		Tags:        map[string]string{TagDevice: r.Device},
		Fields:      fields,
		Time:        r.At,
	}, nil
}

// EncodeStatus builds a status point recording a liveness transition.
func EncodeStatus(device string, online bool, at time.Time) influxdb.Point {
	var flag int64
	if online {
		flag = 1
	}

	return influxdb.Point{
		Measurement: MeasurementStatus,
		Tags:        map[string]string{TagDevice: device},
		Fields:      map[string]any{FieldOnline: flag},
		Time:        at,
	}
}
