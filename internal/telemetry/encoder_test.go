package telemetry

import (
	"errors"
	"testing"
	"time"
)

// TestEncodeReading verifies point construction from a reading.
func TestEncodeReading(t *testing.T) {
	at := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	reading := Reading{
		Device: "istasyon1",
		Fields: map[string]any{"temperature": 22.5, "battery": 3.7},
		At:     at,
	}

	point, err := EncodeReading(reading)
	if err != nil {
		t.Fatalf("EncodeReading() error = %v", err)
	}

	if point.Measurement != MeasurementTelemetry {
		t.Errorf("Measurement = %q, want %q", point.Measurement, MeasurementTelemetry)
	}
	if point.Tags[TagDevice] != "istasyon1" {
		t.Errorf("device tag = %q, want istasyon1", point.Tags[TagDevice])
	}
	if !point.Time.Equal(at) {
		t.Errorf("Time = %v, want %v", point.Time, at)
	}
	if got := point.Fields["battery"]; got != 3.7 {
		t.Errorf("battery field = %v, want 3.7", got)
	}
	if len(point.Fields) != 2 {
		t.Errorf("field count = %d, want 2", len(point.Fields))
	}
}

// TestEncodeReading_MissingDevice verifies the empty-identity error path.
func TestEncodeReading_MissingDevice(t *testing.T) {
	_, err := EncodeReading(Reading{Fields: map[string]any{"temperature": 20.0}})
	if !errors.Is(err, ErrMissingDevice) {
		t.Errorf("error = %v, want ErrMissingDevice", err)
	}
}

// TestEncodeReading_FieldsCopied verifies buffered points are isolated
// from later mutation of the reading.
func TestEncodeReading_FieldsCopied(t *testing.T) {
	reading := Reading{
		Device: "sensorA",
		Fields: map[string]any{"temperature": 20.0},
	}

	point, err := EncodeReading(reading)
	if err != nil {
		t.Fatalf("EncodeReading() error = %v", err)
	}

	reading.Fields["temperature"] = 99.0
	if got := point.Fields["temperature"]; got != 20.0 {
		t.Errorf("point field mutated through reading: got %v, want 20.0", got)
	}
}

// TestEncodeStatus verifies both transition directions.
func TestEncodeStatus(t *testing.T) {
	at := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)

	online := EncodeStatus("sensorA", true, at)
	if online.Measurement != MeasurementStatus {
		t.Errorf("Measurement = %q, want %q", online.Measurement, MeasurementStatus)
	}
	if got := online.Fields[FieldOnline]; got != int64(1) {
		t.Errorf("online field = %v (%T), want int64(1)", got, got)
	}
	if online.Tags[TagDevice] != "sensorA" {
		t.Errorf("device tag = %q, want sensorA", online.Tags[TagDevice])
	}
	if !online.Time.Equal(at) {
		t.Errorf("Time = %v, want %v", online.Time, at)
	}

	offline := EncodeStatus("sensorA", false, at)
	if got := offline.Fields[FieldOnline]; got != int64(0) {
		t.Errorf("offline field = %v (%T), want int64(0)", got, got)
	}
}
