package influxdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestWritePoints verifies line-protocol encoding and batch submission.
func TestWritePoints(t *testing.T) {
	var gotBody string
	var gotRequests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/write" {
			t.Errorf("path = %q, want /api/v2/write", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotRequests++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server)

	ts := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	points := []Point{
		{
			Measurement: "telemetry",
			Tags:        map[string]string{"device": "istasyon1"},
			Fields:      map[string]any{"temperature": 22.5, "battery": 3.7},
			Time:        ts,
		},
		{
			Measurement: "status",
			Tags:        map[string]string{"device": "istasyon1"},
			Fields:      map[string]any{"online": int64(1)},
			Time:        ts,
		},
	}

	if err := client.WritePoints(context.Background(), points); err != nil {
		t.Fatalf("WritePoints() error = %v", err)
	}

	if gotRequests != 1 {
		t.Errorf("write requests = %d, want 1 (single batch)", gotRequests)
	}

	lines := strings.Split(strings.TrimSpace(gotBody), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2: %q", len(lines), gotBody)
	}
	if !strings.HasPrefix(lines[0], "telemetry,device=istasyon1 ") {
		t.Errorf("telemetry line = %q, want telemetry,device=istasyon1 prefix", lines[0])
	}
	if !strings.Contains(lines[0], "temperature=22.5") {
		t.Errorf("telemetry line = %q, missing temperature=22.5", lines[0])
	}
	if !strings.Contains(lines[0], "battery=3.7") {
		t.Errorf("telemetry line = %q, missing battery=3.7", lines[0])
	}
	if !strings.Contains(lines[1], "online=1i") {
		t.Errorf("status line = %q, want integer online field", lines[1])
	}
}

// TestWritePoints_Empty verifies an empty batch makes no server round trip.
func TestWritePoints_Empty(t *testing.T) {
	var gotRequests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		gotRequests++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server)

	if err := client.WritePoints(context.Background(), nil); err != nil {
		t.Fatalf("WritePoints(nil) error = %v", err)
	}
	if gotRequests != 0 {
		t.Errorf("write requests = %d, want 0", gotRequests)
	}
}

// TestWritePoints_ServerError verifies failures wrap ErrWriteFailed.
func TestWritePoints_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"write rejected"}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	err := client.WritePoints(context.Background(), []Point{
		{Measurement: "telemetry", Fields: map[string]any{"temperature": 1.0}},
	})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("error = %v, want ErrWriteFailed", err)
	}
}

// TestWritePoints_NotConnected verifies the closed-client path.
func TestWritePoints_NotConnected(t *testing.T) {
	client := &Client{}

	err := client.WritePoints(context.Background(), []Point{{Measurement: "telemetry"}})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}
