package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fieldsense/fieldsense/internal/query"
)

// TestHandleStatus verifies the status endpoint response shape.
func TestHandleStatus(t *testing.T) {
	queries := &fakeQueries{status: 1}
	router := newTestServer(t, queries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status/sensorA", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if queries.gotDevice != "sensorA" {
		t.Errorf("queried device = %q, want sensorA", queries.gotDevice)
	}

	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != 1 {
		t.Errorf("body = %v, want {\"status\":1}", body)
	}
}

// TestHandleStatus_NeverSeen verifies unknown devices read as 0, not 404.
func TestHandleStatus_NeverSeen(t *testing.T) {
	router := newTestServer(t, &fakeQueries{status: 0})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status/never-seen", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != 0 {
		t.Errorf("body = %v, want {\"status\":0}", body)
	}
}

// TestHandleStatus_StoreError verifies store failures answer 502 without
// leaking internal detail.
func TestHandleStatus_StoreError(t *testing.T) {
	queries := &fakeQueries{statusErr: errors.New("influxdb: query failed: connection refused")}
	router := newTestServer(t, queries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status/sensorA", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var apiErr Error
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if apiErr.Code != ErrCodeStoreUnavailable {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeStoreUnavailable)
	}
	if apiErr.Message == "" || strings.Contains(apiErr.Message, "connection refused") {
		t.Errorf("message = %q, must be descriptive without internal detail", apiErr.Message)
	}
}

// TestHandleLastData verifies the flat field map including float fidelity.
func TestHandleLastData(t *testing.T) {
	queries := &fakeQueries{lastReading: map[string]any{
		"temperature":   22.5,
		"humidity":      60.0,
		"soil_moisture": 30.0,
		"battery":       3.7,
	}}
	router := newTestServer(t, queries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/last-data/sensorA", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body) != 4 {
		t.Errorf("field count = %d, want 4: %v", len(body), body)
	}
	if body["battery"] != 3.7 {
		t.Errorf("battery = %v, want 3.7", body["battery"])
	}
}

// TestHandleLastData_Empty verifies a silent device yields an empty
// object, not an error or null.
func TestHandleLastData_Empty(t *testing.T) {
	router := newTestServer(t, &fakeQueries{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/last-data/silent", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "{}\n" {
		t.Errorf("body = %q, want empty object", got)
	}
}

// TestHandleHistory verifies the series/stats response shape and
// parameter passthrough.
func TestHandleHistory(t *testing.T) {
	t0 := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	queries := &fakeQueries{history: query.History{
		Series: []query.Sample{
			{Time: t0, Value: 21.0},
			{Time: t0.Add(5 * time.Minute), Value: 23.0},
		},
		Stats: query.Stats{Min: 18.4, Max: 26.1, Mean: 22.3, Last: 23.0},
	}}
	router := newTestServer(t, queries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/sensorA?field=temperature&start=-24h", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if queries.gotField != "temperature" || queries.gotStart != "-24h" {
		t.Errorf("passed field=%q start=%q", queries.gotField, queries.gotStart)
	}

	var body struct {
		Series []struct {
			Time  time.Time `json:"time"`
			Value float64   `json:"value"`
		} `json:"series"`
		Stats map[string]float64 `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body.Series) != 2 {
		t.Fatalf("series length = %d, want 2", len(body.Series))
	}
	if body.Series[0].Value != 21.0 {
		t.Errorf("series[0].value = %v, want 21.0", body.Series[0].Value)
	}
	if body.Stats["mean"] != 22.3 || body.Stats["last"] != 23.0 {
		t.Errorf("stats = %v", body.Stats)
	}
}

// TestHandleHistory_MissingField verifies the required-parameter client
// error.
func TestHandleHistory_MissingField(t *testing.T) {
	router := newTestServer(t, &fakeQueries{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/sensorA?start=-24h", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var apiErr Error
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if apiErr.Code != ErrCodeBadRequest {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeBadRequest)
	}
}

// TestHandleHistory_InvalidStart verifies range validation surfaces as a
// client error.
func TestHandleHistory_InvalidStart(t *testing.T) {
	queries := &fakeQueries{historyErr: query.ErrInvalidRange}
	router := newTestServer(t, queries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/sensorA?field=temperature&start=tomorrow", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// TestHandleHistory_StoreError verifies store failures answer 502.
func TestHandleHistory_StoreError(t *testing.T) {
	queries := &fakeQueries{historyErr: errors.New("influxdb: query failed")}
	router := newTestServer(t, queries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/sensorA?field=temperature", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
