package influxdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/fieldsense/fieldsense/internal/infrastructure/config"
)

// newTestClient creates an InfluxDB client bound to the test server.
func newTestClient(server *httptest.Server) *Client {
	inner := influxdb2.NewClient(server.URL, "test-token")
	return &Client{
		client:    inner,
		writeAPI:  inner.WriteAPIBlocking("test-org", "test-bucket"),
		queryAPI:  inner.QueryAPI("test-org"),
		cfg:       config.InfluxDBConfig{URL: server.URL, Org: "test-org", Bucket: "test-bucket"},
		connected: true,
	}
}

// TestConnect verifies a successful connection against a healthy server.
func TestConnect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ping" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := config.InfluxDBConfig{
		URL:    server.URL,
		Token:  "test-token",
		Org:    "test-org",
		Bucket: "test-bucket",
	}

	client, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after successful Connect")
	}
	if client.Bucket() != "test-bucket" {
		t.Errorf("Bucket() = %q, want %q", client.Bucket(), "test-bucket")
	}
}

// TestConnect_Unreachable verifies connection failures are surfaced.
func TestConnect_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := config.InfluxDBConfig{URL: server.URL, Token: "test-token"}

	_, err := Connect(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error connecting to unhealthy server")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("error = %v, want ErrConnectionFailed", err)
	}
}

// TestHealthCheck verifies an active ping against a healthy server.
func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ping" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

// TestHealthCheck_NotConnected verifies the closed-client path.
func TestHealthCheck_NotConnected(t *testing.T) {
	client := &Client{}

	err := client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

// TestClose verifies Close marks the client disconnected and is idempotent.
func TestClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}
