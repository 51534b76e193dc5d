// FieldSense - field sensor telemetry backend
//
// This is the main entry point for the FieldSense service. It ingests
// telemetry published by field sensor units over MQTT, persists it to
// InfluxDB, tracks per-device liveness with a debounced sweep, and
// serves status/history queries over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldsense/fieldsense/internal/api"
	"github.com/fieldsense/fieldsense/internal/infrastructure/config"
	"github.com/fieldsense/fieldsense/internal/infrastructure/influxdb"
	"github.com/fieldsense/fieldsense/internal/infrastructure/logging"
	"github.com/fieldsense/fieldsense/internal/infrastructure/mqtt"
	"github.com/fieldsense/fieldsense/internal/query"
	"github.com/fieldsense/fieldsense/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting FieldSense",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to InfluxDB
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	if err != nil {
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	defer func() {
		log.Info("closing InfluxDB connection")
		if closeErr := influxClient.Close(); closeErr != nil {
			log.Error("error closing InfluxDB", "error", closeErr)
		}
	}()
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Write buffer between the ingestion path and the store
	buffer := telemetry.NewBuffer(influxClient, cfg.Ingest.GetFlushInterval(), cfg.Ingest.MaxBufferedPoints)
	buffer.SetLogger(log.With("component", "buffer"))
	buffer.Start()
	defer func() {
		log.Info("draining write buffer")
		if closeErr := buffer.Close(); closeErr != nil {
			log.Error("final flush failed, buffered points lost", "error", closeErr)
		}
	}()
	log.Info("write buffer started", "flush_interval", cfg.Ingest.GetFlushInterval())

	// Liveness tracker with its periodic sweep
	tracker := telemetry.NewTracker(cfg.Ingest.GetOfflineThreshold(), telemetry.BufferedStatusEmitter(buffer))
	tracker.SetLogger(log.With("component", "liveness"))
	go tracker.Run(ctx, cfg.Ingest.GetSweepInterval())
	log.Info("liveness tracker started",
		"offline_threshold", cfg.Ingest.GetOfflineThreshold(),
		"sweep_interval", cfg.Ingest.GetSweepInterval(),
	)

	// Ingestion dispatcher wiring broker messages into the pipeline
	topics := mqtt.Topics{Root: cfg.Ingest.TopicRoot}
	dispatcher := telemetry.NewDispatcher(mqttClient, topics, buffer, tracker)
	dispatcher.SetLogger(log.With("component", "ingest"))
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("starting ingestion: %w", err)
	}

	// Query service for the read endpoints
	queries := query.NewService(influxClient, tracker, query.Options{
		Bucket:              cfg.InfluxDB.Bucket,
		StatusLookback:      cfg.Ingest.GetStatusLookback(),
		LastReadingLookback: cfg.Ingest.GetLastReadingLookback(),
	})

	// HTTP API server
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log.With("component", "api"),
		Queries: queries,
		Store:   influxClient,
		Broker:  mqttClient,
		Devices: tracker,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Write buffer (final flush)
	// 3. MQTT
	// 4. InfluxDB

	log.Info("FieldSense stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses FIELDSENSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FIELDSENSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := influxClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("influxdb: %w", err)
	}
	return nil
}
