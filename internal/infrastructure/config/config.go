package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for FieldSense.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Ingest   IngestConfig   `yaml:"ingest"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// IngestConfig contains telemetry ingestion and liveness settings.
// All durations are expressed in seconds.
type IngestConfig struct {
	// TopicRoot is the first segment of all device topics
	// (e.g. "field" matches field/<device>/data).
	TopicRoot string `yaml:"topic_root"`

	// FlushInterval is how often buffered points are flushed to the store.
	FlushInterval int `yaml:"flush_interval"`

	// OfflineThreshold is the duration of silence after which a device
	// is considered offline.
	OfflineThreshold int `yaml:"offline_threshold"`

	// SweepInterval is how often the liveness sweep runs. It should be
	// shorter than OfflineThreshold.
	SweepInterval int `yaml:"sweep_interval"`

	// StatusLookback bounds the store query for a device's most recent
	// status point when it is not in the in-memory liveness map.
	StatusLookback int `yaml:"status_lookback"`

	// LastReadingLookback bounds the store query for a device's most
	// recent telemetry point.
	LastReadingLookback int `yaml:"last_reading_lookback"`

	// MaxBufferedPoints caps the write buffer during store outages.
	// Oldest points are dropped beyond this limit.
	MaxBufferedPoints int `yaml:"max_buffered_points"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FIELDSENSE_SECTION_KEY
// For example: FIELDSENSE_MQTT_HOST, FIELDSENSE_INFLUXDB_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "fieldsense-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:    "http://localhost:8086",
			Org:    "fieldsense",
			Bucket: "telemetry",
		},
		Ingest: IngestConfig{
			TopicRoot:           "field",
			FlushInterval:       15,
			OfflineThreshold:    300,
			SweepInterval:       60,
			StatusLookback:      86400,
			LastReadingLookback: 3600,
			MaxBufferedPoints:   10000,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: FIELDSENSE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("FIELDSENSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("FIELDSENSE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("FIELDSENSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("FIELDSENSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("FIELDSENSE_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("FIELDSENSE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("FIELDSENSE_INFLUXDB_ORG"); v != "" {
		cfg.InfluxDB.Org = v
	}
	if v := os.Getenv("FIELDSENSE_INFLUXDB_BUCKET"); v != "" {
		cfg.InfluxDB.Bucket = v
	}

	// API
	if v := os.Getenv("FIELDSENSE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("FIELDSENSE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}

	// InfluxDB validation
	if c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required")
	}
	if c.InfluxDB.Org == "" {
		errs = append(errs, "influxdb.org is required")
	}
	if c.InfluxDB.Bucket == "" {
		errs = append(errs, "influxdb.bucket is required")
	}

	// Ingest validation
	if c.Ingest.TopicRoot == "" || strings.ContainsAny(c.Ingest.TopicRoot, "+#/") {
		errs = append(errs, "ingest.topic_root must be a single non-wildcard topic segment")
	}
	if c.Ingest.FlushInterval <= 0 {
		errs = append(errs, "ingest.flush_interval must be positive")
	}
	if c.Ingest.OfflineThreshold <= 0 {
		errs = append(errs, "ingest.offline_threshold must be positive")
	}
	if c.Ingest.SweepInterval <= 0 {
		errs = append(errs, "ingest.sweep_interval must be positive")
	}
	if c.Ingest.SweepInterval > c.Ingest.OfflineThreshold {
		errs = append(errs, "ingest.sweep_interval must not exceed ingest.offline_threshold")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetFlushInterval returns the write buffer flush interval as a Duration.
func (c IngestConfig) GetFlushInterval() time.Duration {
	return time.Duration(c.FlushInterval) * time.Second
}

// GetOfflineThreshold returns the liveness threshold as a Duration.
func (c IngestConfig) GetOfflineThreshold() time.Duration {
	return time.Duration(c.OfflineThreshold) * time.Second
}

// GetSweepInterval returns the liveness sweep period as a Duration.
func (c IngestConfig) GetSweepInterval() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}

// GetStatusLookback returns the status query lookback window as a Duration.
func (c IngestConfig) GetStatusLookback() time.Duration {
	return time.Duration(c.StatusLookback) * time.Second
}

// GetLastReadingLookback returns the last-reading query lookback window as a Duration.
func (c IngestConfig) GetLastReadingLookback() time.Duration {
	return time.Duration(c.LastReadingLookback) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
