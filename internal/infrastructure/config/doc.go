// Package config provides configuration loading for FieldSense.
//
// Configuration is loaded from a YAML file with hardcoded defaults and
// environment variable overrides (FIELDSENSE_* pattern).
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Loading Order
//
//  1. Hardcoded defaults
//  2. YAML file values
//  3. Environment variables (highest priority)
//
// # Validation
//
// Load() validates the final configuration and returns descriptive
// errors for invalid values (broker host, QoS range, port range,
// ingestion timing relationships).
package config
