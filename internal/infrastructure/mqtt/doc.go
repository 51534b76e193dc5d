// Package mqtt provides MQTT broker connectivity for FieldSense.
//
// It wraps the Eclipse Paho MQTT client with connection management,
// automatic reconnection, subscription restoration, and Last Will and
// Testament (LWT) publishing for service offline detection.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topics := mqtt.Topics{Root: cfg.Ingest.TopicRoot}
//	client.Subscribe(topics.AllDeviceData(), 1, handleDeviceData)
//
// # Topic Scheme
//
// Device topics follow {root}/{deviceId}/{leaf} where leaf is "data"
// (telemetry JSON) or "status" (bare integer liveness flag reported by
// the device firmware). The Topics helper builds patterns and extracts
// device identities from concrete topics.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Message handlers are invoked on paho's goroutines and are wrapped
// with panic recovery.
//
// # Reconnection
//
// The client reconnects automatically with exponential backoff and
// restores all tracked subscriptions on reconnect. The retained service
// status message and the broker-side LWT let consumers distinguish
// graceful shutdown from crashes.
package mqtt
