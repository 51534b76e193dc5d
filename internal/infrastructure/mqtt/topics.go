package mqtt

import (
	"fmt"
	"strings"
)

// TopicServiceStatus is the retained topic carrying the ingestion service's
// own online/offline status (LWT target). It is deliberately outside the
// configurable device topic root so dashboards can find it without knowing
// the deployment's root segment.
const TopicServiceStatus = "fieldsense/service/status"

// DefaultTopicRoot is the device topic root used when none is configured.
const DefaultTopicRoot = "field"

// Topics provides builders for FieldSense device topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
// Device topics follow the scheme: {root}/{deviceId}/{leaf}
//
//	topics := mqtt.Topics{Root: "farm"}
//	dataTopic := topics.DeviceData("sensorA")
//	// Returns: "farm/sensorA/data"
type Topics struct {
	// Root is the first topic segment for all device topics.
	// Empty means DefaultTopicRoot.
	Root string
}

// topicLeaf values for the device topic scheme.
const (
	leafData   = "data"
	leafStatus = "status"
)

// root returns the effective topic root.
func (t Topics) root() string {
	if t.Root == "" {
		return DefaultTopicRoot
	}
	return t.Root
}

// DeviceData returns the telemetry data topic for a device.
//
// Example: field/sensorA/data
func (t Topics) DeviceData(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", t.root(), deviceID, leafData)
}

// DeviceStatus returns the device-reported status topic for a device.
//
// Example: field/sensorA/status
func (t Topics) DeviceStatus(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", t.root(), deviceID, leafStatus)
}

// AllDeviceData returns the wildcard pattern matching every device's
// telemetry data topic.
//
// Example: field/+/data
func (t Topics) AllDeviceData() string {
	return fmt.Sprintf("%s/+/%s", t.root(), leafData)
}

// AllDeviceStatus returns the wildcard pattern matching every device's
// status topic.
//
// Example: field/+/status
func (t Topics) AllDeviceStatus() string {
	return fmt.Sprintf("%s/+/%s", t.root(), leafStatus)
}

// DeviceID extracts the device identity from a device topic.
//
// The device identity is the second path segment of the three-segment
// scheme {root}/{deviceId}/{leaf}. Topics with a different shape, a
// different root, or an empty identity segment return ok=false.
//
// Example:
//
//	topics.DeviceID("field/sensorA/data") // "sensorA", true
//	topics.DeviceID("field/data")         // "", false
func (t Topics) DeviceID(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != t.root() {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	if parts[2] != leafData && parts[2] != leafStatus {
		return "", false
	}
	return parts[1], true
}
