package telemetry

import (
	"fmt"
	"time"

	"github.com/fieldsense/fieldsense/internal/infrastructure/mqtt"
)

// subscribeQoS is the QoS level for device subscriptions. At-least-once
// from the broker matches the buffer's at-least-once into the store.
const subscribeQoS = 1

// Subscriber is the transport capability the dispatcher consumes.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Dispatcher routes inbound device messages into the pipeline.
//
// It subscribes to the data and status wildcards for all devices,
// extracts the device identity from the topic, and hands valid payloads
// to the encoder, buffer, and tracker. Malformed messages are logged and
// discarded without touching any state; handler errors never propagate
// to the transport layer.
type Dispatcher struct {
	sub     Subscriber
	topics  mqtt.Topics
	buffer  *Buffer
	tracker *Tracker
	logger  Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewDispatcher creates an ingestion dispatcher.
func NewDispatcher(sub Subscriber, topics mqtt.Topics, buffer *Buffer, tracker *Tracker) *Dispatcher {
	return &Dispatcher{
		sub:     sub,
		topics:  topics,
		buffer:  buffer,
		tracker: tracker,
		logger:  noopLogger{},
		now:     time.Now,
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// Start subscribes to the device data and status topic patterns.
//
// Returns:
//   - error: If either subscription cannot be established
func (d *Dispatcher) Start() error {
	dataTopic := d.topics.AllDeviceData()
	if err := d.sub.Subscribe(dataTopic, subscribeQoS, d.handleData); err != nil {
		return fmt.Errorf("subscribing %s: %w", dataTopic, err)
	}

	statusTopic := d.topics.AllDeviceStatus()
	if err := d.sub.Subscribe(statusTopic, subscribeQoS, d.handleStatus); err != nil {
		return fmt.Errorf("subscribing %s: %w", statusTopic, err)
	}

	d.logger.Info("ingestion subscriptions active", "data", dataTopic, "status", statusTopic)
	return nil
}

// handleData processes one telemetry message.
func (d *Dispatcher) handleData(topic string, payload []byte) error {
	device, ok := d.topics.DeviceID(topic)
	if !ok {
		d.logger.Warn("unrecognised topic shape", "topic", topic)
		return nil
	}

	reading, err := ParseReading(device, payload)
	if err != nil {
		d.logger.Warn("discarding unparseable payload", "device", device, "error", err)
		return nil
	}

	point, err := EncodeReading(reading)
	if err != nil {
		d.logger.Warn("discarding reading", "device", device, "error", err)
		return nil
	}

	d.buffer.Enqueue(point)
	d.tracker.Touch(device, d.now())
	return nil
}

// handleStatus processes one device-reported status message.
func (d *Dispatcher) handleStatus(topic string, payload []byte) error {
	device, ok := d.topics.DeviceID(topic)
	if !ok {
		d.logger.Warn("unrecognised topic shape", "topic", topic)
		return nil
	}

	online, err := ParseStatusFlag(payload)
	if err != nil {
		d.logger.Warn("discarding status message", "device", device, "error", err)
		return nil
	}

	d.tracker.ReportStatus(device, online, d.now())
	return nil
}
