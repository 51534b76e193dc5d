package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/fieldsense/fieldsense/internal/infrastructure/mqtt"
)

// fakeSubscriber records subscriptions so tests can invoke handlers
// directly, standing in for the broker.
type fakeSubscriber struct {
	handlers map[string]mqtt.MessageHandler
	err      error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: make(map[string]mqtt.MessageHandler)}
}

func (s *fakeSubscriber) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	if s.err != nil {
		return s.err
	}
	s.handlers[topic] = handler
	return nil
}

// deliver invokes the handler whose wildcard pattern covers the topic.
func (s *fakeSubscriber) deliver(t *testing.T, pattern, topic string, payload []byte) {
	t.Helper()
	handler, ok := s.handlers[pattern]
	if !ok {
		t.Fatalf("no subscription for pattern %q", pattern)
	}
	if err := handler(topic, payload); err != nil {
		t.Fatalf("handler returned error to transport: %v", err)
	}
}

// newTestDispatcher wires a dispatcher with fakes and a fixed clock.
func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeSubscriber, *Buffer, *Tracker, *transitionRecorder) {
	t.Helper()

	sub := newFakeSubscriber()
	writer := &fakeWriter{}
	buffer := NewBuffer(writer, time.Minute, 100)
	recorder := &transitionRecorder{}
	tracker := NewTracker(5*time.Minute, recorder.emit)

	dispatcher := NewDispatcher(sub, mqtt.Topics{Root: "field"}, buffer, tracker)
	dispatcher.now = func() time.Time {
		return time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	}

	if err := dispatcher.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	return dispatcher, sub, buffer, tracker, recorder
}

// TestDispatcherStart verifies both wildcard subscriptions are established.
func TestDispatcherStart(t *testing.T) {
	_, sub, _, _, _ := newTestDispatcher(t)

	if _, ok := sub.handlers["field/+/data"]; !ok {
		t.Error("data wildcard not subscribed")
	}
	if _, ok := sub.handlers["field/+/status"]; !ok {
		t.Error("status wildcard not subscribed")
	}
}

// TestDispatcherStart_SubscribeError verifies subscription failures surface.
func TestDispatcherStart_SubscribeError(t *testing.T) {
	sub := newFakeSubscriber()
	sub.err = errors.New("broker unavailable")
	buffer := NewBuffer(&fakeWriter{}, time.Minute, 100)
	tracker := NewTracker(5*time.Minute, func(Transition) {})

	dispatcher := NewDispatcher(sub, mqtt.Topics{Root: "field"}, buffer, tracker)
	if err := dispatcher.Start(); err == nil {
		t.Fatal("expected error when subscription fails")
	}
}

// TestDispatcherData verifies a valid reading is buffered and the device
// goes online.
func TestDispatcherData(t *testing.T) {
	_, sub, buffer, tracker, recorder := newTestDispatcher(t)

	payload := []byte(`{"temperature":22.5,"humidity":60,"soil_moisture":30,"battery":90}`)
	sub.deliver(t, "field/+/data", "field/sensorA/data", payload)

	// One telemetry point plus the online status transition.
	if buffer.Len() != 1 {
		t.Errorf("buffered point count = %d, want 1 telemetry point", buffer.Len())
	}
	if transitions := recorder.all(); len(transitions) != 1 || !transitions[0].Online {
		t.Errorf("transitions = %+v, want one online", transitions)
	}
	if status, tracked := tracker.Status("sensorA"); !tracked || status != 1 {
		t.Errorf("Status() = %d, %v, want 1, true", status, tracked)
	}
}

// TestDispatcherData_Malformed verifies unparseable payloads mutate nothing.
func TestDispatcherData_Malformed(t *testing.T) {
	_, sub, buffer, tracker, recorder := newTestDispatcher(t)

	sub.deliver(t, "field/+/data", "field/sensorA/data", []byte("not json"))
	sub.deliver(t, "field/+/data", "field/sensorA/data", []byte(`{"firmware":"v2.1"}`))

	if buffer.Len() != 0 {
		t.Errorf("buffered point count = %d, want 0", buffer.Len())
	}
	if transitions := recorder.all(); len(transitions) != 0 {
		t.Errorf("transitions = %+v, want none", transitions)
	}
	if _, tracked := tracker.Status("sensorA"); tracked {
		t.Error("device tracked after discarded payloads")
	}
}

// TestDispatcherData_ForeignTopic verifies messages outside the device
// topic scheme are ignored.
func TestDispatcherData_ForeignTopic(t *testing.T) {
	_, sub, buffer, _, _ := newTestDispatcher(t)

	sub.deliver(t, "field/+/data", "field/data", []byte(`{"temperature":20}`))

	if buffer.Len() != 0 {
		t.Errorf("buffered point count = %d, want 0", buffer.Len())
	}
}

// TestDispatcherStatus verifies device-reported flags reach the tracker.
func TestDispatcherStatus(t *testing.T) {
	_, sub, _, tracker, recorder := newTestDispatcher(t)

	sub.deliver(t, "field/+/status", "field/sensorA/status", []byte("1"))
	if status, tracked := tracker.Status("sensorA"); !tracked || status != 1 {
		t.Fatalf("Status() = %d, %v after reported online, want 1, true", status, tracked)
	}

	sub.deliver(t, "field/+/status", "field/sensorA/status", []byte("0"))
	if status, tracked := tracker.Status("sensorA"); !tracked || status != 0 {
		t.Fatalf("Status() = %d, %v after reported offline, want 0, true", status, tracked)
	}

	if transitions := recorder.all(); len(transitions) != 2 {
		t.Errorf("transition count = %d, want 2", len(transitions))
	}
}

// TestDispatcherStatus_Malformed verifies bad status payloads are dropped.
func TestDispatcherStatus_Malformed(t *testing.T) {
	_, sub, _, tracker, _ := newTestDispatcher(t)

	sub.deliver(t, "field/+/status", "field/sensorA/status", []byte("online"))

	if _, tracked := tracker.Status("sensorA"); tracked {
		t.Error("device tracked after malformed status")
	}
}
