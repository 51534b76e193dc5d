package telemetry

import (
	"context"
	"sync"
	"time"
)

// Transition records one liveness state change for a device.
type Transition struct {
	Device string
	Online bool
	At     time.Time
}

// Tracker maintains per-device last-seen timestamps and an online/offline
// state machine.
//
// A device becomes online on its first valid reading and stays online
// while readings keep arriving; repeat readings only advance the
// last-seen timestamp. A periodic sweep transitions devices that have
// been silent longer than the offline threshold. Each transition is
// emitted exactly once, so the persisted status history is a bounded
// record of state changes rather than one point per reading.
//
// Device-reported status messages are a second, independent signal: a
// reported online behaves like a reading, and a reported offline forces
// the offline transition immediately and clears the last-seen timestamp
// so the next sweep does not fire a second time for the same silence.
//
// All public methods are thread-safe.
type Tracker struct {
	threshold time.Duration
	emit      func(Transition)
	logger    Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time
	state    map[string]bool
}

// NewTracker creates a liveness tracker.
//
// Parameters:
//   - threshold: Duration of silence after which a device is offline
//   - emit: Callback invoked once per state transition (never nil)
func NewTracker(threshold time.Duration, emit func(Transition)) *Tracker {
	return &Tracker{
		threshold: threshold,
		emit:      emit,
		logger:    noopLogger{},
		lastSeen:  make(map[string]time.Time),
		state:     make(map[string]bool),
	}
}

// SetLogger sets the logger for the tracker.
func (t *Tracker) SetLogger(logger Logger) {
	t.logger = logger
}

// BufferedStatusEmitter returns a transition callback that encodes status
// points into the write buffer. This is the standard wiring between the
// tracker and the store.
func BufferedStatusEmitter(buffer *Buffer) func(Transition) {
	return func(tr Transition) {
		buffer.Enqueue(EncodeStatus(tr.Device, tr.Online, tr.At))
	}
}

// Touch records a valid reading for a device.
//
// The last-seen timestamp always advances. If the device was not online,
// it transitions to online and exactly one status point is emitted;
// further touches while online emit nothing.
func (t *Tracker) Touch(device string, now time.Time) {
	t.mu.Lock()
	t.lastSeen[device] = now
	transitioned := !t.state[device]
	if transitioned {
		t.state[device] = true
	}
	t.mu.Unlock()

	if transitioned {
		t.logger.Info("device online", "device", device)
		t.emit(Transition{Device: device, Online: true, At: now})
	}
}

// ReportStatus applies a device-reported liveness flag.
//
// An online report is treated exactly like a reading. An offline report
// transitions the device immediately (one status point if it was online)
// and clears its last-seen timestamp.
func (t *Tracker) ReportStatus(device string, online bool, now time.Time) {
	if online {
		t.Touch(device, now)
		return
	}

	t.mu.Lock()
	wasOnline := t.state[device]
	t.state[device] = false
	delete(t.lastSeen, device)
	t.mu.Unlock()

	if wasOnline {
		t.logger.Info("device reported offline", "device", device)
		t.emit(Transition{Device: device, Online: false, At: now})
	}
}

// Status returns a consistent snapshot of a device's current state.
//
// Returns:
//   - int: 1 if online, 0 otherwise
//   - bool: false if the device has never been tracked this process
//     lifetime, in which case callers fall back to persisted history
func (t *Tracker) Status(device string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	online, tracked := t.state[device]
	if !tracked {
		return 0, false
	}
	if online {
		return 1, true
	}
	return 0, true
}

// Devices returns the number of devices tracked this process lifetime.
func (t *Tracker) Devices() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.state)
}

// Sweep transitions every online device silent for longer than the
// offline threshold and returns the transitions it made.
//
// Exactly one status point is emitted per transition, not one per sweep
// tick while a device stays offline.
func (t *Tracker) Sweep(now time.Time) []Transition {
	var transitions []Transition

	t.mu.Lock()
	for device, online := range t.state {
		if !online {
			continue
		}
		seen, ok := t.lastSeen[device]
		if ok && now.Sub(seen) <= t.threshold {
			continue
		}
		t.state[device] = false
		transitions = append(transitions, Transition{Device: device, Online: false, At: now})
	}
	t.mu.Unlock()

	for _, tr := range transitions {
		t.logger.Info("device offline", "device", tr.Device, "threshold", t.threshold)
		t.emit(tr)
	}

	return transitions
}

// Run executes the sweep on the given interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Sweep(time.Now())
		case <-ctx.Done():
			return
		}
	}
}
