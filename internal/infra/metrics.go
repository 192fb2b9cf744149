package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Frame counters
	bookFrames    atomic.Uint64
	controlFrames atomic.Uint64
	unknownFrames atomic.Uint64

	// Feed lifecycle
	reconnects     atomic.Uint64
	syntheticTicks atomic.Uint64

	// Engine
	simulations atomic.Uint64
	errorsTotal atomic.Uint64

	// Gauges
	liveFeed atomic.Int32 // 1 = live transport, 0 = not
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordBookFrame counts a frame that produced a normalized snapshot.
func (m *Metrics) RecordBookFrame() {
	m.bookFrames.Add(1)
}

// RecordControlFrame counts an ignored ack/pong/heartbeat frame.
func (m *Metrics) RecordControlFrame() {
	m.controlFrames.Add(1)
}

// RecordUnknownFrame counts a dropped unrecognized-shape frame.
func (m *Metrics) RecordUnknownFrame() {
	m.unknownFrames.Add(1)
}

// RecordReconnect counts a scheduled reconnect attempt.
func (m *Metrics) RecordReconnect() {
	m.reconnects.Add(1)
}

// RecordSyntheticTick counts a generated fallback snapshot.
func (m *Metrics) RecordSyntheticTick() {
	m.syntheticTicks.Add(1)
}

// RecordSimulation counts an execution simulation run.
func (m *Metrics) RecordSimulation() {
	m.simulations.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// SetLiveFeed sets whether a live transport is currently up.
func (m *Metrics) SetLiveFeed(live bool) {
	if live {
		m.liveFeed.Store(1)
	} else {
		m.liveFeed.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	BookFrames     uint64
	ControlFrames  uint64
	UnknownFrames  uint64
	Reconnects     uint64
	SyntheticTicks uint64
	Simulations    uint64
	ErrorsTotal    uint64
	LiveFeed       bool
	Timestamp      time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		BookFrames:     m.bookFrames.Load(),
		ControlFrames:  m.controlFrames.Load(),
		UnknownFrames:  m.unknownFrames.Load(),
		Reconnects:     m.reconnects.Load(),
		SyntheticTicks: m.syntheticTicks.Load(),
		Simulations:    m.simulations.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		LiveFeed:       m.liveFeed.Load() == 1,
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.bookFrames.Store(0)
	m.controlFrames.Store(0)
	m.unknownFrames.Store(0)
	m.reconnects.Store(0)
	m.syntheticTicks.Store(0)
	m.simulations.Store(0)
	m.errorsTotal.Store(0)
	m.liveFeed.Store(0)
}
