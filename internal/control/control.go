// Package control carries topology and parameter changes from the UI
// thread into the audio thread. The queue is unbounded on the producer
// side; the consumer drains a bounded number of messages per audio
// block and never blocks.
package control

import (
	"sync"

	"github.com/cbegin/orbitfm-go/internal/envelope"
	"github.com/cbegin/orbitfm-go/internal/osc"
)

// MsgKind identifies a control message.
type MsgKind int

const (
	// MsgTopology replaces the whole oscillator graph.
	MsgTopology MsgKind = iota
	// MsgModType switches between absolute and relative modulation.
	MsgModType
	// MsgGainType switches the output gain curve.
	MsgGainType
	// MsgResetPhase toggles phase reset on note-on.
	MsgResetPhase
	// MsgEnvelope replaces the envelope parameters of every voice.
	MsgEnvelope
)

// Msg is one control update. Only the field matching Kind is read; the
// payload is copied at send time so the audio thread owns it outright.
type Msg struct {
	Kind       MsgKind
	Topology   osc.Topology
	ModTy      osc.ModulationType
	GainTy     osc.GainType
	ResetPhase bool
	Envelope   envelope.Params
}

// Queue is a producer→audio message queue. Send may briefly take the
// lock; Drain only ever try-locks, so the audio thread cannot be made
// to wait on a producer.
type Queue struct {
	mu     sync.Mutex
	msgs   []Msg
	closed bool
}

// NewQueue returns an empty open queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Send enqueues a message. It reports false once the queue is closed.
func (q *Queue) Send(m Msg) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.msgs = append(q.msgs, m)
	return true
}

// Close marks the producer side disconnected. Messages already queued
// remain drainable.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Drain pops up to len(dst) pending messages into dst without
// blocking: if the lock is contended it returns immediately and the
// messages stay queued for the next block. closed reports that the
// producer disconnected and nothing is left to drain.
func (q *Queue) Drain(dst []Msg) (n int, closed bool) {
	if !q.mu.TryLock() {
		return 0, false
	}
	defer q.mu.Unlock()
	n = copy(dst, q.msgs)
	if n > 0 {
		rest := copy(q.msgs, q.msgs[n:])
		q.msgs = q.msgs[:rest]
	}
	return n, q.closed && len(q.msgs) == 0
}

// Pending returns the number of queued messages.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}
