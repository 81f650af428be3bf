// Package orbitfm is a polyphonic FM synthesizer built from orbiting
// oscillators: each voice carries a fixed grid of primary (audible)
// and modulator oscillators whose topology is edited live over a
// non-blocking control channel.
//
// The package exposes the engine at the host boundary: Synth is the
// audio-thread entry point (Initialize, Process, Deactivate), Player
// streams a Synth to the default audio device, and Render produces
// samples offline.
package orbitfm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/cbegin/orbitfm-go/internal/control"
	"github.com/cbegin/orbitfm-go/internal/synth"
)

// Status is the result of processing one block.
type Status int

// StatusNormal means the block was fully rendered. Processing always
// completes; degraded conditions fall back to no-ops, never errors.
const StatusNormal Status = 0

// ErrBusy is returned when a non-blocking snapshot attempt loses the
// race against the audio thread. Try again next cycle.
var ErrBusy = errors.New("orbitfm: engine busy, snapshot skipped")

// NoteEvent is a timestamped note-on or note-off. Offset is the frame
// offset of the event within the current block, so notes land
// sample-accurately inside block boundaries.
type NoteEvent struct {
	On     bool
	Note   uint8
	Offset int
}

// Synth is the synthesizer as seen from the host. The audio thread
// owns all synthesis state; the UI reconfigures it only through the
// control queue, and persistence reads state only through non-blocking
// snapshot attempts.
type Synth struct {
	mu    sync.Mutex
	arr   *synth.Array
	queue *control.Queue
	time  float64

	// Published by Process so UI-side polling never touches mu.
	active atomic.Int32
}

// NewSynth returns a synthesizer primed with the built-in default
// state: one audible carrier and the stock envelope.
func NewSynth() *Synth {
	return &Synth{
		arr:   synth.New(synth.DefaultSnapshot()),
		queue: control.NewQueue(),
	}
}

// Controls returns the sender half of the control channel. The UI
// pushes complete topology snapshots and parameter changes through it;
// the audio thread drains a bounded number per block.
func (s *Synth) Controls() *Queue {
	return s.queue
}

// Initialize primes the engine from a previously persisted snapshot.
// Empty data selects the built-in default.
func (s *Synth) Initialize(data []byte) error {
	snap := synth.DefaultSnapshot()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("orbitfm: decode snapshot: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arr.Restore(snap)
	s.time = 0
	return nil
}

// Deactivate serializes the current state for persistence and rewinds
// transport time. The state is read with a non-blocking lock attempt;
// if the audio thread is mid-block the snapshot is skipped and ErrBusy
// returned, rather than ever stalling audio.
func (s *Synth) Deactivate() ([]byte, error) {
	if !s.mu.TryLock() {
		log.Printf("orbitfm: engine busy, skipping state persistence")
		return nil, ErrBusy
	}
	defer s.mu.Unlock()
	s.time = 0
	data, err := json.Marshal(s.arr.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("orbitfm: encode snapshot: %w", err)
	}
	return data, nil
}

// Process renders one block into dst (one slice per output channel,
// all the same length; every channel receives the identical mono sum).
// Pending control messages are drained first, then note events are
// applied at their in-block offsets, then the bank synthesizes the
// buffer. Transport time advances by len/rate.
func (s *Synth) Process(dst [][]float32, sampleRate float64, events []NoteEvent) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(dst) == 0 || len(dst[0]) == 0 || sampleRate <= 0 {
		return StatusNormal
	}

	s.arr.DrainControl(s.queue)

	dt := 1 / sampleRate
	for _, ev := range events {
		at := s.time + float64(ev.Offset)*dt
		if ev.On {
			s.arr.NoteOn(ev.Note, at)
		} else {
			s.arr.NoteOff(ev.Note, at)
		}
	}

	s.arr.Process(dst, float32(sampleRate), s.time)
	s.time += float64(len(dst[0])) * dt
	s.active.Store(int32(s.arr.ActiveVoiceCount()))
	return StatusNormal
}

// ActiveVoiceCount returns the number of sounding voices, release
// tails included, as of the last processed block. Lock-free; safe to
// poll from a UI frame handler without contending the audio thread.
func (s *Synth) ActiveVoiceCount() int {
	return int(s.active.Load())
}
