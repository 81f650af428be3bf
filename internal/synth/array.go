// Package synth binds note events to the fixed voice pool, drives the
// per-voice envelopes, and owns the oscillator bank. One Array is the
// whole synthesizer as seen from the audio thread.
package synth

import (
	"log"
	"math"

	"github.com/cbegin/orbitfm-go/internal/control"
	"github.com/cbegin/orbitfm-go/internal/envelope"
	"github.com/cbegin/orbitfm-go/internal/osc"
)

// maxDrainPerBlock bounds how many control messages are applied per
// processed block; the rest stay queued for the next block.
const maxDrainPerBlock = 10

// VoiceState is the lifecycle of one polyphonic voice.
type VoiceState int

const (
	// VoiceOff means the slot is free.
	VoiceOff VoiceState = iota
	// VoiceOn means the note is held.
	VoiceOn
	// VoiceReleased means the note was released and the envelope is in
	// its release ramp; the slot is reclaimed once the ramp ends.
	VoiceReleased
)

type voice struct {
	env   envelope.Envelope
	state VoiceState
	note  uint8
	freq  float32
}

// Array is the voice allocator over the oscillator bank.
type Array struct {
	Bank   osc.Bank
	voices [osc.VoiceCount]voice

	// Scratch reused every block; the audio path does not allocate.
	refs   [osc.VoiceCount]osc.VoiceRef
	msgBuf [maxDrainPerBlock]control.Msg

	comClosedLogged bool
}

// New returns an Array primed with the given snapshot.
func New(snap Snapshot) *Array {
	a := &Array{}
	a.Restore(snap)
	return a
}

// NoteToFreq converts a MIDI note number to its frequency in Hz.
func NoteToFreq(note uint8) float32 {
	return float32(440 * math.Pow(2, (float64(note)-69)/12))
}

// NoteOn binds the note to the first free voice at the given time.
// When every voice is busy the event is dropped; there is no stealing.
func (a *Array) NoteOn(note uint8, at float64) {
	for i := range a.voices {
		v := &a.voices[i]
		if v.state != VoiceOff {
			continue
		}
		v.state = VoiceOn
		v.note = note
		v.freq = NoteToFreq(note)
		v.env.OnPress(at)
		if a.Bank.ResetPhase {
			a.Bank.ResetVoicePhases(i)
		}
		return
	}
}

// NoteOff releases every voice currently holding the note.
func (a *Array) NoteOff(note uint8, at float64) {
	for i := range a.voices {
		v := &a.voices[i]
		if v.note == note && v.state != VoiceOff {
			v.env.OnRelease(at)
			v.state = VoiceReleased
		}
	}
}

// SetEnvelopes broadcasts new envelope parameters to every voice. They
// take effect on the next sample.
func (a *Array) SetEnvelopes(p envelope.Params) {
	for i := range a.voices {
		a.voices[i].env.Params = p
	}
}

// Apply folds one control message into the running state.
func (a *Array) Apply(m control.Msg) {
	switch m.Kind {
	case control.MsgTopology:
		a.Bank.SetTopology(m.Topology)
	case control.MsgModType:
		a.Bank.ModTy = m.ModTy
	case control.MsgGainType:
		a.Bank.GainTy = m.GainTy
	case control.MsgResetPhase:
		a.Bank.ResetPhase = m.ResetPhase
	case control.MsgEnvelope:
		a.SetEnvelopes(m.Envelope)
	}
}

// DrainControl applies at most maxDrainPerBlock pending messages from
// the queue. A disconnected producer is logged once and processing
// continues with the last-known state.
func (a *Array) DrainControl(q *control.Queue) {
	if q == nil {
		return
	}
	n, closed := q.Drain(a.msgBuf[:])
	for i := 0; i < n; i++ {
		a.Apply(a.msgBuf[i])
	}
	if closed && !a.comClosedLogged {
		log.Printf("orbitfm: control channel disconnected, keeping last state")
		a.comClosedLogged = true
	}
}

// Process reclaims finished voices, then renders one block into dst.
func (a *Array) Process(dst [][]float32, sampleRate float32, blockStart float64) {
	for i := range a.voices {
		v := &a.voices[i]
		if v.state == VoiceReleased && v.env.AfterSampling(blockStart) {
			v.state = VoiceOff
			v.note = 0
			v.freq = 0
			v.env.Reset()
		}
		a.refs[i] = osc.VoiceRef{
			Freq:   v.freq,
			Env:    &v.env,
			Active: v.state != VoiceOff,
		}
	}
	a.Bank.Process(a.refs[:], dst, sampleRate, blockStart)
}

// ActiveVoiceCount returns the number of voices not currently off.
func (a *Array) ActiveVoiceCount() int {
	n := 0
	for i := range a.voices {
		if a.voices[i].state != VoiceOff {
			n++
		}
	}
	return n
}

// VoiceStateAt returns the state of one voice slot, for inspection.
func (a *Array) VoiceStateAt(i int) VoiceState {
	if i < 0 || i >= len(a.voices) {
		return VoiceOff
	}
	return a.voices[i].state
}
