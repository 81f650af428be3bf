package orbitfm

import (
	"github.com/cbegin/orbitfm-go/internal/control"
	"github.com/cbegin/orbitfm-go/internal/envelope"
	"github.com/cbegin/orbitfm-go/internal/osc"
	"github.com/cbegin/orbitfm-go/internal/synth"
)

// The control surface re-exported for hosts: everything needed to
// build topology snapshots and control messages without reaching into
// internal packages. These are aliases, so values constructed here flow
// straight through the queue.
type (
	// Queue is the sender half of the UI→audio control channel.
	Queue = control.Queue
	// Msg is one control update; see the Msg* kinds.
	Msg = control.Msg
	// MsgKind identifies a control message.
	MsgKind = control.MsgKind

	// Topology is a complete oscillator graph snapshot.
	Topology = osc.Topology
	// PrimaryState assigns a carrier configuration to a slot line.
	PrimaryState = osc.PrimaryState
	// ModulatorState assigns a modulator configuration to a slot line.
	ModulatorState = osc.ModulatorState
	// PrimaryOsc is the configuration of one audible carrier slot.
	PrimaryOsc = osc.PrimaryOsc
	// ModulatorOsc is the configuration of one modulator slot.
	ModulatorOsc = osc.ModulatorOsc
	// ParentIndex identifies the oscillator a modulator feeds.
	ParentIndex = osc.ParentIndex
	// ParentKind discriminates which slot array a ParentIndex refers to.
	ParentKind = osc.ParentKind
	// ModulationType selects the base frequency modulators oscillate at.
	ModulationType = osc.ModulationType
	// GainType selects the output compression applied to the voice mix.
	GainType = osc.GainType

	// EnvelopeParams holds the stage durations and sustain level of the
	// per-voice envelope.
	EnvelopeParams = envelope.Params
	// Snapshot is the persisted engine state; Initialize and Deactivate
	// exchange it JSON-encoded.
	Snapshot = synth.Snapshot
)

// Control message kinds.
const (
	MsgTopology   = control.MsgTopology
	MsgModType    = control.MsgModType
	MsgGainType   = control.MsgGainType
	MsgResetPhase = control.MsgResetPhase
	MsgEnvelope   = control.MsgEnvelope
)

// Modulation bases.
const (
	ModAbsolute = osc.ModAbsolute
	ModRelative = osc.ModRelative
)

// Gain curves.
const (
	GainLinear  = osc.GainLinear
	GainSigmoid = osc.GainSigmoid
)

// Modulator parent kinds.
const (
	ParentPrimary   = osc.ParentPrimary
	ParentModulator = osc.ParentModulator
)

// Bank dimensions; topology slot indices must stay below these.
const (
	VoiceCount   = osc.VoiceCount
	PrimaryCount = osc.PrimaryCount
	ModCount     = osc.ModCount
)

// DefaultTopology is a single audible carrier at the note frequency.
func DefaultTopology() Topology { return osc.DefaultTopology() }

// DefaultEnvelope returns the stock envelope parameters.
func DefaultEnvelope() EnvelopeParams { return envelope.DefaultParams() }

// DefaultSnapshot returns the built-in engine state.
func DefaultSnapshot() Snapshot { return synth.DefaultSnapshot() }
