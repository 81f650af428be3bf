// Package osc implements the oscillator bank: a fixed grid of primary
// and modulator oscillators per voice, advanced one sample at a time.
// Primary oscillators are audible carriers; modulators perturb the
// effective frequency of a parent oscillator, which may itself be a
// primary or another modulator.
package osc

import "math"

const twoPi = math.Pi * 2

// refFreq anchors Absolute modulators, scaled by 2^speedIndex.
const refFreq = 440.0

const (
	// VoiceCount is the number of polyphonic voices in the bank.
	VoiceCount = 10
	// PrimaryCount is the number of primary oscillator slots per voice.
	PrimaryCount = 8
	// ModCount is the number of modulator oscillator slots per voice.
	// Both counts are multiples of four so the per-voice loops batch
	// cleanly into fixed-width lanes.
	ModCount = 16
)

// ModulationType selects the base frequency a modulator oscillates at.
type ModulationType int

const (
	// ModAbsolute anchors modulators to a fixed reference pitch.
	ModAbsolute ModulationType = iota
	// ModRelative anchors modulators to the currently played note.
	ModRelative
)

// GainType selects the output compression applied to the voice mix.
type GainType int

const (
	// GainLinear hard-clamps the mix to [-1, 1].
	GainLinear GainType = iota
	// GainSigmoid soft-compresses the mix with x/sqrt(1+x^2).
	GainSigmoid
)

// Map applies the gain curve to one mixed sample.
func (g GainType) Map(x float32) float32 {
	switch g {
	case GainSigmoid:
		return sigmoid(x)
	default:
		return clampf(x, -1, 1)
	}
}

func sigmoid(x float32) float32 {
	return x / float32(math.Sqrt(float64(1+x*x)))
}

// ParentKind discriminates which slot array a ParentIndex refers to.
type ParentKind int

const (
	// ParentPrimary targets a primary oscillator slot.
	ParentPrimary ParentKind = iota
	// ParentModulator targets another modulator slot.
	ParentModulator
)

// ParentIndex identifies the oscillator a modulator feeds. Primaries
// never have a parent; a modulator's parent may be a primary or a
// modulator.
type ParentIndex struct {
	Kind ParentKind `json:"kind"`
	Slot int        `json:"slot"`
}

// PrimaryOsc is the configuration of one audible carrier slot.
type PrimaryOsc struct {
	// SpeedIndex is an octave exponent: the carrier frequency is the
	// note frequency times 2^SpeedIndex.
	SpeedIndex float32 `json:"speedIndex"`
	Volume     float32 `json:"volume"`
	IsOn       bool    `json:"isOn"`
}

// ModulatorOsc is the configuration of one modulator slot.
type ModulatorOsc struct {
	Parent ParentIndex `json:"parent"`
	IsOn   bool        `json:"isOn"`
	// Range is the modulation depth: 0 leaves the parent untouched,
	// 1 swings its frequency multiplier by +/-100%.
	Range      float32 `json:"range"`
	SpeedIndex float32 `json:"speedIndex"`
}

// PrimaryState assigns a carrier configuration to a slot line.
type PrimaryState struct {
	Slot   int        `json:"slot"`
	Offset float32    `json:"offset"`
	Osc    PrimaryOsc `json:"osc"`
}

// ModulatorState assigns a modulator configuration to a slot line.
type ModulatorState struct {
	Slot   int          `json:"slot"`
	Offset float32      `json:"offset"`
	Osc    ModulatorOsc `json:"osc"`
}

// Topology is a complete oscillator graph snapshot as produced by the
// editor: flat slot assignments for every active oscillator. Slots not
// listed are off.
type Topology struct {
	Primaries  []PrimaryState   `json:"primaries"`
	Modulators []ModulatorState `json:"modulators"`
}

// DefaultTopology is a single audible carrier at the note frequency.
func DefaultTopology() Topology {
	return Topology{
		Primaries: []PrimaryState{
			{Slot: 0, Osc: PrimaryOsc{SpeedIndex: 0, Volume: 1, IsOn: true}},
		},
	}
}

func pow2(x float32) float32 {
	return float32(math.Pow(2, float64(x)))
}

func cosf(x float32) float32 {
	return float32(math.Cos(float64(x)))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
