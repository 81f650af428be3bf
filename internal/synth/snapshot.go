package synth

import (
	"github.com/cbegin/orbitfm-go/internal/envelope"
	"github.com/cbegin/orbitfm-go/internal/osc"
)

// Snapshot captures everything needed to restore the synthesizer:
// topology, modulation and gain settings, and envelope parameters.
// Oscillator phases are transient and not persisted.
type Snapshot struct {
	Topology   osc.Topology       `json:"topology"`
	ModTy      osc.ModulationType `json:"modulationType"`
	GainTy     osc.GainType       `json:"gainType"`
	ResetPhase bool               `json:"resetPhase"`
	Envelope   envelope.Params    `json:"envelope"`
}

// DefaultSnapshot is the built-in state used when no persisted
// snapshot exists: one audible carrier, linear gain, phase reset on.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Topology:   osc.DefaultTopology(),
		ModTy:      osc.ModAbsolute,
		GainTy:     osc.GainLinear,
		ResetPhase: true,
		Envelope:   envelope.DefaultParams(),
	}
}

// Snapshot captures the current settings.
func (a *Array) Snapshot() Snapshot {
	return Snapshot{
		Topology:   a.Bank.Topology(),
		ModTy:      a.Bank.ModTy,
		GainTy:     a.Bank.GainTy,
		ResetPhase: a.Bank.ResetPhase,
		Envelope:   a.voices[0].env.Params,
	}
}

// Restore overwrites the running state with the snapshot. Voices keep
// playing; only topology and parameters change.
func (a *Array) Restore(snap Snapshot) {
	a.Bank.SetTopology(snap.Topology)
	a.Bank.ModTy = snap.ModTy
	a.Bank.GainTy = snap.GainTy
	a.Bank.ResetPhase = snap.ResetPhase
	a.SetEnvelopes(snap.Envelope)
}
