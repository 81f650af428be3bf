package osc

import (
	"math"

	"github.com/cbegin/orbitfm-go/internal/envelope"
)

// primaryState is the per-slot runtime state of a carrier. The
// modulation accumulator pair is written during the modulator pass and
// consumed (then reset) during the carrier pass of the same sample.
type primaryState struct {
	osc      PrimaryOsc
	modSum   float32
	modCount int
	offset   float32
	phase    float32
}

// modState is the per-slot runtime state of a modulator. Its own
// accumulator pair carries contributions from child modulators; those
// land one sample before they take effect.
type modState struct {
	osc      ModulatorOsc
	modSum   float32
	modCount int
	offset   float32
	phase    float32
}

func freqMultiplier(sum float32, count int) float32 {
	if count == 0 {
		return 1
	}
	return sum / float32(count)
}

// VoiceRef is the per-voice view the bank needs while mixing: the note
// frequency and the envelope that scales the voice's output.
type VoiceRef struct {
	Freq   float32
	Env    *envelope.Envelope
	Active bool
}

// Bank holds every oscillator of every voice in flat arrays indexed by
// voice*count+slot. It is owned and mutated exclusively by the audio
// thread; topology updates arrive as immutable snapshots.
type Bank struct {
	primaries [VoiceCount * PrimaryCount]primaryState
	mods      [VoiceCount * ModCount]modState

	ModTy      ModulationType
	GainTy     GainType
	ResetPhase bool
}

func primaryIndex(voice, slot int) int { return voice*PrimaryCount + slot }
func modIndex(voice, slot int) int     { return voice*ModCount + slot }

// SetTopology replaces the oscillator graph on every voice. All slots
// are switched off and their modulation accumulators cleared first, so
// neither stale assignments nor contributions aimed at a previously-off
// slot linger into the new graph. Entries with an out-of-range slot are
// dropped.
func (b *Bank) SetTopology(top Topology) {
	for i := range b.primaries {
		b.primaries[i].osc.IsOn = false
		b.primaries[i].modSum = 0
		b.primaries[i].modCount = 0
	}
	for i := range b.mods {
		b.mods[i].osc.IsOn = false
		b.mods[i].modSum = 0
		b.mods[i].modCount = 0
	}
	for _, p := range top.Primaries {
		if p.Slot < 0 || p.Slot >= PrimaryCount {
			continue
		}
		for v := 0; v < VoiceCount; v++ {
			st := &b.primaries[primaryIndex(v, p.Slot)]
			st.osc = p.Osc
			st.offset = p.Offset
		}
	}
	for _, m := range top.Modulators {
		if m.Slot < 0 || m.Slot >= ModCount {
			continue
		}
		for v := 0; v < VoiceCount; v++ {
			st := &b.mods[modIndex(v, m.Slot)]
			st.osc = m.Osc
			st.offset = m.Offset
		}
	}
}

// Topology reconstructs the active slot assignments, for persistence.
// Slot lines are identical across voices, so voice 0 is authoritative.
func (b *Bank) Topology() Topology {
	var top Topology
	for slot := 0; slot < PrimaryCount; slot++ {
		st := b.primaries[primaryIndex(0, slot)]
		if !st.osc.IsOn {
			continue
		}
		top.Primaries = append(top.Primaries, PrimaryState{Slot: slot, Offset: st.offset, Osc: st.osc})
	}
	for slot := 0; slot < ModCount; slot++ {
		st := b.mods[modIndex(0, slot)]
		if !st.osc.IsOn {
			continue
		}
		top.Modulators = append(top.Modulators, ModulatorState{Slot: slot, Offset: st.offset, Osc: st.osc})
	}
	return top
}

// ResetVoicePhases zeroes the phase of every oscillator belonging to
// one voice. Called on note-on when phase reset is enabled.
func (b *Bank) ResetVoicePhases(voice int) {
	if voice < 0 || voice >= VoiceCount {
		return
	}
	for slot := 0; slot < PrimaryCount; slot++ {
		b.primaries[primaryIndex(voice, slot)].phase = 0
	}
	for slot := 0; slot < ModCount; slot++ {
		b.mods[modIndex(voice, slot)].phase = 0
	}
}

// step advances every oscillator of one voice by one sample and returns
// the voice's raw sample, normalized by the number of audible carriers.
//
// Two passes per sample: the modulator pass advances modulator phases
// and accumulates their output into each parent's multiplier, then the
// carrier pass consumes the fresh multipliers. Only a modulator feeding
// another modulator sees one sample of lag.
func (b *Bank) step(voice int, baseFreq, dSec float32) float32 {
	modBase := voice * ModCount
	for slot := 0; slot < ModCount; slot++ {
		st := &b.mods[modBase+slot]
		if !st.osc.IsOn {
			continue
		}

		mult := freqMultiplier(st.modSum, st.modCount)
		st.modSum = 0
		st.modCount = 0

		base := baseFreq
		if b.ModTy == ModAbsolute {
			base = refFreq
		}
		freq := base * pow2(st.osc.SpeedIndex)
		st.phase = float32(math.Mod(float64(st.phase+twoPi*freq*mult*dSec), twoPi))

		// cos is -1..1; range scales it, +1 recenters so the parent
		// multiplier swings around 100%.
		val := cosf(st.phase+st.offset)*st.osc.Range + 1

		switch st.osc.Parent.Kind {
		case ParentPrimary:
			if st.osc.Parent.Slot < 0 || st.osc.Parent.Slot >= PrimaryCount {
				continue
			}
			parent := &b.primaries[primaryIndex(voice, st.osc.Parent.Slot)]
			parent.modSum += val
			parent.modCount++
		case ParentModulator:
			if st.osc.Parent.Slot < 0 || st.osc.Parent.Slot >= ModCount {
				continue
			}
			parent := &b.mods[modIndex(voice, st.osc.Parent.Slot)]
			parent.modSum += val
			parent.modCount++
		}
	}

	var acc float32
	active := 0
	priBase := voice * PrimaryCount
	for slot := 0; slot < PrimaryCount; slot++ {
		st := &b.primaries[priBase+slot]
		if !st.osc.IsOn {
			continue
		}

		mult := freqMultiplier(st.modSum, st.modCount)
		st.modSum = 0
		st.modCount = 0

		freq := baseFreq * pow2(st.osc.SpeedIndex)
		st.phase = float32(math.Mod(float64(st.phase+twoPi*freq*mult*dSec), twoPi))

		acc += cosf(st.phase+st.offset) * st.osc.Volume
		active++
	}

	if active == 0 {
		return 0
	}
	return acc / float32(active)
}

// Process synthesizes len(dst[0]) samples starting at the given block
// time, mixing every active voice, applying the gain map, and writing
// the identical mono value to every output channel.
func (b *Bank) Process(voices []VoiceRef, dst [][]float32, sampleRate float32, blockStart float64) {
	if len(dst) == 0 || sampleRate <= 0 {
		return
	}
	dSec := 1 / sampleRate
	t := blockStart
	for i := range dst[0] {
		var acc float32
		for v := range voices {
			if !voices[v].Active {
				continue
			}
			vol := voices[v].Env.Sample(t)
			acc += b.step(v, voices[v].Freq, dSec) * vol
		}
		val := b.GainTy.Map(acc)
		for c := range dst {
			dst[c][i] = val
		}
		t += float64(dSec)
	}
}

// Phase returns the current phase of a primary slot, for inspection.
func (b *Bank) Phase(voice, slot int) float32 {
	if voice < 0 || voice >= VoiceCount || slot < 0 || slot >= PrimaryCount {
		return 0
	}
	return b.primaries[primaryIndex(voice, slot)].phase
}

// ModPhase returns the current phase of a modulator slot.
func (b *Bank) ModPhase(voice, slot int) float32 {
	if voice < 0 || voice >= VoiceCount || slot < 0 || slot >= ModCount {
		return 0
	}
	return b.mods[modIndex(voice, slot)].phase
}
