// Package envelope implements a five-stage (delay, attack, hold, decay,
// sustain, release) amplitude envelope sampled at continuous time. Stage
// durations are seconds, but nothing here cares about the unit as long as
// the caller is consistent.
package envelope

// Params holds the stage durations and sustain level of an envelope.
// All durations are >= 0. A zero-length stage is skipped instantly.
type Params struct {
	Delay        float64 `json:"delay"`
	Attack       float64 `json:"attack"`
	Hold         float64 `json:"hold"`
	Decay        float64 `json:"decay"`
	SustainLevel float32 `json:"sustainLevel"`
	Release      float64 `json:"release"`
}

// DefaultParams returns the stock envelope: a short attack to avoid
// clicking, a gentle decay to a high sustain.
func DefaultParams() Params {
	return Params{
		Delay:        0,
		Attack:       0.1,
		Hold:         0,
		Decay:        0.1,
		SustainLevel: 0.8,
		Release:      0.1,
	}
}

// Envelope tracks press and release timestamps for one voice.
//
// A typical lifetime:
//
//	1^
//	 |          /--------\__
//	 |         /            \____
//	 |        /                  \
//	 |       /                    \
//	 +------------------------------> time
//	 |delay|attack| hold | decay | release
//	 ^press                      ^release
//
// pressed/released report whether the timestamps are set; a release is
// only meaningful while pressed.
type Envelope struct {
	press    float64
	release  float64
	pressed  bool
	released bool
	Params   Params
}

// OnPress marks the press event at the given time and clears any
// previous release.
func (e *Envelope) OnPress(at float64) {
	e.press = at
	e.pressed = true
	e.released = false
}

// OnRelease marks the release event. Sampling at or after this time
// enters the release ramp, regardless of which stage was active.
func (e *Envelope) OnRelease(at float64) {
	if !e.pressed {
		return
	}
	e.release = at
	e.released = true
}

// Reset clears both events, returning the envelope to silence.
func (e *Envelope) Reset() {
	e.pressed = false
	e.released = false
}

// Pressed reports whether a press event is set.
func (e *Envelope) Pressed() bool { return e.pressed }

// AfterSampling reports whether at lies past the end of the release
// ramp, meaning the voice can be reclaimed without sampling.
func (e *Envelope) AfterSampling(at float64) bool {
	if !e.pressed || !e.released {
		return false
	}
	return at >= e.release+e.Params.Release
}

// Sample returns the envelope gain at the given time. With no press
// event set it is always 0. Before the release event the value walks
// the delay/attack/hold/decay stages; at or after it the level at the
// moment of release ramps linearly to 0 over the release duration.
func (e *Envelope) Sample(at float64) float32 {
	if !e.pressed {
		return 0
	}
	if !e.released || at < e.release {
		return e.stepLinear(at)
	}
	// Level at the instant of release, ramped down to zero.
	from := e.stepLinear(e.release)
	if e.Params.Release <= 0 {
		return 0
	}
	frac := clampFrac((at - e.release) / e.Params.Release)
	return from * float32(1-frac)
}

// stepLinear walks the cumulative delay/attack/hold/decay offsets.
// Zero-duration stages are treated as already passed.
func (e *Envelope) stepLinear(at float64) float32 {
	at -= e.press
	if at < 0 {
		return 0
	}

	if at < e.Params.Delay {
		return 0
	}
	at -= e.Params.Delay

	if at < e.Params.Attack {
		return float32(clampFrac(at / e.Params.Attack))
	}
	at -= e.Params.Attack

	if at < e.Params.Hold {
		return 1
	}
	at -= e.Params.Hold

	if at < e.Params.Decay {
		frac := float32(clampFrac(at / e.Params.Decay))
		return 1 + (e.Params.SustainLevel-1)*frac
	}

	return e.Params.SustainLevel
}

func clampFrac(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
