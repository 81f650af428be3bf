// Package audio is the realtime output backend. It feeds an oto player
// from a SampleSource in a pull model: oto's reader goroutine is the
// audio thread, and everything reachable from Process must follow the
// audio-thread rules (no blocking, no allocation in steady state).
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// SampleSource produces mono samples on demand.
type SampleSource interface {
	Process(dst []float32)
}

// streamReader adapts a SampleSource to the io.Reader oto pulls from.
type streamReader struct {
	source SampleSource
	buf    []float32
}

func (r *streamReader) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([]float32, frames)
	}
	r.buf = r.buf[:frames]
	r.source.Process(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 4, nil
}

var (
	audioContextOnce sync.Once
	audioContext     *oto.Context
	audioContextRate int
	audioContextErr  error
)

// sharedContext initializes the process-wide oto context on first use.
// The device rate is fixed by that first call; opening a player at a
// different rate is an error rather than silently detuned playback.
func sharedContext(sampleRate int) (*oto.Context, error) {
	audioContextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			audioContextErr = err
			return
		}
		<-ready
		audioContext = ctx
		audioContextRate = sampleRate
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if sampleRate != audioContextRate {
		return nil, fmt.Errorf("audio: device context is fixed at %d Hz, cannot open at %d Hz", audioContextRate, sampleRate)
	}
	return audioContext, nil
}

// Player streams a SampleSource to the default audio device.
type Player struct {
	player *oto.Player
}

// NewPlayer opens the shared audio context and prepares a player for
// the source. Call Play to start pulling samples.
func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl := ctx.NewPlayer(&streamReader{source: source})
	return &Player{player: pl}, nil
}

// Play starts (or resumes) streaming.
func (p *Player) Play() { p.player.Play() }

// Pause stops pulling samples without tearing the player down.
func (p *Player) Pause() { p.player.Pause() }

// IsPlaying reports whether the player is currently streaming.
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Close stops streaming and releases the player.
func (p *Player) Close() error {
	p.player.Pause()
	return p.player.Close()
}
