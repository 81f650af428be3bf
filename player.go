package orbitfm

import (
	"errors"
	"sync"

	"github.com/cbegin/orbitfm-go/internal/audio"
)

// PlayerOption configures a Player.
type PlayerOption func(*playerConfig)

type playerConfig struct {
	snapshot  []byte
	sampleTap func([]float32)
}

// WithSnapshot primes the player's engine from a persisted snapshot
// instead of the built-in default.
func WithSnapshot(data []byte) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.snapshot = data
	}
}

// WithSampleTap installs a callback invoked with each generated mono
// buffer. The callback runs on the audio thread; keep work brief and
// non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player streams a Synth to the default audio device. Note events may
// arrive from any goroutine; they are handed to the audio thread at
// the next block boundary.
type Player struct {
	synth      *Synth
	sampleRate int
	audio      *audio.Player

	mu      sync.Mutex
	pending []NoteEvent
}

// playerSource is the audio-thread side of a Player. Its Process runs
// inside the device's pull callback.
type playerSource struct {
	p         *Player
	chans     [1][]float32
	events    []NoteEvent
	sampleTap func([]float32)
}

func (src *playerSource) Process(dst []float32) {
	src.events = src.events[:0]
	// Collect pending note events without risking a stall: if a
	// producer holds the lock right now, the events wait one block.
	if src.p.mu.TryLock() {
		src.events = append(src.events, src.p.pending...)
		src.p.pending = src.p.pending[:0]
		src.p.mu.Unlock()
	}
	src.chans[0] = dst
	src.p.synth.Process(src.chans[:], float64(src.p.sampleRate), src.events)
	if src.sampleTap != nil {
		src.sampleTap(dst)
	}
}

// NewPlayer opens the audio device and starts with a silent engine.
func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("orbitfm: sampleRate must be positive")
	}
	var cfg playerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Player{
		synth:      NewSynth(),
		sampleRate: sampleRate,
	}
	if err := p.synth.Initialize(cfg.snapshot); err != nil {
		return nil, err
	}

	out, err := audio.NewPlayer(sampleRate, &playerSource{p: p, sampleTap: cfg.sampleTap})
	if err != nil {
		return nil, err
	}
	p.audio = out
	return p, nil
}

// Controls returns the control-channel sender for live topology and
// parameter edits.
func (p *Player) Controls() *Queue {
	return p.synth.Controls()
}

// NoteOn queues a note-on for the next audio block.
func (p *Player) NoteOn(note uint8) {
	p.mu.Lock()
	p.pending = append(p.pending, NoteEvent{On: true, Note: note})
	p.mu.Unlock()
}

// NoteOff queues a note-off for the next audio block.
func (p *Player) NoteOff(note uint8) {
	p.mu.Lock()
	p.pending = append(p.pending, NoteEvent{On: false, Note: note})
	p.mu.Unlock()
}

// Play starts (or resumes) streaming to the device.
func (p *Player) Play() { p.audio.Play() }

// Pause stops pulling samples; the engine state is kept.
func (p *Player) Pause() { p.audio.Pause() }

// IsPlaying reports whether audio is streaming.
func (p *Player) IsPlaying() bool { return p.audio.IsPlaying() }

// ActiveVoiceCount returns the number of sounding voices.
func (p *Player) ActiveVoiceCount() int { return p.synth.ActiveVoiceCount() }

// Stop closes the device and serializes the engine state, returning
// the snapshot for persistence (nil if the snapshot was skipped).
func (p *Player) Stop() ([]byte, error) {
	if err := p.audio.Close(); err != nil {
		return nil, err
	}
	return p.synth.Deactivate()
}
