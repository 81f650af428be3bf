package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	orbitfm "github.com/cbegin/orbitfm-go"
	"github.com/cbegin/orbitfm-go/internal/analyze"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		notesFlag  = flag.String("notes", "60,64,67", "comma-separated MIDI notes, played as a chord")
		hold       = flag.Float64("hold", 1.0, "seconds to hold the notes")
		length     = flag.Float64("len", 2.0, "total seconds to render/play")
		wavPath    = flag.String("wav", "", "render offline to this WAV file instead of playing")
		statePath  = flag.String("state", "", "load/save engine snapshot at this path")
		gainName   = flag.String("gain", "linear", "gain curve: linear|sigmoid")
		modName    = flag.String("mod", "absolute", "modulation base: absolute|relative")
		doAnalyze  = flag.Bool("analyze", false, "print the dominant frequency of the rendered audio")
	)
	flag.Parse()

	notes, err := parseNotes(*notesFlag)
	if err != nil {
		log.Fatal(err)
	}
	gainTy, err := parseGain(*gainName)
	if err != nil {
		log.Fatal(err)
	}
	modTy, err := parseMod(*modName)
	if err != nil {
		log.Fatal(err)
	}

	var snapshot []byte
	if *statePath != "" {
		if data, err := os.ReadFile(*statePath); err == nil {
			snapshot = data
		}
	}

	if *wavPath != "" {
		if err := renderToFile(snapshot, notes, *sampleRate, *hold, *length, *wavPath, gainTy, modTy, *doAnalyze); err != nil {
			log.Fatal(err)
		}
		return
	}

	tap := newTapBuffer()
	opts := []orbitfm.PlayerOption{orbitfm.WithSnapshot(snapshot)}
	if *doAnalyze {
		opts = append(opts, orbitfm.WithSampleTap(tap.Tap))
	}
	pl, err := orbitfm.NewPlayer(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	pl.Controls().Send(orbitfm.Msg{Kind: orbitfm.MsgGainType, GainTy: gainTy})
	pl.Controls().Send(orbitfm.Msg{Kind: orbitfm.MsgModType, ModTy: modTy})

	pl.Play()
	for _, n := range notes {
		pl.NoteOn(n)
	}
	time.Sleep(time.Duration(*hold * float64(time.Second)))
	for _, n := range notes {
		pl.NoteOff(n)
	}
	time.Sleep(time.Duration((*length - *hold) * float64(time.Second)))

	data, err := pl.Stop()
	if err != nil {
		log.Printf("snapshot not saved: %v", err)
	} else if *statePath != "" {
		if err := os.WriteFile(*statePath, data, 0o644); err != nil {
			log.Printf("write state: %v", err)
		}
	}
	if *doAnalyze {
		printPeak(tap.Samples(), float64(*sampleRate))
	}
}

func renderToFile(snapshot []byte, notes []uint8, sampleRate int, hold, length float64, path string, gainTy orbitfm.GainType, modTy orbitfm.ModulationType, doAnalyze bool) error {
	// Offline path bakes the CLI settings into the snapshot directly.
	snap := orbitfm.DefaultSnapshot()
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &snap); err != nil {
			return err
		}
	}
	snap.GainTy = gainTy
	snap.ModTy = modTy
	primed, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	var events []orbitfm.TimedNote
	for _, n := range notes {
		events = append(events, orbitfm.TimedNote{On: true, Note: n, At: 0})
		events = append(events, orbitfm.TimedNote{On: false, Note: n, At: hold})
	}
	samples, err := orbitfm.Render(primed, events, sampleRate, length)
	if err != nil {
		return err
	}
	if doAnalyze {
		printPeak(samples, float64(sampleRate))
	}
	return os.WriteFile(path, orbitfm.EncodeWAVFloat32LE(samples, sampleRate, 1), 0o644)
}

func printPeak(samples []float32, sampleRate float64) {
	freq, err := analyze.PeakFrequency(samples, sampleRate)
	if err != nil {
		log.Printf("analyze: %v", err)
		return
	}
	fmt.Printf("peak frequency: %.1f Hz (rms %.3f)\n", freq, analyze.RMS(samples))
}

func parseNotes(s string) ([]uint8, error) {
	var notes []uint8
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid MIDI note %q", part)
		}
		notes = append(notes, uint8(n))
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return notes, nil
}

func parseGain(s string) (orbitfm.GainType, error) {
	switch s {
	case "linear":
		return orbitfm.GainLinear, nil
	case "sigmoid":
		return orbitfm.GainSigmoid, nil
	}
	return 0, fmt.Errorf("unknown gain curve %q", s)
}

func parseMod(s string) (orbitfm.ModulationType, error) {
	switch s {
	case "absolute":
		return orbitfm.ModAbsolute, nil
	case "relative":
		return orbitfm.ModRelative, nil
	}
	return 0, fmt.Errorf("unknown modulation type %q", s)
}

// tapBuffer collects audio-thread samples for post-run analysis.
type tapBuffer struct {
	mu      sync.Mutex
	samples []float32
}

func newTapBuffer() *tapBuffer {
	return &tapBuffer{}
}

func (t *tapBuffer) Tap(block []float32) {
	t.mu.Lock()
	t.samples = append(t.samples, block...)
	t.mu.Unlock()
}

func (t *tapBuffer) Samples() []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.samples
}
