package orbitfm

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/cbegin/orbitfm-go/internal/analyze"
	"github.com/cbegin/orbitfm-go/internal/envelope"
	"github.com/cbegin/orbitfm-go/internal/synth"
)

func TestRenderArgumentChecks(t *testing.T) {
	if _, err := Render(nil, nil, 0, 1); err == nil {
		t.Error("no error for zero sample rate")
	}
	if _, err := Render(nil, nil, 48000, -1); err == nil {
		t.Error("no error for negative duration")
	}
	if _, err := Render([]byte("garbage"), nil, 48000, 1); err == nil {
		t.Error("no error for malformed snapshot")
	}
}

func TestRenderLengthAndSilence(t *testing.T) {
	out, err := Render(nil, nil, 48000, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 12000 {
		t.Fatalf("len = %d, want 12000", len(out))
	}
	for _, v := range out {
		if v != 0 {
			t.Fatal("render with no events not silent")
		}
	}
}

func TestRenderNoteTiming(t *testing.T) {
	snap := synth.DefaultSnapshot()
	snap.Envelope = envelope.Params{SustainLevel: 1}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}

	// Note starts at 0.1 s; the event lands mid-block and must still be
	// sample-accurate with an instant attack.
	out, err := Render(data, []TimedNote{{On: true, Note: 69, At: 0.1}}, 48000, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	onset := int(0.1 * 48000)
	for i := 0; i < onset; i++ {
		if out[i] != 0 {
			t.Fatalf("sample %d nonzero before the note", i)
		}
	}
	if analyze.RMS(out[onset:]) < 0.1 {
		t.Fatal("no signal after the note onset")
	}
}

func TestRenderNotePitch(t *testing.T) {
	out, err := RenderNote(nil, 69, 48000, 0.4, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	// Analyze the steady sustain region, away from attack and release.
	seg := out[4800 : 4800+8192]
	peak, err := analyze.PeakFrequency(seg, 48000)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(peak-440) > 6 {
		t.Fatalf("peak frequency = %v Hz, want ~440", peak)
	}
}

func TestRenderNoteReleasesToSilence(t *testing.T) {
	out, err := RenderNote(nil, 60, 48000, 0.2, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	// Default release is 0.1 s, so well past 0.3 s the tail is gone.
	if rms := analyze.RMS(out[len(out)-4800:]); rms != 0 {
		t.Fatalf("tail RMS = %v, want 0", rms)
	}
}

func TestEncodeWAVFloat32LE(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	wav := EncodeWAVFloat32LE(samples, 48000, 1)

	if len(wav) != 44+len(samples)*4 {
		t.Fatalf("wav length = %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatal("container magic wrong")
	}
	if got := binary.LittleEndian.Uint16(wav[20:]); got != 3 {
		t.Errorf("format tag = %d, want 3 (IEEE float)", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:]); got != 48000 {
		t.Errorf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:]); got != 32 {
		t.Errorf("bits per sample = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:]); got != uint32(len(samples)*4) {
		t.Errorf("data size = %d", got)
	}
	for i, want := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(wav[44+i*4:]))
		if got != want {
			t.Errorf("sample %d = %v, want %v", i, got, want)
		}
	}
}
