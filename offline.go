package orbitfm

import (
	"encoding/binary"
	"errors"
	"math"
)

// renderBlock is the block size used for offline rendering. Small
// enough that note timestamps stay sample-accurate through the
// per-block offset mechanism.
const renderBlock = 512

// TimedNote is a note event scheduled in seconds from the start of an
// offline render.
type TimedNote struct {
	On   bool
	Note uint8
	At   float64
}

// Render synthesizes seconds of mono audio offline. snapshot primes
// the engine (nil selects the default state); events fire at their
// scheduled times, sample-accurately within blocks.
func Render(snapshot []byte, events []TimedNote, sampleRate int, seconds float64) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("orbitfm: sampleRate must be positive")
	}
	if seconds < 0 {
		return nil, errors.New("orbitfm: seconds must not be negative")
	}

	s := NewSynth()
	if err := s.Initialize(snapshot); err != nil {
		return nil, err
	}

	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames)

	var chans [1][]float32
	var blockEvents []NoteEvent
	for start := 0; start < frames; start += renderBlock {
		end := start + renderBlock
		if end > frames {
			end = frames
		}

		blockEvents = blockEvents[:0]
		for _, ev := range events {
			frame := int(ev.At * float64(sampleRate))
			if frame >= start && frame < end {
				blockEvents = append(blockEvents, NoteEvent{On: ev.On, Note: ev.Note, Offset: frame - start})
			}
		}

		chans[0] = out[start:end]
		s.Process(chans[:], float64(sampleRate), blockEvents)
	}
	return out, nil
}

// RenderNote renders a single note held for noteSeconds within a total
// of seconds, a convenience for tests and the CLI.
func RenderNote(snapshot []byte, note uint8, sampleRate int, noteSeconds, seconds float64) ([]float32, error) {
	return Render(snapshot, []TimedNote{
		{On: true, Note: note, At: 0},
		{On: false, Note: note, At: noteSeconds},
	}, sampleRate, seconds)
}

// EncodeWAVFloat32LE wraps samples in a WAV container (IEEE float
// format) for the given channel count. Samples are interleaved.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
