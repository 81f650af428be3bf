// Package analyze measures properties of rendered audio. It exists for
// verification: tests and the CLI use it to confirm that the bank emits
// energy where the topology says it should.
package analyze

import (
	"errors"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// PeakFrequency estimates the dominant frequency of a mono signal in
// Hz. The signal is Hann-windowed, transformed, and the peak magnitude
// bin is refined with parabolic interpolation.
func PeakFrequency(samples []float32, sampleRate float64) (float64, error) {
	if len(samples) < 16 {
		return 0, errors.New("analyze: too few samples")
	}
	if sampleRate <= 0 {
		return 0, errors.New("analyze: sample rate must be positive")
	}

	fftSize := 1
	for fftSize < len(samples) {
		fftSize <<= 1
	}

	in := make([]complex128, fftSize)
	n := len(samples)
	for i, s := range samples {
		// Hann window.
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		in[i] = complex(float64(s)*w, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, err
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return 0, err
	}

	// Magnitudes of the non-negative bins.
	half := fftSize/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)
	for i := 0; i < half; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}
	mags := make([]float64, half)
	vecmath.Magnitude(mags, re, im)

	// Peak bin, skipping DC.
	peak := 1
	for i := 2; i < half; i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}

	binWidth := sampleRate / float64(fftSize)
	if peak <= 0 || peak >= half-1 {
		return float64(peak) * binWidth, nil
	}

	// Parabolic interpolation around the peak bin.
	a, b, c := mags[peak-1], mags[peak], mags[peak+1]
	denom := a - 2*b + c
	offset := 0.0
	if denom != 0 {
		offset = 0.5 * (a - c) / denom
	}
	return (float64(peak) + offset) * binWidth, nil
}

// RMS returns the root-mean-square level of a mono signal.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
