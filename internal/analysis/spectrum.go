package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the one-sided amplitude spectrum of data with the mean
// removed. For n samples taken every dt, bin i is at frequency i/(n·dt).
func Spectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// and its amplitude. A constant or too short signal yields zero.
func DominantFrequency(data []float64, dt float64) (freq, amplitude float64) {
	ps := Spectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}

	best := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > amplitude {
			amplitude = ps[i]
			best = i
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(best) / (float64(len(data)) * dt), amplitude
}
