package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Center maps 8-bit samples to [-1, 1) around the 128 midpoint.
func Center(samples []uint8) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = (float64(s) - 128) / 128
	}
	return out
}

// PowerSpectrum returns the magnitudes of the non-negative frequency bins
// of a Hann-windowed frame.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	x := make([]float64, len(data))
	copy(x, data)
	window.Apply(x, window.Hann)

	spectrum := fft.FFTReal(x)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// SpectralFlatness is the ratio of the geometric to the arithmetic mean of
// the power spectrum, ignoring the DC bin. Broadband noise approaches 1 and
// a pure tone approaches 0. A silent frame yields 0.
func SpectralFlatness(samples []uint8) float64 {
	ps := PowerSpectrum(Center(samples))
	if len(ps) < 2 {
		return 0
	}
	ps = ps[1:]

	var logSum, sum float64
	for _, m := range ps {
		p := m * m
		if p <= 0 {
			return 0
		}
		logSum += math.Log(p)
		sum += p
	}
	n := float64(len(ps))
	return math.Exp(logSum/n) / (sum / n)
}

// LSBFraction is the fraction of samples whose least significant bit is 1.
func LSBFraction(samples []uint8) float64 {
	if len(samples) == 0 {
		return 0
	}
	ones := 0
	for _, s := range samples {
		ones += int(s & 1)
	}
	return float64(ones) / float64(len(samples))
}
