package dsp

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeanPower returns the mean squared sample value of frame, or 0 for an
// empty frame.
func MeanPower(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return sum / float64(len(frame))
}

// RMS returns the root-mean-square level of frame.
func RMS(frame []float64) float64 {
	return math.Sqrt(MeanPower(frame))
}

// MeanSpectralEnergy reduces a magnitude spectrum to a single energy value
// commensurate with the time-domain RMS of the analyzed frame:
// sqrt(mean(mag^2) / frameSize). By Parseval's relation the half-spectrum
// mean square of an N-point transform carries a factor of N relative to the
// time-domain mean square, which the frameSize division removes.
func MeanSpectralEnergy(mags []float64, frameSize int) float64 {
	if len(mags) == 0 || frameSize <= 0 {
		return 0
	}
	var sum float64
	for _, m := range mags {
		sum += m * m
	}
	return math.Sqrt(sum / float64(len(mags)) / float64(frameSize))
}

// SpectralCentroid returns the power-weighted mean frequency in Hz of a
// half-spectrum magnitude slice produced by an fftSize-point transform at
// the given sample rate. A silent spectrum yields 0.
func SpectralCentroid(mags []float64, sampleRate float64, fftSize int) float64 {
	if len(mags) == 0 || fftSize <= 0 {
		return 0
	}
	binWidth := sampleRate / float64(fftSize)
	var weighted, total float64
	for i, m := range mags {
		p := m * m
		weighted += p * float64(i) * binWidth
		total += p
	}
	if total < Epsilon {
		return 0
	}
	return weighted / total
}

// PearsonCorrelation returns the Pearson correlation coefficient between a
// and b. Slices of unequal or zero length, or slices with near-zero
// variance (where correlation is undefined), yield 0.
func PearsonCorrelation(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// PowerRatioDb returns 10*log10(num/den) with both terms floored at Epsilon.
func PowerRatioDb(num, den float64) float64 {
	return 10.0 * math.Log10((num+Epsilon)/(den+Epsilon))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
