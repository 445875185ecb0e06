package dsp

import (
	"errors"
	"math"
)

// HannWindow returns a periodic Hann window of length n:
// w[i] = 0.5 * (1 - cos(2*pi*i/n)).
//
// The periodic form is used because at 50% overlap adjacent windows sum to
// exactly 1.0 (each overlapping frame carries average weight 0.5), so
// overlap-add reconstruction of an unmodified spectrum has unit gain with
// no synthesis window or normalization pass.
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n)))
	}
	return w
}

// ApplyWindow writes frame[i]*window[i] into dst and returns it. All three
// slices must share the same length; pass dst == nil to allocate. frame and
// dst may alias.
func ApplyWindow(dst, frame, window []float64) ([]float64, error) {
	if len(frame) != len(window) {
		return nil, errors.New("frame length does not match window length")
	}
	if dst == nil {
		dst = make([]float64, len(frame))
	}
	if len(dst) != len(frame) {
		return nil, errors.New("dst length does not match frame length")
	}
	for i := range frame {
		dst[i] = frame[i] * window[i]
	}
	return dst, nil
}
