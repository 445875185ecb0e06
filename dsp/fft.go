package dsp

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Epsilon guards divisions against near-zero denominators in gain and SNR
// computations. Degenerate values are absorbed, never surfaced as errors.
const Epsilon = 1e-10

// Transform is a reusable real-FFT context of fixed size.
//
// Forward produces the half spectrum (Size/2+1 complex coefficients) of a
// real frame; Inverse reconstructs the time-domain frame from a half
// spectrum, normalized so that a Forward/Inverse round trip has unit gain.
// Both methods reuse internal scratch buffers: a returned slice is valid
// only until the next call on the same Transform. Instances are not safe
// for concurrent use.
type Transform struct {
	size   int
	fft    *fourier.FFT
	coeffs []complex128
	seq    []float64
}

// NewTransform creates a real-FFT context for frames of the given size.
// The size must be a power of two and at least 2.
func NewTransform(size int) (*Transform, error) {
	if size < 2 {
		return nil, fmt.Errorf("fft size must be at least 2, got %d", size)
	}
	if size&(size-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two, got %d", size)
	}
	return &Transform{
		size:   size,
		fft:    fourier.NewFFT(size),
		coeffs: make([]complex128, size/2+1),
		seq:    make([]float64, size),
	}, nil
}

// Size returns the frame length the transform operates on.
func (t *Transform) Size() int { return t.size }

// Bins returns the number of half-spectrum coefficients (Size/2 + 1).
func (t *Transform) Bins() int { return t.size/2 + 1 }

// Forward computes the half spectrum of frame. The frame length must equal
// Size. The returned slice is scratch owned by the Transform.
func (t *Transform) Forward(frame []float64) ([]complex128, error) {
	if len(frame) != t.size {
		return nil, fmt.Errorf("frame length %d does not match fft size %d", len(frame), t.size)
	}
	return t.fft.Coefficients(t.coeffs, frame), nil
}

// Inverse reconstructs a time-domain frame from a half spectrum of Bins()
// coefficients. gonum's Sequence is unnormalized (a round trip scales by
// Size), so the result is divided by Size to restore unit gain. The
// returned slice is scratch owned by the Transform.
func (t *Transform) Inverse(spectrum []complex128) ([]float64, error) {
	if len(spectrum) != t.Bins() {
		return nil, fmt.Errorf("spectrum length %d does not match bin count %d", len(spectrum), t.Bins())
	}
	seq := t.fft.Sequence(t.seq, spectrum)
	scale := 1.0 / float64(t.size)
	for i := range seq {
		seq[i] *= scale
	}
	return seq, nil
}

// Magnitudes writes the absolute value of each coefficient into dst and
// returns it. dst must have the same length as spectrum; pass nil to
// allocate.
func Magnitudes(dst []float64, spectrum []complex128) ([]float64, error) {
	if dst == nil {
		dst = make([]float64, len(spectrum))
	}
	if len(dst) != len(spectrum) {
		return nil, errors.New("dst length does not match spectrum length")
	}
	for i, c := range spectrum {
		dst[i] = cmplx.Abs(c)
	}
	return dst, nil
}

// ScaleBin multiplies a single spectrum coefficient by a real gain in place.
func ScaleBin(spectrum []complex128, bin int, gain float64) {
	spectrum[bin] = complex(real(spectrum[bin])*gain, imag(spectrum[bin])*gain)
}
