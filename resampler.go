package audioenhance

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Resampler converts mono float64 PCM between two sample rates using
// linear interpolation.
//
// The resampler is streaming: fractional read position and the final
// sample of the previous call are carried across Process calls, so a
// long signal split into arbitrary chunks resamples to the same result
// as one large call (up to the chunk-boundary interpolation sample).
//
// Design decisions:
// - Linear interpolation keeps latency at zero and cost at O(n), which
//   is sufficient for voice-band material between common rates
//   (8/16/24/48 kHz). No anti-alias filtering is applied; callers
//   downsampling wide-band content by large factors should low-pass
//   first.
// - Samples are normalized float64 throughout, matching the processing
//   units; int16 conversion happens only at the codec boundary.
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64 // input samples consumed per output sample

	position   float64 // fractional read position into the current input
	lastSample float64 // final input sample of the previous call
}

// NewResampler creates a resampler converting from inputRate to
// outputRate. Both rates must be positive.
func NewResampler(inputRate, outputRate int) (*Resampler, error) {
	if inputRate <= 0 {
		return nil, fmt.Errorf("input rate must be positive, got %d", inputRate)
	}
	if outputRate <= 0 {
		return nil, fmt.Errorf("output rate must be positive, got %d", outputRate)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "NewResampler",
		"input_rate":  inputRate,
		"output_rate": outputRate,
		"ratio":       float64(inputRate) / float64(outputRate),
	}).Info("Created audio resampler")

	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}, nil
}

// Process resamples one chunk of mono samples to the output rate.
//
// The returned slice is freshly allocated (or a copy on the same-rate
// path) and never aliases the input. An empty input yields an empty
// output and leaves the carried state untouched.
func (r *Resampler) Process(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, nil
	}

	// Same-rate sessions skip interpolation entirely.
	if r.inputRate == r.outputRate {
		out := make([]float64, len(input))
		copy(out, input)
		return out, nil
	}

	outputLen := int(float64(len(input))/r.ratio + 0.5)
	output := make([]float64, 0, outputLen)

	for i := 0; i < outputLen; i++ {
		idx := int(r.position)
		frac := r.position - float64(idx)
		output = append(output, r.sampleAt(input, idx, frac))
		r.position += r.ratio
	}

	// Carry state into the next chunk: the read position is rebased to
	// the start of the upcoming input, and the final sample is kept for
	// boundary interpolation.
	r.position -= float64(len(input))
	r.lastSample = input[len(input)-1]

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":      "Resampler.Process",
			"input_length":  len(input),
			"output_length": len(output),
			"position":      r.position,
		}).Debug("Resampled audio chunk")
	}

	return output, nil
}

// sampleAt reads the interpolated sample at idx+frac, falling back to
// the carried boundary sample below the chunk start and clamping at the
// chunk end.
func (r *Resampler) sampleAt(input []float64, idx int, frac float64) float64 {
	if idx < 0 {
		return r.lastSample
	}
	if idx >= len(input)-1 {
		return input[len(input)-1]
	}
	return input[idx]*(1.0-frac) + input[idx+1]*frac
}

// OutputSize returns the number of output samples Process will produce
// for an input of the given length, useful for preallocating buffers.
func (r *Resampler) OutputSize(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}
	if r.inputRate == r.outputRate {
		return inputLen
	}
	return int(float64(inputLen)/r.ratio + 0.5)
}

// Reset clears the carried position and boundary sample, as if the
// resampler were newly created.
func (r *Resampler) Reset() {
	r.position = 0
	r.lastSample = 0

	logrus.WithFields(logrus.Fields{
		"function": "Resampler.Reset",
	}).Debug("Resampler state reset")
}

// InputRate returns the configured input sample rate.
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the configured output sample rate.
func (r *Resampler) OutputRate() int { return r.outputRate }

// Ratio returns input samples consumed per output sample.
func (r *Resampler) Ratio() float64 { return r.ratio }
