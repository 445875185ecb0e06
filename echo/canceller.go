package echo

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/opd-ai/audioenhance/dsp"
)

var (
	// ErrCancellerClosed is returned by every method called after Close.
	ErrCancellerClosed = errors.New("echo canceller has been closed")

	// ErrFrameLengthMismatch is returned when input and reference frames
	// differ in length. Frames are rejected rather than padded: padding
	// would feed fabricated silence into the adaptive filter and corrupt
	// the learned echo path.
	ErrFrameLengthMismatch = errors.New("input and reference frames must be equal length")
)

// Canceller removes acoustic echo from a captured signal using a far-end
// reference, with a normalized least-mean-squares (NLMS) adaptive filter.
//
// For every sample the canceller slides the newest reference sample into a
// FilterLength window (newest first), estimates the echo as the dot product
// of the filter coefficients with that window, and subtracts the estimate
// from the input. On frames free of double-talk the coefficients adapt
// toward the echo path with a power-normalized step and a leakage decay;
// the output sample is recomputed with the updated coefficients. During
// double-talk the coefficients freeze but subtraction continues.
//
// Design decisions:
//   - Instances are single-writer like the noise reducer: Process,
//     UpdateConfig, Reset, and Close must not be called concurrently.
//   - Input and reference frames of any equal length are accepted; the
//     reference window and the delay line persist across calls, so the
//     canceller is fed successive chunks of a continuous stream in order.
//   - The convergence metric max(0, 1-mean|coeff|) is a heuristic proxy,
//     not an echo-return-loss measure. It starts at 1.0 for the zeroed
//     filter, so the convergence stopwatch typically fires on the first
//     frame with the default threshold. A proper ERLE metric could replace
//     it without changing the contract.
type Canceller struct {
	cfg          Config
	sampleRate   int
	delaySamples int

	// coeffs and window are index-aligned: window[0] is the newest
	// delay-compensated reference sample.
	coeffs  []float64
	window  []float64
	refTail []float64 // last delaySamples reference samples from prior frames

	detector     *DoubleTalkDetector
	delayScratch []float64

	stats     Stats
	converged bool
	started   bool
	startTime time.Time

	closed bool
}

// New creates an echo canceller for one audio session at the given sample
// rate. The configuration is validated eagerly.
func New(sampleRate int, cfg Config) (*Canceller, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid echo cancellation config: %w", err)
	}

	c := &Canceller{
		cfg:          cfg,
		sampleRate:   sampleRate,
		delaySamples: delaySamples(cfg.DelayCompensationMs, sampleRate),
		coeffs:       make([]float64, cfg.FilterLength),
		window:       make([]float64, cfg.FilterLength),
		detector:     NewDoubleTalkDetector(cfg.DoubleTalkDetection, cfg.DoubleTalkThreshold),
	}
	c.refTail = make([]float64, c.delaySamples)
	c.stats.Convergence = 1.0 // zeroed filter, mean |coeff| = 0

	logrus.WithFields(logrus.Fields{
		"function":      "echo.New",
		"sample_rate":   sampleRate,
		"filter_length": cfg.FilterLength,
		"delay_samples": c.delaySamples,
		"double_talk":   cfg.DoubleTalkDetection,
	}).Info("Echo canceller created")

	return c, nil
}

// delaySamples converts the delay compensation duration to whole samples at
// the session rate, rounding to nearest.
func delaySamples(ms float64, sampleRate int) int {
	return int(math.Round(ms * float64(sampleRate) / 1000.0))
}

// SampleRate returns the session sample rate the canceller was created with.
func (c *Canceller) SampleRate() int { return c.sampleRate }

// FilterLength returns the adaptive filter order in samples.
func (c *Canceller) FilterLength() int { return len(c.coeffs) }

// Config returns a copy of the live configuration.
func (c *Canceller) Config() Config { return c.cfg }

// Coefficients returns a copy of the current filter coefficients, newest
// reference tap first.
func (c *Canceller) Coefficients() []float64 {
	out := make([]float64, len(c.coeffs))
	copy(out, c.coeffs)
	return out
}

// Process subtracts the estimated echo of reference from input and returns
// the suppressed frame. Both frames must be the same length; mismatched
// frames are rejected with ErrFrameLengthMismatch. Frames must arrive in
// stream order.
func (c *Canceller) Process(input, reference []float64) ([]float64, error) {
	if c.closed {
		return nil, ErrCancellerClosed
	}
	if len(input) != len(reference) {
		return nil, fmt.Errorf("%w: input %d, reference %d",
			ErrFrameLengthMismatch, len(input), len(reference))
	}
	if !c.started {
		c.started = true
		c.startTime = time.Now()
	}

	delayed := c.delayedReference(reference)

	inPow := dsp.MeanPower(input)
	refPow := dsp.MeanPower(delayed)
	doubleTalk := c.detector.Detect(inPow, refPow)

	output := make([]float64, len(input))
	for i := range input {
		// Slide the newest delay-compensated reference sample in front.
		copy(c.window[1:], c.window[:len(c.window)-1])
		c.window[0] = delayed[i]

		echo := floats.Dot(c.coeffs, c.window)
		err := input[i] - echo

		if !doubleTalk {
			power := floats.Dot(c.window, c.window)
			step := c.cfg.AdaptationRate / (power + dsp.Epsilon)
			floats.AddScaled(c.coeffs, step*err, c.window)
			floats.Scale(c.cfg.LeakageFactor, c.coeffs)

			// The emitted sample uses the updated coefficients.
			err = input[i] - floats.Dot(c.coeffs, c.window)
		}

		if c.cfg.NonlinearProcessing {
			err = c.clipResidual(err)
		}
		output[i] = err
	}

	c.updateSnapshot(inPow, dsp.MeanPower(output), doubleTalk)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":    "Canceller.Process",
			"samples":     len(input),
			"double_talk": doubleTalk,
			"convergence": c.stats.Convergence,
		}).Debug("Processed echo cancellation frame")
	}

	return output, nil
}

// delayedReference shifts the reference back by delaySamples, drawing the
// leading samples from the tail of earlier frames (zeros before stream
// start), and advances the tail.
func (c *Canceller) delayedReference(reference []float64) []float64 {
	if c.delaySamples == 0 {
		return reference
	}

	if cap(c.delayScratch) < len(reference) {
		c.delayScratch = make([]float64, len(reference))
	}
	delayed := c.delayScratch[:len(reference)]

	n := copy(delayed, c.refTail)
	if n < len(delayed) {
		copy(delayed[n:], reference)
	}

	if len(reference) >= c.delaySamples {
		copy(c.refTail, reference[len(reference)-c.delaySamples:])
	} else {
		keep := c.delaySamples - len(reference)
		copy(c.refTail, c.refTail[len(c.refTail)-keep:])
		copy(c.refTail[keep:], reference)
	}
	return delayed
}

// clipResidual suppresses residual echo bursts: samples below 80% of the
// clipping threshold pass unchanged, the band above it is compressed with
// the soft knee knee + excess*(1 - e^(-2*excess)), and the result is
// hard-limited at the threshold. The sign is preserved and the curve is
// continuous at the knee.
func (c *Canceller) clipResidual(sample float64) float64 {
	knee := 0.8 * c.cfg.ClippingThreshold
	abs := math.Abs(sample)
	if abs <= knee {
		return sample
	}
	excess := abs - knee
	compressed := knee + excess*(1.0-math.Exp(-2.0*excess))
	if compressed > c.cfg.ClippingThreshold {
		compressed = c.cfg.ClippingThreshold
	}
	return math.Copysign(compressed, sample)
}

// UpdateConfig replaces the live configuration after eager validation.
// A FilterLength change is structural: coefficients and the reference
// window are reallocated and prior adaptation is forgotten, and the
// convergence stopwatch restarts on the next Process. A delay compensation
// change rebuilds the delay line as silence. Everything else applies live.
func (c *Canceller) UpdateConfig(cfg Config) error {
	if c.closed {
		return ErrCancellerClosed
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Canceller.UpdateConfig",
			"error":    err.Error(),
		}).Error("Echo cancellation config rejected")
		return fmt.Errorf("invalid echo cancellation config: %w", err)
	}

	structural := cfg.FilterLength != c.cfg.FilterLength
	delayChanged := delaySamples(cfg.DelayCompensationMs, c.sampleRate) != c.delaySamples

	c.cfg = cfg
	c.detector.SetEnabled(cfg.DoubleTalkDetection)
	c.detector.SetThreshold(cfg.DoubleTalkThreshold)

	if structural {
		c.coeffs = make([]float64, cfg.FilterLength)
		c.window = make([]float64, cfg.FilterLength)
		c.converged = false
		c.started = false
		c.stats.Convergence = 1.0
		c.stats.ConvergenceTimeMs = 0
	}
	if delayChanged {
		c.delaySamples = delaySamples(cfg.DelayCompensationMs, c.sampleRate)
		c.refTail = make([]float64, c.delaySamples)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "Canceller.UpdateConfig",
		"filter_length": cfg.FilterLength,
		"structural":    structural,
		"delay_samples": c.delaySamples,
	}).Info("Echo cancellation config updated")

	return nil
}

// Stats returns the latest statistics snapshot. It is side-effect free.
func (c *Canceller) Stats() (Stats, error) {
	if c.closed {
		return Stats{}, ErrCancellerClosed
	}
	return c.stats, nil
}

// Reset zeroes the filter, the reference window, the delay line, and the
// statistics, and restarts the convergence stopwatch. The configuration is
// unchanged.
func (c *Canceller) Reset() error {
	if c.closed {
		return ErrCancellerClosed
	}

	for i := range c.coeffs {
		c.coeffs[i] = 0
		c.window[i] = 0
	}
	for i := range c.refTail {
		c.refTail[i] = 0
	}
	c.stats = Stats{Convergence: 1.0}
	c.converged = false
	c.started = false

	logrus.WithFields(logrus.Fields{
		"function": "Canceller.Reset",
	}).Info("Echo canceller reset")

	return nil
}

// Close releases all buffers and invalidates the instance. Every further
// call, including a second Close, returns ErrCancellerClosed.
func (c *Canceller) Close() error {
	if c.closed {
		return ErrCancellerClosed
	}
	c.closed = true
	c.coeffs = nil
	c.window = nil
	c.refTail = nil
	c.delayScratch = nil
	c.detector = nil

	logrus.WithFields(logrus.Fields{
		"function": "Canceller.Close",
	}).Info("Echo canceller closed")

	return nil
}
