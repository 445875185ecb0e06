package echo

import (
	"fmt"
	"math"
)

// Config tunes a Canceller. All numeric ranges are validated eagerly at
// construction and UpdateConfig time.
//
// FilterLength is structural: changing it through UpdateConfig reallocates
// the coefficient and reference buffers and discards prior adaptation.
// DelayCompensationMs changes rebuild the delay line. Every other field
// applies live.
type Config struct {
	// DelayCompensationMs shifts the reference signal back in time before
	// adaptation, in milliseconds. Samples before stream start read as
	// silence. Must be finite and non-negative.
	DelayCompensationMs float64 `yaml:"delay_compensation_ms"`

	// FilterLength is the adaptive filter order in samples. Must be
	// positive; a power of two is recommended but not enforced.
	FilterLength int `yaml:"filter_length"`

	// AdaptationRate is the NLMS step size scale. Must lie in (0, 1].
	AdaptationRate float64 `yaml:"adaptation_rate"`

	// LeakageFactor multiplies every coefficient after each update,
	// preventing unbounded drift during silence. Must lie in (0, 1];
	// 1 disables leakage.
	LeakageFactor float64 `yaml:"leakage_factor"`

	// DoubleTalkDetection freezes adaptation on frames where near-end
	// speech dominates the reference.
	DoubleTalkDetection bool `yaml:"double_talk_detection"`

	// DoubleTalkThreshold is the input/reference power ratio above which a
	// frame counts as double-talk. Must be finite and positive.
	DoubleTalkThreshold float64 `yaml:"double_talk_threshold"`

	// NonlinearProcessing clips residual echo bursts with a soft knee.
	NonlinearProcessing bool `yaml:"nonlinear_processing"`

	// ClippingThreshold is the hard output ceiling of the nonlinear
	// processor; the soft knee starts at 80% of it. Must lie in (0, 1].
	ClippingThreshold float64 `yaml:"clipping_threshold"`

	// ConvergenceThreshold is the convergence metric level at which the
	// convergence stopwatch fires. Must lie in (0, 1).
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`
}

// DefaultConfig returns the standard echo cancellation tuning: a 256-tap
// NLMS filter with light leakage, double-talk protection, and soft-knee
// residual clipping.
func DefaultConfig() Config {
	return Config{
		DelayCompensationMs:  0,
		FilterLength:         256,
		AdaptationRate:       0.1,
		LeakageFactor:        0.999,
		DoubleTalkDetection:  true,
		DoubleTalkThreshold:  2.0,
		NonlinearProcessing:  true,
		ClippingThreshold:    0.9,
		ConvergenceThreshold: 0.9,
	}
}

// Validate reports the first configuration error found, or nil.
func (c Config) Validate() error {
	if c.DelayCompensationMs < 0 || !isFinite(c.DelayCompensationMs) {
		return fmt.Errorf("delay compensation must be a finite non-negative duration, got %g ms", c.DelayCompensationMs)
	}
	if c.FilterLength <= 0 {
		return fmt.Errorf("filter length must be positive, got %d", c.FilterLength)
	}
	if c.AdaptationRate <= 0 || c.AdaptationRate > 1 {
		return fmt.Errorf("adaptation rate must lie in (0, 1], got %g", c.AdaptationRate)
	}
	if c.LeakageFactor <= 0 || c.LeakageFactor > 1 {
		return fmt.Errorf("leakage factor must lie in (0, 1], got %g", c.LeakageFactor)
	}
	if c.DoubleTalkThreshold <= 0 || !isFinite(c.DoubleTalkThreshold) {
		return fmt.Errorf("double-talk threshold must be a finite positive number, got %g", c.DoubleTalkThreshold)
	}
	if c.ClippingThreshold <= 0 || c.ClippingThreshold > 1 {
		return fmt.Errorf("clipping threshold must lie in (0, 1], got %g", c.ClippingThreshold)
	}
	if c.ConvergenceThreshold <= 0 || c.ConvergenceThreshold >= 1 {
		return fmt.Errorf("convergence threshold must lie in (0, 1), got %g", c.ConvergenceThreshold)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
