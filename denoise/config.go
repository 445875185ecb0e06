package denoise

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Algorithm selects the spectral attenuation rule applied to each frame.
type Algorithm int

const (
	// SpectralSubtraction subtracts the scaled noise power estimate from the
	// signal power per bin, with a spectral floor.
	SpectralSubtraction Algorithm = iota
	// WienerFilter applies the gain SNR/(SNR+1) per bin.
	WienerFilter
	// KalmanFilter applies the gain signalPower/(signalPower+noisePower) per
	// bin. In this simplified form the value is identical to the Wiener gain;
	// both remain selectable because callers depend on either name.
	KalmanFilter
	// DeepLearning is a declared placeholder. Selecting it is valid
	// configuration; processing falls back to Wiener gains until a model
	// runtime is integrated.
	DeepLearning
)

// String returns a human-readable name for the algorithm.
func (a Algorithm) String() string {
	switch a {
	case SpectralSubtraction:
		return "spectral-subtraction"
	case WienerFilter:
		return "wiener-filter"
	case KalmanFilter:
		return "kalman-filter"
	case DeepLearning:
		return "deep-learning"
	default:
		return "unknown"
	}
}

// MarshalYAML encodes the algorithm as its string name.
func (a Algorithm) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// UnmarshalYAML decodes an algorithm from its string name, accepting the
// same values String produces.
func (a *Algorithm) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	switch name {
	case "spectral-subtraction":
		*a = SpectralSubtraction
	case "wiener-filter":
		*a = WienerFilter
	case "kalman-filter":
		*a = KalmanFilter
	case "deep-learning":
		*a = DeepLearning
	default:
		return fmt.Errorf("unknown algorithm %q", name)
	}
	return nil
}

// Config tunes a Reducer. All numeric ranges are validated eagerly at
// construction and UpdateConfig time; invalid values never reach the
// per-frame processing path.
//
// FrameSize is structural: changing it through UpdateConfig reallocates all
// spectral buffers and discards prior adaptation state. Every other field
// applies live.
type Config struct {
	// Enabled selects pass-through (false) or active processing (true).
	Enabled bool `yaml:"enabled"`

	// Algorithm picks the spectral attenuation rule.
	Algorithm Algorithm `yaml:"algorithm"`

	// FrameSize is the analysis FFT size in samples. Must be a power of two
	// and at least 64. Frames overlap by 50%.
	FrameSize int `yaml:"frame_size"`

	// Alpha is the spectral-subtraction over-subtraction coefficient.
	// Must be positive.
	Alpha float64 `yaml:"alpha"`

	// Beta is the spectral-subtraction floor as a fraction of the signal
	// power per bin. Must lie in (0, 1).
	Beta float64 `yaml:"beta"`

	// SmoothingFactor blends the published noise spectrum toward the raw
	// adaptive estimate. Must lie in (0, 1).
	SmoothingFactor float64 `yaml:"smoothing_factor"`

	// VADThreshold is the mean-spectral-energy level above which a frame is
	// classified as voice. The value is commensurate with time-domain RMS of
	// the windowed frame. Must be finite and non-negative.
	VADThreshold float64 `yaml:"vad_threshold"`

	// HangoverTimeMs keeps the voice classification active after energy
	// drops. The countdown is ceil(HangoverTimeMs*sampleRate/1000) frames.
	// Must be non-negative.
	HangoverTimeMs float64 `yaml:"hangover_time_ms"`

	// NoiseFloorDb is the reference floor used by SNR-based statistics.
	// Must be finite and negative.
	NoiseFloorDb float64 `yaml:"noise_floor_db"`

	// LearningRate weights new magnitudes in the raw noise estimate update.
	// Must lie in (0, 1].
	LearningRate float64 `yaml:"learning_rate"`

	// ForgettingFactor weights the prior raw noise estimate. Must lie in
	// (0, 1].
	ForgettingFactor float64 `yaml:"forgetting_factor"`

	// MinNoiseLevel floors every bin of the noise magnitude estimate.
	// Must be non-negative.
	MinNoiseLevel float64 `yaml:"min_noise_level"`
}

// DefaultConfig returns the standard noise reduction tuning: spectral
// subtraction with 2x over-subtraction, a 512-sample analysis frame, and
// conservative adaptation rates.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Algorithm:        SpectralSubtraction,
		FrameSize:        512,
		Alpha:            2.0,
		Beta:             0.1,
		SmoothingFactor:  0.9,
		VADThreshold:     0.15,
		HangoverTimeMs:   2.0,
		NoiseFloorDb:     -60.0,
		LearningRate:     0.05,
		ForgettingFactor: 0.95,
		MinNoiseLevel:    1e-6,
	}
}

// Validate reports the first configuration error found, or nil.
func (c Config) Validate() error {
	if c.FrameSize < 64 {
		return fmt.Errorf("frame size must be at least 64, got %d", c.FrameSize)
	}
	if c.FrameSize&(c.FrameSize-1) != 0 {
		return fmt.Errorf("frame size must be a power of two, got %d", c.FrameSize)
	}
	switch c.Algorithm {
	case SpectralSubtraction, WienerFilter, KalmanFilter, DeepLearning:
	default:
		return fmt.Errorf("unknown algorithm %d", int(c.Algorithm))
	}
	if c.Alpha <= 0 || !isFinite(c.Alpha) {
		return fmt.Errorf("alpha must be a positive finite number, got %g", c.Alpha)
	}
	if c.Beta <= 0 || c.Beta >= 1 {
		return fmt.Errorf("beta must lie in (0, 1), got %g", c.Beta)
	}
	if c.SmoothingFactor <= 0 || c.SmoothingFactor >= 1 {
		return fmt.Errorf("smoothing factor must lie in (0, 1), got %g", c.SmoothingFactor)
	}
	if c.VADThreshold < 0 || !isFinite(c.VADThreshold) {
		return fmt.Errorf("vad threshold must be a finite non-negative number, got %g", c.VADThreshold)
	}
	if c.HangoverTimeMs < 0 || !isFinite(c.HangoverTimeMs) {
		return fmt.Errorf("hangover time must be a finite non-negative number, got %g", c.HangoverTimeMs)
	}
	if c.NoiseFloorDb >= 0 || !isFinite(c.NoiseFloorDb) {
		return fmt.Errorf("noise floor must be a finite negative dB value, got %g", c.NoiseFloorDb)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("learning rate must lie in (0, 1], got %g", c.LearningRate)
	}
	if c.ForgettingFactor <= 0 || c.ForgettingFactor > 1 {
		return fmt.Errorf("forgetting factor must lie in (0, 1], got %g", c.ForgettingFactor)
	}
	if c.MinNoiseLevel < 0 || !isFinite(c.MinNoiseLevel) {
		return fmt.Errorf("minimum noise level must be a finite non-negative number, got %g", c.MinNoiseLevel)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
