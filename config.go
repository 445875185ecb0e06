package audioenhance

import (
	"fmt"

	"github.com/opd-ai/audioenhance/denoise"
	"github.com/opd-ai/audioenhance/echo"
)

// Config holds the pipeline-level configuration: the session sample
// rate, which enhancement units run, and their per-unit tuning.
//
// The post-processing stage chain is assembled programmatically through
// Pipeline.AddStage, not through configuration.
type Config struct {
	// SampleRate is the session sample rate in Hz shared by every
	// unit in the pipeline. Required, must be positive.
	SampleRate int `yaml:"sample_rate"`

	// EchoCancellation enables the adaptive echo canceller.
	EchoCancellation bool `yaml:"echo_cancellation"`

	// Echo tunes the echo canceller.
	Echo echo.Config `yaml:"echo"`

	// NoiseReduction enables the spectral noise reducer.
	NoiseReduction bool `yaml:"noise_reduction"`

	// Noise tunes the noise reducer.
	Noise denoise.Config `yaml:"noise"`
}

// DefaultConfig returns a pipeline configuration for a 48 kHz voice
// session with both enhancement units enabled at their defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:       48000,
		EchoCancellation: true,
		Echo:             echo.DefaultConfig(),
		NoiseReduction:   true,
		Noise:            denoise.DefaultConfig(),
	}
}

// Validate checks the whole configuration tree. Unit configurations are
// validated even when the unit is disabled, so a later enable cannot
// surface a latent configuration error.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if err := c.Echo.Validate(); err != nil {
		return fmt.Errorf("echo config: %w", err)
	}
	if err := c.Noise.Validate(); err != nil {
		return fmt.Errorf("noise config: %w", err)
	}
	return nil
}
