package denoise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Enabled)
	assert.Equal(t, SpectralSubtraction, cfg.Algorithm)
	assert.Equal(t, 512, cfg.FrameSize)
	assert.Equal(t, 2.0, cfg.Alpha)
	assert.Equal(t, 0.1, cfg.Beta)
	assert.Equal(t, 0.9, cfg.SmoothingFactor)
	assert.Equal(t, 0.15, cfg.VADThreshold)
	assert.Equal(t, 2.0, cfg.HangoverTimeMs)
	assert.Equal(t, -60.0, cfg.NoiseFloorDb)
	assert.Equal(t, 0.05, cfg.LearningRate)
	assert.Equal(t, 0.95, cfg.ForgettingFactor)
	assert.Equal(t, 1e-6, cfg.MinNoiseLevel)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default is valid",
			mutate: func(*Config) {},
		},
		{
			name:    "frame size too small",
			mutate:  func(c *Config) { c.FrameSize = 32 },
			wantErr: "frame size",
		},
		{
			name:    "frame size not a power of two",
			mutate:  func(c *Config) { c.FrameSize = 500 },
			wantErr: "frame size",
		},
		{
			name:    "negative alpha",
			mutate:  func(c *Config) { c.Alpha = -1 },
			wantErr: "alpha",
		},
		{
			name:    "zero alpha",
			mutate:  func(c *Config) { c.Alpha = 0 },
			wantErr: "alpha",
		},
		{
			name:    "beta at upper bound",
			mutate:  func(c *Config) { c.Beta = 1 },
			wantErr: "beta",
		},
		{
			name:    "beta negative",
			mutate:  func(c *Config) { c.Beta = -0.1 },
			wantErr: "beta",
		},
		{
			name:    "smoothing factor out of range",
			mutate:  func(c *Config) { c.SmoothingFactor = 1 },
			wantErr: "smoothing factor",
		},
		{
			name:    "negative VAD threshold",
			mutate:  func(c *Config) { c.VADThreshold = -0.01 },
			wantErr: "vad threshold",
		},
		{
			name:    "non-finite VAD threshold",
			mutate:  func(c *Config) { c.VADThreshold = math.NaN() },
			wantErr: "vad threshold",
		},
		{
			name:    "negative hangover",
			mutate:  func(c *Config) { c.HangoverTimeMs = -2 },
			wantErr: "hangover time",
		},
		{
			name:    "noise floor not below zero dB",
			mutate:  func(c *Config) { c.NoiseFloorDb = 0 },
			wantErr: "noise floor",
		},
		{
			name:    "learning rate above one",
			mutate:  func(c *Config) { c.LearningRate = 1.5 },
			wantErr: "learning rate",
		},
		{
			name:    "zero forgetting factor",
			mutate:  func(c *Config) { c.ForgettingFactor = 0 },
			wantErr: "forgetting factor",
		},
		{
			name:    "negative minimum noise level",
			mutate:  func(c *Config) { c.MinNoiseLevel = -1e-9 },
			wantErr: "minimum noise level",
		},
		{
			name:    "unknown algorithm",
			mutate:  func(c *Config) { c.Algorithm = Algorithm(99) },
			wantErr: "algorithm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAlgorithmString(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		want string
	}{
		{SpectralSubtraction, "spectral-subtraction"},
		{WienerFilter, "wiener-filter"},
		{KalmanFilter, "kalman-filter"},
		{DeepLearning, "deep-learning"},
		{Algorithm(42), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.alg.String())
	}
}
