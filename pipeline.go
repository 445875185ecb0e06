package audioenhance

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audioenhance/codec"
	"github.com/opd-ai/audioenhance/denoise"
	"github.com/opd-ai/audioenhance/echo"
)

// ErrPipelineDestroyed is returned by every method after Kill.
var ErrPipelineDestroyed = errors.New("pipeline instance has been destroyed")

// Pipeline chains the enhancement units for one audio session: echo
// cancellation, then noise reduction, then the post-processing stage
// chain. It also owns the far-end decode path that produces reference
// frames for the echo canceller.
//
// Pipeline methods are safe for concurrent use. Processing and
// lifecycle methods take the write lock; Report and the accessors take
// the read lock, so statistics can be polled from another goroutine
// while audio flows. Frames must still arrive in stream order: the
// pipeline serializes calls, it does not reorder them.
type Pipeline struct {
	mu sync.RWMutex

	cfg Config

	canceller *echo.Canceller  // nil when echo cancellation is disabled
	reducer   *denoise.Reducer // nil when noise reduction is disabled
	chain     *StageChain

	// Far-end decode path.
	decoder   *codec.OpusDecoder
	resampler *Resampler // nil until a reference rate differs from the session rate

	framesProcessed uint64
	destroyed       bool
}

// New creates a pipeline for one audio session. The whole configuration
// tree is validated eagerly; a disabled unit's configuration must still
// be valid.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		chain:   NewStageChain(),
		decoder: codec.NewOpusDecoder(),
	}

	if cfg.EchoCancellation {
		canceller, err := echo.New(cfg.SampleRate, cfg.Echo)
		if err != nil {
			return nil, fmt.Errorf("failed to create echo canceller: %w", err)
		}
		p.canceller = canceller
	}

	if cfg.NoiseReduction {
		reducer, err := denoise.New(cfg.SampleRate, cfg.Noise)
		if err != nil {
			if p.canceller != nil {
				p.canceller.Close()
			}
			return nil, fmt.Errorf("failed to create noise reducer: %w", err)
		}
		p.reducer = reducer
	}

	logrus.WithFields(logrus.Fields{
		"function":          "New",
		"sample_rate":       cfg.SampleRate,
		"echo_cancellation": cfg.EchoCancellation,
		"noise_reduction":   cfg.NoiseReduction,
	}).Info("Created audio enhancement pipeline")

	return p, nil
}

// ProcessCapture runs one frame of near-end (microphone) audio through
// the pipeline and returns the enhanced frame.
//
// reference is the far-end frame driving the echo canceller, aligned
// with the input; pass nil when no far-end audio is playing and the
// echo stage is skipped for this frame. When both are given they must
// have the same length.
//
// The returned slice never aliases the input. An empty input returns an
// empty output without touching any unit state.
func (p *Pipeline) ProcessCapture(input, reference []float64) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil, ErrPipelineDestroyed
	}
	if len(input) == 0 {
		return nil, nil
	}

	current := input
	processed := false

	if p.canceller != nil && reference != nil {
		out, err := p.canceller.Process(current, reference)
		if err != nil {
			return nil, fmt.Errorf("echo cancellation failed: %w", err)
		}
		current = out
		processed = true
	}

	if p.reducer != nil {
		out, err := p.reducer.Process(current)
		if err != nil {
			return nil, fmt.Errorf("noise reduction failed: %w", err)
		}
		current = out
		processed = true
	}

	// Stages mutate their input in place; when no unit ran, current
	// still aliases the caller's buffer and must be detached first.
	if !processed {
		detached := make([]float64, len(current))
		copy(detached, current)
		current = detached
	}

	out, err := p.chain.Process(current)
	if err != nil {
		return nil, err
	}

	p.framesProcessed++

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":      "Pipeline.ProcessCapture",
			"input_length":  len(input),
			"output_length": len(out),
			"echo_applied":  p.canceller != nil && reference != nil,
			"frames_total":  p.framesProcessed,
		}).Debug("Processed capture frame")
	}

	return out, nil
}

// ProcessReference decodes one far-end Opus packet into a reference
// frame at the session sample rate, resampling when the packet's
// bandwidth implies a different rate. The result is what the caller
// should hand to the next ProcessCapture call.
func (p *Pipeline) ProcessReference(packet []byte) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil, ErrPipelineDestroyed
	}

	pcm, rate, err := p.decoder.Decode(packet)
	if err != nil {
		return nil, fmt.Errorf("failed to decode reference packet: %w", err)
	}
	if rate == p.cfg.SampleRate {
		return pcm, nil
	}

	// Opus streams may switch bandwidth mid-call; rebuild the resampler
	// when the decoded rate moves.
	if p.resampler == nil || p.resampler.InputRate() != rate {
		resampler, err := NewResampler(rate, p.cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to create reference resampler: %w", err)
		}
		p.resampler = resampler

		logrus.WithFields(logrus.Fields{
			"function":     "Pipeline.ProcessReference",
			"decoded_rate": rate,
			"session_rate": p.cfg.SampleRate,
		}).Info("Reference resampler created for decoded rate")
	}

	return p.resampler.Process(pcm)
}

// AddStage appends a post-processing stage to the pipeline's chain. The
// pipeline takes ownership and closes the stage on Kill.
func (p *Pipeline) AddStage(stage Stage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPipelineDestroyed
	}
	if stage == nil {
		return errors.New("stage cannot be nil")
	}

	p.chain.Add(stage)
	return nil
}

// UpdateNoiseConfig applies new noise reduction tuning mid-session.
// Structural changes reset the reducer's adaptation; see
// denoise.Reducer.UpdateConfig.
func (p *Pipeline) UpdateNoiseConfig(cfg denoise.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPipelineDestroyed
	}
	if p.reducer == nil {
		return errors.New("noise reduction is not enabled")
	}

	if err := p.reducer.UpdateConfig(cfg); err != nil {
		return err
	}
	p.cfg.Noise = cfg
	return nil
}

// UpdateEchoConfig applies new echo cancellation tuning mid-session.
// Structural changes reset the canceller's adaptation; see
// echo.Canceller.UpdateConfig.
func (p *Pipeline) UpdateEchoConfig(cfg echo.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPipelineDestroyed
	}
	if p.canceller == nil {
		return errors.New("echo cancellation is not enabled")
	}

	if err := p.canceller.UpdateConfig(cfg); err != nil {
		return err
	}
	p.cfg.Echo = cfg
	return nil
}

// Report returns the pipeline-level statistics snapshot. Safe to call
// from a goroutine other than the processing one.
func (p *Pipeline) Report() (Report, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.destroyed {
		return Report{}, ErrPipelineDestroyed
	}

	report := Report{
		NoiseReductionEnabled:   p.reducer != nil,
		EchoCancellationEnabled: p.canceller != nil,
		StageNames:              p.chain.Names(),
		FramesProcessed:         p.framesProcessed,
		Timestamp:               time.Now(),
	}

	scores := make([]float64, 0, 2)
	if p.canceller != nil {
		stats, err := p.canceller.Stats()
		if err != nil {
			return Report{}, err
		}
		report.Echo = stats
		scores = append(scores, stats.SignalQuality)
	}
	if p.reducer != nil {
		stats, err := p.reducer.Stats()
		if err != nil {
			return Report{}, err
		}
		report.Noise = stats
		scores = append(scores, stats.OverallQuality)
	}
	report.Quality = gradeQuality(scores...)

	return report, nil
}

// Reset returns every unit to its freshly constructed state: adaptation,
// statistics, carried buffers, and the far-end decode path all restart.
// Stages added to the chain are kept as they are.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPipelineDestroyed
	}

	if p.canceller != nil {
		if err := p.canceller.Reset(); err != nil {
			return fmt.Errorf("failed to reset echo canceller: %w", err)
		}
	}
	if p.reducer != nil {
		if err := p.reducer.Reset(); err != nil {
			return fmt.Errorf("failed to reset noise reducer: %w", err)
		}
	}

	// The Opus decoder carries inter-frame prediction state that cannot
	// be rewound, so a fresh decoder replaces it.
	p.decoder = codec.NewOpusDecoder()
	p.resampler = nil
	p.framesProcessed = 0

	logrus.WithFields(logrus.Fields{
		"function": "Pipeline.Reset",
	}).Info("Pipeline state reset")

	return nil
}

// Kill destroys the pipeline, closing every unit and stage. All later
// method calls return ErrPipelineDestroyed. Kill is idempotent.
func (p *Pipeline) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return
	}

	logrus.WithFields(logrus.Fields{
		"function":         "Pipeline.Kill",
		"frames_processed": p.framesProcessed,
	}).Info("Destroying audio enhancement pipeline")

	if p.canceller != nil {
		if err := p.canceller.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Pipeline.Kill",
				"error":    err.Error(),
			}).Warn("Failed to close echo canceller")
		}
		p.canceller = nil
	}
	if p.reducer != nil {
		if err := p.reducer.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Pipeline.Kill",
				"error":    err.Error(),
			}).Warn("Failed to close noise reducer")
		}
		p.reducer = nil
	}
	if err := p.chain.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Pipeline.Kill",
			"error":    err.Error(),
		}).Warn("Failed to close stage chain")
	}

	p.destroyed = true
}

// Config returns a copy of the pipeline configuration, reflecting any
// mid-session updates.
func (p *Pipeline) Config() (Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.destroyed {
		return Config{}, ErrPipelineDestroyed
	}
	return p.cfg, nil
}

// SampleRate returns the session sample rate in Hz.
func (p *Pipeline) SampleRate() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.SampleRate
}
