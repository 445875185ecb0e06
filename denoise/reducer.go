package denoise

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audioenhance/dsp"
)

// ErrReducerClosed is returned by every method called after Close.
var ErrReducerClosed = errors.New("noise reducer has been closed")

// Reducer attenuates stationary background noise in a continuous stream of
// normalized float64 PCM samples.
//
// The stream is framed internally: FrameSize-sample analysis frames with 50%
// overlap, a periodic Hann analysis window, and overlap-add reconstruction.
// Overlap state is carried across Process calls, so the reducer can be fed
// successive chunks of arbitrary length; every call returns exactly as many
// samples as it was given, delayed by a fixed FrameSize-sample stream
// latency (the first FrameSize output samples of a stream are zeros).
//
// A noise magnitude spectrum is learned during frames the voice activity
// detector classifies as non-voice and subtracted or filtered from every
// frame according to the configured algorithm.
//
// Design decisions:
//   - All state is owned by the instance; there are no package-level
//     variables, so independent sessions never interact.
//   - Instances are single-writer: Process, UpdateConfig, Reset, and Close
//     must not be called concurrently. The enclosing pipeline serializes
//     access when one is used.
//   - Numerical degeneracy (near-zero powers) is absorbed with epsilon
//     guards; Process never fails on frame content, only on lifecycle and
//     precondition violations.
type Reducer struct {
	cfg        Config
	sampleRate int

	transform *dsp.Transform
	window    []float64
	hop       int
	bins      int

	vad *VAD

	// rawNoise is the adaptive per-bin magnitude estimate updated on
	// non-voice frames; noiseSpectrum is the smoothed estimate the
	// attenuation rules read.
	rawNoise      []float64
	noiseSpectrum []float64

	// Streaming overlap-add carries.
	pending  []float64 // input awaiting a complete analysis frame
	olaAcc   []float64 // synthesis accumulator, FrameSize long
	outQueue []float64 // finalized samples awaiting emission
	inDelay  []float64 // latency-aligned input copy for statistics

	winScratch []float64
	magScratch []float64

	stats          Stats
	lastMeanGainSq float64
	dlWarned       bool
	closed         bool
}

// New creates a noise reducer for one audio session at the given sample
// rate. The configuration is validated eagerly; invalid values are rejected
// here rather than surfacing as arithmetic failures during processing.
func New(sampleRate int, cfg Config) (*Reducer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid noise reduction config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "denoise.New",
		"sample_rate": sampleRate,
		"frame_size":  cfg.FrameSize,
		"algorithm":   cfg.Algorithm.String(),
	}).Info("Creating noise reducer")

	transform, err := dsp.NewTransform(cfg.FrameSize)
	if err != nil {
		return nil, fmt.Errorf("invalid noise reduction config: %w", err)
	}

	r := &Reducer{
		cfg:            cfg,
		sampleRate:     sampleRate,
		transform:      transform,
		window:         dsp.HannWindow(cfg.FrameSize),
		hop:            cfg.FrameSize / 2,
		bins:           transform.Bins(),
		vad:            NewVAD(cfg.VADThreshold, hangoverFrames(cfg.HangoverTimeMs, sampleRate)),
		rawNoise:       make([]float64, transform.Bins()),
		noiseSpectrum:  make([]float64, transform.Bins()),
		olaAcc:         make([]float64, cfg.FrameSize),
		outQueue:       make([]float64, cfg.FrameSize),
		inDelay:        make([]float64, cfg.FrameSize),
		winScratch:     make([]float64, cfg.FrameSize),
		magScratch:     make([]float64, transform.Bins()),
		lastMeanGainSq: 1.0,
	}

	logrus.WithFields(logrus.Fields{
		"function":        "denoise.New",
		"bins":            r.bins,
		"hangover_frames": r.vad.hangoverFrames,
		"latency_samples": cfg.FrameSize,
	}).Info("Noise reducer created successfully")

	return r, nil
}

// hangoverFrames converts the configured hangover duration to the VAD
// countdown length: ceil(ms * sampleRate / 1000) frames.
func hangoverFrames(ms float64, sampleRate int) int {
	return int(math.Ceil(ms * float64(sampleRate) / 1000.0))
}

// SampleRate returns the session sample rate the reducer was created with.
func (r *Reducer) SampleRate() int { return r.sampleRate }

// Latency returns the fixed stream delay in samples between a sample
// entering Process and its processed counterpart being emitted.
func (r *Reducer) Latency() int { return r.cfg.FrameSize }

// Config returns a copy of the live configuration. Partial updates are
// expressed by mutating the copy and passing it back to UpdateConfig.
func (r *Reducer) Config() Config { return r.cfg }

// Process attenuates noise in the next chunk of the stream and returns a
// chunk of equal length. Chunks must be submitted in stream order; the
// overlap-add and adaptation state are temporally sequential.
//
// When the configuration is disabled the input is returned unchanged (a
// copy) and no internal state advances.
func (r *Reducer) Process(input []float64) ([]float64, error) {
	if r.closed {
		return nil, ErrReducerClosed
	}

	if !r.cfg.Enabled {
		out := make([]float64, len(input))
		copy(out, input)
		logrus.WithFields(logrus.Fields{
			"function": "Reducer.Process",
			"samples":  len(input),
		}).Debug("Noise reduction disabled, passing through")
		return out, nil
	}

	output := make([]float64, len(input))
	r.pending = append(r.pending, input...)
	r.inDelay = append(r.inDelay, input...)

	frames := 0
	var gainSqSum float64
	start := 0
	for len(r.pending)-start >= r.cfg.FrameSize {
		frame := r.pending[start : start+r.cfg.FrameSize]
		gainSqSum += r.processFrame(frame)
		frames++
		start += r.hop
	}
	if start > 0 {
		n := copy(r.pending, r.pending[start:])
		r.pending = r.pending[:n]
	}
	if frames > 0 {
		r.lastMeanGainSq = gainSqSum / float64(frames)
	}

	// Emit exactly len(input) finalized samples; the queue was primed with
	// one frame of zeros, which bounds the worst-case shortfall.
	pop := len(input)
	if pop > len(r.outQueue) {
		pop = len(r.outQueue)
	}
	copy(output, r.outQueue[:pop])
	m := copy(r.outQueue, r.outQueue[pop:])
	r.outQueue = r.outQueue[:m]

	aligned := make([]float64, len(input))
	popIn := len(input)
	if popIn > len(r.inDelay) {
		popIn = len(r.inDelay)
	}
	copy(aligned, r.inDelay[:popIn])
	m = copy(r.inDelay, r.inDelay[popIn:])
	r.inDelay = r.inDelay[:m]

	r.updateSnapshot(aligned, output)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":         "Reducer.Process",
			"samples":          len(input),
			"frames":           frames,
			"is_voice":         r.vad.IsVoice(),
			"frames_processed": r.stats.FramesProcessed,
		}).Debug("Processed noise reduction chunk")
	}

	return output, nil
}

// processFrame runs one analysis frame through the spectral chain and
// overlap-adds the result. It returns the mean squared attenuation gain of
// the frame for the SNR statistics.
func (r *Reducer) processFrame(frame []float64) float64 {
	windowed, _ := dsp.ApplyWindow(r.winScratch, frame, r.window)
	spectrum, _ := r.transform.Forward(windowed)
	mags, _ := dsp.Magnitudes(r.magScratch, spectrum)

	energy := dsp.MeanSpectralEnergy(mags, r.cfg.FrameSize)
	centroid := dsp.SpectralCentroid(mags, float64(r.sampleRate), r.cfg.FrameSize)

	if r.vad.Classify(energy, centroid) {
		r.stats.VoiceFrames++
	} else {
		r.stats.NoiseFrames++
		r.updateNoiseSpectrum(mags)
	}

	meanGainSq := r.applyAttenuation(spectrum, mags)

	// The inverse transform reuses scratch, so accumulate immediately.
	synth, _ := r.transform.Inverse(spectrum)
	for i, v := range synth {
		r.olaAcc[i] += v
	}
	r.outQueue = append(r.outQueue, r.olaAcc[:r.hop]...)
	copy(r.olaAcc, r.olaAcc[r.hop:])
	for i := r.cfg.FrameSize - r.hop; i < r.cfg.FrameSize; i++ {
		r.olaAcc[i] = 0
	}

	r.stats.FramesProcessed++
	return meanGainSq
}

// updateNoiseSpectrum folds a non-voice frame's magnitudes into the
// adaptive noise estimate and refreshes the smoothed spectrum read by the
// attenuation rules.
func (r *Reducer) updateNoiseSpectrum(mags []float64) {
	lr := r.cfg.LearningRate
	ff := r.cfg.ForgettingFactor
	sf := r.cfg.SmoothingFactor
	for k, m := range mags {
		r.rawNoise[k] = ff*r.rawNoise[k] + lr*m
		ns := sf*r.noiseSpectrum[k] + (1.0-sf)*r.rawNoise[k]
		if ns < r.cfg.MinNoiseLevel {
			ns = r.cfg.MinNoiseLevel
		}
		r.noiseSpectrum[k] = ns
	}
}

// applyAttenuation scales every spectrum bin by the configured rule and
// returns the mean squared gain across bins.
func (r *Reducer) applyAttenuation(spectrum []complex128, mags []float64) float64 {
	alg := r.cfg.Algorithm
	if alg == DeepLearning {
		if !r.dlWarned {
			logrus.WithFields(logrus.Fields{
				"function":  "Reducer.applyAttenuation",
				"algorithm": alg.String(),
			}).Warn("Deep learning algorithm is a placeholder, using Wiener gains")
			r.dlWarned = true
		}
		alg = WienerFilter
	}

	var gainSqSum float64
	for k, m := range mags {
		sigPow := m * m
		noisePow := r.noiseSpectrum[k] * r.noiseSpectrum[k]

		var gain float64
		switch alg {
		case SpectralSubtraction:
			sub := sigPow - r.cfg.Alpha*noisePow
			if floor := r.cfg.Beta * sigPow; sub < floor {
				sub = floor
			}
			gain = math.Sqrt(sub) / (m + dsp.Epsilon)
		case WienerFilter:
			snr := sigPow / (noisePow + dsp.Epsilon)
			gain = snr / (snr + 1.0)
		case KalmanFilter:
			// Identical in value to the Wiener gain in this simplified
			// form; kept as a distinct selectable path.
			gain = sigPow / (sigPow + noisePow + dsp.Epsilon)
		}

		dsp.ScaleBin(spectrum, k, gain)
		gainSqSum += gain * gain
	}
	return gainSqSum / float64(len(mags))
}

// UpdateConfig replaces the live configuration after eager validation.
// Tuning fields apply from the next frame. A FrameSize change is
// structural: all spectral buffers are reallocated and prior adaptation
// state (noise estimates, VAD state, overlap carries) is discarded.
// Cumulative frame counters survive.
func (r *Reducer) UpdateConfig(cfg Config) error {
	if r.closed {
		return ErrReducerClosed
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Reducer.UpdateConfig",
			"error":    err.Error(),
		}).Error("Noise reduction config rejected")
		return fmt.Errorf("invalid noise reduction config: %w", err)
	}

	structural := cfg.FrameSize != r.cfg.FrameSize
	r.cfg = cfg
	r.vad.SetThreshold(cfg.VADThreshold)
	r.vad.SetHangoverFrames(hangoverFrames(cfg.HangoverTimeMs, r.sampleRate))

	if structural {
		transform, err := dsp.NewTransform(cfg.FrameSize)
		if err != nil {
			return fmt.Errorf("invalid noise reduction config: %w", err)
		}
		r.transform = transform
		r.window = dsp.HannWindow(cfg.FrameSize)
		r.hop = cfg.FrameSize / 2
		r.bins = transform.Bins()
		r.rawNoise = make([]float64, r.bins)
		r.noiseSpectrum = make([]float64, r.bins)
		r.olaAcc = make([]float64, cfg.FrameSize)
		r.outQueue = make([]float64, cfg.FrameSize)
		r.inDelay = make([]float64, cfg.FrameSize)
		r.winScratch = make([]float64, cfg.FrameSize)
		r.magScratch = make([]float64, r.bins)
		r.pending = r.pending[:0]
		r.vad.Reset()
		r.lastMeanGainSq = 1.0
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Reducer.UpdateConfig",
		"algorithm":  cfg.Algorithm.String(),
		"frame_size": cfg.FrameSize,
		"structural": structural,
	}).Info("Noise reduction config updated")

	return nil
}

// Stats returns the latest statistics snapshot. It is side-effect free.
func (r *Reducer) Stats() (Stats, error) {
	if r.closed {
		return Stats{}, ErrReducerClosed
	}
	return r.stats, nil
}

// Reset zeroes all spectra, adaptation buffers, VAD state, overlap carries,
// and statistics. The configuration is unchanged.
func (r *Reducer) Reset() error {
	if r.closed {
		return ErrReducerClosed
	}

	for k := range r.rawNoise {
		r.rawNoise[k] = 0
		r.noiseSpectrum[k] = 0
	}
	for i := range r.olaAcc {
		r.olaAcc[i] = 0
	}
	r.pending = r.pending[:0]
	r.outQueue = make([]float64, r.cfg.FrameSize)
	r.inDelay = make([]float64, r.cfg.FrameSize)
	r.vad.Reset()
	r.stats = Stats{}
	r.lastMeanGainSq = 1.0

	logrus.WithFields(logrus.Fields{
		"function": "Reducer.Reset",
	}).Info("Noise reducer reset")

	return nil
}

// Close releases all buffers and invalidates the instance. Every further
// call, including a second Close, returns ErrReducerClosed.
func (r *Reducer) Close() error {
	if r.closed {
		return ErrReducerClosed
	}
	r.closed = true
	r.transform = nil
	r.window = nil
	r.vad = nil
	r.rawNoise = nil
	r.noiseSpectrum = nil
	r.pending = nil
	r.olaAcc = nil
	r.outQueue = nil
	r.inDelay = nil
	r.winScratch = nil
	r.magScratch = nil

	logrus.WithFields(logrus.Fields{
		"function": "Reducer.Close",
	}).Info("Noise reducer closed")

	return nil
}
