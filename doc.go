// Package audioenhance implements real-time audio enhancement for voice
// communication.
//
// The package chains two adaptive enhancement units over normalized
// float64 mono PCM: acoustic echo cancellation driven by a far-end
// reference signal, and spectral noise reduction driven by a
// voice-activity-gated noise estimate. Both run frame-synchronously
// with no internal goroutines, making the pipeline suitable for the
// capture path of a soft phone, conferencing client, or voice recorder.
//
// # Getting Started
//
// Create a pipeline with a configuration and feed it capture frames:
//
//	cfg := audioenhance.DefaultConfig()
//	cfg.SampleRate = 48000
//
//	pipeline, err := audioenhance.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Kill()
//
//	// Decode the far-end packet into a reference frame, then enhance
//	// the microphone frame against it.
//	reference, err := pipeline.ProcessReference(opusPacket)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	enhanced, err := pipeline.ProcessCapture(micFrame, reference)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Pass a nil reference when no far-end audio is playing; the echo stage
// is skipped for that frame and noise reduction still applies.
//
// # Core Types
//
// The package defines several core types:
//
//   - [Pipeline]: Facade chaining echo cancellation, noise reduction,
//     and post-processing stages for one audio session
//   - [Config]: Pipeline configuration embedding the per-unit tuning
//   - [Stage]: Post-processing step interface, with [GainStage],
//     [AutoGainStage], and [StageChain] implementations
//   - [Resampler]: Streaming linear-interpolation sample rate converter
//   - [StatsReporter]: Periodic report dispatch on its own goroutine
//
// The enhancement units themselves live in subpackages and can be used
// standalone: denoise.Reducer and echo.Canceller.
//
// # Noise Reduction
//
// The denoise subpackage estimates the noise magnitude spectrum during
// non-voice frames and attenuates it with a selectable rule (spectral
// subtraction, Wiener, or Kalman gains):
//
//	reducer, err := denoise.New(48000, denoise.DefaultConfig())
//	out, err := reducer.Process(samples)
//
// # Echo Cancellation
//
// The echo subpackage adapts an NLMS filter against the reference
// signal, freezing adaptation during double-talk and soft-clipping
// residual bursts:
//
//	canceller, err := echo.New(48000, echo.DefaultConfig())
//	out, err := canceller.Process(input, reference)
//
// # Post-Processing Stages
//
// Additional per-frame processing appends to the pipeline's stage
// chain after the core units:
//
//	gain, _ := audioenhance.NewGainStage(1.5)
//	pipeline.AddStage(gain)
//	pipeline.AddStage(audioenhance.NewAutoGainStage())
//
// # Statistics
//
// Every unit maintains a statistics snapshot recomputed per frame;
// Report aggregates them with an overall quality grade:
//
//	report, err := pipeline.Report()
//	fmt.Printf("noise reduction: %.1f dB, echo suppression: %.1f dB, quality: %s\n",
//	    report.Noise.NoiseReductionDb, report.Echo.EchoSuppressionDb, report.Quality)
//
// For continuous monitoring, a StatsReporter polls on an interval and
// dispatches reports to a callback on its own goroutine.
//
// # Mid-Session Tuning
//
// Unit configurations can change between frames. Tuning fields apply
// live; structural fields (analysis frame size, filter length) rebuild
// the unit's buffers and restart its adaptation:
//
//	cfg, _ := pipeline.Config()
//	cfg.Noise.Algorithm = denoise.WienerFilter
//	err := pipeline.UpdateNoiseConfig(cfg.Noise)
//
// # Thread Safety
//
// The Pipeline struct is safe for concurrent use. Processing and
// lifecycle methods are serialized by a write lock while Report and the
// accessors share a read lock, so statistics can be polled while audio
// flows. Frames must still be submitted in stream order. The leaf units
// are single-writer and carry no locks of their own.
//
// # Integration Architecture
//
// This package serves as the main integration point, orchestrating:
//
//   - [denoise]: Spectral noise reduction with voice activity detection
//   - [echo]: NLMS acoustic echo cancellation with double-talk
//     protection
//   - [codec]: Opus packet decoding and PCM format conversion at the
//     pipeline boundary
//   - [dsp]: Shared windowing, FFT wrappers, and numeric primitives
package audioenhance
