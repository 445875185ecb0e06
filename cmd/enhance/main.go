// Command enhance runs the audio enhancement pipeline over a WAV file.
//
// It reads a near-end (microphone) recording, optionally a far-end
// reference recording that enables echo cancellation, processes the
// audio in real-time-sized frames, and writes the enhanced result:
//
//	enhance -in noisy.wav -out clean.wav
//	enhance -in mic.wav -ref farend.wav -out clean.wav -config configs/example.yaml
//
// The pipeline runs at the input file's sample rate; a reference file
// at a different rate is resampled before processing.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/audioenhance"
	"github.com/opd-ai/audioenhance/codec"
)

// logger is the package-level structured logger instance.
var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	if err := run(); err != nil {
		logger.WithError(err).Fatal("enhance failed")
	}
}

func run() error {
	inPath := flag.String("in", "", "input WAV file (near-end / microphone)")
	outPath := flag.String("out", "", "output WAV file for the enhanced audio")
	refPath := flag.String("ref", "", "optional far-end reference WAV file; enables echo cancellation")
	configPath := flag.String("config", "", "optional YAML configuration file (see configs/example.yaml)")
	frameSize := flag.Int("frame", 480, "processing frame size in samples")
	agc := flag.Bool("agc", false, "append an automatic gain control stage")
	verbose := flag.Bool("verbose", false, "enable debug logging and periodic progress reports")
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		flag.Usage()
		return errors.New("both -in and -out must be specified")
	}
	if *frameSize <= 0 {
		return fmt.Errorf("frame size must be positive, got %d", *frameSize)
	}
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
		logger.SetLevel(logrus.DebugLevel)
	}

	input, err := readWAV(*inPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	samples := monoFloat(input)

	logger.WithFields(logrus.Fields{
		"file":        *inPath,
		"sample_rate": input.Format.SampleRate,
		"channels":    input.Format.NumChannels,
		"samples":     len(samples),
	}).Info("Loaded input audio")

	reference, err := loadReference(*refPath, input.Format.SampleRate)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	cfg.SampleRate = input.Format.SampleRate
	if reference == nil {
		// Echo cancellation is meaningless without a far-end signal.
		cfg.EchoCancellation = false
	}

	pipeline, err := audioenhance.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Kill()

	if *agc {
		if err := pipeline.AddStage(audioenhance.NewAutoGainStage()); err != nil {
			return err
		}
	}

	if *verbose {
		reporter := audioenhance.NewStatsReporter(pipeline, time.Second)
		reporter.OnReport(func(report audioenhance.Report) {
			logger.WithFields(logrus.Fields{
				"frames":  report.FramesProcessed,
				"quality": report.Quality.String(),
			}).Info("Processing progress")
		})
		if err := reporter.Start(); err != nil {
			return err
		}
		defer reporter.Stop()
	}

	started := time.Now()
	enhanced, err := processFrames(pipeline, samples, reference, *frameSize)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	report, err := pipeline.Report()
	if err != nil {
		return err
	}

	if err := writeWAV(*outPath, enhanced, input); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	printSummary(report, len(samples), input.Format.SampleRate, elapsed, *outPath)
	return nil
}

// loadReference reads and, when needed, resamples the far-end file to
// the session rate. An empty path returns nil without error.
func loadReference(path string, sessionRate int) ([]float64, error) {
	if path == "" {
		return nil, nil
	}

	buf, err := readWAV(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference: %w", err)
	}
	reference := monoFloat(buf)

	logger.WithFields(logrus.Fields{
		"file":        path,
		"sample_rate": buf.Format.SampleRate,
		"samples":     len(reference),
	}).Info("Loaded reference audio")

	if buf.Format.SampleRate == sessionRate {
		return reference, nil
	}

	resampler, err := audioenhance.NewResampler(buf.Format.SampleRate, sessionRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create reference resampler: %w", err)
	}
	resampled, err := resampler.Process(reference)
	if err != nil {
		return nil, fmt.Errorf("failed to resample reference: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"from_rate": buf.Format.SampleRate,
		"to_rate":   sessionRate,
		"samples":   len(resampled),
	}).Info("Resampled reference to session rate")

	return resampled, nil
}

// loadConfig returns the default configuration, overlaid with the YAML
// file when a path is given. Fields absent from the file keep their
// defaults.
func loadConfig(path string) (audioenhance.Config, error) {
	cfg := audioenhance.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config file: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"file": path,
	}).Info("Loaded configuration")

	return cfg, nil
}

// processFrames feeds the recording through the pipeline in fixed-size
// frames, mirroring how a live capture path would deliver audio. The
// reference tail is zero-padded so the final frames stay aligned.
func processFrames(pipeline *audioenhance.Pipeline, samples, reference []float64, frameSize int) ([]float64, error) {
	enhanced := make([]float64, 0, len(samples))

	for start := 0; start < len(samples); start += frameSize {
		end := start + frameSize
		if end > len(samples) {
			end = len(samples)
		}
		frame := samples[start:end]

		var ref []float64
		if reference != nil && start < len(reference) {
			refEnd := start + len(frame)
			if refEnd <= len(reference) {
				ref = reference[start:refEnd]
			} else {
				ref = make([]float64, len(frame))
				copy(ref, reference[start:])
			}
		}

		out, err := pipeline.ProcessCapture(frame, ref)
		if err != nil {
			return nil, fmt.Errorf("processing failed at sample %d: %w", start, err)
		}
		enhanced = append(enhanced, out...)
	}

	return enhanced, nil
}

// readWAV loads a WAV file into an integer PCM buffer.
func readWAV(path string) (*audio.IntBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}

	return buf, nil
}

// monoFloat converts an integer PCM buffer to normalized mono float64,
// averaging interleaved channels.
func monoFloat(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels
	if channels <= 1 {
		return codec.IntToFloat64(buf.Data, buf.SourceBitDepth)
	}

	frames := len(buf.Data) / channels
	mono := make([]int, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += buf.Data[i*channels+ch]
		}
		mono[i] = sum / channels
	}
	return codec.IntToFloat64(mono, buf.SourceBitDepth)
}

// writeWAV saves mono float64 samples as a WAV file, keeping the source
// sample rate and bit depth.
func writeWAV(path string, samples []float64, src *audio.IntBuffer) error {
	bitDepth := src.SourceBitDepth
	if bitDepth < 8 || bitDepth > 32 {
		bitDepth = 16
	}

	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output file creation error: %w", err)
	}
	defer outFile.Close()

	encoder := wav.NewEncoder(outFile, src.Format.SampleRate, bitDepth, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  src.Format.SampleRate,
		},
		Data:           codec.Float64ToInt(samples, bitDepth),
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("data writing error: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("could not finalize output file: %w", err)
	}

	return nil
}

// printSummary reports the enhancement results on stdout.
func printSummary(report audioenhance.Report, sampleCount, sampleRate int, elapsed time.Duration, outPath string) {
	audioSeconds := float64(sampleCount) / float64(sampleRate)

	fmt.Printf("Processed %.2f sec of audio in %.2f sec (%d frames)\n",
		audioSeconds, elapsed.Seconds(), report.FramesProcessed)

	if report.EchoCancellationEnabled {
		fmt.Printf("Echo suppression: %.1f dB (convergence %.2f, %d double-talk frames)\n",
			report.Echo.EchoSuppressionDb, report.Echo.Convergence, report.Echo.DoubleTalkFrames)
	}
	if report.NoiseReductionEnabled {
		fmt.Printf("Noise reduction: %.1f dB (noise level %.4f, voice in %d of %d frames)\n",
			report.Noise.NoiseReductionDb, report.Noise.NoiseLevel,
			report.Noise.VoiceFrames, report.Noise.FramesProcessed)
	}
	fmt.Printf("Overall quality: %s\n", report.Quality)
	fmt.Printf("Enhanced audio written to %s\n", outPath)
}
