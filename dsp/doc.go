// Package dsp implements the signal-processing primitives shared by the
// audioenhance processing units.
//
// This package provides the frequency-domain and statistical building blocks
// for adaptive noise reduction and echo cancellation: real-valued FFT
// transforms, analysis windows, and frame measurements (power, RMS, spectral
// centroid, correlation). All functions operate on normalized float64 PCM
// samples in [-1, 1] and are free of I/O, logging, and shared mutable state.
//
// # Core Types
//
// The package defines one core type:
//
//   - [Transform]: a reusable real-FFT context of fixed size, producing
//     half-spectrum coefficients and normalized inverse sequences
//
// # Frame Measurements
//
// Measurement helpers are plain functions over sample or magnitude slices:
//
//	power := dsp.MeanPower(frame)
//	rms := dsp.RMS(frame)
//	centroid := dsp.SpectralCentroid(mags, 48000, 512)
//	r := dsp.PearsonCorrelation(input, output)
//
// All measurements guard near-zero denominators with [Epsilon] rather than
// returning errors; frame processing must degrade, never halt.
package dsp
