// Package codec converts between wire and processing audio formats.
//
// The enhancement pipeline works on normalized float64 PCM. This package
// provides the boundary conversions: an Opus decoder for far-end reference
// packets (pion/opus, SILK modes) and the int16/float64 normalization
// helpers shared by the CLI and the demos.
package codec
