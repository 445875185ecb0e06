package codec

import "math"

// Int16ToFloat64 converts 16-bit PCM samples to normalized float64 in
// [-1, 1).
func Int16ToFloat64(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / 32768.0
	}
	return out
}

// Float64ToInt16 converts normalized float64 PCM to 16-bit samples,
// rounding to nearest and clipping to the representable range.
func Float64ToInt16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(s * 32768.0)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// IntToFloat64 normalizes integer PCM of the given bit depth, as produced
// by WAV decoders, to float64 in [-1, 1). Bit depths outside [8, 32] fall
// back to 16.
func IntToFloat64(samples []int, bitDepth int) []float64 {
	scale := pcmScale(bitDepth)
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / scale
	}
	return out
}

// Float64ToInt converts normalized float64 PCM back to integer PCM of the
// given bit depth, rounding to nearest and clipping. Bit depths outside
// [8, 32] fall back to 16.
func Float64ToInt(samples []float64, bitDepth int) []int {
	scale := pcmScale(bitDepth)
	hi := scale - 1
	out := make([]int, len(samples))
	for i, s := range samples {
		v := math.Round(s * scale)
		if v > hi {
			v = hi
		}
		if v < -scale {
			v = -scale
		}
		out[i] = int(v)
	}
	return out
}

func pcmScale(bitDepth int) float64 {
	if bitDepth < 8 || bitDepth > 32 {
		bitDepth = 16
	}
	return float64(int64(1) << (bitDepth - 1))
}
