package codec

import (
	"math"
	"testing"
)

func TestInt16ToFloat64(t *testing.T) {
	tests := []struct {
		in   int16
		want float64
	}{
		{0, 0},
		{16384, 0.5},
		{-16384, -0.5},
		{-32768, -1.0},
		{32767, 32767.0 / 32768.0},
	}

	for _, tt := range tests {
		got := Int16ToFloat64([]int16{tt.in})
		if got[0] != tt.want {
			t.Errorf("Int16ToFloat64(%d) = %g, want %g", tt.in, got[0], tt.want)
		}
	}
}

func TestFloat64ToInt16(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{0.5, 16384},
		{-0.5, -16384},
		{-1.0, -32768},
		{1.0, 32767},   // clipped
		{2.0, 32767},   // clipped
		{-2.0, -32768}, // clipped
	}

	for _, tt := range tests {
		got := Float64ToInt16([]float64{tt.in})
		if got[0] != tt.want {
			t.Errorf("Float64ToInt16(%g) = %d, want %d", tt.in, got[0], tt.want)
		}
	}
}

func TestPCMRoundTrip(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2.0*math.Pi*float64(i)/100.0)
	}

	back := Int16ToFloat64(Float64ToInt16(samples))
	for i := range samples {
		if diff := math.Abs(back[i] - samples[i]); diff > 1.0/32768.0 {
			t.Fatalf("sample %d: round trip drifted by %g", i, diff)
		}
	}
}

func TestIntConversionBitDepths(t *testing.T) {
	// 24-bit full scale.
	got := IntToFloat64([]int{-(1 << 23), 1 << 22}, 24)
	if got[0] != -1.0 || got[1] != 0.5 {
		t.Errorf("IntToFloat64 24-bit = %v, want [-1, 0.5]", got)
	}

	ints := Float64ToInt([]float64{-1.0, 0.5, 2.0}, 24)
	if ints[0] != -(1<<23) || ints[1] != 1<<22 || ints[2] != (1<<23)-1 {
		t.Errorf("Float64ToInt 24-bit = %v", ints)
	}

	// Unknown bit depth falls back to 16.
	fallback := Float64ToInt([]float64{0.5}, 0)
	if fallback[0] != 16384 {
		t.Errorf("Float64ToInt fallback = %d, want 16384", fallback[0])
	}
}
