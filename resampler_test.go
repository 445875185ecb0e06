package audioenhance

import (
	"math"
	"testing"
)

func TestNewResampler_InvalidRates(t *testing.T) {
	cases := []struct {
		name       string
		inputRate  int
		outputRate int
	}{
		{"zero input rate", 0, 48000},
		{"negative input rate", -8000, 48000},
		{"zero output rate", 48000, 0},
		{"negative output rate", 48000, -8000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewResampler(tc.inputRate, tc.outputRate); err == nil {
				t.Errorf("NewResampler(%d, %d) accepted invalid rates", tc.inputRate, tc.outputRate)
			}
		})
	}
}

func TestResampler_SameRateReturnsCopy(t *testing.T) {
	r, err := NewResampler(48000, 48000)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}

	input := []float64{0.1, -0.2, 0.3}
	out, err := r.Process(input)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(input) {
		t.Fatalf("output length = %d, want %d", len(out), len(input))
	}
	for i := range input {
		if out[i] != input[i] {
			t.Errorf("out[%d] = %g, want %g", i, out[i], input[i])
		}
	}

	out[0] = 99
	if input[0] != 0.1 {
		t.Error("same-rate output aliases the input slice")
	}
}

func TestResampler_ConstantSignalPreserved(t *testing.T) {
	cases := []struct {
		name       string
		inputRate  int
		outputRate int
		inputLen   int
		wantLen    int
	}{
		{"upsample 2x", 8000, 16000, 100, 200},
		{"downsample 2x", 48000, 24000, 100, 50},
		{"upsample 6x", 8000, 48000, 100, 600},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewResampler(tc.inputRate, tc.outputRate)
			if err != nil {
				t.Fatalf("NewResampler: %v", err)
			}

			input := make([]float64, tc.inputLen)
			for i := range input {
				input[i] = 0.5
			}

			out, err := r.Process(input)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if len(out) != tc.wantLen {
				t.Fatalf("output length = %d, want %d", len(out), tc.wantLen)
			}
			for i, v := range out {
				if math.Abs(v-0.5) > 1e-12 {
					t.Fatalf("out[%d] = %g, want 0.5", i, v)
				}
			}
		})
	}
}

// A linear ramp resampled with linear interpolation must stay a ramp,
// even when the signal is fed in small chunks. Chunk boundaries may
// clamp to the last sample of the chunk, so a one-input-step tolerance
// applies.
func TestResampler_ChunkedRampStaysLinear(t *testing.T) {
	r, err := NewResampler(8000, 16000)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}

	const (
		totalIn   = 1000
		chunkSize = 100
		step      = 1.0 / totalIn
	)

	var out []float64
	for start := 0; start < totalIn; start += chunkSize {
		chunk := make([]float64, chunkSize)
		for i := range chunk {
			chunk[i] = float64(start+i) * step
		}
		part, err := r.Process(chunk)
		if err != nil {
			t.Fatalf("Process chunk at %d: %v", start, err)
		}
		out = append(out, part...)
	}

	if len(out) != 2*totalIn {
		t.Fatalf("total output length = %d, want %d", len(out), 2*totalIn)
	}

	for j, v := range out {
		ideal := float64(j) / 2.0 * step
		if math.Abs(v-ideal) > 2*step {
			t.Fatalf("out[%d] = %g, want %g within %g", j, v, ideal, 2*step)
		}
	}

	for j := 1; j < len(out); j++ {
		if out[j] < out[j-1] {
			t.Fatalf("ramp output decreased at %d: %g < %g", j, out[j], out[j-1])
		}
	}
}

func TestResampler_OutputSize(t *testing.T) {
	cases := []struct {
		name       string
		inputRate  int
		outputRate int
		inputLen   int
		want       int
	}{
		{"same rate", 48000, 48000, 100, 100},
		{"upsample 2x", 8000, 16000, 100, 200},
		{"downsample 6x", 48000, 8000, 100, 17},
		{"empty", 8000, 16000, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewResampler(tc.inputRate, tc.outputRate)
			if err != nil {
				t.Fatalf("NewResampler: %v", err)
			}
			if got := r.OutputSize(tc.inputLen); got != tc.want {
				t.Errorf("OutputSize(%d) = %d, want %d", tc.inputLen, got, tc.want)
			}

			if tc.inputLen == 0 {
				return
			}
			out, err := r.Process(make([]float64, tc.inputLen))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if len(out) != tc.want {
				t.Errorf("Process produced %d samples, OutputSize promised %d", len(out), tc.want)
			}
		})
	}
}

func TestResampler_ResetMatchesFreshInstance(t *testing.T) {
	input := make([]float64, 441)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
	}

	used, err := NewResampler(44100, 48000)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}
	if _, err := used.Process(input); err != nil {
		t.Fatalf("Process: %v", err)
	}
	used.Reset()

	fresh, err := NewResampler(44100, 48000)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}

	afterReset, err := used.Process(input)
	if err != nil {
		t.Fatalf("Process after Reset: %v", err)
	}
	fromFresh, err := fresh.Process(input)
	if err != nil {
		t.Fatalf("Process on fresh instance: %v", err)
	}

	if len(afterReset) != len(fromFresh) {
		t.Fatalf("length after reset = %d, fresh = %d", len(afterReset), len(fromFresh))
	}
	for i := range afterReset {
		if afterReset[i] != fromFresh[i] {
			t.Fatalf("sample %d differs after reset: %g vs %g", i, afterReset[i], fromFresh[i])
		}
	}
}

func TestResampler_EmptyInput(t *testing.T) {
	r, err := NewResampler(8000, 48000)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}

	out, err := r.Process(nil)
	if err != nil {
		t.Fatalf("Process(nil): %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Process(nil) produced %d samples, want 0", len(out))
	}
}

func TestResampler_Accessors(t *testing.T) {
	r, err := NewResampler(8000, 48000)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}

	if got := r.InputRate(); got != 8000 {
		t.Errorf("InputRate() = %d, want 8000", got)
	}
	if got := r.OutputRate(); got != 48000 {
		t.Errorf("OutputRate() = %d, want 48000", got)
	}
	if got := r.Ratio(); math.Abs(got-1.0/6.0) > 1e-15 {
		t.Errorf("Ratio() = %g, want %g", got, 1.0/6.0)
	}
}
