package dsp

import (
	"math"
	"testing"
)

func TestHannWindow_Endpoints(t *testing.T) {
	w := HannWindow(512)
	if len(w) != 512 {
		t.Fatalf("HannWindow() length = %d, want 512", len(w))
	}
	if w[0] != 0 {
		t.Errorf("w[0] = %g, want 0", w[0])
	}
	// The periodic form peaks at exactly n/2.
	if math.Abs(w[256]-1.0) > 1e-12 {
		t.Errorf("w[n/2] = %g, want 1", w[256])
	}
}

func TestHannWindow_OverlapSumsToUnity(t *testing.T) {
	const n = 512
	w := HannWindow(n)
	hop := n / 2
	for i := 0; i < hop; i++ {
		sum := w[i] + w[i+hop]
		if math.Abs(sum-1.0) > 1e-12 {
			t.Fatalf("w[%d]+w[%d] = %g, want 1", i, i+hop, sum)
		}
	}
}

func TestApplyWindow(t *testing.T) {
	tests := []struct {
		name    string
		frame   []float64
		window  []float64
		want    []float64
		wantErr bool
	}{
		{
			name:   "elementwise product",
			frame:  []float64{1, 2, 3, 4},
			window: []float64{0, 0.5, 1, 0.5},
			want:   []float64{0, 1, 3, 2},
		},
		{
			name:    "length mismatch",
			frame:   []float64{1, 2},
			window:  []float64{1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyWindow(nil, tt.frame, tt.window)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ApplyWindow() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("ApplyWindow() unexpected error: %v", err)
				return
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sample %d = %g, want %g", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestApplyWindow_InPlace(t *testing.T) {
	frame := []float64{1, 1, 1, 1}
	window := []float64{0.25, 0.5, 0.75, 1}
	got, err := ApplyWindow(frame, frame, window)
	if err != nil {
		t.Fatalf("ApplyWindow() unexpected error: %v", err)
	}
	for i := range window {
		if got[i] != window[i] {
			t.Errorf("in-place sample %d = %g, want %g", i, got[i], window[i])
		}
	}
}
