package dsp

import (
	"math"
	"testing"
)

func TestMeanPowerAndRMS(t *testing.T) {
	tests := []struct {
		name      string
		frame     []float64
		wantPower float64
		wantRMS   float64
	}{
		{
			name:      "empty frame",
			frame:     nil,
			wantPower: 0,
			wantRMS:   0,
		},
		{
			name:      "silence",
			frame:     []float64{0, 0, 0, 0},
			wantPower: 0,
			wantRMS:   0,
		},
		{
			name:      "unit square wave",
			frame:     []float64{1, -1, 1, -1},
			wantPower: 1,
			wantRMS:   1,
		},
		{
			name:      "half amplitude",
			frame:     []float64{0.5, -0.5},
			wantPower: 0.25,
			wantRMS:   0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeanPower(tt.frame); math.Abs(got-tt.wantPower) > 1e-12 {
				t.Errorf("MeanPower() = %g, want %g", got, tt.wantPower)
			}
			if got := RMS(tt.frame); math.Abs(got-tt.wantRMS) > 1e-12 {
				t.Errorf("RMS() = %g, want %g", got, tt.wantRMS)
			}
		})
	}
}

func TestMeanSpectralEnergy_TracksTimeDomainRMS(t *testing.T) {
	// A full-scale sine has RMS 1/sqrt(2); the spectral energy reduced from
	// its unwindowed spectrum should land within a small factor of that.
	const size = 512
	tr, err := NewTransform(size)
	if err != nil {
		t.Fatalf("NewTransform() unexpected error: %v", err)
	}
	frame := make([]float64, size)
	for i := range frame {
		frame[i] = math.Sin(2.0 * math.Pi * float64(i) * 20.0 / size)
	}
	spectrum, err := tr.Forward(frame)
	if err != nil {
		t.Fatalf("Forward() unexpected error: %v", err)
	}
	mags, err := Magnitudes(nil, spectrum)
	if err != nil {
		t.Fatalf("Magnitudes() unexpected error: %v", err)
	}

	energy := MeanSpectralEnergy(mags, size)
	rms := RMS(frame)
	if energy < rms*0.5 || energy > rms*2.0 {
		t.Errorf("MeanSpectralEnergy() = %g, not commensurate with RMS %g", energy, rms)
	}
}

func TestSpectralCentroid(t *testing.T) {
	// Energy concentrated in a single bin puts the centroid at that bin's
	// frequency.
	mags := make([]float64, 257)
	mags[64] = 1.0
	got := SpectralCentroid(mags, 48000, 512)
	want := 64.0 * 48000.0 / 512.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("SpectralCentroid() = %g, want %g", got, want)
	}

	if got := SpectralCentroid(make([]float64, 257), 48000, 512); got != 0 {
		t.Errorf("SpectralCentroid(silence) = %g, want 0", got)
	}
}

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{
			name: "identical signals",
			a:    []float64{1, 2, 3, 4, 5},
			b:    []float64{1, 2, 3, 4, 5},
			want: 1,
		},
		{
			name: "inverted signals",
			a:    []float64{1, 2, 3, 4, 5},
			b:    []float64{-1, -2, -3, -4, -5},
			want: -1,
		},
		{
			name: "scaled copy stays perfectly correlated",
			a:    []float64{0.1, -0.4, 0.3, 0.0},
			b:    []float64{0.05, -0.2, 0.15, 0.0},
			want: 1,
		},
		{
			name: "length mismatch",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2},
			want: 0,
		},
		{
			name: "constant signal has no defined correlation",
			a:    []float64{1, 1, 1, 1},
			b:    []float64{1, 2, 3, 4},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PearsonCorrelation(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PearsonCorrelation() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestPowerRatioDb(t *testing.T) {
	if got := PowerRatioDb(1, 1); math.Abs(got) > 1e-6 {
		t.Errorf("PowerRatioDb(1,1) = %g, want 0", got)
	}
	if got := PowerRatioDb(10, 1); math.Abs(got-10) > 1e-6 {
		t.Errorf("PowerRatioDb(10,1) = %g, want 10", got)
	}
	// Zero denominators are absorbed by the epsilon guard.
	got := PowerRatioDb(1, 0)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("PowerRatioDb(1,0) = %g, want finite", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 1); got != 1 {
		t.Errorf("Clamp(5,0,1) = %g, want 1", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Errorf("Clamp(-5,0,1) = %g, want 0", got)
	}
	if got := Clamp(0.5, 0, 1); got != 0.5 {
		t.Errorf("Clamp(0.5,0,1) = %g, want 0.5", got)
	}
}
