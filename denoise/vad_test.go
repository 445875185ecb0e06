package denoise

import "testing"

func TestVAD_Classify(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		energy    float64
		want      bool
	}{
		{
			name:      "energy above threshold",
			threshold: 0.15,
			energy:    0.3,
			want:      true,
		},
		{
			name:      "energy below threshold",
			threshold: 0.15,
			energy:    0.05,
			want:      false,
		},
		{
			name:      "energy equal to threshold is not voice",
			threshold: 0.15,
			energy:    0.15,
			want:      false,
		},
		{
			name:      "zero threshold passes any positive energy",
			threshold: 0,
			energy:    1e-9,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVAD(tt.threshold, 0)
			got := v.Classify(tt.energy, 0)
			if got != tt.want {
				t.Errorf("Classify(%g) = %v, want %v", tt.energy, got, tt.want)
			}
			if v.IsVoice() != tt.want {
				t.Errorf("IsVoice() = %v, want %v", v.IsVoice(), tt.want)
			}
		})
	}
}

func TestVAD_HangoverExactFrameCount(t *testing.T) {
	tests := []struct {
		name           string
		hangoverFrames int
	}{
		{name: "no hangover", hangoverFrames: 0},
		{name: "single frame", hangoverFrames: 1},
		{name: "five frames", hangoverFrames: 5},
		{name: "long hangover", hangoverFrames: 96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVAD(0.15, tt.hangoverFrames)

			// One burst frame arms the countdown.
			if !v.Classify(0.5, 1000) {
				t.Fatal("burst frame not classified as voice")
			}

			// The voice flag must hold for exactly hangoverFrames silent
			// frames, then drop.
			for i := 0; i < tt.hangoverFrames; i++ {
				if !v.Classify(0.0, 0) {
					t.Fatalf("silent frame %d lost voice classification, want %d hangover frames",
						i, tt.hangoverFrames)
				}
			}
			if v.Classify(0.0, 0) {
				t.Errorf("voice classification persisted beyond %d hangover frames", tt.hangoverFrames)
			}
		})
	}
}

func TestVAD_BurstReArmsHangover(t *testing.T) {
	v := NewVAD(0.15, 3)
	v.Classify(0.5, 0)
	v.Classify(0.0, 0) // countdown 2 remaining
	v.Classify(0.5, 0) // re-armed
	if got := v.HangoverRemaining(); got != 3 {
		t.Errorf("HangoverRemaining() = %d, want 3 after re-arm", got)
	}
}

func TestVAD_HistoriesBounded(t *testing.T) {
	v := NewVAD(0.15, 0)
	for i := 0; i < 25; i++ {
		v.Classify(float64(i), float64(i*100))
	}

	energies := v.EnergyHistory()
	if len(energies) != historyLength {
		t.Fatalf("EnergyHistory() length = %d, want %d", len(energies), historyLength)
	}
	// Oldest entries are evicted first.
	if energies[0] != 15 || energies[historyLength-1] != 24 {
		t.Errorf("EnergyHistory() = %v, want rolling window [15..24]", energies)
	}

	centroids := v.CentroidHistory()
	if len(centroids) != historyLength {
		t.Fatalf("CentroidHistory() length = %d, want %d", len(centroids), historyLength)
	}
	if centroids[0] != 1500 || centroids[historyLength-1] != 2400 {
		t.Errorf("CentroidHistory() = %v, want rolling window [1500..2400]", centroids)
	}
}

func TestVAD_Reset(t *testing.T) {
	v := NewVAD(0.15, 5)
	v.Classify(0.5, 100)
	v.Reset()

	if v.IsVoice() {
		t.Error("IsVoice() = true after Reset")
	}
	if v.HangoverRemaining() != 0 {
		t.Errorf("HangoverRemaining() = %d after Reset, want 0", v.HangoverRemaining())
	}
	if len(v.EnergyHistory()) != 0 || len(v.CentroidHistory()) != 0 {
		t.Error("histories not cleared by Reset")
	}
}
