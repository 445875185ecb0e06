package denoise

// historyLength bounds the rolling energy and centroid histories.
const historyLength = 10

// VAD classifies analysis frames as voice or non-voice from their mean
// spectral energy, with a hangover countdown that keeps the voice
// classification active for a fixed number of frames after energy drops,
// so trailing speech is not clipped.
//
// The detector also maintains bounded rolling histories of the frame energy
// and spectral centroid observations for diagnostic use.
type VAD struct {
	threshold       float64
	hangoverFrames  int
	hangoverCounter int
	isVoice         bool

	energyHistory   []float64
	centroidHistory []float64
}

// NewVAD creates a detector with the given energy threshold and hangover
// length in frames.
func NewVAD(threshold float64, hangoverFrames int) *VAD {
	return &VAD{
		threshold:       threshold,
		hangoverFrames:  hangoverFrames,
		energyHistory:   make([]float64, 0, historyLength),
		centroidHistory: make([]float64, 0, historyLength),
	}
}

// Classify records one frame observation and returns the voice decision.
// A frame is voice when its energy exceeds the threshold; afterwards the
// decision stays voice for exactly hangoverFrames further frames regardless
// of energy.
func (v *VAD) Classify(energy, centroid float64) bool {
	v.pushHistory(energy, centroid)

	if energy > v.threshold {
		v.isVoice = true
		v.hangoverCounter = v.hangoverFrames
		return true
	}
	if v.hangoverCounter > 0 {
		v.hangoverCounter--
		v.isVoice = true
		return true
	}
	v.isVoice = false
	return false
}

// IsVoice returns the most recent classification.
func (v *VAD) IsVoice() bool { return v.isVoice }

// HangoverRemaining returns the number of frames the voice classification
// will persist without further energy above the threshold.
func (v *VAD) HangoverRemaining() int { return v.hangoverCounter }

// SetThreshold updates the energy threshold without touching history or
// hangover state.
func (v *VAD) SetThreshold(threshold float64) { v.threshold = threshold }

// SetHangoverFrames updates the hangover length applied to future voice
// detections. An active countdown is left to run out.
func (v *VAD) SetHangoverFrames(frames int) { v.hangoverFrames = frames }

// Reset clears the decision, the countdown, and both histories.
func (v *VAD) Reset() {
	v.isVoice = false
	v.hangoverCounter = 0
	v.energyHistory = v.energyHistory[:0]
	v.centroidHistory = v.centroidHistory[:0]
}

// EnergyHistory returns a copy of the rolling energy observations, oldest
// first, at most historyLength entries.
func (v *VAD) EnergyHistory() []float64 {
	out := make([]float64, len(v.energyHistory))
	copy(out, v.energyHistory)
	return out
}

// CentroidHistory returns a copy of the rolling spectral centroid
// observations, oldest first, at most historyLength entries.
func (v *VAD) CentroidHistory() []float64 {
	out := make([]float64, len(v.centroidHistory))
	copy(out, v.centroidHistory)
	return out
}

func (v *VAD) pushHistory(energy, centroid float64) {
	if len(v.energyHistory) == historyLength {
		copy(v.energyHistory, v.energyHistory[1:])
		v.energyHistory = v.energyHistory[:historyLength-1]
	}
	v.energyHistory = append(v.energyHistory, energy)

	if len(v.centroidHistory) == historyLength {
		copy(v.centroidHistory, v.centroidHistory[1:])
		v.centroidHistory = v.centroidHistory[:historyLength-1]
	}
	v.centroidHistory = append(v.centroidHistory, centroid)
}
