package echo

import "github.com/opd-ai/audioenhance/dsp"

// DoubleTalkDetector flags frames where near-end speech dominates the
// far-end reference. Adapting the filter on such frames would train it
// toward the near-end signal and corrupt the learned echo path, so the
// canceller freezes coefficient updates while the flag holds.
//
// The decision is made once per frame from mean powers and applied
// uniformly to every sample in that frame.
type DoubleTalkDetector struct {
	enabled   bool
	threshold float64
}

// NewDoubleTalkDetector creates a detector with the given power-ratio
// threshold. A disabled detector never reports double-talk.
func NewDoubleTalkDetector(enabled bool, threshold float64) *DoubleTalkDetector {
	return &DoubleTalkDetector{enabled: enabled, threshold: threshold}
}

// Detect reports whether a frame with the given mean input and reference
// powers is double-talk. A silent reference against an active input also
// trips the detector, which keeps adaptation frozen until usable far-end
// energy returns.
func (d *DoubleTalkDetector) Detect(inputPower, referencePower float64) bool {
	if !d.enabled {
		return false
	}
	return inputPower/(referencePower+dsp.Epsilon) > d.threshold
}

// SetEnabled toggles detection.
func (d *DoubleTalkDetector) SetEnabled(enabled bool) { d.enabled = enabled }

// SetThreshold updates the power-ratio threshold.
func (d *DoubleTalkDetector) SetThreshold(threshold float64) { d.threshold = threshold }
