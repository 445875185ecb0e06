package echo

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/opd-ai/audioenhance/dsp"
)

// referenceNoiseFloorDb is the fixed floor the signal quality score measures
// output SNR against.
const referenceNoiseFloorDb = -60.0

// Stats is a read-only snapshot of echo cancellation quality, recomputed on
// every Process call.
type Stats struct {
	// Convergence is max(0, 1 - mean|coeff|), a heuristic adaptation proxy
	// in [0, 1]. It is 1.0 for a zeroed filter.
	Convergence float64

	// ConvergenceTimeMs is the wall-clock time from the first Process call
	// until Convergence first exceeded the configured threshold, or 0 while
	// that has not happened.
	ConvergenceTimeMs float64

	// ResidualEchoDb is 10*log10(outputPower/inputPower) of the latest
	// frame, floored at -60 dB. More negative means more echo removed.
	ResidualEchoDb float64

	// EchoSuppressionDb is the inverse ratio, capped at +60 dB.
	EchoSuppressionDb float64

	// SignalQuality maps the output SNR against a fixed -60 dB noise floor
	// from [0, 60] dB onto [0, 1].
	SignalQuality float64

	// FramesProcessed counts Process calls; DoubleTalkFrames counts the
	// subset on which adaptation was frozen.
	FramesProcessed  uint64
	DoubleTalkFrames uint64
}

// updateSnapshot recomputes the derived statistics from the frame just
// processed.
func (c *Canceller) updateSnapshot(inPow, outPow float64, doubleTalk bool) {
	c.stats.FramesProcessed++
	if doubleTalk {
		c.stats.DoubleTalkFrames++
	}

	residual := dsp.PowerRatioDb(outPow, inPow)
	if residual < referenceNoiseFloorDb {
		residual = referenceNoiseFloorDb
	}
	c.stats.ResidualEchoDb = residual

	suppression := dsp.PowerRatioDb(inPow, outPow)
	if suppression > -referenceNoiseFloorDb {
		suppression = -referenceNoiseFloorDb
	}
	c.stats.EchoSuppressionDb = suppression

	meanAbs := floats.Norm(c.coeffs, 1) / float64(len(c.coeffs))
	convergence := 1.0 - meanAbs
	if convergence < 0 {
		convergence = 0
	}
	c.stats.Convergence = convergence

	floorPow := math.Pow(10.0, referenceNoiseFloorDb/10.0)
	snrDb := dsp.PowerRatioDb(outPow, floorPow)
	c.stats.SignalQuality = dsp.Clamp(snrDb/-referenceNoiseFloorDb, 0, 1)

	if !c.converged && convergence > c.cfg.ConvergenceThreshold {
		c.converged = true
		c.stats.ConvergenceTimeMs = float64(time.Since(c.startTime)) / float64(time.Millisecond)
	}
}
