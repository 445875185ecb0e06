package denoise

import (
	"math"

	"github.com/opd-ai/audioenhance/dsp"
)

// Stats is a read-only snapshot of noise reduction quality, recomputed on
// every Process call. Power comparisons use the latency-aligned input so
// the stream delay does not skew the figures.
type Stats struct {
	// NoiseReductionDb is 10*log10(inputPower/outputPower) of the latest
	// chunk. Positive values mean energy was removed.
	NoiseReductionDb float64

	// SNRImprovementDb is the output SNR (against the residual noise after
	// attenuation) minus the input SNR (against the current noise spectrum).
	SNRImprovementDb float64

	// SpeechPreservation is the Pearson correlation between aligned input
	// and output, clamped to [0, 1].
	SpeechPreservation float64

	// SignalDistortion is 1 - SpeechPreservation.
	SignalDistortion float64

	// OverallQuality is the mean of three normalized scores: noise
	// reduction clamped to 20 dB, SNR improvement mapped from [-10, 20] dB
	// onto [0, 1], and speech preservation. Always in [0, 1].
	OverallQuality float64

	// NoiseLevel is the current noise spectrum reduced to a single value
	// commensurate with time-domain RMS.
	NoiseLevel float64

	// VoiceFrames and NoiseFrames count VAD classifications; their sum is
	// FramesProcessed.
	VoiceFrames     uint64
	NoiseFrames     uint64
	FramesProcessed uint64
}

// updateSnapshot recomputes the derived statistics from the chunk just
// emitted. aligned is the latency-matched input, emitted the output of the
// same length.
func (r *Reducer) updateSnapshot(aligned, emitted []float64) {
	inPow := dsp.MeanPower(aligned)
	outPow := dsp.MeanPower(emitted)

	r.stats.NoiseReductionDb = dsp.PowerRatioDb(inPow, outPow)

	// SNR before and after, both against the learned noise level. The
	// configured floor bounds the reference from below so early-stream
	// estimates do not explode the ratio.
	noiseLevel := dsp.MeanSpectralEnergy(r.noiseSpectrum, r.cfg.FrameSize)
	noisePow := noiseLevel * noiseLevel
	if floor := math.Pow(10.0, r.cfg.NoiseFloorDb/10.0); noisePow < floor {
		noisePow = floor
	}
	inSnrDb := dsp.PowerRatioDb(inPow, noisePow)
	outSnrDb := dsp.PowerRatioDb(outPow, noisePow*r.lastMeanGainSq)
	r.stats.SNRImprovementDb = outSnrDb - inSnrDb

	preservation := dsp.Clamp(dsp.PearsonCorrelation(aligned, emitted), 0, 1)
	r.stats.SpeechPreservation = preservation
	r.stats.SignalDistortion = 1.0 - preservation

	nrScore := dsp.Clamp(r.stats.NoiseReductionDb/20.0, 0, 1)
	snrScore := dsp.Clamp((r.stats.SNRImprovementDb+10.0)/30.0, 0, 1)
	r.stats.OverallQuality = (nrScore + snrScore + preservation) / 3.0

	r.stats.NoiseLevel = noiseLevel
}
