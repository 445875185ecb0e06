package codec

import (
	"errors"
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// maxFrameSamples bounds a single decoded Opus frame: 40 ms at 48 kHz.
const maxFrameSamples = 1920

// ErrEmptyPacket is returned when Decode is called with no data.
var ErrEmptyPacket = errors.New("empty opus packet")

// OpusDecoder decodes far-end Opus packets into normalized mono float64
// PCM suitable as an echo cancellation reference.
type OpusDecoder struct {
	decoder *opus.Decoder
}

// NewOpusDecoder creates a decoder instance. One decoder serves one packet
// stream; the underlying SILK state is sequential.
func NewOpusDecoder() *OpusDecoder {
	logrus.WithFields(logrus.Fields{
		"function": "codec.NewOpusDecoder",
	}).Info("Creating Opus decoder")

	decoder := opus.NewDecoder()
	return &OpusDecoder{decoder: &decoder}
}

// Decode decodes one Opus packet and returns mono normalized samples plus
// the sample rate implied by the packet's bandwidth. Stereo packets are
// downmixed by averaging channel pairs. The output buffer spans up to 40 ms;
// the tail beyond the decoded frame reads as silence.
func (d *OpusDecoder) Decode(packet []byte) ([]float64, int, error) {
	if len(packet) == 0 {
		return nil, 0, ErrEmptyPacket
	}

	output := make([]byte, maxFrameSamples*2)
	bandwidth, isStereo, err := d.decoder.Decode(packet, output)
	if err != nil {
		return nil, 0, fmt.Errorf("opus decode failed: %w", err)
	}

	sampleCount := len(output) / 2
	pcm := make([]int16, sampleCount)
	for i := 0; i < sampleCount; i++ {
		pcm[i] = int16(output[i*2]) | int16(output[i*2+1])<<8
	}

	var samples []float64
	if isStereo {
		samples = make([]float64, sampleCount/2)
		for i := range samples {
			left := float64(pcm[2*i]) / 32768.0
			right := float64(pcm[2*i+1]) / 32768.0
			samples[i] = (left + right) / 2.0
		}
	} else {
		samples = Int16ToFloat64(pcm)
	}

	sampleRate := int(bandwidth.SampleRate())

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":    "OpusDecoder.Decode",
			"packet_size": len(packet),
			"samples":     len(samples),
			"sample_rate": sampleRate,
			"bandwidth":   bandwidth.String(),
			"is_stereo":   isStereo,
		}).Debug("Decoded opus packet")
	}

	return samples, sampleRate, nil
}
