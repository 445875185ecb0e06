package audioenhance

import (
	"fmt"
	"time"

	"github.com/opd-ai/audioenhance/denoise"
	"github.com/opd-ai/audioenhance/echo"
)

// QualityLevel grades the overall enhancement quality of a session.
type QualityLevel int

const (
	// QualityExcellent indicates optimal enhancement quality
	QualityExcellent QualityLevel = iota
	// QualityGood indicates good quality with minor artifacts
	QualityGood
	// QualityFair indicates acceptable quality with noticeable artifacts
	QualityFair
	// QualityPoor indicates poor quality with significant degradation
	QualityPoor
	// QualityUnacceptable indicates unacceptable output quality
	QualityUnacceptable
)

// String returns the string representation of QualityLevel.
func (q QualityLevel) String() string {
	switch q {
	case QualityExcellent:
		return "Excellent"
	case QualityGood:
		return "Good"
	case QualityFair:
		return "Fair"
	case QualityPoor:
		return "Poor"
	case QualityUnacceptable:
		return "Unacceptable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(q))
	}
}

// Report is the pipeline-level statistics snapshot: the per-unit
// snapshots plus an aggregate quality grade. Reports are value copies;
// mutating one has no effect on the pipeline.
type Report struct {
	// Per-unit snapshots. A disabled unit leaves its zero value.
	Noise denoise.Stats
	Echo  echo.Stats

	// Which units contributed to this report.
	NoiseReductionEnabled   bool
	EchoCancellationEnabled bool

	// StageNames lists the post-processing stages in chain order.
	StageNames []string

	// FramesProcessed counts capture frames accepted by the pipeline.
	FramesProcessed uint64

	// Quality is the aggregate grade across the enabled units.
	Quality QualityLevel

	// Timestamp records when the snapshot was taken.
	Timestamp time.Time
}

// gradeQuality maps the mean per-unit signal quality score onto the
// QualityLevel scale. A pipeline with no enhancement units enabled
// grades Excellent: pass-through degrades nothing.
func gradeQuality(scores ...float64) QualityLevel {
	if len(scores) == 0 {
		return QualityExcellent
	}

	var sum float64
	for _, score := range scores {
		sum += score
	}
	mean := sum / float64(len(scores))

	switch {
	case mean >= 0.8:
		return QualityExcellent
	case mean >= 0.6:
		return QualityGood
	case mean >= 0.4:
		return QualityFair
	case mean >= 0.2:
		return QualityPoor
	default:
		return QualityUnacceptable
	}
}
