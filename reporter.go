package audioenhance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrAlreadyRunning is returned when trying to start an already running service.
var ErrAlreadyRunning = errors.New("service is already running")

// StatsReporter polls a pipeline's Report at a fixed interval and hands
// each snapshot to a registered callback.
//
// The reporter owns one goroutine between Start and Stop. Callbacks are
// invoked on their own goroutine with a value snapshot, so a slow
// consumer never stalls either the ticker or the audio path.
//
// Example usage:
//
//	reporter := audioenhance.NewStatsReporter(pipeline, 5*time.Second)
//	reporter.OnReport(func(report audioenhance.Report) {
//	    fmt.Printf("quality: %s, frames: %d\n", report.Quality, report.FramesProcessed)
//	})
//	reporter.Start()
//	defer reporter.Stop()
type StatsReporter struct {
	pipeline       *Pipeline
	reportInterval time.Duration

	mu      sync.RWMutex
	running bool

	reportCallback func(report Report)

	ctx    context.Context
	cancel context.CancelFunc
}

// NewStatsReporter creates a reporter polling the given pipeline at the
// given interval. The reporter is created stopped; call Start to begin
// reporting.
func NewStatsReporter(pipeline *Pipeline, interval time.Duration) *StatsReporter {
	logrus.WithFields(logrus.Fields{
		"function":        "NewStatsReporter",
		"report_interval": interval,
	}).Info("Creating stats reporter")

	return &StatsReporter{
		pipeline:       pipeline,
		reportInterval: interval,
	}
}

// OnReport registers the callback invoked with each periodic report.
// Registering replaces any previous callback; a nil callback silences
// the reporter without stopping it.
func (sr *StatsReporter) OnReport(callback func(report Report)) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.reportCallback = callback

	logrus.WithFields(logrus.Fields{
		"function": "StatsReporter.OnReport",
	}).Debug("Report callback registered")
}

// Start begins the periodic reporting goroutine. Returns
// ErrAlreadyRunning if the reporter is already started.
func (sr *StatsReporter) Start() error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.running {
		return ErrAlreadyRunning
	}

	logrus.WithFields(logrus.Fields{
		"function": "StatsReporter.Start",
		"interval": sr.reportInterval,
	}).Info("Starting stats reporter")

	sr.ctx, sr.cancel = context.WithCancel(context.Background())
	sr.running = true

	go sr.reportLoop(sr.ctx)

	return nil
}

// Stop halts the reporting goroutine. Stopping an already stopped
// reporter is a no-op; the reporter can be started again afterwards.
func (sr *StatsReporter) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if !sr.running {
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "StatsReporter.Stop",
	}).Info("Stopping stats reporter")

	sr.running = false
	sr.cancel()
}

// IsRunning returns whether the reporting goroutine is active.
func (sr *StatsReporter) IsRunning() bool {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.running
}

// reportLoop runs the periodic report dispatch until the context is
// cancelled.
func (sr *StatsReporter) reportLoop(ctx context.Context) {
	ticker := time.NewTicker(sr.reportInterval)
	defer ticker.Stop()

	logrus.WithFields(logrus.Fields{
		"function": "StatsReporter.reportLoop",
		"interval": sr.reportInterval,
	}).Debug("Starting report loop")

	for {
		select {
		case <-ctx.Done():
			logrus.WithFields(logrus.Fields{
				"function": "StatsReporter.reportLoop",
			}).Debug("Report loop stopped")
			return

		case <-ticker.C:
			sr.generateReport()
		}
	}
}

// generateReport snapshots the pipeline and dispatches the callback on
// its own goroutine.
func (sr *StatsReporter) generateReport() {
	sr.mu.RLock()
	callback := sr.reportCallback
	sr.mu.RUnlock()

	if callback == nil {
		return
	}

	report, err := sr.pipeline.Report()
	if err != nil {
		// A destroyed pipeline keeps ticking quietly; callers are
		// expected to Stop the reporter around Kill.
		logrus.WithFields(logrus.Fields{
			"function": "StatsReporter.generateReport",
			"error":    err.Error(),
		}).Debug("Skipping report")
		return
	}

	go callback(report)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":         "StatsReporter.generateReport",
			"quality":          report.Quality.String(),
			"frames_processed": report.FramesProcessed,
		}).Debug("Dispatched stats report")
	}
}
