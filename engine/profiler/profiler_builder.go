package profiler

import (
	"time"

	"github.com/charmbracelet/log"
)

// ProfilerBuilderOption is a functional option for configuring a profiler.
type ProfilerBuilderOption func(*profiler)

// WithInterval sets how often a report is produced.
//
// Parameters:
//   - interval: the reporting interval; non-positive values are ignored
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces the time source used to measure intervals.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger replaces the logger reports are written to.
func WithLogger(logger *log.Logger) ProfilerBuilderOption {
	return func(p *profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}
