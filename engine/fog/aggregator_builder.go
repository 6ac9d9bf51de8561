package fog

import "github.com/charmbracelet/log"

// AggregatorBuilderOption configures an Aggregator created by NewAggregator.
type AggregatorBuilderOption func(*aggregator)

// WithVolumeCapacity preallocates room for n volumes.
func WithVolumeCapacity(n int) AggregatorBuilderOption {
	return func(a *aggregator) {
		a.capacity = max(n, 0)
	}
}

// WithAggregatorLogger replaces the logger used for per-frame diagnostics.
func WithAggregatorLogger(l *log.Logger) AggregatorBuilderOption {
	return func(a *aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
