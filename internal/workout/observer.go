// ABOUTME: Observer interface the derivations report structured events to.
// ABOUTME: Includes a no-op observer and an adapter for charmbracelet/log.
package workout

import (
	"github.com/charmbracelet/log"
)

// Event names reported to an Observer.
const (
	EventRoutesListed      = "routes.listed"
	EventLocationBatch     = "locations.batch"
	EventLocationsReady    = "locations.ready"
	EventHeartRateReady    = "heart_rate.ready"
	EventJoinStarted       = "join.started"
	EventJoinFailed        = "join.failed"
	EventJoinFinished      = "join.finished"
	EventSplitsCalculated  = "splits.calculated"
	EventPrerecordedSplits = "splits.prerecorded"
)

// Observer receives structured events as alternating key/value pairs.
// Implementations must be safe for concurrent use.
type Observer interface {
	Observe(event string, keyvals ...any)
}

// NopObserver discards every event.
type NopObserver struct{}

// Observe does nothing.
func (NopObserver) Observe(string, ...any) {}

// LogObserver writes events to a charmbracelet logger at debug level.
type LogObserver struct {
	logger *log.Logger
}

// NewLogObserver returns an Observer backed by logger.
func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Observe logs the event.
func (o *LogObserver) Observe(event string, keyvals ...any) {
	o.logger.Debug(event, keyvals...)
}
