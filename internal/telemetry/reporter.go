package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/logger"
)

// Store persists telemetry events.
type Store interface {
	AppendTelemetryEvent(ctx context.Context, evt db.TelemetryEvent) error
}

// Switch tells whether events should be persisted. The user can turn
// persistence off from the preferences.
type Switch interface {
	TelemetryEnabled(ctx context.Context) (bool, error)
}

// Reporter records non-fatal errors. It logs every error and, when a store
// is configured and the switch allows it, keeps a copy in the database.
type Reporter struct {
	store  Store
	toggle Switch
	clock  func() time.Time
}

// NewReporter creates a reporter. store may be nil.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store, clock: time.Now}
}

// WithSwitch makes persistence depend on sw. A nil switch always persists.
func (r *Reporter) WithSwitch(sw Switch) *Reporter {
	r.toggle = sw
	return r
}

// LogNonFatal reports err under source. Failures to persist are only logged.
func (r *Reporter) LogNonFatal(ctx context.Context, source string, err error) {
	if err == nil {
		return
	}
	logger.Error("non-fatal error", "source", source, "error", err)

	if r == nil || r.store == nil || !r.enabled(ctx) {
		return
	}

	evt := db.TelemetryEvent{
		ID:         uuid.NewString(),
		Source:     source,
		Message:    err.Error(),
		OccurredAt: r.clock().UTC(),
	}
	if storeErr := r.store.AppendTelemetryEvent(ctx, evt); storeErr != nil {
		logger.Warn("failed to persist telemetry event", "source", source, "error", storeErr)
	}
}

// enabled falls back to persisting when the switch cannot be read.
func (r *Reporter) enabled(ctx context.Context) bool {
	if r.toggle == nil {
		return true
	}
	on, err := r.toggle.TelemetryEnabled(ctx)
	if err != nil {
		logger.Warn("failed to read telemetry switch", "error", err)
		return true
	}
	return on
}
