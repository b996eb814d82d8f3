package telemetry

import (
	"context"
	"fmt"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
)

// GormStore keeps telemetry events in the application database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore.
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

// AppendTelemetryEvent inserts one event.
func (s *GormStore) AppendTelemetryEvent(ctx context.Context, evt db.TelemetryEvent) error {
	if err := s.db.WithContext(ctx).Create(&evt).Error; err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

// Recent returns the latest events, newest first.
func (s *GormStore) Recent(ctx context.Context, limit int) ([]db.TelemetryEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []db.TelemetryEvent
	if err := s.db.WithContext(ctx).Order("occurred_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	return events, nil
}
