package db

import "time"

// TelemetryEvent 记录非致命错误，便于事后排查
type TelemetryEvent struct {
	ID         string    `gorm:"primarykey;size:36"`
	Source     string    `gorm:"size:64;index;not null"`
	Message    string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"index;not null"`
}

// TableName 固定遥测表名
func (TelemetryEvent) TableName() string {
	return "telemetry_events"
}
