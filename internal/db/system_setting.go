package db

import "gorm.io/gorm"

// SystemSetting 存储可配置的偏好键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyDashboardLayout 表示首页卡片布局（决定最近几天的窗口大小）。
	SettingKeyDashboardLayout = "dashboard_layout"
	// SettingKeyLanguage 表示界面语言偏好。
	SettingKeyLanguage = "language"
	// SettingKeyTelemetryEnabled 表示是否保存非致命错误记录，关闭后只写日志。
	SettingKeyTelemetryEnabled = "telemetry_enabled"
)
