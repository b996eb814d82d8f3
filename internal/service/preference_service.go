package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/locale"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DashboardLayout 决定看板卡片展示最近几天
type DashboardLayout string

const (
	LayoutFiveDay  DashboardLayout = "five_day"
	LayoutSevenDay DashboardLayout = "seven_day"
	LayoutCompact  DashboardLayout = "compact"
)

// ErrInvalidLayout 表示不支持的看板布局
var ErrInvalidLayout = errors.New("invalid dashboard layout")

// WindowSize 返回布局对应的天数
func (l DashboardLayout) WindowSize() int {
	if l == LayoutFiveDay {
		return 5
	}
	return 7
}

// ParseDashboardLayout 解析布局名称，未知值返回 false
func ParseDashboardLayout(raw string) (DashboardLayout, bool) {
	switch DashboardLayout(strings.ToLower(strings.TrimSpace(raw))) {
	case LayoutFiveDay:
		return LayoutFiveDay, true
	case LayoutSevenDay:
		return LayoutSevenDay, true
	case LayoutCompact:
		return LayoutCompact, true
	}
	return "", false
}

// Preferences 描述用户可调整的偏好
type Preferences struct {
	DashboardLayout  DashboardLayout
	Language         string
	TelemetryEnabled bool
}

// PreferencesInput 用于更新偏好，空字段或 nil 保持原值
type PreferencesInput struct {
	DashboardLayout  string
	Language         string
	TelemetryEnabled *bool
}

// PreferenceService 读写存放在 system_settings 中的偏好
type PreferenceService struct {
	db *gorm.DB
}

// NewPreferenceService 构造 PreferenceService
func NewPreferenceService(gdb *gorm.DB) *PreferenceService {
	return &PreferenceService{db: gdb}
}

var preferenceKeys = []string{
	db.SettingKeyDashboardLayout,
	db.SettingKeyLanguage,
	db.SettingKeyTelemetryEnabled,
}

func defaultPreferences() Preferences {
	return Preferences{DashboardLayout: LayoutSevenDay, Language: locale.LanguageChinese, TelemetryEnabled: true}
}

// Get 读取偏好，未设置时返回默认值
func (s *PreferenceService) Get(ctx context.Context) (Preferences, error) {
	result := defaultPreferences()

	var records []db.SystemSetting
	if err := s.db.WithContext(ctx).Where("key IN ?", preferenceKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load preferences: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeyDashboardLayout:
			if layout, ok := ParseDashboardLayout(record.Value); ok {
				result.DashboardLayout = layout
			}
		case db.SettingKeyLanguage:
			if lang := locale.NormalizeLanguage(record.Value); lang != "" {
				result.Language = lang
			}
		case db.SettingKeyTelemetryEnabled:
			if enabled, err := strconv.ParseBool(record.Value); err == nil {
				result.TelemetryEnabled = enabled
			}
		}
	}

	return result, nil
}

// StoredLayout 返回已保存的看板布局，未保存时 ok 为 false
func (s *PreferenceService) StoredLayout(ctx context.Context) (DashboardLayout, bool, error) {
	var record db.SystemSetting
	err := s.db.WithContext(ctx).Where("key = ?", db.SettingKeyDashboardLayout).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load dashboard layout: %w", err)
	}
	layout, ok := ParseDashboardLayout(record.Value)
	return layout, ok, nil
}

// TelemetryEnabled 返回是否保存非致命错误记录，未设置时为 true
func (s *PreferenceService) TelemetryEnabled(ctx context.Context) (bool, error) {
	prefs, err := s.Get(ctx)
	if err != nil {
		return true, err
	}
	return prefs.TelemetryEnabled, nil
}

// Update 保存偏好，未知布局返回 ErrInvalidLayout，不支持的语言回退中文
func (s *PreferenceService) Update(ctx context.Context, input PreferencesInput) (Preferences, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return Preferences{}, err
	}

	if strings.TrimSpace(input.DashboardLayout) != "" {
		layout, ok := ParseDashboardLayout(input.DashboardLayout)
		if !ok {
			return Preferences{}, fmt.Errorf("%w: %s", ErrInvalidLayout, input.DashboardLayout)
		}
		current.DashboardLayout = layout
	}
	if strings.TrimSpace(input.Language) != "" {
		current.Language = locale.NormalizeLanguage(input.Language)
		if current.Language == "" {
			current.Language = locale.LanguageChinese
		}
	}
	if input.TelemetryEnabled != nil {
		current.TelemetryEnabled = *input.TelemetryEnabled
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyDashboardLayout, string(current.DashboardLayout)); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyLanguage, current.Language); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeyTelemetryEnabled, strconv.FormatBool(current.TelemetryEnabled))
	})
	if err != nil {
		return Preferences{}, fmt.Errorf("update preferences: %w", err)
	}

	return current, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
