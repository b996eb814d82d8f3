package handler

import (
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/telemetry"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	habits      *service.HabitService
	dashboard   *service.DashboardService
	insights    *service.InsightsService
	preferences *service.PreferenceService
	telemetry   *telemetry.GormStore
}

// NewAPI constructs a handler set with shared services. The dashboard is
// owned by the caller, which runs its move worker and closes it on shutdown.
func NewAPI(db *gorm.DB, dashboard *service.DashboardService) *API {
	store := service.NewHabitStore(db)

	return &API{
		db:          db,
		habits:      service.NewHabitService(store),
		dashboard:   dashboard,
		insights:    service.NewInsightsService(store),
		preferences: service.NewPreferenceService(db),
		telemetry:   telemetry.NewGormStore(db),
	}
}
