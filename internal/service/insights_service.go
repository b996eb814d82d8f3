package service

import (
	"context"
	"time"

	"github.com/habitlog/internal/view"
	"golang.org/x/sync/errgroup"
)

const defaultTopHabitLimit = 10

// InsightsService 提供热力图、最佳习惯与最佳星期等统计
type InsightsService struct {
	store *HabitStore
	now   func() time.Time
}

// InsightsOverview 是统计页一次加载的全部数据
type InsightsOverview struct {
	Heatmap   view.HeatmapMonth
	TopHabits []view.TopHabitItem
	TopDays   []view.TopDayItem
}

// NewInsightsService 构造 InsightsService
func NewInsightsService(store *HabitStore) *InsightsService {
	return &InsightsService{store: store, now: time.Now}
}

// CurrentMonth 返回本地时区的当前月份
func (s *InsightsService) CurrentMonth() view.YearMonth {
	return view.YearMonthOf(s.now())
}

// Heatmap 统计某个月每天的打卡数并分桶
func (s *InsightsService) Heatmap(ctx context.Context, month view.YearMonth) (view.HeatmapMonth, error) {
	loc := s.now().Location()
	counts, err := s.store.SumActionCountByDay(ctx, month.FirstDay(loc), month.LastDay(loc))
	if err != nil {
		return view.HeatmapMonth{}, err
	}

	total, err := s.store.HabitCount(ctx)
	if err != nil {
		return view.HeatmapMonth{}, err
	}

	return view.BuildHeatmapMonth(counts, month, total), nil
}

// TopHabits 返回打卡最多的习惯及完成率，limit<=0 时取默认数量
func (s *InsightsService) TopHabits(ctx context.Context, limit int) ([]view.TopHabitItem, error) {
	if limit <= 0 {
		limit = defaultTopHabitLimit
	}
	rows, err := s.store.MostSuccessfulHabits(ctx, limit)
	if err != nil {
		return nil, err
	}
	return view.TopHabits(rows, s.now()), nil
}

// TopDays 返回每个习惯打卡最多的星期几
func (s *InsightsService) TopDays(ctx context.Context) ([]view.TopDayItem, error) {
	rows, err := s.store.TopDayForHabits(ctx)
	if err != nil {
		return nil, err
	}
	return view.HabitTopDays(rows), nil
}

// Overview 并发加载热力图、最佳习惯与最佳星期，任一失败即返回
func (s *InsightsService) Overview(ctx context.Context, month view.YearMonth) (*InsightsOverview, error) {
	var overview InsightsOverview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		heatmap, err := s.Heatmap(gctx, month)
		if err != nil {
			return err
		}
		overview.Heatmap = heatmap
		return nil
	})
	g.Go(func() error {
		items, err := s.TopHabits(gctx, defaultTopHabitLimit)
		if err != nil {
			return err
		}
		overview.TopHabits = items
		return nil
	})
	g.Go(func() error {
		items, err := s.TopDays(gctx)
		if err != nil {
			return err
		}
		overview.TopDays = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}
