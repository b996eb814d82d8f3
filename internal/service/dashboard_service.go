package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/logger"
	"github.com/habitlog/internal/view"
)

const (
	moveQueueSize   = 64
	eventBufferSize = 16

	sourceToggleAction = "dashboard.toggle_action"
	sourceItemMove     = "dashboard.item_move"
)

// ErrDashboardClosed 在看板服务关闭后继续提交排序时返回
var ErrDashboardClosed = errors.New("dashboard closed")

// DashboardStore 是看板依赖的持久化能力，HabitStore 实现了它
type DashboardStore interface {
	ActiveHabitsWithActions(ctx context.Context) ([]db.HabitWithActions, error)
	Habit(ctx context.Context, id uint) (*db.Habit, error)
	InsertAction(ctx context.Context, action *db.Action) error
	HasActionOnDay(ctx context.Context, habitID uint, day time.Time) (bool, error)
	DeleteAction(ctx context.Context, id uint) error
	DeleteActionsOnDay(ctx context.Context, habitID uint, day time.Time) error
	HabitPair(ctx context.Context, id1, id2 uint) ([]db.Habit, error)
	UpdateHabitOrders(ctx context.Context, id1 uint, order1 int, id2 uint, order2 int) error
}

// NonFatalReporter 记录不影响流程的错误
type NonFatalReporter interface {
	LogNonFatal(ctx context.Context, source string, err error)
}

// HabitListResult 是推送给订阅者的看板快照，查询失败时只有 Err
type HabitListResult struct {
	Habits []view.HabitWithActions
	Err    error
}

// DashboardEventKind 标识一次性错误事件的类型
type DashboardEventKind string

const (
	// EventToggleActionError 打卡切换失败
	EventToggleActionError DashboardEventKind = "toggle_action_error"
	// EventItemMoveError 拖拽排序写入失败
	EventItemMoveError DashboardEventKind = "item_move_error"
)

// DashboardEvent 是一次性的错误事件，消费后不会重放
type DashboardEvent struct {
	Kind    DashboardEventKind
	HabitID uint
	Message string
}

// ItemMoveEvent 表示把第一个习惯拖到第二个习惯的位置
type ItemMoveEvent struct {
	FirstHabitID  uint
	SecondHabitID uint
}

// DashboardService 维护看板的实时列表、错误事件与串行的排序写入队列
type DashboardService struct {
	store      DashboardStore
	reporter   NonFatalReporter
	windowSize int
	now        func() time.Time

	// refreshMu 保证快照按查询顺序发布，同时保护 windowSize
	refreshMu sync.Mutex

	mu        sync.Mutex
	latest    *HabitListResult
	nextSubID int
	subs      map[int]chan HabitListResult
	eventSubs map[int]chan DashboardEvent
	closed    bool

	moves     chan ItemMoveEvent
	done      chan struct{}
	closeOnce sync.Once

	// moveHandled 仅供测试观察队列进度
	moveHandled func(ItemMoveEvent, error)
}

// NewDashboardService 构造看板服务，windowSize<=0 时使用默认窗口
func NewDashboardService(store DashboardStore, reporter NonFatalReporter, windowSize int) *DashboardService {
	if windowSize <= 0 {
		windowSize = view.DefaultWindowSize
	}
	return &DashboardService{
		store:      store,
		reporter:   reporter,
		windowSize: windowSize,
		now:        time.Now,
		subs:       make(map[int]chan HabitListResult),
		eventSubs:  make(map[int]chan DashboardEvent),
		moves:      make(chan ItemMoveEvent, moveQueueSize),
		done:       make(chan struct{}),
	}
}

// WindowSize 返回看板卡片展示的天数
func (s *DashboardService) WindowSize() int {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.windowSize
}

// SetWindowSize 切换看板窗口天数并刷新快照
func (s *DashboardService) SetWindowSize(ctx context.Context, n int) {
	if n <= 0 {
		n = view.DefaultWindowSize
	}
	s.refreshMu.Lock()
	changed := s.windowSize != n
	s.windowSize = n
	s.refreshMu.Unlock()

	if changed {
		s.Refresh(ctx)
	}
}

// Subscribe 订阅看板快照，订阅时立即收到最近一次快照
// 通道只保留最新一条，慢消费者会跳过中间状态
func (s *DashboardService) Subscribe(ctx context.Context) (<-chan HabitListResult, func()) {
	ch := make(chan HabitListResult, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	latest := s.latest
	if latest != nil {
		ch <- *latest
	}
	s.mu.Unlock()

	if latest == nil {
		s.Refresh(ctx)
	}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Events 订阅一次性错误事件
func (s *DashboardService) Events() (<-chan DashboardEvent, func()) {
	ch := make(chan DashboardEvent, eventBufferSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.eventSubs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.eventSubs[id]; ok {
			delete(s.eventSubs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Refresh 重新查询习惯列表并推送给订阅者
// 与上一次快照相同时不重复推送，查询失败以 Err 形式推送
func (s *DashboardService) Refresh(ctx context.Context) HabitListResult {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	result := s.query(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest != nil && sameResult(*s.latest, result) {
		return result
	}
	s.latest = &result
	for _, ch := range s.subs {
		publishLatest(ch, result)
	}
	return result
}

// Snapshot 返回最近一次快照，尚无快照时先查询
func (s *DashboardService) Snapshot(ctx context.Context) HabitListResult {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()
	if latest != nil {
		return *latest
	}
	return s.Refresh(ctx)
}

func (s *DashboardService) query(ctx context.Context) HabitListResult {
	entities, err := s.store.ActiveHabitsWithActions(ctx)
	if err != nil {
		logger.Warn("failed to load dashboard habits", "error", err)
		return HabitListResult{Err: err}
	}
	return HabitListResult{Habits: view.MapHabitsWithActions(entities, s.now(), s.windowSize)}
}

func sameResult(a, b HabitListResult) bool {
	if a.Err != nil || b.Err != nil {
		return a.Err != nil && b.Err != nil && a.Err.Error() == b.Err.Error()
	}
	return view.HabitsEqual(a.Habits, b.Habits)
}

func publishLatest(ch chan HabitListResult, result HabitListResult) {
	select {
	case ch <- result:
		return
	default:
	}
	// 丢弃未消费的旧快照
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- result:
	default:
	}
}

func (s *DashboardService) emit(evt DashboardEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.eventSubs {
		select {
		case ch <- evt:
		default:
			logger.Warn("dashboard event dropped", "kind", evt.Kind, "habit_id", evt.HabitID)
		}
	}
}

// ToggleAction 切换习惯在 day 当天的打卡状态
// Toggled 为 true 时按当天日期加当前时刻写入一条打卡（当天已有打卡则不重复写入），
// 为 false 时删除该习惯当天的全部打卡
// 失败会上报并发出一次性事件，不影响后续调用；习惯不存在属于调用方错误，只返回 ErrHabitNotFound
func (s *DashboardService) ToggleAction(ctx context.Context, habitID uint, action view.DayAction, day time.Time) error {
	if err := s.toggle(ctx, habitID, action, day); err != nil {
		wrapped := fmt.Errorf("toggle action of habit %d: %w", habitID, err)
		if errors.Is(err, ErrHabitNotFound) {
			return wrapped
		}
		s.report(ctx, sourceToggleAction, wrapped)
		s.emit(DashboardEvent{Kind: EventToggleActionError, HabitID: habitID, Message: wrapped.Error()})
		return wrapped
	}

	s.Refresh(ctx)
	return nil
}

func (s *DashboardService) toggle(ctx context.Context, habitID uint, action view.DayAction, day time.Time) error {
	if _, err := s.store.Habit(ctx, habitID); err != nil {
		return err
	}

	now := s.now()
	if day.IsZero() {
		day = action.Date
	}
	if day.IsZero() {
		if !action.Toggled && action.ActionID != 0 {
			return s.store.DeleteAction(ctx, action.ActionID)
		}
		day = now
	}

	year, month, date := day.Date()
	localDay := time.Date(year, month, date, 0, 0, 0, 0, now.Location())

	if !action.Toggled {
		return s.store.DeleteActionsOnDay(ctx, habitID, localDay)
	}

	exists, err := s.store.HasActionOnDay(ctx, habitID, localDay)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	timestamp := time.Date(year, month, date, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	return s.store.InsertAction(ctx, &db.Action{HabitID: habitID, Timestamp: timestamp})
}

// PersistItemMove 把一次拖拽排序放入队列，由 Run 启动的协程按提交顺序逐个写入
func (s *DashboardService) PersistItemMove(ctx context.Context, evt ItemMoveEvent) error {
	select {
	case <-s.done:
		return ErrDashboardClosed
	default:
	}

	select {
	case s.moves <- evt:
		return nil
	case <-s.done:
		return ErrDashboardClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run 处理排序队列，直到 ctx 取消或 Close 被调用
func (s *DashboardService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case evt := <-s.moves:
			err := s.persistMove(ctx, evt)
			if s.moveHandled != nil {
				s.moveHandled(evt, err)
			}
		}
	}
}

// Close 停止排序协程并关闭全部订阅，队列中未处理的排序会被丢弃
func (s *DashboardService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
		for id, ch := range s.eventSubs {
			delete(s.eventSubs, id)
			close(ch)
		}
	})
}

// persistMove 每次都从数据库读取最新排序值再交换，不在内存中缓存
func (s *DashboardService) persistMove(ctx context.Context, evt ItemMoveEvent) error {
	if evt.FirstHabitID == evt.SecondHabitID {
		return nil
	}

	if err := s.swapOrders(ctx, evt); err != nil {
		wrapped := fmt.Errorf("move habit %d to %d: %w", evt.FirstHabitID, evt.SecondHabitID, err)
		s.report(ctx, sourceItemMove, wrapped)
		s.emit(DashboardEvent{Kind: EventItemMoveError, HabitID: evt.FirstHabitID, Message: wrapped.Error()})
		return wrapped
	}

	s.Refresh(ctx)
	return nil
}

func (s *DashboardService) swapOrders(ctx context.Context, evt ItemMoveEvent) error {
	habits, err := s.store.HabitPair(ctx, evt.FirstHabitID, evt.SecondHabitID)
	if err != nil {
		return err
	}

	var first, second *db.Habit
	for i := range habits {
		switch habits[i].ID {
		case evt.FirstHabitID:
			first = &habits[i]
		case evt.SecondHabitID:
			second = &habits[i]
		}
	}
	if first == nil || second == nil {
		return ErrHabitPairIncomplete
	}

	return s.store.UpdateHabitOrders(ctx, first.ID, second.Order, second.ID, first.Order)
}

func (s *DashboardService) report(ctx context.Context, source string, err error) {
	if s.reporter == nil {
		logger.Error("non-fatal error", "source", source, "error", err)
		return
	}
	s.reporter.LogNonFatal(ctx, source, err)
}
