package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
)

// ErrAlreadySeeded 表示库里已有习惯，未指定 Reset 时不会重复生成
var ErrAlreadySeeded = errors.New("habits already exist")

// SampleHabit 描述一个示例习惯及其大致完成概率
type SampleHabit struct {
	Name   string
	Color  db.HabitColor
	Notes  string
	Chance float64
}

// DefaultHabits 是默认生成的示例习惯
var DefaultHabits = []SampleHabit{
	{Name: "晨跑", Color: db.HabitColorGreen, Notes: "每天 **3 公里**，下雨改成跳绳", Chance: 0.8},
	{Name: "阅读", Color: db.HabitColorBlue, Notes: "睡前读 30 分钟", Chance: 0.65},
	{Name: "冥想", Color: db.HabitColorYellow, Notes: "", Chance: 0.45},
	{Name: "喝水", Color: db.HabitColorRed, Notes: "- 起床一杯\n- 午饭前一杯", Chance: 0.9},
}

// Options 控制示例数据的生成
type Options struct {
	Days   int
	Now    time.Time
	Seed   uint64
	Reset  bool
	Habits []SampleHabit
}

// Result 汇总本次生成的数量
type Result struct {
	Habits  int
	Actions int
}

func (o Options) withDefaults() Options {
	if o.Days <= 0 {
		o.Days = 60
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if len(o.Habits) == 0 {
		o.Habits = DefaultHabits
	}
	return o
}

// Run 生成示例习惯与过去 Days 天的打卡记录，今天不打卡，方便手动体验
func Run(ctx context.Context, gdb *gorm.DB, opts Options) (Result, error) {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var result Result
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Reset {
			// 先删打卡再删习惯，外键未开启时也不会留下孤儿记录
			if err := tx.Exec("DELETE FROM actions").Error; err != nil {
				return fmt.Errorf("clear actions: %w", err)
			}
			if err := tx.Exec("DELETE FROM habits").Error; err != nil {
				return fmt.Errorf("clear habits: %w", err)
			}
		} else {
			var count int64
			if err := tx.Model(&db.Habit{}).Count(&count).Error; err != nil {
				return fmt.Errorf("count habits: %w", err)
			}
			if count > 0 {
				return ErrAlreadySeeded
			}
		}

		today := time.Date(opts.Now.Year(), opts.Now.Month(), opts.Now.Day(), 0, 0, 0, 0, opts.Now.Location())
		for i, sample := range opts.Habits {
			habit := db.Habit{Name: sample.Name, Color: sample.Color, Notes: sample.Notes, Order: i}
			if err := tx.Create(&habit).Error; err != nil {
				return fmt.Errorf("create habit %s: %w", sample.Name, err)
			}
			result.Habits++

			actions := make([]db.Action, 0, opts.Days)
			for d := opts.Days; d >= 1; d-- {
				if rng.Float64() >= sample.Chance {
					continue
				}
				day := today.AddDate(0, 0, -d)
				// 打卡时间落在 6 点到 22 点之间
				at := day.Add(time.Duration(6*60+rng.IntN(16*60)) * time.Minute)
				actions = append(actions, db.Action{HabitID: habit.ID, Timestamp: at})
			}
			if len(actions) == 0 {
				continue
			}
			if err := tx.Omit("Habit").CreateInBatches(actions, 100).Error; err != nil {
				return fmt.Errorf("create actions for %s: %w", sample.Name, err)
			}
			result.Actions += len(actions)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}
