package service

import (
	"fmt"
	"time"

	"github.com/habitroom/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BackfillService 实现显式的补录步骤：把每个习惯从创建日起到昨天为止
// 缺失的日期固化为"未完成"。日历视图的回填只存在于渲染层，
// 只有该服务（由管理员或定时任务触发）才会真正写库。

type BackfillService struct {
	db *gorm.DB
}

// NewBackfillService 构造 BackfillService
func NewBackfillService(gdb *gorm.DB) *BackfillService {
	return &BackfillService{db: gdb}
}

// SyncThrough 对全部习惯执行补录，写入 today 之前的缺失日期。
// 已存在的记录原样保留（冲突忽略），返回新写入的条数。
func (s *BackfillService) SyncThrough(today time.Time) (int, error) {
	todayDate := dateOnly(today)

	var habits []db.Habit
	if err := s.db.Find(&habits).Error; err != nil {
		return 0, fmt.Errorf("list habits: %w", err)
	}

	written := 0
	for _, habit := range habits {
		n, err := s.syncHabit(habit, todayDate)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

func (s *BackfillService) syncHabit(habit db.Habit, todayDate time.Time) (int, error) {
	existing := make(map[string]struct{})
	var logs []db.HabitLog
	if err := s.db.Where("habit_id = ?", habit.ID).Find(&logs).Error; err != nil {
		return 0, fmt.Errorf("list habit logs: %w", err)
	}
	for _, l := range logs {
		existing[dateOnly(l.LogDate).Format("2006-01-02")] = struct{}{}
	}

	written := 0
	for d := dateOnly(habit.CreatedAt); d.Before(todayDate); d = d.AddDate(0, 0, 1) {
		if _, ok := existing[d.Format("2006-01-02")]; ok {
			continue
		}

		record := db.HabitLog{HabitID: habit.ID, LogDate: d, Status: false, Source: "backfill"}
		result := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
			DoNothing: true,
		}).Create(&record)
		if result.Error != nil {
			return written, fmt.Errorf("backfill habit log: %w", result.Error)
		}
		written += int(result.RowsAffected)
	}
	return written, nil
}
