package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habitroom/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrHabitLogNotFound 在指定日期没有打卡记录时返回
var ErrHabitLogNotFound = errors.New("habit log not found")

// HabitLogService 负责打卡记录的幂等写入与查询
// "未知"状态不落库：删除记录即回到未知

type HabitLogService struct {
	db *gorm.DB
}

// HabitLogInput 定义打卡时的输入对象
type HabitLogInput struct {
	HabitID uint
	LogDate time.Time
	Status  bool
	Source  string
}

// NewHabitLogService 构造 HabitLogService
func NewHabitLogService(gdb *gorm.DB) *HabitLogService {
	return &HabitLogService{db: gdb}
}

// Upsert 处理幂等打卡逻辑：同一 (habit_id, log_date) 存在则更新状态，否则创建
func (s *HabitLogService) Upsert(input HabitLogInput) (*db.HabitLog, error) {
	logDate := dateOnly(input.LogDate)

	record := db.HabitLog{
		HabitID: input.HabitID,
		LogDate: logDate,
		Status:  input.Status,
		Source:  strings.TrimSpace(input.Source),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "source", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert habit log: %w", err)
	}

	if err := s.db.Where("habit_id = ? AND log_date = ?", input.HabitID, logDate).First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload habit log: %w", err)
	}

	return &record, nil
}

// ToggleToday 处理“标记今天”：已有记录翻转状态，没有则按完成创建。
// 返回写入后的记录，供广播使用。
func (s *HabitLogService) ToggleToday(habitID uint, today time.Time) (*db.HabitLog, error) {
	logDate := dateOnly(today)

	var existing db.HabitLog
	err := s.db.Where("habit_id = ? AND log_date = ?", habitID, logDate).First(&existing).Error
	if err == nil {
		existing.Status = !existing.Status
		existing.Source = "manual"
		if saveErr := s.db.Save(&existing).Error; saveErr != nil {
			return nil, fmt.Errorf("toggle habit log: %w", saveErr)
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find habit log: %w", err)
	}

	return s.Upsert(HabitLogInput{HabitID: habitID, LogDate: logDate, Status: true, Source: "manual"})
}

// Delete 删除指定日期的打卡记录，该日期随之回到未知状态。
// 物理删除以释放 (habit_id, log_date) 唯一索引，否则同日无法重新打卡。
func (s *HabitLogService) Delete(habitID uint, date time.Time) error {
	logDate := dateOnly(date)

	result := s.db.Unscoped().Where("habit_id = ? AND log_date = ?", habitID, logDate).Delete(&db.HabitLog{})
	if result.Error != nil {
		return fmt.Errorf("delete habit log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHabitLogNotFound
	}
	return nil
}

// ListByHabit 返回习惯的全部打卡记录，按日期升序
func (s *HabitLogService) ListByHabit(habitID uint) ([]db.HabitLog, error) {
	var logs []db.HabitLog
	if err := s.db.Where("habit_id = ?", habitID).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}
	return logs, nil
}

// ListByHabits 一次性取回多个习惯的打卡记录，按习惯分组
func (s *HabitLogService) ListByHabits(habitIDs []uint) (map[uint][]db.HabitLog, error) {
	grouped := make(map[uint][]db.HabitLog, len(habitIDs))
	if len(habitIDs) == 0 {
		return grouped, nil
	}

	var logs []db.HabitLog
	if err := s.db.Where("habit_id IN ?", habitIDs).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}

	for _, l := range logs {
		grouped[l.HabitID] = append(grouped[l.HabitID], l)
	}
	return grouped, nil
}
