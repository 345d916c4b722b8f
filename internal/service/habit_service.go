package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/habitroom/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitNameRequired 在习惯名为空时返回
	ErrHabitNameRequired = errors.New("habit name is required")
	// ErrNotHabitOwner 在非本人操作他人习惯时返回
	ErrNotHabitOwner = errors.New("habit belongs to another user")
)

// HabitService 负责 Habit 数据的增删查
// 习惯归属于房间内的单个用户，写操作只允许本人

type HabitService struct {
	db *gorm.DB
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// Create 在房间内为用户新建习惯
func (s *HabitService) Create(roomID, userID uint, name string) (*db.Habit, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrHabitNameRequired
	}

	habit := db.Habit{Name: trimmed, UserID: userID, RoomID: roomID}
	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(id uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// ListByRoom 返回房间内的全部习惯，按创建时间升序
func (s *HabitService) ListByRoom(roomID uint) ([]db.Habit, error) {
	var habits []db.Habit
	if err := s.db.Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Delete 删除习惯及其全部打卡记录，仅允许习惯本人
func (s *HabitService) Delete(id, userID uint) error {
	habit, err := s.Get(id)
	if err != nil {
		return err
	}
	if habit.UserID != userID {
		return ErrNotHabitOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&db.HabitLog{}).Error; err != nil {
			return fmt.Errorf("delete habit logs: %w", err)
		}
		if err := tx.Delete(&db.Habit{}, id).Error; err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
		return nil
	})
}
