package db

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// 一个习惯属于某个房间内的某个用户，删除时级联打卡记录
type Habit struct {
	gorm.Model
	Name   string `gorm:"size:120;not null"`
	UserID uint   `gorm:"index"`
	RoomID uint   `gorm:"index"`
	Room   Room   `gorm:"constraint:OnDelete:CASCADE"`
}

// HabitLog 记录习惯单日的完成状态
// Habit + LogDate 采用唯一索引，保证幂等
// Status 仅持久化 完成/未完成 两种取值，"未知"即记录缺失
// Source 标记写入来源（manual/backfill 等）
type HabitLog struct {
	gorm.Model
	HabitID uint      `gorm:"index;index:idx_habit_log_unique,unique"`
	Habit   Habit     `gorm:"constraint:OnDelete:CASCADE"`
	LogDate time.Time `gorm:"index:idx_habit_log_unique,unique"`
	Status  bool
	Source  string `gorm:"size:40"`
}

// TableName 重写确保唯一索引作用到 habit_id + log_date
func (HabitLog) TableName() string {
	return "habit_logs"
}
