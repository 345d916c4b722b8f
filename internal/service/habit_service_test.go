package service

import (
	"testing"
	"time"

	"github.com/habitroom/internal/db"
)

func TestHabitCreateAndList(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewHabitService(db.DB)

	habit, err := svc.Create(10, 1, "  晨跑  ")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if habit.Name != "晨跑" {
		t.Fatalf("expected trimmed name, got %q", habit.Name)
	}

	if _, err := svc.Create(10, 1, "   "); err != ErrHabitNameRequired {
		t.Fatalf("expected ErrHabitNameRequired, got %v", err)
	}

	habits, err := svc.ListByRoom(10)
	if err != nil {
		t.Fatalf("ListByRoom returned error: %v", err)
	}
	if len(habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(habits))
	}

	other, err := svc.ListByRoom(99)
	if err != nil {
		t.Fatalf("ListByRoom returned error: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no habits in other room, got %d", len(other))
	}
}

func TestHabitDeleteOwnership(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewHabitService(db.DB)
	logs := NewHabitLogService(db.DB)

	habit, err := svc.Create(10, 1, "阅读")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := logs.Upsert(HabitLogInput{
		HabitID: habit.ID,
		LogDate: time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
		Status:  true,
	}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	// 非本人删除被拒绝
	if err := svc.Delete(habit.ID, 2); err != ErrNotHabitOwner {
		t.Fatalf("expected ErrNotHabitOwner, got %v", err)
	}

	if err := svc.Delete(habit.ID, 1); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	var habitCount, logCount int64
	db.DB.Model(&db.Habit{}).Count(&habitCount)
	db.DB.Model(&db.HabitLog{}).Count(&logCount)
	if habitCount != 0 || logCount != 0 {
		t.Fatalf("expected cascade delete, habits=%d logs=%d", habitCount, logCount)
	}

	if err := svc.Delete(9999, 1); err != ErrHabitNotFound {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}
