package service

import (
	"testing"
	"time"

	"github.com/habitroom/internal/db"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func completedLog(date time.Time) db.HabitLog {
	return db.HabitLog{HabitID: 1, LogDate: date, Status: true}
}

func missedLog(date time.Time) db.HabitLog {
	return db.HabitLog{HabitID: 1, LogDate: date, Status: false}
}

func TestReconstructMonthLengthAndOrder(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2025, time.September, 30},
		{2025, time.October, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
	}

	today := day(2025, time.September, 15)

	for _, tc := range cases {
		result := ReconstructMonth(nil, tc.year, tc.month, today)
		if len(result) != tc.days {
			t.Fatalf("%d-%d: expected %d days, got %d", tc.year, tc.month, tc.days, len(result))
		}
		for i := 1; i < len(result); i++ {
			if !result[i].Date.After(result[i-1].Date) {
				t.Fatalf("%d-%d: days not in ascending order at index %d", tc.year, tc.month, i)
			}
		}
	}
}

func TestReconstructMonthBackfillsPastGaps(t *testing.T) {
	today := day(2025, time.September, 15)
	logs := []db.HabitLog{
		completedLog(day(2025, time.September, 3)),
		missedLog(day(2025, time.September, 10)),
	}

	result := ReconstructMonth(logs, 2025, time.September, today)

	for _, d := range result {
		switch d.Date.Day() {
		case 3:
			if d.Status != DayCompleted {
				t.Fatalf("day 3: expected completed, got %s", d.Status)
			}
		case 10:
			if d.Status != DayNotCompleted {
				t.Fatalf("day 10: expected not_completed, got %s", d.Status)
			}
		case 15:
			if d.Status != DayUnknown {
				t.Fatalf("today: expected unknown without a log, got %s", d.Status)
			}
			if !d.IsToday {
				t.Fatal("today: IsToday not set")
			}
		default:
			if d.Date.Before(today) {
				if d.Status != DayNotCompleted {
					t.Fatalf("past day %d: expected not_completed backfill, got %s", d.Date.Day(), d.Status)
				}
			} else {
				if d.Status != DayUnknown {
					t.Fatalf("future day %d: expected unknown, got %s", d.Date.Day(), d.Status)
				}
			}
			if d.IsToday {
				t.Fatalf("day %d: IsToday wrongly set", d.Date.Day())
			}
		}
	}
}

func TestReconstructMonthTodayWithLog(t *testing.T) {
	today := day(2025, time.September, 15)
	logs := []db.HabitLog{completedLog(today)}

	result := ReconstructMonth(logs, 2025, time.September, today)

	d := result[14]
	if !d.IsToday {
		t.Fatal("expected index 14 to be today")
	}
	if d.Status != DayCompleted {
		t.Fatalf("expected completed today, got %s", d.Status)
	}
}

func TestComputeStreakEmpty(t *testing.T) {
	if got := ComputeStreak(nil, day(2025, time.September, 15)); got != 0 {
		t.Fatalf("expected streak 0 for empty logs, got %d", got)
	}
}

func TestComputeStreakThreeConsecutiveDaysEndingToday(t *testing.T) {
	today := day(2025, time.September, 15)
	logs := []db.HabitLog{
		completedLog(day(2025, time.September, 13)),
		completedLog(day(2025, time.September, 14)),
		completedLog(today),
		// 四天前缺卡，不影响前三天的连胜
	}

	if got := ComputeStreak(logs, today); got != 3 {
		t.Fatalf("expected streak 3, got %d", got)
	}
}

func TestComputeStreakResetsWhenRunDoesNotReachToday(t *testing.T) {
	today := day(2025, time.September, 15)
	logs := []db.HabitLog{
		completedLog(day(2025, time.September, 12)),
	}

	if got := ComputeStreak(logs, today); got != 0 {
		t.Fatalf("expected streak 0 when the run is three days old, got %d", got)
	}
}

// 历史上存在长连胜、但今天没有完成记录时，展示值归零。
// 这是有意保留的线上行为。
func TestComputeStreakIgnoresHistoricalRuns(t *testing.T) {
	today := day(2025, time.September, 15)
	logs := []db.HabitLog{
		completedLog(day(2025, time.September, 8)),
		completedLog(day(2025, time.September, 9)),
		completedLog(day(2025, time.September, 10)),
		completedLog(day(2025, time.September, 11)),
		completedLog(day(2025, time.September, 12)),
		completedLog(day(2025, time.September, 13)),
		completedLog(day(2025, time.September, 14)),
	}

	if got := ComputeStreak(logs, today); got != 0 {
		t.Fatalf("expected streak 0 without today's completion, got %d", got)
	}
}

func TestComputeStreakSkipsNotCompletedAndDuplicates(t *testing.T) {
	today := day(2025, time.September, 15)
	logs := []db.HabitLog{
		completedLog(today),
		completedLog(today), // 重复日期只计一次
		missedLog(day(2025, time.September, 14)),
		completedLog(day(2025, time.September, 13)),
	}

	if got := ComputeStreak(logs, today); got != 1 {
		t.Fatalf("expected streak 1 (broken by missed yesterday), got %d", got)
	}
}

func TestComputeStreakIgnoresTimeOfDayAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	today := time.Date(2025, time.September, 15, 23, 50, 0, 0, loc)
	logs := []db.HabitLog{
		{HabitID: 1, LogDate: time.Date(2025, time.September, 15, 8, 0, 0, 0, loc), Status: true},
		{HabitID: 1, LogDate: time.Date(2025, time.September, 14, 22, 30, 0, 0, loc), Status: true},
	}

	if got := ComputeStreak(logs, today); got != 2 {
		t.Fatalf("expected streak 2 regardless of time of day, got %d", got)
	}
}
