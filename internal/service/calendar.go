package service

import (
	"sort"
	"time"

	"github.com/habitroom/internal/db"
)

// DayStatus 表示日历单日的三态完成状态
type DayStatus string

const (
	// DayCompleted 当日已打卡完成
	DayCompleted DayStatus = "completed"
	// DayNotCompleted 当日明确未完成（含过去缺卡的视图回填）
	DayNotCompleted DayStatus = "not_completed"
	// DayUnknown 当日尚无记录（今天或未来）
	DayUnknown DayStatus = "unknown"
)

// CalendarDay 是派生出的日历单元，不落库，每次渲染重新计算
type CalendarDay struct {
	Date    time.Time
	Status  DayStatus
	IsToday bool
}

// ReconstructMonth 重建指定月份的完整日历视图。
// 返回切片长度恒等于该月天数，按日期升序。
// 有记录的日期取持久化状态；无记录时，严格早于 today 的日期按未完成回填，
// 其余为未知。回填只发生在视图层，绝不写库。
func ReconstructMonth(logs []db.HabitLog, year int, month time.Month, today time.Time) []CalendarDay {
	todayDate := dateOnly(today)
	byDate := make(map[string]bool, len(logs))
	for _, l := range logs {
		byDate[dateOnly(l.LogDate).Format("2006-01-02")] = l.Status
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	days := make([]CalendarDay, 0, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)

		var status DayStatus
		if completed, ok := byDate[date.Format("2006-01-02")]; ok {
			status = DayNotCompleted
			if completed {
				status = DayCompleted
			}
		} else if date.Before(todayDate) {
			status = DayNotCompleted
		} else {
			status = DayUnknown
		}

		days = append(days, CalendarDay{
			Date:    date,
			Status:  status,
			IsToday: date.Equal(todayDate),
		})
	}

	return days
}

// ComputeStreak 计算截至 today 的连续完成天数。
// 仅统计完成状态的记录：按日期升序排列后从最近一条向前走，
// 第 k 条（k 从 0 起）与 today 的整日差必须恰好等于 k 才累计，否则停止。
// 因此只要昨天和今天都没有完成记录，即使历史上存在长连胜，结果也为 0——
// 该归零行为与线上表现一致，刻意保留。
func ComputeStreak(logs []db.HabitLog, today time.Time) int {
	todayDate := dateOnly(today)

	seen := make(map[string]struct{}, len(logs))
	dates := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		if !l.Status {
			continue
		}
		d := dateOnly(l.LogDate)
		key := d.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	streak := 0
	for i := len(dates) - 1; i >= 0; i-- {
		if daysBetween(dates[i], todayDate) != streak {
			break
		}
		streak++
	}

	return streak
}

// dateOnly 将时间压平为 UTC 的纯日期，避免时区与夏令时影响整日差
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
