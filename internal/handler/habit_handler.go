package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitroom/internal/db"
	"github.com/habitroom/internal/realtime"
	"github.com/habitroom/internal/service"
)

type createHabitPayload struct {
	Name string `json:"name"`
}

type logStatusPayload struct {
	Status *bool `json:"status"`
}

// CreateHabit 在房间内新建习惯，要求当前用户已是成员
func (a *API) CreateHabit(c *gin.Context) {
	roomID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的房间ID")
		return
	}

	userID := currentUserID(c)
	isMember, err := a.rooms.IsMember(roomID, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "创建习惯失败")
		return
	}
	if !isMember {
		respondError(c, http.StatusForbidden, "尚未加入该房间")
		return
	}

	var payload createHabitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	habit, err := a.habits.Create(roomID, userID, payload.Name)
	if err != nil {
		if errors.Is(err, service.ErrHabitNameRequired) {
			respondError(c, http.StatusBadRequest, "习惯名不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "创建习惯失败")
		return
	}

	today := todayLocal()
	c.JSON(http.StatusOK, gin.H{
		"habit": a.habitToPayload(*habit, nil, today.Year(), today.Month(), today, true),
	})
}

// DeleteHabit 删除习惯及其打卡记录，仅限习惯本人
func (a *API) DeleteHabit(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := a.habits.Get(habitID)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	if err := a.habits.Delete(habitID, currentUserID(c)); err != nil {
		handleHabitError(c, err)
		return
	}

	a.hub.Broadcast(realtime.NewHabitRemovedMessage(habit.RoomID, habit.ID))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// MarkToday 标记今天：请求体缺省时翻转当前状态，带 status 时按给定值写入
func (a *API) MarkToday(c *gin.Context) {
	habit, ok := a.ownedHabit(c)
	if !ok {
		return
	}

	today := todayLocal()

	var payload logStatusPayload
	// 空请求体按翻转处理
	_ = c.ShouldBindJSON(&payload)

	var record *db.HabitLog
	var err error
	if payload.Status == nil {
		record, err = a.habitLogs.ToggleToday(habit.ID, today)
	} else {
		record, err = a.habitLogs.Upsert(service.HabitLogInput{
			HabitID: habit.ID,
			LogDate: today,
			Status:  *payload.Status,
			Source:  "manual",
		})
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存打卡记录失败")
		return
	}

	status := record.Status
	a.hub.Broadcast(realtime.NewLogUpdatedMessage(habit.RoomID, habit.ID, record.LogDate.Format(dateFormat), &status))

	c.JSON(http.StatusOK, gin.H{"log": serializeHabitLog(*record)})
}

// UpsertLog 写入指定日期的打卡状态，仅允许今天
func (a *API) UpsertLog(c *gin.Context) {
	habit, ok := a.ownedHabit(c)
	if !ok {
		return
	}

	date, ok := a.todayDateParam(c)
	if !ok {
		return
	}

	var payload logStatusPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	if payload.Status == nil {
		respondError(c, http.StatusBadRequest, "缺少打卡状态")
		return
	}

	record, err := a.habitLogs.Upsert(service.HabitLogInput{
		HabitID: habit.ID,
		LogDate: date,
		Status:  *payload.Status,
		Source:  "manual",
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存打卡记录失败")
		return
	}

	status := record.Status
	a.hub.Broadcast(realtime.NewLogUpdatedMessage(habit.RoomID, habit.ID, record.LogDate.Format(dateFormat), &status))

	c.JSON(http.StatusOK, gin.H{"log": serializeHabitLog(*record)})
}

// DeleteLog 删除指定日期的打卡记录（回到未知状态），仅允许今天
func (a *API) DeleteLog(c *gin.Context) {
	habit, ok := a.ownedHabit(c)
	if !ok {
		return
	}

	date, ok := a.todayDateParam(c)
	if !ok {
		return
	}

	if err := a.habitLogs.Delete(habit.ID, date); err != nil {
		if errors.Is(err, service.ErrHabitLogNotFound) {
			respondError(c, http.StatusNotFound, "打卡记录不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除打卡记录失败")
		return
	}

	a.hub.Broadcast(realtime.NewLogUpdatedMessage(habit.RoomID, habit.ID, date.Format(dateFormat), nil))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ownedHabit 读取路径中的习惯并校验归属
func (a *API) ownedHabit(c *gin.Context) (*db.Habit, bool) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return nil, false
	}

	habit, err := a.habits.Get(habitID)
	if err != nil {
		handleHabitError(c, err)
		return nil, false
	}

	if habit.UserID != currentUserID(c) {
		respondError(c, http.StatusForbidden, "只能操作自己的习惯")
		return nil, false
	}

	return habit, true
}

// todayDateParam 解析路径中的日期并限制为今天。
// 历史与未来日期只读：过去缺卡的回填由显式补录步骤负责，不走该接口。
func (a *API) todayDateParam(c *gin.Context) (time.Time, bool) {
	raw := c.Param("date")
	date, err := time.ParseInLocation(dateFormat, raw, time.Local)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, false
	}

	today := todayLocal()
	if !date.Equal(today) {
		respondError(c, http.StatusForbidden, "只能修改今天的打卡状态")
		return time.Time{}, false
	}

	return date, true
}

// habitToPayload 组装习惯的完整视图：当月日历、连胜与可编辑标记
func (a *API) habitToPayload(habit db.Habit, logs []db.HabitLog, year int, month time.Month, today time.Time, editable bool) gin.H {
	days := service.ReconstructMonth(logs, year, month, today)

	calendar := make([]gin.H, 0, len(days))
	for _, day := range days {
		calendar = append(calendar, gin.H{
			"date":     day.Date.Format(dateFormat),
			"status":   string(day.Status),
			"is_today": day.IsToday,
		})
	}

	return gin.H{
		"id":       habit.ID,
		"name":     habit.Name,
		"user_id":  habit.UserID,
		"room_id":  habit.RoomID,
		"streak":   service.ComputeStreak(logs, today),
		"calendar": calendar,
		"editable": editable,
	}
}

func serializeHabitLog(log db.HabitLog) gin.H {
	return gin.H{
		"id":       log.ID,
		"habit_id": log.HabitID,
		"log_date": log.LogDate.Format(dateFormat),
		"status":   log.Status,
		"source":   log.Source,
	}
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrNotHabitOwner):
		respondError(c, http.StatusForbidden, "只能操作自己的习惯")
	case errors.Is(err, service.ErrHabitNameRequired):
		respondError(c, http.StatusBadRequest, "习惯名不能为空")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
