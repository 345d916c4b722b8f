package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitroom/internal/db"
	"github.com/habitroom/internal/service"
)

type roomPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type joinByCodePayload struct {
	Code string `json:"code"`
}

// ListRooms 返回全部房间列表
func (a *API) ListRooms(c *gin.Context) {
	summaries, err := a.rooms.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取房间列表失败")
		return
	}

	items := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, roomToPayload(summary.Room, summary.MemberCount))
	}

	c.JSON(http.StatusOK, gin.H{"rooms": items})
}

// CreateRoom 创建房间，仅限管理员
func (a *API) CreateRoom(c *gin.Context) {
	var payload roomPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	userID := currentUserID(c)
	profile, err := a.profiles.GetByUserID(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "创建房间失败")
		return
	}

	room, err := a.rooms.Create(service.RoomInput{
		Name:        payload.Name,
		Description: payload.Description,
		CreatedBy:   userID,
		CreatorName: profile.Username,
	})
	if err != nil {
		if errors.Is(err, service.ErrRoomNameRequired) {
			respondError(c, http.StatusBadRequest, "房间名不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "创建房间失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": roomToPayload(*room, 1)})
}

// GetRoom 返回房间详情：我的习惯与他人习惯各自带日历与连胜。
// month 参数形如 2025-09，缺省为当前月份。
func (a *API) GetRoom(c *gin.Context) {
	roomID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的房间ID")
		return
	}

	room, err := a.rooms.Get(roomID)
	if err != nil {
		handleRoomError(c, err)
		return
	}

	userID := currentUserID(c)
	isMember, err := a.rooms.IsMember(roomID, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载房间失败")
		return
	}
	if !isMember {
		respondError(c, http.StatusForbidden, "尚未加入该房间")
		return
	}

	today := todayLocal()
	year, month, ok := resolveMonth(c.Query("month"), today)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的月份参数")
		return
	}

	habits, err := a.habits.ListByRoom(roomID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	habitIDs := make([]uint, 0, len(habits))
	ownerIDs := make([]uint, 0, len(habits))
	for _, habit := range habits {
		habitIDs = append(habitIDs, habit.ID)
		ownerIDs = append(ownerIDs, habit.UserID)
	}

	logsByHabit, err := a.habitLogs.ListByHabits(habitIDs)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}

	names, err := a.profiles.UsernamesByUserIDs(ownerIDs)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取成员资料失败")
		return
	}

	mine := make([]gin.H, 0)
	othersByOwner := make(map[uint][]gin.H)
	for _, habit := range habits {
		payload := a.habitToPayload(habit, logsByHabit[habit.ID], year, month, today, habit.UserID == userID)
		if habit.UserID == userID {
			mine = append(mine, payload)
		} else {
			othersByOwner[habit.UserID] = append(othersByOwner[habit.UserID], payload)
		}
	}

	others := make([]gin.H, 0, len(othersByOwner))
	for ownerID, items := range othersByOwner {
		name := names[ownerID]
		if name == "" {
			name = "Unknown User"
		}
		others = append(others, gin.H{"user_id": ownerID, "username": name, "habits": items})
	}
	sort.Slice(others, func(i, j int) bool {
		return others[i]["username"].(string) < others[j]["username"].(string)
	})

	c.JSON(http.StatusOK, gin.H{
		"room":         roomToPayload(*room, 0),
		"month":        time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		"my_habits":    mine,
		"other_habits": others,
	})
}

// JoinRoom 将当前用户加入房间，重复加入幂等
func (a *API) JoinRoom(c *gin.Context) {
	roomID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的房间ID")
		return
	}

	if err := a.rooms.Join(roomID, currentUserID(c)); err != nil {
		handleRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"joined": true, "room_id": roomID})
}

// JoinRoomByCode 凭邀请码加入房间
func (a *API) JoinRoomByCode(c *gin.Context) {
	var payload joinByCodePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	if strings.TrimSpace(payload.Code) == "" {
		respondError(c, http.StatusBadRequest, "邀请码不能为空")
		return
	}

	room, err := a.rooms.JoinByCode(payload.Code, currentUserID(c))
	if err != nil {
		handleRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"joined": true, "room": roomToPayload(*room, 0)})
}

// LeaveRoom 将当前用户移出房间
func (a *API) LeaveRoom(c *gin.Context) {
	roomID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的房间ID")
		return
	}

	if err := a.rooms.Leave(roomID, currentUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "退出房间失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"left": true, "room_id": roomID})
}

// DeleteRoom 删除房间及其全部数据，仅限管理员
func (a *API) DeleteRoom(c *gin.Context) {
	roomID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的房间ID")
		return
	}

	if err := a.rooms.Delete(roomID); err != nil {
		handleRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func roomToPayload(room db.Room, memberCount int64) gin.H {
	payload := gin.H{
		"id":           room.ID,
		"name":         room.Name,
		"created_by":   room.CreatedBy,
		"creator_name": room.CreatorName,
		"join_code":    room.JoinCode,
	}
	if room.Description != "" {
		payload["description"] = room.Description
		payload["description_html"] = renderMarkdown(room.Description)
	}
	if memberCount > 0 {
		payload["member_count"] = memberCount
	}
	return payload
}

// resolveMonth 解析 YYYY-MM 形式的月份参数，缺省取 today 所在月
func resolveMonth(raw string, today time.Time) (int, time.Month, bool) {
	if strings.TrimSpace(raw) == "" {
		return today.Year(), today.Month(), true
	}

	parsed, err := time.ParseInLocation("2006-01", raw, time.Local)
	if err != nil {
		return 0, 0, false
	}
	return parsed.Year(), parsed.Month(), true
}

func handleRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		respondError(c, http.StatusNotFound, "房间不存在")
	case errors.Is(err, service.ErrRoomNameRequired):
		respondError(c, http.StatusBadRequest, "房间名不能为空")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
