package realtime

// Message 是推送给订阅者的变更通知
type Message struct {
	Type    string `json:"type"`
	RoomID  uint   `json:"room_id"`
	HabitID uint   `json:"habit_id,omitempty"`
	Date    string `json:"date,omitempty"`
	// Status 为空指针时表示记录被删除，该日期回到未知状态
	Status *bool `json:"status"`
}

// NewLogUpdatedMessage 构造打卡变更通知
func NewLogUpdatedMessage(roomID, habitID uint, date string, status *bool) Message {
	return Message{
		Type:    "log.updated",
		RoomID:  roomID,
		HabitID: habitID,
		Date:    date,
		Status:  status,
	}
}

// NewHabitRemovedMessage 构造习惯删除通知
func NewHabitRemovedMessage(roomID, habitID uint) Message {
	return Message{
		Type:    "habit.removed",
		RoomID:  roomID,
		HabitID: habitID,
	}
}
