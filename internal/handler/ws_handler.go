package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/habitroom/internal/realtime"
)

// newUpgrader 构造订阅升级器。来源名单为空时保留 gorilla 默认的同源校验。
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if len(allowedOrigins) > 0 {
		allowed := make(map[string]struct{}, len(allowedOrigins))
		for _, origin := range allowedOrigins {
			allowed[origin] = struct{}{}
		}
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}

	return upgrader
}

// SubscribeRoom 将已加入房间的用户升级为 websocket 订阅者，
// 推送该房间内所有习惯的打卡变更，直到连接断开。
func (a *API) SubscribeRoom(c *gin.Context) {
	roomID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的房间ID")
		return
	}

	if _, err := a.rooms.Get(roomID); err != nil {
		handleRoomError(c, err)
		return
	}

	isMember, err := a.rooms.IsMember(roomID, currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "订阅失败")
		return
	}
	if !isMember {
		respondError(c, http.StatusForbidden, "尚未加入该房间")
		return
	}

	conn, err := a.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时 gorilla 已写入响应
		return
	}

	client := realtime.NewClient(a.hub, conn, roomID)
	client.Run()
}
