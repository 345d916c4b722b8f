// Package realtime 实现按房间复用的变更推送通道。
// 订阅方以房间为粒度收取该房间内所有习惯的打卡变更，
// 避免原型里每个习惯各占一条通道的无界增长。
package realtime

import (
	"log"
	"sync"
)

const clientSendBuffer = 32

// Hub 维护按房间分组的订阅者集合并负责广播
type Hub struct {
	mu      sync.RWMutex
	rooms   map[uint]map[*Client]struct{}
	stopped bool
}

// NewHub 构造 Hub
func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*Client]struct{})}
}

// Register 将客户端挂入其订阅的房间
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		c.closeSend()
		return
	}

	clients, ok := h.rooms[c.roomID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[c.roomID] = clients
	}
	clients[c] = struct{}{}
}

// Unregister 将客户端从房间移除，房间清空后回收条目
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[c.roomID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
}

// Broadcast 向房间内全部订阅者推送消息。
// 非阻塞：某个客户端缓冲打满时丢弃该客户端的这条消息而不是阻塞写入方。
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.stopped {
		return
	}

	for client := range h.rooms[msg.RoomID] {
		select {
		case <-client.done:
		case client.send <- msg:
		default:
			log.Printf("realtime: client send buffer full, dropping message (room %d)", msg.RoomID)
		}
	}
}

// SubscriberCount 返回房间当前的订阅者数量
func (h *Hub) SubscriberCount(roomID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Stop 关闭全部客户端并拒绝后续注册
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for _, clients := range h.rooms {
		for client := range clients {
			client.closeSend()
		}
	}
	h.rooms = make(map[uint]map[*Client]struct{})
}
