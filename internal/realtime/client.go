package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
)

// Client 表示一条已升级的订阅连接
type Client struct {
	id       string
	roomID   uint
	hub      *Hub
	conn     *websocket.Conn
	send     chan Message
	done     chan struct{}
	sendOnce sync.Once
}

// NewClient 构造客户端并挂入 Hub
func NewClient(hub *Hub, conn *websocket.Conn, roomID uint) *Client {
	c := &Client{
		id:     uuid.NewString(),
		roomID: roomID,
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, clientSendBuffer),
		done:   make(chan struct{}),
	}
	hub.Register(c)
	return c
}

// Run 启动读写泵并阻塞到连接结束
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// closeSend 幂等地通知客户端关停。只关 done 不关 send，
// 发送方在写入前检查 done，避免向已关闭通道写入。
func (c *Client) closeSend() {
	c.sendOnce.Do(func() {
		close(c.done)
	})
}

// writePump 持续将消息写入连接，并定期发送 ping 探活
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("realtime: failed to marshal message: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取连接直至断开。订阅是只读的，入站数据仅用于探测断连。
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.closeSend()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: unexpected close: %v", err)
			}
			return
		}
	}
}
