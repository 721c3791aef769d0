package ws

import (
	"encoding/json"
	"sync"
	"time"

	"ChatDesk/pkg/zlog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Hub 按租户分组的运营后台连接，同一租户可以有多个坐席、多个标签页
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	if c == nil || c.tenantID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.tenantID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.tenantID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	if c == nil || c.tenantID == "" {
		return
	}
	h.mu.Lock()
	set := h.clients[c.tenantID]
	if set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.tenantID)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// Count 当前在线连接数
func (h *Hub) Count(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tenantID])
}

// Send 写缓冲已满的连接视为卡死，直接踢掉
func (h *Hub) Send(tenantID string, payload []byte) bool {
	if tenantID == "" || len(payload) == 0 {
		return false
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[tenantID]))
	for c := range h.clients[tenantID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	ok := false
	for _, c := range targets {
		if c.trySend(payload) {
			ok = true
			continue
		}
		h.Unregister(c)
	}
	return ok
}

// Publish 序列化失败只记日志
func (h *Hub) Publish(tenantID string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		zlog.Warn("ws publish marshal failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return
	}
	h.Send(tenantID, b)
}

type Client struct {
	tenantID string
	conn     *websocket.Conn
	send     chan []byte

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func NewClient(tenantID string, conn *websocket.Conn) *Client {
	return &Client{
		tenantID: tenantID,
		conn:     conn,
		send:     make(chan []byte, 64),
	}
}

func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// WritePump 独占连接的写端，并定期发送 ping
func (c *Client) WritePump() {
	if c.conn == nil {
		return
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zlog.Warn("ws write failed", zap.String("tenant_id", c.tenantID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump 丢弃客户端消息，只用于感知断线和处理 pong
func (c *Client) ReadPump(onClose func()) {
	defer onClose()
	if c.conn == nil {
		return
	}
	c.conn.SetReadLimit(4 << 10)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
