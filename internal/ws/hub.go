package ws

import (
	"encoding/json"

	"forum-backend/internal/util"

	"go.uber.org/zap"
)

// Event 是推送给前端的实时事件
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub 维护所有活跃的 WebSocket 连接并向它们广播事件
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 处理注册、注销和广播，必须在独立的 goroutine 中运行
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 发送缓冲已满的客户端视为掉线
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// BroadcastEvent 序列化事件并广播给所有客户端，
// 序列化失败只记录日志不影响调用方
func (h *Hub) BroadcastEvent(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		util.Logger.Error("序列化实时事件失败", zap.String("type", eventType), zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- payload:
	default:
		util.Logger.Warn("广播队列已满，丢弃事件", zap.String("type", eventType))
	}
}
