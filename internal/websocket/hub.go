package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub 聊天连接管理中心
// 客户端以角色身份加入区域频道，消息按区域广播
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 区域ID到客户端的映射
	zoneClients map[uint][]*Client
	zoneMu      sync.RWMutex

	// 消息广播通道
	broadcast chan *Message

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 关闭通道
	done chan struct{}

	logger *zap.Logger
}

// Message 聊天消息
type Message struct {
	Type          string          `json:"type"`
	ZoneID        uint            `json:"zone_id,omitempty"`
	CharacterID   uint            `json:"character_id,omitempty"`
	CharacterName string          `json:"character_name,omitempty"`
	Content       string          `json:"content,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	Timestamp     int64           `json:"timestamp"`
}

// 消息类型
const (
	// 系统消息
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"

	// 聊天消息
	MessageTypeJoin   = "join"
	MessageTypeJoined = "joined"
	MessageTypeLeft   = "left"
	MessageTypeChat   = "chat"
	MessageTypeSystem = "system"
)

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:     make(map[string]*Client),
		zoneClients: make(map[uint][]*Client),
		broadcast:   make(chan *Message, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run 运行Hub
func (h *Hub) Run() {
	// 启动心跳检测
	go h.runHeartbeat()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToZone(message.ZoneID, message)

		case <-h.done:
			return
		}
	}
}

// Stop 停止Hub
func (h *Hub) Stop() {
	close(h.done)
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("聊天客户端连接",
		zap.String("client_id", client.ID),
		zap.Uint("user_id", client.UserID),
		zap.Uint("character_id", client.CharacterID))

	msg := &Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	}
	h.SendToClient(client.ID, msg)
}

// unregisterClient 注销客户端并通知其所在区域
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	zoneID := client.zone()
	if zoneID > 0 {
		h.leaveZone(client, zoneID)
		h.broadcastToZone(zoneID, &Message{
			Type:          MessageTypeLeft,
			ZoneID:        zoneID,
			CharacterID:   client.CharacterID,
			CharacterName: client.CharacterName,
			Content:       fmt.Sprintf("%s 离开了区域", client.CharacterName),
			Timestamp:     time.Now().Unix(),
		})
	}

	h.logger.Info("聊天客户端断开",
		zap.String("client_id", client.ID),
		zap.Uint("character_id", client.CharacterID))
}

// JoinZone 让客户端加入区域频道，已在其他区域时先退出
func (h *Hub) JoinZone(client *Client, zoneID uint) {
	if previous := client.zone(); previous > 0 && previous != zoneID {
		h.leaveZone(client, previous)
		h.broadcastToZone(previous, &Message{
			Type:          MessageTypeLeft,
			ZoneID:        previous,
			CharacterID:   client.CharacterID,
			CharacterName: client.CharacterName,
			Content:       fmt.Sprintf("%s 离开了区域", client.CharacterName),
			Timestamp:     time.Now().Unix(),
		})
	}

	h.zoneMu.Lock()
	h.zoneClients[zoneID] = append(h.zoneClients[zoneID], client)
	h.zoneMu.Unlock()
	client.setZone(zoneID)

	h.broadcastToZone(zoneID, &Message{
		Type:          MessageTypeJoined,
		ZoneID:        zoneID,
		CharacterID:   client.CharacterID,
		CharacterName: client.CharacterName,
		Content:       fmt.Sprintf("%s 进入了区域", client.CharacterName),
		Timestamp:     time.Now().Unix(),
	})
}

// leaveZone 从区域映射中移除客户端
func (h *Hub) leaveZone(client *Client, zoneID uint) {
	h.zoneMu.Lock()
	clients := h.zoneClients[zoneID]
	for i, c := range clients {
		if c.ID == client.ID {
			h.zoneClients[zoneID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.zoneClients[zoneID]) == 0 {
		delete(h.zoneClients, zoneID)
	}
	h.zoneMu.Unlock()
	client.setZone(0)
}

// broadcastToZone 向区域内所有客户端广播消息
func (h *Hub) broadcastToZone(zoneID uint, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.zoneMu.RLock()
	clients := h.zoneClients[zoneID]
	h.zoneMu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满",
				zap.String("client_id", client.ID))
		}
	}
}

// Broadcast 投递区域广播消息
func (h *Hub) Broadcast(message *Message) {
	h.broadcast <- message
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// OnlineInZone 获取区域内在线角色名列表
func (h *Hub) OnlineInZone(zoneID uint) []string {
	h.zoneMu.RLock()
	defer h.zoneMu.RUnlock()

	names := make([]string, 0, len(h.zoneClients[zoneID]))
	for _, client := range h.zoneClients[zoneID] {
		names = append(names, client.CharacterName)
	}
	return names
}

// GetOnlineCount 获取在线人数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// runHeartbeat 周期性向所有客户端发送ping
func (h *Hub) runHeartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ping := &Message{
				Type:      MessageTypePing,
				Timestamp: time.Now().Unix(),
			}
			data, err := json.Marshal(ping)
			if err != nil {
				continue
			}
			h.clientsMu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- data:
				default:
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			return
		}
	}
}
