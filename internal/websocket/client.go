package websocket

import (
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 错误定义
var (
	ErrClientNotFound = errors.New("客户端未找到")
	ErrSendBufferFull = errors.New("发送缓冲区已满")
	ErrInvalidMessage = errors.New("无效的消息格式")
)

// WebSocket配置
const (
	// 写超时
	writeWait = 10 * time.Second

	// 读取pong超时
	pongWait = 60 * time.Second

	// ping发送周期（必须小于pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 4 * 1024 // 4KB，聊天文本足够

	// 单条聊天内容长度上限
	maxContentLength = 500
)

// Client 聊天客户端
type Client struct {
	ID            string
	UserID        uint
	CharacterID   uint
	CharacterName string
	Hub           *Hub
	Conn          *websocket.Conn
	Send          chan []byte

	// 当前加入的区域ID（原子读写，0表示未加入）
	zoneID atomic.Uint64
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn, userID, characterID uint, characterName string) *Client {
	return &Client{
		ID:            uuid.New().String(),
		UserID:        userID,
		CharacterID:   characterID,
		CharacterName: characterName,
		Hub:           hub,
		Conn:          conn,
		Send:          make(chan []byte, 256),
	}
}

func (c *Client) zone() uint {
	return uint(c.zoneID.Load())
}

func (c *Client) setZone(zoneID uint) {
	c.zoneID.Store(uint64(zoneID))
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 批量发送队列中的消息
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Error("解析WebSocket消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.sendError("消息格式错误")
		c.Close()
		return
	}

	switch msg.Type {
	case MessageTypePong:
		c.Hub.logger.Debug("收到pong", zap.String("client_id", c.ID))

	case MessageTypeJoin:
		if msg.ZoneID == 0 {
			c.sendError("缺少区域ID")
			return
		}
		c.Hub.JoinZone(c, msg.ZoneID)

	case MessageTypeChat:
		zoneID := c.zone()
		if zoneID == 0 {
			c.sendError("请先加入区域")
			return
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			c.sendError("消息内容不能为空")
			return
		}
		if len(content) > maxContentLength {
			content = content[:maxContentLength]
		}
		c.Hub.Broadcast(&Message{
			Type:          MessageTypeChat,
			ZoneID:        zoneID,
			CharacterID:   c.CharacterID,
			CharacterName: c.CharacterName,
			Content:       content,
			Timestamp:     time.Now().Unix(),
		})

	default:
		c.Hub.logger.Warn("收到不支持的消息类型",
			zap.String("client_id", c.ID),
			zap.String("type", msg.Type))
		c.sendError("不支持的消息类型: " + msg.Type)
	}
}

// sendError 发送错误消息
func (c *Client) sendError(message string) {
	payload, _ := json.Marshal(map[string]string{"error": message})
	errorMsg := &Message{
		Type:      MessageTypeError,
		Data:      payload,
		Timestamp: time.Now().Unix(),
	}
	c.Hub.SendToClient(c.ID, errorMsg)
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.Hub.unregister <- c
}
