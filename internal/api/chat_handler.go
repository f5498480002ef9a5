package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/wfunc/rpg-game/internal/middleware"
	"github.com/wfunc/rpg-game/internal/service"
	"github.com/wfunc/rpg-game/internal/websocket"
	"go.uber.org/zap"
)

// ChatHandler 区域聊天处理器
type ChatHandler struct {
	hub              *websocket.Hub
	characterService service.CharacterService
	upgrader         gorilla.Upgrader
	log              *zap.Logger
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(hub *websocket.Hub, characterService service.CharacterService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		hub:              hub,
		characterService: characterService,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

// Connect 升级WebSocket连接并以指定角色进入聊天
func (h *ChatHandler) Connect(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	// 校验角色归属并取角色名
	detail, err := h.characterService.Get(c.Request.Context(), userID, characterID)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("WebSocket升级失败", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, userID, characterID, detail.Character.Name)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
