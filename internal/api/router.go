package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/rpg-game/internal/middleware"
	"github.com/wfunc/rpg-game/internal/service"
	"github.com/wfunc/rpg-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine           *gin.Engine
	db               *gorm.DB
	services         *service.Services
	hub              *websocket.Hub
	authHandler      *AuthHandler
	characterHandler *CharacterHandler
	combatHandler    *CombatHandler
	chatHandler      *ChatHandler
	authMiddleware   *middleware.AuthMiddleware
	log              *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, config *service.Config, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// 创建服务
	services := service.NewServices(db, config, log)

	// 聊天Hub
	hub := websocket.NewHub(log)

	router := &Router{
		engine:           engine,
		db:               db,
		services:         services,
		hub:              hub,
		authHandler:      NewAuthHandler(services.Auth, services.Character),
		characterHandler: NewCharacterHandler(services.Character),
		combatHandler:    NewCombatHandler(services.Combat),
		chatHandler:      NewChatHandler(hub, services.Character, log),
		authMiddleware:   middleware.NewAuthMiddleware(services.Auth),
		log:              log,
	}

	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)

			authRequired := auth.Group("")
			authRequired.Use(r.authMiddleware.RequireAuth())
			{
				authRequired.POST("/logout", r.authHandler.Logout)
				authRequired.GET("/profile", r.authHandler.Profile)
			}
		}

		// 角色相关路由（需要认证）
		characters := v1.Group("/characters")
		characters.Use(r.authMiddleware.RequireAuth())
		{
			characters.POST("", r.characterHandler.Create)
			characters.GET("", r.characterHandler.List)
			characters.GET("/:id", r.characterHandler.Get)
			characters.PUT("/:id/name", r.characterHandler.Rename)
			characters.DELETE("/:id", r.characterHandler.Delete)
			characters.POST("/:id/stats", r.characterHandler.AssignStat)
			characters.POST("/:id/equip", r.characterHandler.Equip)
			characters.POST("/:id/unequip", r.characterHandler.Unequip)
			characters.POST("/:id/items/use", r.characterHandler.UseItem)
			characters.GET("/:id/skills", r.characterHandler.Skills)

			// 战斗相关路由
			characters.POST("/:id/combat", r.combatHandler.Start)
			characters.GET("/:id/combat", r.combatHandler.Current)
			characters.POST("/:id/combat/action", r.combatHandler.Action)
			characters.GET("/:id/combat/history", r.combatHandler.History)
			characters.GET("/:id/combat/stats", r.combatHandler.Stats)
		}
	}

	// WebSocket聊天路由（令牌可经query传入）
	ws := r.engine.Group("/ws")
	ws.Use(r.authMiddleware.RequireAuth())
	{
		ws.GET("/chat/:id", r.chatHandler.Connect)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":         "healthy",
		"online":         r.hub.GetOnlineCount(),
		"active_combats": r.services.Registry.Count(),
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetServices 获取服务集合
func (r *Router) GetServices() *service.Services {
	return r.services
}

// GetHub 获取聊天Hub
func (r *Router) GetHub() *websocket.Hub {
	return r.hub
}
