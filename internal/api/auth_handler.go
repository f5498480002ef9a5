package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/rpg-game/internal/middleware"
	"github.com/wfunc/rpg-game/internal/service"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService      service.AuthService
	characterService service.CharacterService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService service.AuthService, characterService service.CharacterService) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		characterService: characterService,
	}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	req.IP = c.ClientIP()

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrUserExists {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{
			Code:    "REGISTER_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	req.IP = c.ClientIP()
	req.Device = c.GetHeader("User-Agent")

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		status := http.StatusUnauthorized
		if err == service.ErrUserBanned {
			status = http.StatusForbidden
		}
		c.JSON(status, ErrorResponse{
			Code:    "LOGIN_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout 用户登出
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "未登录",
		})
		return
	}

	token := extractToken(c)
	if err := h.authService.Logout(c.Request.Context(), userID, token); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "LOGOUT_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "登出成功"})
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "REFRESH_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile 获取当前用户概览（账号信息和角色列表）
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	username, _ := middleware.GetUsername(c)

	characters, err := h.characterService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"username":   username,
		"characters": characters,
	})
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if bearerToken != "" {
		parts := strings.Split(bearerToken, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Query("token")
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
