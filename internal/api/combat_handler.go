package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/rpg-game/internal/middleware"
	"github.com/wfunc/rpg-game/internal/service"
)

// CombatHandler 战斗处理器
type CombatHandler struct {
	combatService service.CombatService
}

// NewCombatHandler 创建战斗处理器
func NewCombatHandler(combatService service.CombatService) *CombatHandler {
	return &CombatHandler{combatService: combatService}
}

// Start 发起战斗
func (h *CombatHandler) Start(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	var req service.StartCombatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.combatService.Start(c.Request.Context(), userID, characterID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// Action 执行战斗动作
func (h *CombatHandler) Action(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	var req service.CombatActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.combatService.Action(c.Request.Context(), userID, characterID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Current 获取进行中的战斗
func (h *CombatHandler) Current(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.combatService.Current(c.Request.Context(), userID, characterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// History 获取战斗记录
func (h *CombatHandler) History(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, pagination, err := h.combatService.History(c.Request.Context(), userID, characterID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records":    records,
		"pagination": pagination,
	})
}

// Stats 获取战斗统计
func (h *CombatHandler) Stats(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	stats, err := h.combatService.Stats(c.Request.Context(), userID, characterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
