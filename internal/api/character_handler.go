package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/rpg-game/internal/errors"
	"github.com/wfunc/rpg-game/internal/middleware"
	"github.com/wfunc/rpg-game/internal/service"
)

// CharacterHandler 角色处理器
type CharacterHandler struct {
	characterService service.CharacterService
}

// NewCharacterHandler 创建角色处理器
func NewCharacterHandler(characterService service.CharacterService) *CharacterHandler {
	return &CharacterHandler{characterService: characterService}
}

// Create 创建角色
func (h *CharacterHandler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req service.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	character, err := h.characterService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, character)
}

// List 获取角色列表
func (h *CharacterHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	characters, err := h.characterService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"characters": characters})
}

// Get 获取角色详情
func (h *CharacterHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.characterService.Get(c.Request.Context(), userID, characterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Rename 重命名角色
func (h *CharacterHandler) Rename(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	var req RenameCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	character, err := h.characterService.Rename(c.Request.Context(), userID, characterID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, character)
}

// Delete 删除角色
func (h *CharacterHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.characterService.Delete(c.Request.Context(), userID, characterID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "角色已删除"})
}

// AssignStat 分配属性点
func (h *CharacterHandler) AssignStat(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	var req AssignStatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	detail, err := h.characterService.AssignStatPoint(c.Request.Context(), userID, characterID, req.Stat)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Equip 装备物品
func (h *CharacterHandler) Equip(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	detail, err := h.characterService.Equip(c.Request.Context(), userID, characterID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Unequip 卸下装备
func (h *CharacterHandler) Unequip(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	var req UnequipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	detail, err := h.characterService.Unequip(c.Request.Context(), userID, characterID, req.Slot)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UseItem 战斗外使用消耗品
func (h *CharacterHandler) UseItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	detail, err := h.characterService.UseItem(c.Request.Context(), userID, characterID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Skills 获取角色可用技能
func (h *CharacterHandler) Skills(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	characterID, ok := pathID(c)
	if !ok {
		return
	}

	skills, err := h.characterService.Skills(c.Request.Context(), userID, characterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

// pathID 解析路径中的角色ID
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.New(apperrors.ErrInvalidParam, "无效的角色ID"))
		return 0, false
	}
	return uint(id), true
}

// RenameCharacterRequest 重命名角色请求
type RenameCharacterRequest struct {
	Name string `json:"name" binding:"required,min=2,max=20"`
}

// AssignStatRequest 分配属性点请求
type AssignStatRequest struct {
	Stat string `json:"stat" binding:"required"`
}

// ItemRequest 物品操作请求
type ItemRequest struct {
	ItemID uint `json:"item_id" binding:"required"`
}

// UnequipRequest 卸下装备请求
type UnequipRequest struct {
	Slot string `json:"slot" binding:"required"`
}
