package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/wfunc/rpg-game/internal/errors"
	"github.com/wfunc/rpg-game/internal/game/combat"
	"github.com/wfunc/rpg-game/internal/models"
	"github.com/wfunc/rpg-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// characterService 角色服务实现
type characterService struct {
	db            *gorm.DB
	characterRepo repository.CharacterRepository
	itemRepo      repository.ItemRepository
	skillRepo     repository.SkillRepository
	registry      combat.Registry
	engine        *combat.Engine
	config        *Config
	log           *zap.Logger
}

// NewCharacterService 创建角色服务
func NewCharacterService(
	db *gorm.DB,
	characterRepo repository.CharacterRepository,
	itemRepo repository.ItemRepository,
	skillRepo repository.SkillRepository,
	registry combat.Registry,
	engine *combat.Engine,
	config *Config,
	log *zap.Logger,
) CharacterService {
	return &characterService{
		db:            db,
		characterRepo: characterRepo,
		itemRepo:      itemRepo,
		skillRepo:     skillRepo,
		registry:      registry,
		engine:        engine,
		config:        config,
		log:           log,
	}
}

// Create 创建角色
func (s *characterService) Create(ctx context.Context, userID uint, req *CreateCharacterRequest) (*models.Character, error) {
	stats, ok := combat.BaseStatsForClass(req.Class)
	if !ok {
		return nil, apperrors.New(apperrors.ErrInvalidClass, req.Class)
	}

	count, err := s.characterRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询角色数量失败: %w", err)
	}
	if count >= int64(s.config.MaxCharactersPerUser) {
		return nil, apperrors.New(apperrors.ErrCharacterLimit)
	}

	character := &models.Character{
		UserID:        userID,
		Name:          req.Name,
		Race:          req.Race,
		Class:         req.Class,
		Level:         1,
		Gold:          s.config.StartingGold,
		Stats:         stats,
		CurrentHealth: combat.MaxHealth(stats, 1),
		CurrentMana:   combat.MaxMana(stats, 1),
		LastActiveAt:  time.Now(),
	}

	if err := s.characterRepo.Create(ctx, character); err != nil {
		s.log.Error("Failed to create character", zap.Error(err), zap.Uint("userID", userID))
		return nil, fmt.Errorf("创建角色失败: %w", err)
	}

	s.log.Info("Character created",
		zap.Uint("userID", userID),
		zap.Uint("characterID", character.ID),
		zap.String("name", character.Name),
		zap.String("class", character.Class))

	return character, nil
}

// List 获取用户的所有角色
func (s *characterService) List(ctx context.Context, userID uint) ([]*models.Character, error) {
	return s.characterRepo.FindByUserID(ctx, userID)
}

// Get 获取角色详情
func (s *characterService) Get(ctx context.Context, userID, characterID uint) (*CharacterDetail, error) {
	character, err := s.ownedCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, character)
}

// Rename 重命名角色
func (s *characterService) Rename(ctx context.Context, userID, characterID uint, name string) (*models.Character, error) {
	character, err := s.ownedCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	character.Name = name
	if err := s.characterRepo.Update(ctx, character); err != nil {
		return nil, fmt.Errorf("保存角色失败: %w", err)
	}
	return character, nil
}

// Delete 删除角色
func (s *characterService) Delete(ctx context.Context, userID, characterID uint) error {
	if _, err := s.ownedCharacter(ctx, userID, characterID); err != nil {
		return err
	}
	if s.inCombat(characterID) {
		return apperrors.New(apperrors.ErrAlreadyInCombat, "战斗中无法删除角色")
	}

	if err := s.characterRepo.Delete(ctx, characterID); err != nil {
		return fmt.Errorf("删除角色失败: %w", err)
	}

	s.log.Info("Character deleted", zap.Uint("userID", userID), zap.Uint("characterID", characterID))
	return nil
}

// AssignStatPoint 分配属性点
func (s *characterService) AssignStatPoint(ctx context.Context, userID, characterID uint, stat string) (*CharacterDetail, error) {
	character, err := s.ownedCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.AssignStatPoint(character, stat); err != nil {
		return nil, mapProgressionError(err)
	}

	if err := s.characterRepo.Update(ctx, character); err != nil {
		return nil, fmt.Errorf("保存角色失败: %w", err)
	}
	return s.detail(ctx, character)
}

// Equip 装备物品
func (s *characterService) Equip(ctx context.Context, userID, characterID, itemID uint) (*CharacterDetail, error) {
	if s.inCombat(characterID) {
		return nil, apperrors.New(apperrors.ErrAlreadyInCombat, "战斗中无法更换装备")
	}

	character, err := s.ownedCharacterWithInventory(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrItemNotFound)
	}

	inv := combat.NewInventory(character.Inventory, s.config.InventoryCapacity)
	slot, err := s.engine.Equip(character, inv, item)
	if err != nil {
		return nil, mapProgressionError(err)
	}

	if err := s.persistCharacter(ctx, character, inv); err != nil {
		return nil, err
	}

	s.log.Info("Item equipped",
		zap.Uint("characterID", characterID),
		zap.Uint("itemID", itemID),
		zap.String("slot", slot))

	return s.reload(ctx, characterID)
}

// Unequip 卸下装备
func (s *characterService) Unequip(ctx context.Context, userID, characterID uint, slot string) (*CharacterDetail, error) {
	if s.inCombat(characterID) {
		return nil, apperrors.New(apperrors.ErrAlreadyInCombat, "战斗中无法更换装备")
	}

	character, err := s.ownedCharacterWithInventory(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	inv := combat.NewInventory(character.Inventory, s.config.InventoryCapacity)
	itemID, err := s.engine.Unequip(character, inv, slot)
	if err != nil {
		return nil, mapProgressionError(err)
	}

	if err := s.persistCharacter(ctx, character, inv); err != nil {
		return nil, err
	}

	s.log.Info("Item unequipped",
		zap.Uint("characterID", characterID),
		zap.Uint("itemID", itemID),
		zap.String("slot", slot))

	return s.reload(ctx, characterID)
}

// UseItem 战斗外使用消耗品
func (s *characterService) UseItem(ctx context.Context, userID, characterID, itemID uint) (*CharacterDetail, error) {
	if s.inCombat(characterID) {
		return nil, apperrors.New(apperrors.ErrAlreadyInCombat, "战斗中请使用战斗动作")
	}

	character, err := s.ownedCharacterWithInventory(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrItemNotFound)
	}

	inv := combat.NewInventory(character.Inventory, s.config.InventoryCapacity)
	result, err := s.engine.UseItem(character, inv, item)
	if err != nil {
		return nil, mapProgressionError(err)
	}

	if err := s.persistCharacter(ctx, character, inv); err != nil {
		return nil, err
	}

	if result.LevelsGained > 0 {
		s.log.Info("Character leveled up from item",
			zap.Uint("characterID", characterID),
			zap.Int("levels", result.LevelsGained))
	}

	return s.reload(ctx, characterID)
}

// Skills 获取角色可用技能
func (s *characterService) Skills(ctx context.Context, userID, characterID uint) ([]*models.Skill, error) {
	character, err := s.ownedCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}
	return s.skillRepo.FindForClass(ctx, character.Class, character.Level)
}

// ownedCharacter 加载角色并校验归属，不泄露他人角色的存在性
func (s *characterService) ownedCharacter(ctx context.Context, userID, characterID uint) (*models.Character, error) {
	character, err := s.characterRepo.FindByID(ctx, characterID)
	if err != nil || character.UserID != userID {
		return nil, apperrors.New(apperrors.ErrCharacterNotFound)
	}
	return character, nil
}

// ownedCharacterWithInventory 加载角色及背包并校验归属
func (s *characterService) ownedCharacterWithInventory(ctx context.Context, userID, characterID uint) (*models.Character, error) {
	character, err := s.characterRepo.FindByIDWithInventory(ctx, characterID)
	if err != nil || character.UserID != userID {
		return nil, apperrors.New(apperrors.ErrCharacterNotFound)
	}
	return character, nil
}

// inCombat 判断角色是否有进行中的战斗
func (s *characterService) inCombat(characterID uint) bool {
	session, err := s.registry.Get(characterID)
	return err == nil && !session.CurrentStatus().Terminal()
}

// persistCharacter 在一个事务内保存角色和背包
func (s *characterService) persistCharacter(ctx context.Context, character *models.Character, inv *combat.Inventory) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	repoTx := s.characterRepo.WithTx(tx).(repository.CharacterRepository)
	if err := repoTx.Update(ctx, character); err != nil {
		tx.Rollback()
		return fmt.Errorf("保存角色失败: %w", err)
	}
	if err := repoTx.ReplaceInventory(ctx, character.ID, inv.Slots); err != nil {
		tx.Rollback()
		return fmt.Errorf("保存背包失败: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// reload 重新加载角色详情
func (s *characterService) reload(ctx context.Context, characterID uint) (*CharacterDetail, error) {
	character, err := s.characterRepo.FindByIDWithInventory(ctx, characterID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCharacterNotFound)
	}
	return s.detail(ctx, character)
}

// detail 组装角色详情：衍生属性和已装备物品
func (s *characterService) detail(ctx context.Context, character *models.Character) (*CharacterDetail, error) {
	detail := &CharacterDetail{
		Character:        character,
		MaxHealth:        combat.MaxHealth(character.Stats, character.Level),
		MaxMana:          combat.MaxMana(character.Stats, character.Level),
		ExperienceToNext: combat.ExperienceToNextLevel(character.Level),
	}

	var equippedIDs []uint
	slotByItem := make(map[uint][]string)
	for _, slot := range models.EquipmentSlots {
		if id, _ := character.Equipment.Get(slot); id != nil {
			equippedIDs = append(equippedIDs, *id)
			slotByItem[*id] = append(slotByItem[*id], slot)
		}
	}
	if len(equippedIDs) == 0 {
		return detail, nil
	}

	items, err := s.itemRepo.FindByIDs(ctx, equippedIDs)
	if err != nil {
		return nil, fmt.Errorf("加载装备失败: %w", err)
	}

	detail.EquippedItems = make(map[string]*models.Item)
	for i := range items {
		for _, slot := range slotByItem[items[i].ID] {
			detail.EquippedItems[slot] = &items[i]
		}
	}
	detail.EquipmentBonuses = combat.EquippedBonuses(items)
	return detail, nil
}

// mapProgressionError 将成长引擎的哨兵错误转换为带错误码的应用错误
func mapProgressionError(err error) error {
	switch {
	case errors.Is(err, combat.ErrNoStatPoints):
		return apperrors.New(apperrors.ErrNoStatPoints)
	case errors.Is(err, combat.ErrInvalidStat):
		return apperrors.New(apperrors.ErrInvalidStat)
	case errors.Is(err, combat.ErrNotEquipable):
		return apperrors.New(apperrors.ErrNotEquipable)
	case errors.Is(err, combat.ErrLevelTooLow):
		return apperrors.New(apperrors.ErrLevelTooLow)
	case errors.Is(err, combat.ErrWrongClass):
		return apperrors.New(apperrors.ErrWrongClass)
	case errors.Is(err, combat.ErrSlotEmpty):
		return apperrors.New(apperrors.ErrSlotEmpty)
	case errors.Is(err, combat.ErrInvalidSlot):
		return apperrors.New(apperrors.ErrInvalidSlot)
	case errors.Is(err, combat.ErrItemNotInBag):
		return apperrors.New(apperrors.ErrItemNotOwned)
	case errors.Is(err, combat.ErrInventoryFull):
		return apperrors.New(apperrors.ErrInventoryFull)
	case errors.Is(err, combat.ErrNotUsable):
		return apperrors.New(apperrors.ErrInvalidParam, "该物品无法使用")
	default:
		return err
	}
}
