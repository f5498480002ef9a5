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

// combatService 战斗服务实现
// 会话存在内存注册表中，战斗结束时统一结算并写回数据库
type combatService struct {
	db            *gorm.DB
	characterRepo repository.CharacterRepository
	itemRepo      repository.ItemRepository
	monsterRepo   repository.MonsterRepository
	skillRepo     repository.SkillRepository
	recordRepo    repository.CombatRecordRepository
	registry      combat.Registry
	engine        *combat.Engine
	rng           combat.RandomGenerator
	config        *Config
	log           *zap.Logger
}

// NewCombatService 创建战斗服务
func NewCombatService(
	db *gorm.DB,
	characterRepo repository.CharacterRepository,
	itemRepo repository.ItemRepository,
	monsterRepo repository.MonsterRepository,
	skillRepo repository.SkillRepository,
	recordRepo repository.CombatRecordRepository,
	registry combat.Registry,
	engine *combat.Engine,
	rng combat.RandomGenerator,
	config *Config,
	log *zap.Logger,
) CombatService {
	return &combatService{
		db:            db,
		characterRepo: characterRepo,
		itemRepo:      itemRepo,
		monsterRepo:   monsterRepo,
		skillRepo:     skillRepo,
		recordRepo:    recordRepo,
		registry:      registry,
		engine:        engine,
		rng:           rng,
		config:        config,
		log:           log,
	}
}

// Start 发起战斗
func (s *combatService) Start(ctx context.Context, userID, characterID uint, req *StartCombatRequest) (*combat.View, error) {
	character, err := s.ownedCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	monster, err := s.pickMonster(ctx, req)
	if err != nil {
		return nil, err
	}

	weaponBonus, err := s.weaponBonus(ctx, character)
	if err != nil {
		return nil, err
	}

	session := combat.NewSession(character, weaponBonus, monster, s.rng)
	if err := s.registry.Start(characterID, session); err != nil {
		return nil, mapCombatError(err)
	}

	_ = s.characterRepo.UpdateLastActive(ctx, characterID)

	s.log.Info("Combat started",
		zap.String("sessionID", session.ID),
		zap.Uint("characterID", characterID),
		zap.Uint("monsterID", monster.ID),
		zap.String("monster", monster.Name))

	view := session.View()
	return &view, nil
}

// pickMonster 解析出战怪物：优先按ID查找，否则在区域内随机挑选一只活跃怪物
func (s *combatService) pickMonster(ctx context.Context, req *StartCombatRequest) (*models.Monster, error) {
	if req.MonsterID > 0 {
		monster, err := s.monsterRepo.FindByID(ctx, req.MonsterID)
		if err != nil || !monster.IsActive {
			return nil, apperrors.New(apperrors.ErrMonsterNotFound)
		}
		return monster, nil
	}

	if req.ZoneID == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "需要指定monster_id或zone_id")
	}

	monsters, err := s.monsterRepo.FindByZone(ctx, req.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("查询区域怪物失败: %w", err)
	}
	if len(monsters) == 0 {
		return nil, apperrors.New(apperrors.ErrMonsterNotFound)
	}
	return monsters[s.rng.NextInt(0, len(monsters))], nil
}

// Action 执行战斗动作
func (s *combatService) Action(ctx context.Context, userID, characterID uint, req *CombatActionRequest) (*CombatActionResponse, error) {
	if _, err := s.ownedCharacter(ctx, userID, characterID); err != nil {
		return nil, err
	}

	session, err := s.registry.Get(characterID)
	if err != nil {
		return nil, mapCombatError(err)
	}

	switch req.Action {
	case ActionAttack:
		err = session.Attack()
	case ActionSkill:
		err = s.actSkill(ctx, session, req.SkillID)
	case ActionItem:
		err = s.actItem(ctx, session, characterID, req.ItemID)
	case ActionFlee:
		err = session.Flee()
	default:
		return nil, apperrors.New(apperrors.ErrInvalidParam, "未知的战斗动作: "+req.Action)
	}
	if err != nil {
		return nil, mapCombatError(err)
	}

	session.Touch()
	_ = s.characterRepo.UpdateLastActive(ctx, characterID)

	response := &CombatActionResponse{Combat: session.View()}
	if session.CurrentStatus().Terminal() {
		if err := s.settle(ctx, characterID, session, response); err != nil {
			return nil, err
		}
	}
	return response, nil
}

// Current 获取进行中的战斗
func (s *combatService) Current(ctx context.Context, userID, characterID uint) (*combat.View, error) {
	if _, err := s.ownedCharacter(ctx, userID, characterID); err != nil {
		return nil, err
	}

	session, err := s.registry.Get(characterID)
	if err != nil {
		return nil, mapCombatError(err)
	}

	view := session.View()
	return &view, nil
}

// History 获取战斗记录
func (s *combatService) History(ctx context.Context, userID, characterID uint, page, pageSize int) ([]*models.CombatRecord, *repository.Pagination, error) {
	if _, err := s.ownedCharacter(ctx, userID, characterID); err != nil {
		return nil, nil, err
	}

	pagination := repository.NewPagination(page, pageSize)
	records, err := s.recordRepo.FindByCharacter(ctx, characterID, pagination)
	if err != nil {
		return nil, nil, fmt.Errorf("查询战斗记录失败: %w", err)
	}
	return records, pagination, nil
}

// Stats 获取战斗统计
func (s *combatService) Stats(ctx context.Context, userID, characterID uint) (*repository.CombatStats, error) {
	if _, err := s.ownedCharacter(ctx, userID, characterID); err != nil {
		return nil, err
	}
	return s.recordRepo.GetStats(ctx, characterID)
}

// actSkill 使用技能
func (s *combatService) actSkill(ctx context.Context, session *combat.Session, skillID uint) error {
	if skillID == 0 {
		return apperrors.New(apperrors.ErrInvalidParam, "缺少技能ID")
	}
	skill, err := s.skillRepo.FindByID(ctx, skillID)
	if err != nil || !skill.IsActive {
		return apperrors.New(apperrors.ErrSkillNotFound)
	}
	return session.UseSkill(skill)
}

// actItem 战斗中使用消耗品，使用成功后立即从背包扣除
func (s *combatService) actItem(ctx context.Context, session *combat.Session, characterID, itemID uint) error {
	if itemID == 0 {
		return apperrors.New(apperrors.ErrInvalidParam, "缺少物品ID")
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return apperrors.New(apperrors.ErrItemNotFound)
	}

	character, err := s.characterRepo.FindByIDWithInventory(ctx, characterID)
	if err != nil {
		return apperrors.New(apperrors.ErrCharacterNotFound)
	}

	inv := combat.NewInventory(character.Inventory, s.config.InventoryCapacity)
	if inv.IndexOf(itemID) < 0 {
		return apperrors.New(apperrors.ErrItemNotOwned)
	}

	if err := session.UseItem(item); err != nil {
		return err
	}

	if err := inv.RemoveOne(itemID); err != nil {
		return err
	}
	if err := s.characterRepo.ReplaceInventory(ctx, characterID, inv.Slots); err != nil {
		return fmt.Errorf("保存背包失败: %w", err)
	}
	return nil
}

// settle 战斗结束结算：写回角色快照，按结果发放奖励或扣除惩罚，落库战斗记录
func (s *combatService) settle(ctx context.Context, characterID uint, session *combat.Session, response *CombatActionResponse) error {
	defer func() {
		_, _ = s.registry.End(characterID)
	}()

	character, err := s.characterRepo.FindByIDWithInventory(ctx, characterID)
	if err != nil {
		return apperrors.New(apperrors.ErrCharacterNotFound)
	}

	// 战斗期间的生命魔法变化以会话快照为准
	view := response.Combat
	character.CurrentHealth = view.Character.CurrentHealth
	character.CurrentMana = view.Character.CurrentMana

	inv := combat.NewInventory(character.Inventory, s.config.InventoryCapacity)

	record := &models.CombatRecord{
		SessionID:   session.ID,
		CharacterID: characterID,
		MonsterID:   view.Monster.ID,
		Turns:       view.Turn,
		StartedAt:   view.StartTime,
		EndedAt:     time.Now(),
	}

	switch view.Status {
	case combat.StatusVictory:
		record.Result = models.CombatResultVictory
		victory, err := s.engine.ApplyVictory(character, &session.Monster)
		if err != nil {
			return fmt.Errorf("胜利结算失败: %w", err)
		}
		s.collectDrops(ctx, victory, inv, view.Monster.ID)
		record.ExperienceGained = victory.ExperienceGained
		record.GoldGained = victory.GoldGained
		record.LevelsGained = victory.LevelsGained
		if victory.Loot != nil {
			id := victory.Loot.ID
			record.LootItemID = &id
		}
		response.Victory = victory
	case combat.StatusDefeat:
		record.Result = models.CombatResultDefeat
		defeat := s.engine.ApplyDefeat(character)
		record.GoldLost = defeat.GoldLost
		response.Defeat = defeat
	case combat.StatusFled:
		record.Result = models.CombatResultFled
		s.engine.ApplyFlee(character)
	}

	if err := s.persistSettlement(ctx, character, inv, record); err != nil {
		return err
	}

	s.log.Info("Combat settled",
		zap.String("sessionID", session.ID),
		zap.Uint("characterID", characterID),
		zap.String("result", record.Result),
		zap.Int("turns", record.Turns))
	return nil
}

// collectDrops 将稀有度掉落和怪物掉落表产出放入背包，背包满则丢弃
func (s *combatService) collectDrops(ctx context.Context, victory *combat.VictoryResult, inv *combat.Inventory, monsterID uint) {
	if victory.Loot != nil {
		if err := inv.Add(victory.Loot, 1); err != nil {
			s.log.Warn("Loot discarded: inventory full", zap.Uint("itemID", victory.Loot.ID))
			victory.Loot = nil
		}
	}

	monster, err := s.monsterRepo.FindByID(ctx, monsterID)
	if err != nil || len(monster.LootTable) == 0 {
		return
	}

	drops := combat.RollLootTable(monster.LootTable, s.rng)
	for _, drop := range drops {
		item, err := s.itemRepo.FindByID(ctx, drop.ItemID)
		if err != nil {
			continue
		}
		if err := inv.Add(item, drop.Quantity); err != nil {
			s.log.Warn("Drop discarded: inventory full", zap.Uint("itemID", drop.ItemID))
			continue
		}
		victory.Drops = append(victory.Drops, drop)
	}
}

// persistSettlement 在一个事务内保存角色、背包和战斗记录
func (s *combatService) persistSettlement(ctx context.Context, character *models.Character, inv *combat.Inventory, record *models.CombatRecord) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	charRepoTx := s.characterRepo.WithTx(tx).(repository.CharacterRepository)
	if err := charRepoTx.Update(ctx, character); err != nil {
		tx.Rollback()
		return fmt.Errorf("保存角色失败: %w", err)
	}
	if err := charRepoTx.ReplaceInventory(ctx, character.ID, inv.Slots); err != nil {
		tx.Rollback()
		return fmt.Errorf("保存背包失败: %w", err)
	}

	recordRepoTx := s.recordRepo.WithTx(tx).(repository.CombatRecordRepository)
	if err := recordRepoTx.Create(ctx, record); err != nil {
		tx.Rollback()
		return fmt.Errorf("保存战斗记录失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// weaponBonus 读取已装备武器的攻击加成
func (s *combatService) weaponBonus(ctx context.Context, character *models.Character) (int, error) {
	weaponID, _ := character.Equipment.Get(models.SlotWeapon)
	if weaponID == nil {
		return 0, nil
	}
	weapon, err := s.itemRepo.FindByID(ctx, *weaponID)
	if err != nil {
		return 0, fmt.Errorf("加载武器失败: %w", err)
	}
	return weapon.Damage, nil
}

// ownedCharacter 加载角色并校验归属
func (s *combatService) ownedCharacter(ctx context.Context, userID, characterID uint) (*models.Character, error) {
	character, err := s.characterRepo.FindByID(ctx, characterID)
	if err != nil || character.UserID != userID {
		return nil, apperrors.New(apperrors.ErrCharacterNotFound)
	}
	return character, nil
}

// mapCombatError 将战斗会话的哨兵错误转换为带错误码的应用错误
func mapCombatError(err error) error {
	switch {
	case errors.Is(err, combat.ErrAlreadyInCombat):
		return apperrors.New(apperrors.ErrAlreadyInCombat)
	case errors.Is(err, combat.ErrSessionNotFound):
		return apperrors.New(apperrors.ErrCombatNotFound)
	case errors.Is(err, combat.ErrRegistryFull):
		return apperrors.New(apperrors.ErrRateLimitExceeded, "战斗会话数量已达上限")
	case errors.Is(err, combat.ErrCombatEnded):
		return apperrors.New(apperrors.ErrCombatEnded)
	case errors.Is(err, combat.ErrInsufficientMana):
		return apperrors.New(apperrors.ErrInsufficientMana)
	case errors.Is(err, combat.ErrNotConsumable):
		return apperrors.New(apperrors.ErrNotConsumable)
	case errors.Is(err, combat.ErrSkillLevelTooLow):
		return apperrors.New(apperrors.ErrSkillLevelTooLow)
	case errors.Is(err, combat.ErrSkillWrongClass):
		return apperrors.New(apperrors.ErrSkillWrongClass)
	case errors.Is(err, combat.ErrSkillOnCooldown):
		return apperrors.New(apperrors.ErrSkillOnCooldown)
	default:
		return err
	}
}
