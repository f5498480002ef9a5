package combat

import (
	"errors"
	"math"

	"github.com/wfunc/rpg-game/internal/models"
	"go.uber.org/zap"
)

var (
	ErrNoStatPoints = errors.New("没有可分配的属性点")
	ErrInvalidStat  = errors.New("无效的属性名称")
	ErrNotEquipable = errors.New("该物品无法装备")
	ErrLevelTooLow  = errors.New("等级不足，无法装备该物品")
	ErrWrongClass   = errors.New("职业不符，无法装备该物品")
	ErrSlotEmpty    = errors.New("该装备槽位为空")
	ErrInvalidSlot  = errors.New("无效的装备槽位")
	ErrNotUsable    = errors.New("该物品无法使用")
)

// 失败惩罚与胜利补偿的比例常数
const (
	DefeatGoldPenalty  = 0.10
	DefeatHealthRatio  = 0.30
	ExperiencePerLevel = 10
	GoldPerLevel       = 5
)

// ItemSource 按稀有度提供可掉落物品
type ItemSource interface {
	ItemsByRarity(rarity string) ([]models.Item, error)
}

// VictoryResult 战斗胜利的结算结果
type VictoryResult struct {
	ExperienceGained int          `json:"experience_gained"`
	GoldGained       int          `json:"gold_gained"`
	LevelsGained     int          `json:"levels_gained"`
	StatPointsGained int          `json:"stat_points_gained"`
	Loot             *models.Item `json:"loot,omitempty"`
	Drops            []LootDrop   `json:"drops,omitempty"`
}

// DefeatResult 战斗失败的结算结果
type DefeatResult struct {
	GoldLost      int `json:"gold_lost"`
	HealthRestore int `json:"health_restore"`
}

// Engine 角色成长引擎
// 负责战斗结算、升级、属性点分配与装备变更，
// 只修改内存中的角色对象，持久化由调用方执行
type Engine struct {
	rng    RandomGenerator
	items  ItemSource
	logger *zap.Logger
}

// NewEngine 创建成长引擎，items为nil时不产出稀有度掉落
func NewEngine(rng RandomGenerator, items ItemSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{rng: rng, items: items, logger: logger}
}

// ApplyVictory 结算胜利：经验、金币、掉落与升级
func (e *Engine) ApplyVictory(character *models.Character, monster *MonsterSnapshot) (*VictoryResult, error) {
	result := &VictoryResult{
		ExperienceGained: ExperienceReward(monster.Level),
		GoldGained:       GoldReward(monster.Level, e.rng),
	}

	character.Experience += result.ExperienceGained
	character.Gold += result.GoldGained

	result.LevelsGained = e.levelUp(character)
	result.StatPointsGained = result.LevelsGained * StatPointsPerLevel

	if e.items != nil {
		loot, err := e.rollLoot(monster.Level)
		if err != nil {
			return nil, err
		}
		result.Loot = loot
	}

	e.logger.Info("战斗胜利结算",
		zap.Uint("character_id", character.ID),
		zap.Int("experience", result.ExperienceGained),
		zap.Int("gold", result.GoldGained),
		zap.Int("levels_gained", result.LevelsGained))
	return result, nil
}

// ApplyDefeat 结算失败：扣除一成金币，生命恢复到上限的三成
func (e *Engine) ApplyDefeat(character *models.Character) *DefeatResult {
	result := &DefeatResult{
		GoldLost: int(math.Floor(float64(character.Gold) * DefeatGoldPenalty)),
	}
	character.Gold -= result.GoldLost

	maxHealth := MaxHealth(character.Stats, character.Level)
	result.HealthRestore = int(math.Floor(float64(maxHealth) * DefeatHealthRatio))
	character.CurrentHealth = result.HealthRestore
	if character.CurrentMana < 0 {
		character.CurrentMana = 0
	}

	e.logger.Info("战斗失败结算",
		zap.Uint("character_id", character.ID),
		zap.Int("gold_lost", result.GoldLost),
		zap.Int("health_restore", result.HealthRestore))
	return result
}

// ApplyFlee 结算逃跑：不奖不罚，角色保持战斗结束时的状态
func (e *Engine) ApplyFlee(character *models.Character) {
	e.logger.Info("逃跑结算",
		zap.Uint("character_id", character.ID))
}

// AssignStatPoint 分配一点未分配属性点
func (e *Engine) AssignStatPoint(character *models.Character, stat string) error {
	if character.UnassignedPoints <= 0 {
		return ErrNoStatPoints
	}
	if !character.Stats.Add(stat, 1) {
		return ErrInvalidStat
	}
	character.UnassignedPoints--

	// 体力和智力影响上限，当前值同步增长
	switch stat {
	case models.StatVitality:
		character.CurrentHealth += HealthPerVitality
	case models.StatIntelligence:
		character.CurrentMana += ManaPerIntelligence
	}
	e.clampVitals(character)
	return nil
}

// Equip 装备物品：从背包移除，原槽位装备放回背包
func (e *Engine) Equip(character *models.Character, inv *Inventory, item *models.Item) (string, error) {
	if !item.Equipable() {
		return "", ErrNotEquipable
	}
	if character.Level < item.RequiredLevel {
		return "", ErrLevelTooLow
	}
	if item.RequiredClass != models.ClassAny && item.RequiredClass != character.Class {
		return "", ErrWrongClass
	}
	if inv.IndexOf(item.ID) < 0 {
		return "", ErrItemNotInBag
	}

	slot := e.slotFor(character, item)
	previous, _ := character.Equipment.Get(slot)

	if err := inv.RemoveOne(item.ID); err != nil {
		return "", err
	}
	if previous != nil {
		if err := inv.AddOne(*previous); err != nil {
			// 放回失败则回滚取出的物品
			inv.AddOne(item.ID)
			return "", err
		}
	}

	id := item.ID
	character.Equipment.Set(slot, &id)
	return slot, nil
}

// Unequip 卸下槽位装备放回背包
func (e *Engine) Unequip(character *models.Character, inv *Inventory, slot string) (uint, error) {
	itemID, ok := character.Equipment.Get(slot)
	if !ok {
		return 0, ErrInvalidSlot
	}
	if itemID == nil {
		return 0, ErrSlotEmpty
	}
	if err := inv.AddOne(*itemID); err != nil {
		return 0, err
	}
	character.Equipment.Set(slot, nil)
	return *itemID, nil
}

// UseItem 战斗外使用消耗品
func (e *Engine) UseItem(character *models.Character, inv *Inventory, item *models.Item) (*VictoryResult, error) {
	if !item.Usable() {
		return nil, ErrNotUsable
	}
	if inv.IndexOf(item.ID) < 0 {
		return nil, ErrItemNotInBag
	}
	if err := inv.RemoveOne(item.ID); err != nil {
		return nil, err
	}

	result := &VictoryResult{}
	switch item.Effect.Kind {
	case models.EffectHeal:
		character.CurrentHealth += item.Effect.Value
	case models.EffectMana:
		character.CurrentMana += item.Effect.Value
	case models.EffectExperience:
		character.Experience += item.Effect.Value
		result.ExperienceGained = item.Effect.Value
		result.LevelsGained = e.levelUp(character)
		result.StatPointsGained = result.LevelsGained * StatPointsPerLevel
	case models.EffectStat:
		if !character.Stats.Add(item.Effect.Stat, item.Effect.Value) {
			return nil, ErrInvalidStat
		}
	}
	e.clampVitals(character)
	return result, nil
}

// EquippedBonuses 汇总已装备物品的属性加成
func EquippedBonuses(items []models.Item) models.Stats {
	var total models.Stats
	for i := range items {
		b := items[i].Bonuses
		total.Strength += b.Strength
		total.Dexterity += b.Dexterity
		total.Intelligence += b.Intelligence
		total.Vitality += b.Vitality
		total.Wisdom += b.Wisdom
		total.Charisma += b.Charisma
	}
	return total
}

// levelUp 循环升级直到经验不足，返回提升的等级数
// 升级消耗当前等级所需经验，每级奖励属性点，升级后完全恢复
func (e *Engine) levelUp(character *models.Character) int {
	levels := 0
	for {
		threshold := ExperienceToNextLevel(character.Level)
		if character.Experience < threshold {
			break
		}
		character.Experience -= threshold
		character.Level++
		character.UnassignedPoints += StatPointsPerLevel
		levels++
	}

	if levels > 0 {
		character.CurrentHealth = MaxHealth(character.Stats, character.Level)
		character.CurrentMana = MaxMana(character.Stats, character.Level)
	}
	return levels
}

// rollLoot 按怪物等级掷稀有度后从物品池中随机挑选
func (e *Engine) rollLoot(monsterLevel int) (*models.Item, error) {
	rarity, ok := RollLootRarity(monsterLevel, e.rng)
	if !ok {
		return nil, nil
	}

	pool, err := e.items.ItemsByRarity(rarity)
	if err != nil {
		return nil, err
	}
	return PickLoot(pool, e.rng), nil
}

func (e *Engine) slotFor(character *models.Character, item *models.Item) string {
	switch item.Type {
	case models.ItemTypeWeapon:
		return models.SlotWeapon
	case models.ItemTypeAccessory:
		// 优先占用空闲饰品槽，两个都占用时替换第一个
		if id, _ := character.Equipment.Get(models.SlotAccessory1); id == nil {
			return models.SlotAccessory1
		}
		if id, _ := character.Equipment.Get(models.SlotAccessory2); id == nil {
			return models.SlotAccessory2
		}
		return models.SlotAccessory1
	case models.ItemTypeArmor:
		switch item.Subtype {
		case models.SubtypeHelmet:
			return models.SlotHead
		case models.SubtypeLegs:
			return models.SlotLegs
		case models.SubtypeBoots:
			return models.SlotFeet
		case models.SubtypeGloves:
			return models.SlotHands
		case models.SubtypeShield:
			return models.SlotOffhand
		default:
			return models.SlotChest
		}
	}
	return models.SlotWeapon
}

func (e *Engine) clampVitals(character *models.Character) {
	maxHealth := MaxHealth(character.Stats, character.Level)
	maxMana := MaxMana(character.Stats, character.Level)
	if character.CurrentHealth > maxHealth {
		character.CurrentHealth = maxHealth
	}
	if character.CurrentMana > maxMana {
		character.CurrentMana = maxMana
	}
	if character.CurrentHealth < 0 {
		character.CurrentHealth = 0
	}
	if character.CurrentMana < 0 {
		character.CurrentMana = 0
	}
}
