package combat

import (
	"time"

	"github.com/wfunc/rpg-game/internal/models"
)

// Status 战斗状态枚举
type Status string

const (
	StatusActive  Status = "active"  // 战斗进行中
	StatusVictory Status = "victory" // 胜利（终态）
	StatusDefeat  Status = "defeat"  // 失败（终态）
	StatusFled    Status = "fled"    // 逃跑（终态）
)

// Terminal 判断是否为终态（终态不可再变更）
func (s Status) Terminal() bool {
	return s == StatusVictory || s == StatusDefeat || s == StatusFled
}

// CharacterSnapshot 角色战斗快照（战斗期间独立于持久化记录变化）
type CharacterSnapshot struct {
	ID            uint         `json:"id"`
	Name          string       `json:"name"`
	Class         string       `json:"class"`
	Level         int          `json:"level"`
	Stats         models.Stats `json:"stats"`
	CurrentHealth int          `json:"current_health"`
	MaxHealth     int          `json:"max_health"`
	CurrentMana   int          `json:"current_mana"`
	MaxMana       int          `json:"max_mana"`
	WeaponBonus   int          `json:"weapon_bonus"` // 已装备武器的攻击加成
}

// AbilityState 怪物技能及其冷却状态
type AbilityState struct {
	Ability      models.MonsterAbility `json:"ability"`
	CooldownLeft int                   `json:"cooldown_left"` // 剩余冷却回合，0表示可用
}

// MonsterSnapshot 怪物战斗实例（复制模板数值，战斗中可变）
type MonsterSnapshot struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	Level         int            `json:"level"`
	CurrentHealth int            `json:"current_health"`
	MaxHealth     int            `json:"max_health"`
	Attack        int            `json:"attack"`
	Defense       int            `json:"defense"`
	Speed         int            `json:"speed"`
	Abilities     []AbilityState `json:"abilities,omitempty"`
}

// LootDrop 掉落表产出
type LootDrop struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

// View 战斗会话视图（API层返回给客户端的只读快照）
type View struct {
	SessionID   string            `json:"session_id"`
	CharacterID uint              `json:"character_id"`
	Turn        int               `json:"turn"`
	Status      Status            `json:"status"`
	Character   CharacterSnapshot `json:"character"`
	Monster     MonsterSnapshot   `json:"monster"`
	Logs        []string          `json:"logs"`
	StartTime   time.Time         `json:"start_time"`
}

// NewCharacterSnapshot 从角色记录创建战斗快照
func NewCharacterSnapshot(c *models.Character, weaponBonus int) CharacterSnapshot {
	return CharacterSnapshot{
		ID:            c.ID,
		Name:          c.Name,
		Class:         c.Class,
		Level:         c.Level,
		Stats:         c.Stats,
		CurrentHealth: c.CurrentHealth,
		MaxHealth:     MaxHealth(c.Stats, c.Level),
		CurrentMana:   c.CurrentMana,
		MaxMana:       MaxMana(c.Stats, c.Level),
		WeaponBonus:   weaponBonus,
	}
}

// NewMonsterSnapshot 从怪物模板创建战斗实例
func NewMonsterSnapshot(m *models.Monster) MonsterSnapshot {
	snapshot := MonsterSnapshot{
		ID:            m.ID,
		Name:          m.Name,
		Level:         m.Level,
		CurrentHealth: m.Stats.Health,
		MaxHealth:     m.Stats.Health,
		Attack:        m.Stats.Attack,
		Defense:       m.Stats.Defense,
		Speed:         m.Stats.Speed,
	}

	for _, ability := range m.Abilities {
		snapshot.Abilities = append(snapshot.Abilities, AbilityState{Ability: ability})
	}

	return snapshot
}
