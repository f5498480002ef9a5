package models

import (
	"time"
)

// 战斗结果定义
const (
	CombatResultVictory = "victory"
	CombatResultDefeat  = "defeat"
	CombatResultFled    = "fled"
)

// CombatRecord 战斗结算记录表
type CombatRecord struct {
	BaseModel
	SessionID        string    `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	CharacterID      uint      `gorm:"index;not null" json:"character_id"`
	MonsterID        uint      `gorm:"index;not null" json:"monster_id"`
	Result           string    `gorm:"size:20;not null" json:"result"` // victory, defeat, fled
	Turns            int       `gorm:"default:0" json:"turns"`
	ExperienceGained int       `gorm:"default:0" json:"experience_gained"`
	GoldGained       int       `gorm:"default:0" json:"gold_gained"`
	GoldLost         int       `gorm:"default:0" json:"gold_lost"`
	LevelsGained     int       `gorm:"default:0" json:"levels_gained"`
	LootItemID       *uint     `json:"loot_item_id,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`
}

// TableName 指定CombatRecord表名
func (CombatRecord) TableName() string {
	return "combat_records"
}
