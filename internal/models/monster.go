package models

// 怪物种类定义
const (
	MonsterTypeBeast     = "beast"
	MonsterTypeHumanoid  = "humanoid"
	MonsterTypeUndead    = "undead"
	MonsterTypeElemental = "elemental"
	MonsterTypeDemon     = "demon"
	MonsterTypeConstruct = "construct"
	MonsterTypeDragon    = "dragon"
	MonsterTypePlant     = "plant"
)

// MonsterStats 怪物基础数值
type MonsterStats struct {
	Health     int `gorm:"not null" json:"health"`
	Attack     int `gorm:"not null" json:"attack"`
	Defense    int `gorm:"default:0" json:"defense"`
	Speed      int `gorm:"default:1" json:"speed"`
	CritRate   int `gorm:"default:5" json:"crit_rate"`     // 百分比
	CritDamage int `gorm:"default:150" json:"crit_damage"` // 百分比
}

// MonsterAbility 怪物技能表
type MonsterAbility struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	MonsterID   uint   `gorm:"index;not null" json:"monster_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Damage      int    `gorm:"default:0" json:"damage"`
	Cooldown    int    `gorm:"default:0" json:"cooldown"` // 回合数
	UseRate     int    `gorm:"default:50" json:"use_rate"` // 加权使用率 0-100
	EffectKind  string `gorm:"size:20" json:"effect_kind,omitempty"`
	EffectValue int    `gorm:"default:0" json:"effect_value"`
	Duration    int    `gorm:"default:1" json:"duration"`
	Chance      int    `gorm:"default:100" json:"chance"` // 触发概率百分比
}

// LootEntry 怪物掉落表条目
type LootEntry struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	MonsterID   uint `gorm:"index;not null" json:"monster_id"`
	ItemID      uint `gorm:"not null" json:"item_id"`
	Chance      int  `gorm:"not null" json:"chance"` // 掉落概率百分比
	MinQuantity int  `gorm:"default:1" json:"min_quantity"`
	MaxQuantity int  `gorm:"default:1" json:"max_quantity"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// Monster 怪物模板表（战斗时复制为可变实例）
type Monster struct {
	BaseModel
	Name        string       `gorm:"size:100;not null" json:"name"`
	Description string       `gorm:"size:500" json:"description"`
	Level       int          `gorm:"not null" json:"level"`
	Type        string       `gorm:"size:20;not null" json:"type"`
	Rarity      string       `gorm:"size:20;default:'common'" json:"rarity"`
	Stats       MonsterStats `gorm:"embedded" json:"stats"`
	Experience  int          `gorm:"not null" json:"experience"` // 击杀经验基准
	Gold        int          `gorm:"not null" json:"gold"`       // 击杀金币基准
	ZoneID      *uint        `gorm:"index" json:"zone_id,omitempty"`
	IsBoss      bool         `gorm:"default:false" json:"is_boss"`
	IsActive    bool         `gorm:"default:true" json:"is_active"`
	SpriteID    string       `gorm:"size:50;default:'default_monster'" json:"sprite_id"`

	Abilities []MonsterAbility `gorm:"foreignKey:MonsterID" json:"abilities,omitempty"`
	LootTable []LootEntry      `gorm:"foreignKey:MonsterID" json:"loot_table,omitempty"`
}

// TableName 指定Monster表名
func (Monster) TableName() string {
	return "monsters"
}

// TableName 指定MonsterAbility表名
func (MonsterAbility) TableName() string {
	return "monster_abilities"
}

// TableName 指定LootEntry表名
func (LootEntry) TableName() string {
	return "loot_entries"
}
