package models

// 物品类型定义
const (
	ItemTypeWeapon     = "weapon"
	ItemTypeArmor      = "armor"
	ItemTypeAccessory  = "accessory"
	ItemTypeConsumable = "consumable"
	ItemTypeMaterial   = "material"
	ItemTypeQuest      = "quest"
	ItemTypeJunk       = "junk"
)

// 护甲子类型定义（决定装备槽位）
const (
	SubtypeHelmet = "helmet"
	SubtypeChest  = "chest"
	SubtypeLegs   = "legs"
	SubtypeBoots  = "boots"
	SubtypeGloves = "gloves"
	SubtypeShield = "shield"
)

// 稀有度定义（有序，决定掉落概率和展示）
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
	RarityMythic    = "mythic"
)

// RarityOrder 稀有度排序权重（值越大越稀有）
var RarityOrder = map[string]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
	RarityMythic:    5,
}

// 消耗品效果类型定义
const (
	EffectHeal       = "heal"
	EffectMana       = "mana"
	EffectDamage     = "damage"
	EffectExperience = "experience"
	EffectStat       = "stat"
)

// ItemEffect 消耗品效果（结构化描述，数据录入时确定，不在运行时解析文本）
type ItemEffect struct {
	Kind  string `gorm:"size:20" json:"kind"`           // heal, mana, damage, experience, stat
	Value int    `gorm:"default:0" json:"value"`        // 效果数值
	Stat  string `gorm:"size:20" json:"stat,omitempty"` // kind=stat时的目标属性
}

// Item 物品表
type Item struct {
	BaseModel
	Name          string     `gorm:"size:100;not null" json:"name"`
	Description   string     `gorm:"size:500" json:"description"`
	Type          string     `gorm:"size:20;not null;index" json:"type"`
	Subtype       string     `gorm:"size:20" json:"subtype,omitempty"` // weapon/armor必填
	Rarity        string     `gorm:"size:20;not null;index;default:'common'" json:"rarity"`
	Damage        int        `gorm:"default:0" json:"damage"` // 武器攻击加成
	Bonuses       Stats      `gorm:"embedded;embeddedPrefix:bonus_" json:"bonuses"`
	Effect        ItemEffect `gorm:"embedded;embeddedPrefix:effect_" json:"effect"`
	RequiredLevel int        `gorm:"default:1" json:"required_level"`
	RequiredClass string     `gorm:"size:20;default:'any'" json:"required_class"`
	Value         int        `gorm:"default:0" json:"value"` // 买卖基准价
	Stackable     bool       `gorm:"default:false" json:"stackable"`
	MaxStack      int        `gorm:"default:99" json:"max_stack"`
	SpriteID      string     `gorm:"size:50;default:'default'" json:"sprite_id"`
}

// Equipable 判断物品是否可装备
func (i *Item) Equipable() bool {
	return i.Type == ItemTypeWeapon || i.Type == ItemTypeArmor || i.Type == ItemTypeAccessory
}

// Usable 判断物品是否可使用
func (i *Item) Usable() bool {
	return i.Type == ItemTypeConsumable
}

// TableName 指定Item表名
func (Item) TableName() string {
	return "items"
}
