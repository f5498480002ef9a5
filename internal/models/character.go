package models

import (
	"time"
)

// 职业定义
const (
	ClassWarrior = "warrior"
	ClassMage    = "mage"
	ClassRogue   = "rogue"
	ClassCleric  = "cleric"
	ClassAny     = "any" // 装备/技能无职业限制
)

// 属性名定义
const (
	StatStrength     = "strength"
	StatDexterity    = "dexterity"
	StatIntelligence = "intelligence"
	StatVitality     = "vitality"
	StatWisdom       = "wisdom"
	StatCharisma     = "charisma"
)

// 装备槽位定义
const (
	SlotHead       = "head"
	SlotChest      = "chest"
	SlotLegs       = "legs"
	SlotFeet       = "feet"
	SlotHands      = "hands"
	SlotWeapon     = "weapon"
	SlotOffhand    = "offhand"
	SlotAccessory1 = "accessory1"
	SlotAccessory2 = "accessory2"
)

// EquipmentSlots 所有装备槽位（顺序固定，用于展示）
var EquipmentSlots = []string{
	SlotHead, SlotChest, SlotLegs, SlotFeet, SlotHands,
	SlotWeapon, SlotOffhand, SlotAccessory1, SlotAccessory2,
}

// Stats 角色六维属性
type Stats struct {
	Strength     int `gorm:"default:10" json:"strength"`
	Dexterity    int `gorm:"default:10" json:"dexterity"`
	Intelligence int `gorm:"default:10" json:"intelligence"`
	Vitality     int `gorm:"default:10" json:"vitality"`
	Wisdom       int `gorm:"default:10" json:"wisdom"`
	Charisma     int `gorm:"default:10" json:"charisma"`
}

// Get 按属性名读取属性值，属性名非法时第二个返回值为false
func (s *Stats) Get(name string) (int, bool) {
	switch name {
	case StatStrength:
		return s.Strength, true
	case StatDexterity:
		return s.Dexterity, true
	case StatIntelligence:
		return s.Intelligence, true
	case StatVitality:
		return s.Vitality, true
	case StatWisdom:
		return s.Wisdom, true
	case StatCharisma:
		return s.Charisma, true
	default:
		return 0, false
	}
}

// Add 按属性名增加属性值，属性名非法时返回false
func (s *Stats) Add(name string, delta int) bool {
	switch name {
	case StatStrength:
		s.Strength += delta
	case StatDexterity:
		s.Dexterity += delta
	case StatIntelligence:
		s.Intelligence += delta
	case StatVitality:
		s.Vitality += delta
	case StatWisdom:
		s.Wisdom += delta
	case StatCharisma:
		s.Charisma += delta
	default:
		return false
	}
	return true
}

// Equipment 装备槽位（存物品ID，空槽为NULL）
type Equipment struct {
	Head       *uint `json:"head"`
	Chest      *uint `json:"chest"`
	Legs       *uint `json:"legs"`
	Feet       *uint `json:"feet"`
	Hands      *uint `json:"hands"`
	Weapon     *uint `json:"weapon"`
	Offhand    *uint `json:"offhand"`
	Accessory1 *uint `json:"accessory1"`
	Accessory2 *uint `json:"accessory2"`
}

// Get 按槽位名读取装备的物品ID
func (e *Equipment) Get(slot string) (*uint, bool) {
	switch slot {
	case SlotHead:
		return e.Head, true
	case SlotChest:
		return e.Chest, true
	case SlotLegs:
		return e.Legs, true
	case SlotFeet:
		return e.Feet, true
	case SlotHands:
		return e.Hands, true
	case SlotWeapon:
		return e.Weapon, true
	case SlotOffhand:
		return e.Offhand, true
	case SlotAccessory1:
		return e.Accessory1, true
	case SlotAccessory2:
		return e.Accessory2, true
	default:
		return nil, false
	}
}

// Set 按槽位名设置装备的物品ID（nil表示清空槽位）
func (e *Equipment) Set(slot string, itemID *uint) bool {
	switch slot {
	case SlotHead:
		e.Head = itemID
	case SlotChest:
		e.Chest = itemID
	case SlotLegs:
		e.Legs = itemID
	case SlotFeet:
		e.Feet = itemID
	case SlotHands:
		e.Hands = itemID
	case SlotWeapon:
		e.Weapon = itemID
	case SlotOffhand:
		e.Offhand = itemID
	case SlotAccessory1:
		e.Accessory1 = itemID
	case SlotAccessory2:
		e.Accessory2 = itemID
	default:
		return false
	}
	return true
}

// Character 角色表
type Character struct {
	BaseModel
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	Name             string    `gorm:"size:20;not null" json:"name"`
	Race             string    `gorm:"size:20;not null" json:"race"`
	Class            string    `gorm:"size:20;not null" json:"class"` // warrior, mage, rogue, cleric
	Level            int       `gorm:"default:1" json:"level"`
	Experience       int       `gorm:"default:0" json:"experience"`
	Gold             int       `gorm:"default:100" json:"gold"`
	Stats            Stats     `gorm:"embedded" json:"stats"`
	CurrentHealth    int       `json:"current_health"`
	CurrentMana      int       `json:"current_mana"`
	UnassignedPoints int       `gorm:"default:0" json:"unassigned_points"`
	Equipment        Equipment `gorm:"embedded;embeddedPrefix:eq_" json:"equipment"`
	ZoneID           *uint     `gorm:"index" json:"zone_id,omitempty"`
	LastActiveAt     time.Time `json:"last_active_at"`

	Inventory []InventorySlot `gorm:"foreignKey:CharacterID" json:"inventory,omitempty"`
}

// InventorySlot 背包格子表（有序，受容量限制）
type InventorySlot struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	CharacterID uint `gorm:"index;not null" json:"character_id"`
	SlotIndex   int  `gorm:"not null" json:"slot_index"`
	ItemID      uint `gorm:"not null" json:"item_id"`
	Quantity    int  `gorm:"default:1" json:"quantity"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// TableName 指定Character表名
func (Character) TableName() string {
	return "characters"
}

// TableName 指定InventorySlot表名
func (InventorySlot) TableName() string {
	return "inventory_slots"
}
