package models

// 技能类型定义
const (
	SkillTypeDamage  = "damage"
	SkillTypeHeal    = "heal"
	SkillTypeBuff    = "buff"
	SkillTypeDebuff  = "debuff"
	SkillTypeUtility = "utility"
)

// SkillEffect 技能附加效果表
type SkillEffect struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	SkillID  uint   `gorm:"index;not null" json:"skill_id"`
	Kind     string `gorm:"size:30;not null" json:"kind"` // stun, poison, burn, *_buff, *_debuff...
	Value    int    `gorm:"default:0" json:"value"`
	Duration int    `gorm:"default:1" json:"duration"` // 回合数
	Chance   int    `gorm:"default:100" json:"chance"` // 触发概率百分比
}

// Skill 技能表
type Skill struct {
	BaseModel
	Name          string  `gorm:"size:100;not null" json:"name"`
	Description   string  `gorm:"size:500" json:"description"`
	Type          string  `gorm:"size:20;not null" json:"type"` // damage, heal, buff, debuff, utility
	ManaCost      int     `gorm:"default:0" json:"mana_cost"`
	Cooldown      int     `gorm:"default:0" json:"cooldown"` // 回合数
	RequiredLevel int     `gorm:"default:1" json:"required_level"`
	RequiredClass string  `gorm:"size:20;default:'any'" json:"required_class"`
	BaseDamage    int     `gorm:"default:0" json:"base_damage"`
	BaseHealing   int     `gorm:"default:0" json:"base_healing"`
	ScalingStat   string  `gorm:"size:20" json:"scaling_stat"` // 伤害加成读取的属性
	ScalingFactor float64 `gorm:"default:0" json:"scaling_factor"`
	IconID        string  `gorm:"size:50;default:'default_skill'" json:"icon_id"`
	IsActive      bool    `gorm:"default:true" json:"is_active"`

	Effects []SkillEffect `gorm:"foreignKey:SkillID" json:"effects,omitempty"`
}

// TableName 指定Skill表名
func (Skill) TableName() string {
	return "skills"
}

// TableName 指定SkillEffect表名
func (SkillEffect) TableName() string {
	return "skill_effects"
}
