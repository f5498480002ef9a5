package combat

import (
	"math"

	"github.com/wfunc/rpg-game/internal/models"
)

// 属性成长常量
// 生命/魔法上限统一采用角色模型公式：体力*10+等级*5、智力*5+等级*3
const (
	HealthPerVitality     = 10 // 每点体力提供的生命上限
	HealthPerLevel        = 5  // 每级提供的生命上限
	ManaPerIntelligence   = 5  // 每点智力提供的魔法上限
	ManaPerLevel          = 3  // 每级提供的魔法上限
	StatPointsPerLevel    = 5  // 每级奖励的属性点
	BaseExperienceToLevel = 100
	ExperienceGrowthRate  = 1.5
)

// MaxHealth 计算生命上限
func MaxHealth(stats models.Stats, level int) int {
	return stats.Vitality*HealthPerVitality + level*HealthPerLevel
}

// MaxMana 计算魔法上限
func MaxMana(stats models.Stats, level int) int {
	return stats.Intelligence*ManaPerIntelligence + level*ManaPerLevel
}

// ExperienceToNextLevel 计算升到下一级所需经验
func ExperienceToNextLevel(level int) int {
	return int(math.Floor(BaseExperienceToLevel * math.Pow(ExperienceGrowthRate, float64(level-1))))
}

// BaseStatsForClass 按职业生成新角色的初始属性
func BaseStatsForClass(class string) (models.Stats, bool) {
	stats := models.Stats{
		Strength:     10,
		Dexterity:    10,
		Intelligence: 10,
		Vitality:     10,
		Wisdom:       10,
		Charisma:     10,
	}

	switch class {
	case models.ClassWarrior:
		stats.Strength += 5
		stats.Vitality += 3
	case models.ClassMage:
		stats.Intelligence += 5
		stats.Wisdom += 3
	case models.ClassRogue:
		stats.Dexterity += 5
		stats.Charisma += 3
	case models.ClassCleric:
		stats.Wisdom += 5
		stats.Vitality += 3
	default:
		return stats, false
	}

	return stats, true
}
