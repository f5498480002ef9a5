package combat

import (
	"math"

	"github.com/wfunc/rpg-game/internal/models"
)

// 战斗数值计算
// 全部为纯函数，随机数通过注入的RandomGenerator获取

// AttackDamage 计算角色普通攻击伤害：(力量+武器加成) * [0.8, 1.2]
func AttackDamage(stats models.Stats, weaponBonus int, rng RandomGenerator) int {
	base := float64(stats.Strength + weaponBonus)
	return int(math.Floor(base * uniform(rng, 0.8, 1.2)))
}

// MonsterDamage 计算怪物攻击伤害：攻击力 * [0.8, 1.2]
func MonsterDamage(attack int, rng RandomGenerator) int {
	return int(math.Floor(float64(attack) * uniform(rng, 0.8, 1.2)))
}

// SkillDamage 计算技能伤害：(基础伤害 + 加成属性*加成系数) * [0.9, 1.1]
func SkillDamage(stats models.Stats, skill *models.Skill, rng RandomGenerator) int {
	statBonus := 0
	if value, ok := stats.Get(skill.ScalingStat); ok {
		statBonus = value
	}

	base := float64(skill.BaseDamage) + float64(statBonus)*skill.ScalingFactor
	return int(math.Floor(base * uniform(rng, 0.9, 1.1)))
}

// SkillHealing 计算技能治疗量：(基础治疗 + 感知*加成系数) * [0.9, 1.1]
func SkillHealing(stats models.Stats, skill *models.Skill, rng RandomGenerator) int {
	base := float64(skill.BaseHealing) + float64(stats.Wisdom)*skill.ScalingFactor
	return int(math.Floor(base * uniform(rng, 0.9, 1.1)))
}

// FleeChance 计算逃跑成功率：0.3 + 敏捷/100 - 怪物等级/100，截断到 [0, 1]
func FleeChance(dexterity, monsterLevel int) float64 {
	chance := 0.3 + float64(dexterity)/100 - float64(monsterLevel)/100
	if chance < 0 {
		return 0
	}
	if chance > 1 {
		return 1
	}
	return chance
}

// ExperienceReward 计算击杀经验：怪物等级 * 10
func ExperienceReward(monsterLevel int) int {
	return monsterLevel * 10
}

// GoldReward 计算击杀金币：怪物等级 * 5 * [0.8, 1.2]
func GoldReward(monsterLevel int, rng RandomGenerator) int {
	return int(math.Floor(float64(monsterLevel*5) * uniform(rng, 0.8, 1.2)))
}

// RollLootRarity 掷掉落判定并决定稀有度
// 掉落门槛为 30 + 怪物等级*2（百分比）；通过后按累积阈值决定稀有度：
// <=1% 传说、<=5% 史诗、<=20% 稀有、<=50% 优秀，其余为普通
func RollLootRarity(monsterLevel int, rng RandomGenerator) (string, bool) {
	dropChance := float64(30 + monsterLevel*2)
	if rng.Next()*100 > dropChance {
		return "", false
	}

	roll := rng.Next() * 100
	switch {
	case roll <= 1:
		return models.RarityLegendary, true
	case roll <= 5:
		return models.RarityEpic, true
	case roll <= 20:
		return models.RarityRare, true
	case roll <= 50:
		return models.RarityUncommon, true
	default:
		return models.RarityCommon, true
	}
}

// PickLoot 在同稀有度候选物品中均匀抽取一件，没有候选时返回nil
func PickLoot(items []models.Item, rng RandomGenerator) *models.Item {
	if len(items) == 0 {
		return nil
	}
	picked := items[rng.NextInt(0, len(items))]
	return &picked
}

// RollLootTable 按怪物掉落表逐条判定掉落，返回掉落条目和数量
func RollLootTable(entries []models.LootEntry, rng RandomGenerator) []LootDrop {
	var drops []LootDrop
	for _, entry := range entries {
		if rng.Next()*100 > float64(entry.Chance) {
			continue
		}

		quantity := entry.MinQuantity
		if entry.MaxQuantity > entry.MinQuantity {
			quantity = rng.NextInt(entry.MinQuantity, entry.MaxQuantity+1)
		}

		drops = append(drops, LootDrop{ItemID: entry.ItemID, Quantity: quantity})
	}
	return drops
}

// ChooseAbility 按使用率加权选择一个冷却就绪的怪物技能，没有可用技能时返回-1
func ChooseAbility(abilities []AbilityState, rng RandomGenerator) int {
	totalUseRate := 0
	for _, state := range abilities {
		if state.CooldownLeft == 0 {
			totalUseRate += state.Ability.UseRate
		}
	}
	if totalUseRate == 0 {
		return -1
	}

	roll := rng.Next() * float64(totalUseRate)
	cumulative := 0.0
	for i, state := range abilities {
		if state.CooldownLeft != 0 {
			continue
		}
		cumulative += float64(state.Ability.UseRate)
		if roll <= cumulative {
			return i
		}
	}

	// 浮点误差兜底：返回最后一个可用技能
	for i := len(abilities) - 1; i >= 0; i-- {
		if abilities[i].CooldownLeft == 0 {
			return i
		}
	}
	return -1
}
