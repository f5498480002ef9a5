package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/rpg-game/internal/models"
)

func newTestCharacter(class string) *models.Character {
	stats, _ := BaseStatsForClass(class)
	c := &models.Character{
		Name:  "测试勇者",
		Class: class,
		Level: 1,
		Gold:  100,
		Stats: stats,
	}
	c.ID = 1
	c.CurrentHealth = MaxHealth(stats, 1)
	c.CurrentMana = MaxMana(stats, 1)
	return c
}

func newTestMonster(level, health, attack int) *models.Monster {
	m := &models.Monster{
		Name:  "史莱姆",
		Level: level,
		Stats: models.MonsterStats{Health: health, Attack: attack},
	}
	m.ID = 10
	return m
}

func TestSessionAttackVictory(t *testing.T) {
	// 战士力量15，固定倍率1.0下每次攻击15点，两刀击杀30血怪物
	character := newTestCharacter(models.ClassWarrior)
	monster := newTestMonster(1, 30, 5)
	rng := &FixedRandomGenerator{Value: 0.5}
	session := NewSession(character, 0, monster, rng)

	require.NoError(t, session.Attack())
	assert.Equal(t, StatusActive, session.Status)
	assert.Equal(t, 15, session.Monster.CurrentHealth)
	assert.Equal(t, 2, session.Turn)
	// 怪物反击5点
	assert.Equal(t, session.Character.MaxHealth-5, session.Character.CurrentHealth)

	require.NoError(t, session.Attack())
	assert.Equal(t, StatusVictory, session.Status)
	assert.Equal(t, 0, session.Monster.CurrentHealth)
	// 胜利回合怪物不反击，回合数不再累加
	assert.Equal(t, session.Character.MaxHealth-5, session.Character.CurrentHealth)
	assert.Equal(t, 2, session.Turn)

	// 终态后拒绝任何行动
	assert.ErrorIs(t, session.Attack(), ErrCombatEnded)
	assert.ErrorIs(t, session.Flee(), ErrCombatEnded)
}

func TestSessionDefeat(t *testing.T) {
	character := newTestCharacter(models.ClassWarrior)
	character.CurrentHealth = 5
	monster := newTestMonster(5, 1000, 100)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	require.NoError(t, session.Attack())
	assert.Equal(t, StatusDefeat, session.Status)
	assert.Equal(t, 0, session.Character.CurrentHealth)
	assert.Equal(t, 1, session.Turn)
}

func TestSessionFleeSuccess(t *testing.T) {
	// 盗贼敏捷15：逃跑率 0.3+0.15-0.01=0.44，掷0.4成功
	character := newTestCharacter(models.ClassRogue)
	monster := newTestMonster(1, 100, 10)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.4})

	require.NoError(t, session.Flee())
	assert.Equal(t, StatusFled, session.Status)
	// 逃跑成功怪物不反击
	assert.Equal(t, session.Character.MaxHealth, session.Character.CurrentHealth)
}

func TestSessionFleeFailure(t *testing.T) {
	// 战士敏捷10对20级怪物：逃跑率 0.3+0.1-0.2=0.2，掷0.5失败
	character := newTestCharacter(models.ClassWarrior)
	monster := newTestMonster(20, 100, 10)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	require.NoError(t, session.Flee())
	assert.Equal(t, StatusActive, session.Status)
	// 逃跑失败怪物照常反击
	assert.Equal(t, session.Character.MaxHealth-10, session.Character.CurrentHealth)
	assert.Equal(t, 2, session.Turn)
}

func TestSessionUseSkill(t *testing.T) {
	character := newTestCharacter(models.ClassMage)
	monster := newTestMonster(1, 100, 5)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	fireball := &models.Skill{
		Name:          "火球术",
		Type:          models.SkillTypeDamage,
		ManaCost:      10,
		Cooldown:      2,
		RequiredLevel: 1,
		RequiredClass: models.ClassMage,
		BaseDamage:    10,
		ScalingStat:   models.StatIntelligence,
		ScalingFactor: 1.0,
	}
	fireball.ID = 1

	// 法师智力15：伤害 10+15=25
	require.NoError(t, session.UseSkill(fireball))
	assert.Equal(t, 75, session.Monster.CurrentHealth)
	assert.Equal(t, session.Character.MaxMana-10, session.Character.CurrentMana)

	// 冷却2回合，回合结束递减后剩1
	assert.ErrorIs(t, session.UseSkill(fireball), ErrSkillOnCooldown)

	require.NoError(t, session.Attack())
	require.NoError(t, session.UseSkill(fireball))
	assert.Equal(t, session.Character.MaxMana-20, session.Character.CurrentMana)
}

func TestSessionUseSkillValidation(t *testing.T) {
	character := newTestCharacter(models.ClassMage)
	monster := newTestMonster(1, 100, 5)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	tooHigh := &models.Skill{Name: "陨石", Type: models.SkillTypeDamage, RequiredLevel: 10, RequiredClass: models.ClassAny}
	tooHigh.ID = 2
	assert.ErrorIs(t, session.UseSkill(tooHigh), ErrSkillLevelTooLow)

	wrongClass := &models.Skill{Name: "盾击", Type: models.SkillTypeDamage, RequiredLevel: 1, RequiredClass: models.ClassWarrior}
	wrongClass.ID = 3
	assert.ErrorIs(t, session.UseSkill(wrongClass), ErrSkillWrongClass)

	expensive := &models.Skill{Name: "奥术洪流", Type: models.SkillTypeDamage, RequiredLevel: 1, RequiredClass: models.ClassAny, ManaCost: 9999}
	expensive.ID = 4
	assert.ErrorIs(t, session.UseSkill(expensive), ErrInsufficientMana)

	// 校验失败不消耗回合
	assert.Equal(t, 1, session.Turn)
	assert.Equal(t, session.Character.MaxHealth, session.Character.CurrentHealth)
}

func TestSessionHealSkill(t *testing.T) {
	character := newTestCharacter(models.ClassCleric)
	character.CurrentHealth = 50
	monster := newTestMonster(1, 100, 5)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	heal := &models.Skill{
		Name:          "治疗术",
		Type:          models.SkillTypeHeal,
		ManaCost:      8,
		RequiredLevel: 1,
		RequiredClass: models.ClassCleric,
		BaseHealing:   20,
		ScalingFactor: 1.0,
	}
	heal.ID = 5

	// 牧师感知15：治疗 20+15=35，随后怪物反击5
	require.NoError(t, session.UseSkill(heal))
	assert.Equal(t, 80, session.Character.CurrentHealth)
}

func TestSessionUseItem(t *testing.T) {
	character := newTestCharacter(models.ClassWarrior)
	character.CurrentHealth = 50
	monster := newTestMonster(1, 100, 5)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	potion := &models.Item{
		Name:   "生命药水",
		Type:   models.ItemTypeConsumable,
		Effect: models.ItemEffect{Kind: models.EffectHeal, Value: 30},
	}
	require.NoError(t, session.UseItem(potion))
	// 回复30后怪物反击5
	assert.Equal(t, 75, session.Character.CurrentHealth)

	sword := &models.Item{Name: "铁剑", Type: models.ItemTypeWeapon}
	assert.ErrorIs(t, session.UseItem(sword), ErrNotConsumable)
}

func TestSessionHealClampedToMax(t *testing.T) {
	character := newTestCharacter(models.ClassWarrior)
	character.CurrentHealth = character.CurrentHealth - 5
	monster := newTestMonster(1, 100, 0)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	potion := &models.Item{
		Name:   "特级生命药水",
		Type:   models.ItemTypeConsumable,
		Effect: models.ItemEffect{Kind: models.EffectHeal, Value: 9999},
	}
	require.NoError(t, session.UseItem(potion))
	assert.Equal(t, session.Character.MaxHealth, session.Character.CurrentHealth)
}

func TestSessionMonsterAbility(t *testing.T) {
	character := newTestCharacter(models.ClassWarrior)
	monster := newTestMonster(1, 1000, 10)
	monster.Abilities = []models.MonsterAbility{
		{Name: "毒牙", Damage: 10, Cooldown: 2, UseRate: 100},
	}
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	// 怪物使用技能：(10+10)*1.0=20
	require.NoError(t, session.Attack())
	assert.Equal(t, session.Character.MaxHealth-20, session.Character.CurrentHealth)

	// 技能冷却中，回落到普通攻击10点
	require.NoError(t, session.Attack())
	assert.Equal(t, session.Character.MaxHealth-30, session.Character.CurrentHealth)
}

func TestSessionView(t *testing.T) {
	character := newTestCharacter(models.ClassWarrior)
	monster := newTestMonster(1, 30, 5)
	session := NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})

	view := session.View()
	assert.Equal(t, session.ID, view.SessionID)
	assert.Equal(t, uint(1), view.CharacterID)
	assert.Equal(t, 1, view.Turn)
	assert.Equal(t, StatusActive, view.Status)
	assert.Len(t, view.Logs, 1)
	assert.Contains(t, view.Logs[0], "战斗开始")

	// 视图是副本，修改不影响会话
	view.Logs[0] = "篡改"
	assert.Contains(t, session.View().Logs[0], "战斗开始")
}
