package combat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/rpg-game/internal/models"
)

var (
	ErrCombatEnded      = errors.New("战斗已经结束")
	ErrInsufficientMana = errors.New("魔法值不足")
	ErrNotConsumable    = errors.New("该物品不能在战斗中使用")
	ErrSkillLevelTooLow = errors.New("等级不足，无法使用该技能")
	ErrSkillWrongClass  = errors.New("职业不符，无法使用该技能")
	ErrSkillOnCooldown  = errors.New("技能冷却中")
)

// Session 战斗会话
// 一个会话对应一名角色与一只怪物实例的回合制战斗，
// 角色/怪物快照在战斗期间独立变化，结算时才写回持久化记录
type Session struct {
	mu sync.Mutex

	ID          string
	CharacterID uint
	Character   CharacterSnapshot
	Monster     MonsterSnapshot
	Turn        int
	Logs        []string
	Status      Status
	StartTime   time.Time
	LastAction  time.Time

	// 角色技能冷却（技能ID -> 剩余回合）
	skillCooldowns map[uint]int

	rng RandomGenerator
}

// NewSession 创建战斗会话
func NewSession(character *models.Character, weaponBonus int, monster *models.Monster, rng RandomGenerator) *Session {
	now := time.Now()
	s := &Session{
		ID:             uuid.New().String(),
		CharacterID:    character.ID,
		Character:      NewCharacterSnapshot(character, weaponBonus),
		Monster:        NewMonsterSnapshot(monster),
		Turn:           1,
		Status:         StatusActive,
		StartTime:      now,
		LastAction:     now,
		skillCooldowns: make(map[uint]int),
		rng:            rng,
	}

	s.appendLog(fmt.Sprintf("%s 遭遇了 %s，战斗开始", s.Character.Name, s.Monster.Name))
	return s
}

// Attack 普通攻击
func (s *Session) Attack() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusActive {
		return ErrCombatEnded
	}

	damage := AttackDamage(s.Character.Stats, s.Character.WeaponBonus, s.rng)
	s.damageMonster(damage)
	s.appendLog(fmt.Sprintf("%s 对 %s 造成了 %d 点伤害", s.Character.Name, s.Monster.Name, damage))

	s.resolveMonsterTurn()
	return nil
}

// UseSkill 使用技能
func (s *Session) UseSkill(skill *models.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusActive {
		return ErrCombatEnded
	}
	if s.Character.Level < skill.RequiredLevel {
		return ErrSkillLevelTooLow
	}
	if skill.RequiredClass != models.ClassAny && skill.RequiredClass != s.Character.Class {
		return ErrSkillWrongClass
	}
	if s.skillCooldowns[skill.ID] > 0 {
		return ErrSkillOnCooldown
	}
	if s.Character.CurrentMana < skill.ManaCost {
		return ErrInsufficientMana
	}

	s.Character.CurrentMana -= skill.ManaCost
	if skill.Cooldown > 0 {
		s.skillCooldowns[skill.ID] = skill.Cooldown
	}

	switch skill.Type {
	case models.SkillTypeDamage:
		damage := SkillDamage(s.Character.Stats, skill, s.rng)
		s.damageMonster(damage)
		s.appendLog(fmt.Sprintf("%s 使用 %s，对 %s 造成了 %d 点伤害", s.Character.Name, skill.Name, s.Monster.Name, damage))
	case models.SkillTypeHeal:
		healing := SkillHealing(s.Character.Stats, skill, s.rng)
		healed := s.healCharacter(healing)
		s.appendLog(fmt.Sprintf("%s 使用 %s，恢复了 %d 点生命", s.Character.Name, skill.Name, healed))
	case models.SkillTypeBuff:
		// 增益数值效果暂未实现，保留扩展点
		s.appendLog(fmt.Sprintf("%s 使用 %s，获得了增益效果", s.Character.Name, skill.Name))
	case models.SkillTypeDebuff:
		// 减益数值效果暂未实现，保留扩展点
		s.appendLog(fmt.Sprintf("%s 使用 %s，对 %s 施加了减益效果", s.Character.Name, skill.Name, s.Monster.Name))
	default:
		s.appendLog(fmt.Sprintf("%s 使用了 %s", s.Character.Name, skill.Name))
	}

	s.resolveMonsterTurn()
	return nil
}

// UseItem 使用消耗品
// 只负责结算效果，背包扣减由调用方根据返回结果执行
func (s *Session) UseItem(item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusActive {
		return ErrCombatEnded
	}
	if item.Type != models.ItemTypeConsumable {
		return ErrNotConsumable
	}

	switch item.Effect.Kind {
	case models.EffectHeal:
		healed := s.healCharacter(item.Effect.Value)
		s.appendLog(fmt.Sprintf("%s 使用 %s，恢复了 %d 点生命", s.Character.Name, item.Name, healed))
	case models.EffectMana:
		restored := s.restoreMana(item.Effect.Value)
		s.appendLog(fmt.Sprintf("%s 使用 %s，恢复了 %d 点魔法", s.Character.Name, item.Name, restored))
	case models.EffectDamage:
		s.damageMonster(item.Effect.Value)
		s.appendLog(fmt.Sprintf("%s 使用 %s，对 %s 造成了 %d 点伤害", s.Character.Name, item.Name, s.Monster.Name, item.Effect.Value))
	default:
		s.appendLog(fmt.Sprintf("%s 使用了 %s，但没有效果", s.Character.Name, item.Name))
	}

	s.resolveMonsterTurn()
	return nil
}

// Flee 尝试逃跑
// 成功转入fled终态，怪物不再反击；失败则怪物照常攻击
func (s *Session) Flee() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusActive {
		return ErrCombatEnded
	}

	chance := FleeChance(s.Character.Stats.Dexterity, s.Monster.Level)
	if s.rng.Next() <= chance {
		s.Status = StatusFled
		s.appendLog(fmt.Sprintf("%s 成功逃离了战斗", s.Character.Name))
		return nil
	}

	s.appendLog(fmt.Sprintf("%s 逃跑失败", s.Character.Name))
	s.resolveMonsterTurn()
	return nil
}

// CurrentStatus 读取当前状态（无副作用）
func (s *Session) CurrentStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status
}

// View 生成会话只读视图
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]string, len(s.Logs))
	copy(logs, s.Logs)

	return View{
		SessionID:   s.ID,
		CharacterID: s.CharacterID,
		Turn:        s.Turn,
		Status:      s.Status,
		Character:   s.Character,
		Monster:     s.Monster,
		Logs:        logs,
		StartTime:   s.StartTime,
	}
}

// Touch 更新最后操作时间
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastAction = time.Now()
}

// IdleSince 返回最后操作时间
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAction
}

// resolveMonsterTurn 结算玩家行动后的怪物回合
// 怪物已死亡则判定胜利且不反击；角色死亡则判定失败；否则回合数+1
func (s *Session) resolveMonsterTurn() {
	s.LastAction = time.Now()

	if s.Monster.CurrentHealth <= 0 {
		s.Status = StatusVictory
		s.appendLog(fmt.Sprintf("%s 击败了 %s", s.Character.Name, s.Monster.Name))
		return
	}

	s.monsterAttack()

	if s.Character.CurrentHealth <= 0 {
		s.Status = StatusDefeat
		s.appendLog(fmt.Sprintf("%s 被 %s 击败了", s.Character.Name, s.Monster.Name))
		return
	}

	s.Turn++
	s.tickCooldowns()
}

// monsterAttack 怪物行动：优先使用冷却就绪的技能，否则普通攻击
func (s *Session) monsterAttack() {
	if index := ChooseAbility(s.Monster.Abilities, s.rng); index >= 0 {
		state := &s.Monster.Abilities[index]
		damage := MonsterDamage(s.Monster.Attack+state.Ability.Damage, s.rng)
		s.damageCharacter(damage)
		state.CooldownLeft = state.Ability.Cooldown
		s.appendLog(fmt.Sprintf("%s 使用 %s，对 %s 造成了 %d 点伤害", s.Monster.Name, state.Ability.Name, s.Character.Name, damage))
		return
	}

	damage := MonsterDamage(s.Monster.Attack, s.rng)
	s.damageCharacter(damage)
	s.appendLog(fmt.Sprintf("%s 对 %s 造成了 %d 点伤害", s.Monster.Name, s.Character.Name, damage))
}

// tickCooldowns 回合结束时递减所有冷却
func (s *Session) tickCooldowns() {
	for id, left := range s.skillCooldowns {
		if left > 0 {
			s.skillCooldowns[id] = left - 1
		}
	}
	for i := range s.Monster.Abilities {
		if s.Monster.Abilities[i].CooldownLeft > 0 {
			s.Monster.Abilities[i].CooldownLeft--
		}
	}
}

func (s *Session) damageMonster(damage int) {
	s.Monster.CurrentHealth -= damage
	if s.Monster.CurrentHealth < 0 {
		s.Monster.CurrentHealth = 0
	}
}

func (s *Session) damageCharacter(damage int) {
	s.Character.CurrentHealth -= damage
	if s.Character.CurrentHealth < 0 {
		s.Character.CurrentHealth = 0
	}
}

func (s *Session) healCharacter(amount int) int {
	before := s.Character.CurrentHealth
	s.Character.CurrentHealth += amount
	if s.Character.CurrentHealth > s.Character.MaxHealth {
		s.Character.CurrentHealth = s.Character.MaxHealth
	}
	return s.Character.CurrentHealth - before
}

func (s *Session) restoreMana(amount int) int {
	before := s.Character.CurrentMana
	s.Character.CurrentMana += amount
	if s.Character.CurrentMana > s.Character.MaxMana {
		s.Character.CurrentMana = s.Character.MaxMana
	}
	return s.Character.CurrentMana - before
}

func (s *Session) appendLog(line string) {
	s.Logs = append(s.Logs, line)
}
