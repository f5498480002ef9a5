package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/wfunc/rpg-game/internal/errors"
	"github.com/wfunc/rpg-game/internal/game/combat"
	"github.com/wfunc/rpg-game/internal/models"
	"github.com/wfunc/rpg-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CharacterServiceSuite struct {
	suite.Suite
	db       *gorm.DB
	svc      CharacterService
	registry *combat.MemoryRegistry
	user     *models.User
	ctx      context.Context
}

func (s *CharacterServiceSuite) SetupTest() {
	s.db = repository.SetupTestDB()
	s.ctx = context.Background()

	config := DefaultConfig()
	config.MaxCharactersPerUser = 2
	config.InventoryCapacity = 5

	rng := &combat.FixedRandomGenerator{Value: 0.5}
	s.registry = combat.NewMemoryRegistry(10, zap.NewNop())
	engine := combat.NewEngine(rng, nil, zap.NewNop())

	s.svc = NewCharacterService(
		s.db,
		repository.NewCharacterRepository(s.db),
		repository.NewItemRepository(s.db),
		repository.NewSkillRepository(s.db),
		s.registry,
		engine,
		config,
		zap.NewNop(),
	)

	s.user = repository.CreateTestUser(s.T(), s.db, "alice")
}

func (s *CharacterServiceSuite) TearDownTest() {
	repository.CleanupTestDB(s.db)
}

func (s *CharacterServiceSuite) addToBag(characterID, itemID uint, quantity int) {
	var count int64
	s.db.Model(&models.InventorySlot{}).Where("character_id = ?", characterID).Count(&count)
	require.NoError(s.T(), s.db.Create(&models.InventorySlot{
		CharacterID: characterID,
		SlotIndex:   int(count),
		ItemID:      itemID,
		Quantity:    quantity,
	}).Error)
}

func (s *CharacterServiceSuite) TestCreate() {
	character, err := s.svc.Create(s.ctx, s.user.ID, &CreateCharacterRequest{
		Name:  "剑客",
		Race:  "human",
		Class: models.ClassWarrior,
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 15, character.Stats.Strength)
	assert.Equal(s.T(), 13, character.Stats.Vitality)
	assert.Equal(s.T(), 1, character.Level)
	assert.Equal(s.T(), 100, character.Gold)
	assert.Equal(s.T(), 135, character.CurrentHealth) // 13体力*10 + 1级*5
	assert.Equal(s.T(), 53, character.CurrentMana)
}

func (s *CharacterServiceSuite) TestCreateInvalidClass() {
	_, err := s.svc.Create(s.ctx, s.user.ID, &CreateCharacterRequest{
		Name:  "术士",
		Race:  "human",
		Class: "necromancer",
	})
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrInvalidClass))
}

func (s *CharacterServiceSuite) TestCreateLimit() {
	for _, name := range []string{"一号", "二号"} {
		_, err := s.svc.Create(s.ctx, s.user.ID, &CreateCharacterRequest{
			Name: name, Race: "human", Class: models.ClassMage,
		})
		require.NoError(s.T(), err)
	}

	_, err := s.svc.Create(s.ctx, s.user.ID, &CreateCharacterRequest{
		Name: "三号", Race: "human", Class: models.ClassMage,
	})
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrCharacterLimit))
}

func (s *CharacterServiceSuite) TestGetOwnership() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)
	other := repository.CreateTestUser(s.T(), s.db, "bob")

	detail, err := s.svc.Get(s.ctx, s.user.ID, character.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 105, detail.MaxHealth)
	assert.Equal(s.T(), 100, detail.ExperienceToNext)

	// 他人角色不可见
	_, err = s.svc.Get(s.ctx, other.ID, character.ID)
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrCharacterNotFound))
}

func (s *CharacterServiceSuite) TestRename() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)

	renamed, err := s.svc.Rename(s.ctx, s.user.ID, character.ID, "刀客")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "刀客", renamed.Name)

	var saved models.Character
	require.NoError(s.T(), s.db.First(&saved, character.ID).Error)
	assert.Equal(s.T(), "刀客", saved.Name)
}

func (s *CharacterServiceSuite) TestDelete() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)

	require.NoError(s.T(), s.svc.Delete(s.ctx, s.user.ID, character.ID))

	_, err := s.svc.Get(s.ctx, s.user.ID, character.ID)
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrCharacterNotFound))
}

func (s *CharacterServiceSuite) TestDeleteBlockedInCombat() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)
	monster := repository.CreateTestMonster(s.T(), s.db, "史莱姆", 1)

	session := combat.NewSession(character, 0, monster, &combat.FixedRandomGenerator{Value: 0.5})
	require.NoError(s.T(), s.registry.Start(character.ID, session))

	err := s.svc.Delete(s.ctx, s.user.ID, character.ID)
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrAlreadyInCombat))
}

func (s *CharacterServiceSuite) TestAssignStatPoint() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)
	require.NoError(s.T(), s.db.Model(character).Update("unassigned_points", 2).Error)

	detail, err := s.svc.AssignStatPoint(s.ctx, s.user.ID, character.ID, models.StatVitality)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 11, detail.Character.Stats.Vitality)
	assert.Equal(s.T(), 115, detail.Character.CurrentHealth) // 体力提升同步回复生命
	assert.Equal(s.T(), 1, detail.Character.UnassignedPoints)

	_, err = s.svc.AssignStatPoint(s.ctx, s.user.ID, character.ID, "luck")
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrInvalidStat))

	_, err = s.svc.AssignStatPoint(s.ctx, s.user.ID, character.ID, models.StatStrength)
	require.NoError(s.T(), err)

	_, err = s.svc.AssignStatPoint(s.ctx, s.user.ID, character.ID, models.StatStrength)
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrNoStatPoints))
}

func (s *CharacterServiceSuite) TestEquipAndUnequip() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)

	sword := &models.Item{
		Name:          "铁剑",
		Type:          models.ItemTypeWeapon,
		Rarity:        models.RarityCommon,
		Damage:        5,
		RequiredLevel: 1,
		RequiredClass: models.ClassAny,
	}
	require.NoError(s.T(), s.db.Create(sword).Error)
	s.addToBag(character.ID, sword.ID, 1)

	detail, err := s.svc.Equip(s.ctx, s.user.ID, character.ID, sword.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), detail.Character.Equipment.Weapon)
	assert.Equal(s.T(), sword.ID, *detail.Character.Equipment.Weapon)
	assert.Equal(s.T(), sword.ID, detail.EquippedItems[models.SlotWeapon].ID)
	assert.Empty(s.T(), detail.Character.Inventory)

	detail, err = s.svc.Unequip(s.ctx, s.user.ID, character.ID, models.SlotWeapon)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), detail.Character.Equipment.Weapon)
	require.Len(s.T(), detail.Character.Inventory, 1)
	assert.Equal(s.T(), sword.ID, detail.Character.Inventory[0].ItemID)
}

func (s *CharacterServiceSuite) TestEquipValidation() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)

	staff := &models.Item{
		Name:          "法杖",
		Type:          models.ItemTypeWeapon,
		Rarity:        models.RarityCommon,
		RequiredLevel: 1,
		RequiredClass: models.ClassMage,
	}
	require.NoError(s.T(), s.db.Create(staff).Error)
	s.addToBag(character.ID, staff.ID, 1)

	_, err := s.svc.Equip(s.ctx, s.user.ID, character.ID, staff.ID)
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrWrongClass))

	_, err = s.svc.Equip(s.ctx, s.user.ID, character.ID, 9999)
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrItemNotFound))
}

func (s *CharacterServiceSuite) TestEquipBlockedInCombat() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)
	monster := repository.CreateTestMonster(s.T(), s.db, "史莱姆", 1)

	session := combat.NewSession(character, 0, monster, &combat.FixedRandomGenerator{Value: 0.5})
	require.NoError(s.T(), s.registry.Start(character.ID, session))

	_, err := s.svc.Equip(s.ctx, s.user.ID, character.ID, 1)
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrAlreadyInCombat))
}

func (s *CharacterServiceSuite) TestUseItem() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)
	require.NoError(s.T(), s.db.Model(character).Update("current_health", 50).Error)

	potion := &models.Item{
		Name:      "生命药水",
		Type:      models.ItemTypeConsumable,
		Rarity:    models.RarityCommon,
		Effect:    models.ItemEffect{Kind: models.EffectHeal, Value: 40},
		Stackable: true,
	}
	require.NoError(s.T(), s.db.Create(potion).Error)
	s.addToBag(character.ID, potion.ID, 2)

	detail, err := s.svc.UseItem(s.ctx, s.user.ID, character.ID, potion.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 90, detail.Character.CurrentHealth)
	require.Len(s.T(), detail.Character.Inventory, 1)
	assert.Equal(s.T(), 1, detail.Character.Inventory[0].Quantity)
}

func (s *CharacterServiceSuite) TestUseItemNotUsable() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)
	sword := repository.CreateTestItem(s.T(), s.db, "铁剑", models.ItemTypeWeapon, models.RarityCommon)
	s.addToBag(character.ID, sword.ID, 1)

	_, err := s.svc.UseItem(s.ctx, s.user.ID, character.ID, sword.ID)
	assert.True(s.T(), apperrors.Is(err, apperrors.ErrInvalidParam))
}

func (s *CharacterServiceSuite) TestSkills() {
	character := repository.CreateTestCharacter(s.T(), s.db, s.user.ID, "剑客", models.ClassWarrior)

	strike := &models.Skill{
		Name:          "英勇打击",
		Type:          models.SkillTypeDamage,
		RequiredLevel: 1,
		RequiredClass: models.ClassWarrior,
		IsActive:      true,
	}
	fireball := &models.Skill{
		Name:          "火球术",
		Type:          models.SkillTypeDamage,
		RequiredLevel: 1,
		RequiredClass: models.ClassMage,
		IsActive:      true,
	}
	require.NoError(s.T(), s.db.Create(strike).Error)
	require.NoError(s.T(), s.db.Create(fireball).Error)

	skills, err := s.svc.Skills(s.ctx, s.user.ID, character.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), skills, 1)
	assert.Equal(s.T(), "英勇打击", skills[0].Name)
}

func TestCharacterServiceSuite(t *testing.T) {
	suite.Run(t, new(CharacterServiceSuite))
}
