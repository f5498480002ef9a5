package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/rpg-game/internal/models"
	"gorm.io/gorm"
)

// MonsterRepositoryTestSuite 怪物仓储测试套件
type MonsterRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo MonsterRepository
}

func (suite *MonsterRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.repo = NewMonsterRepository(suite.db)
}

func (suite *MonsterRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestMonsterRepository_FindByIDWithAssociations 测试查询怪物及技能掉落表
func (suite *MonsterRepositoryTestSuite) TestMonsterRepository_FindByIDWithAssociations() {
	ctx := context.Background()

	loot := CreateTestItem(suite.T(), suite.db, "狼皮", models.ItemTypeMaterial, models.RarityCommon)
	monster := &models.Monster{
		Name:       "暗影狼",
		Level:      5,
		Type:       models.MonsterTypeBeast,
		Rarity:     models.RarityUncommon,
		Stats:      models.MonsterStats{Health: 100, Attack: 15, Defense: 5, Speed: 8},
		Experience: 50,
		Gold:       25,
		IsActive:   true,
		Abilities: []models.MonsterAbility{
			{Name: "撕咬", Damage: 8, Cooldown: 2, UseRate: 60},
		},
		LootTable: []models.LootEntry{
			{ItemID: loot.ID, Chance: 80, MinQuantity: 1, MaxQuantity: 2},
		},
	}
	assert.NoError(suite.T(), suite.repo.Create(ctx, monster))

	found, err := suite.repo.FindByID(ctx, monster.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "暗影狼", found.Name)
	assert.Equal(suite.T(), 100, found.Stats.Health)
	assert.Len(suite.T(), found.Abilities, 1)
	assert.Equal(suite.T(), "撕咬", found.Abilities[0].Name)
	assert.Len(suite.T(), found.LootTable, 1)
	assert.NotNil(suite.T(), found.LootTable[0].Item)
	assert.Equal(suite.T(), "狼皮", found.LootTable[0].Item.Name)

	_, err = suite.repo.FindByID(ctx, 9999)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "怪物不存在")
}

// TestMonsterRepository_FindByZone 测试区域怪物查询
func (suite *MonsterRepositoryTestSuite) TestMonsterRepository_FindByZone() {
	ctx := context.Background()
	zoneID := uint(1)

	wolf := CreateTestMonster(suite.T(), suite.db, "野狼", 3)
	wolf.ZoneID = &zoneID
	assert.NoError(suite.T(), suite.repo.Update(ctx, wolf))

	inactive := CreateTestMonster(suite.T(), suite.db, "冬眠熊", 5)
	inactive.ZoneID = &zoneID
	inactive.IsActive = false
	assert.NoError(suite.T(), suite.db.Model(inactive).Select("zone_id", "is_active").Updates(inactive).Error)

	CreateTestMonster(suite.T(), suite.db, "无区域怪", 2)

	monsters, err := suite.repo.FindByZone(ctx, zoneID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), monsters, 1)
	assert.Equal(suite.T(), "野狼", monsters[0].Name)
}

// TestMonsterRepository_FindByLevelRange 测试等级区间查询
func (suite *MonsterRepositoryTestSuite) TestMonsterRepository_FindByLevelRange() {
	ctx := context.Background()
	CreateTestMonster(suite.T(), suite.db, "一级怪", 1)
	CreateTestMonster(suite.T(), suite.db, "三级怪", 3)
	CreateTestMonster(suite.T(), suite.db, "十级怪", 10)

	monsters, err := suite.repo.FindByLevelRange(ctx, 1, 5)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), monsters, 2)
	// 按等级升序
	assert.Equal(suite.T(), "一级怪", monsters[0].Name)
	assert.Equal(suite.T(), "三级怪", monsters[1].Name)
}

func TestMonsterRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MonsterRepositoryTestSuite))
}
