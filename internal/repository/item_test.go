package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/rpg-game/internal/models"
	"gorm.io/gorm"
)

// ItemRepositoryTestSuite 物品仓储测试套件
type ItemRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo ItemRepository
}

func (suite *ItemRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.repo = NewItemRepository(suite.db)
}

func (suite *ItemRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestItemRepository_CreateAndFind 测试创建和查询物品
func (suite *ItemRepositoryTestSuite) TestItemRepository_CreateAndFind() {
	ctx := context.Background()

	item := &models.Item{
		Name:          "火焰剑",
		Type:          models.ItemTypeWeapon,
		Rarity:        models.RarityEpic,
		Damage:        12,
		Bonuses:       models.Stats{Strength: 3},
		RequiredLevel: 5,
		RequiredClass: models.ClassWarrior,
	}
	assert.NoError(suite.T(), suite.repo.Create(ctx, item))

	found, err := suite.repo.FindByID(ctx, item.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "火焰剑", found.Name)
	assert.Equal(suite.T(), 12, found.Damage)
	assert.Equal(suite.T(), 3, found.Bonuses.Strength)
	assert.True(suite.T(), found.Equipable())

	_, err = suite.repo.FindByID(ctx, 9999)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "物品不存在")
}

// TestItemRepository_Effect 测试消耗品效果持久化
func (suite *ItemRepositoryTestSuite) TestItemRepository_Effect() {
	ctx := context.Background()

	potion := &models.Item{
		Name:      "生命药水",
		Type:      models.ItemTypeConsumable,
		Rarity:    models.RarityCommon,
		Effect:    models.ItemEffect{Kind: models.EffectHeal, Value: 50},
		Stackable: true,
		MaxStack:  99,
	}
	assert.NoError(suite.T(), suite.repo.Create(ctx, potion))

	found, err := suite.repo.FindByID(ctx, potion.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.EffectHeal, found.Effect.Kind)
	assert.Equal(suite.T(), 50, found.Effect.Value)
	assert.True(suite.T(), found.Usable())
}

// TestItemRepository_FindByRarity 测试掉落池查询
func (suite *ItemRepositoryTestSuite) TestItemRepository_FindByRarity() {
	ctx := context.Background()
	CreateTestItem(suite.T(), suite.db, "铁剑", models.ItemTypeWeapon, models.RarityCommon)
	CreateTestItem(suite.T(), suite.db, "木盾", models.ItemTypeArmor, models.RarityCommon)
	CreateTestItem(suite.T(), suite.db, "魔法戒指", models.ItemTypeAccessory, models.RarityRare)

	commons, err := suite.repo.FindByRarity(ctx, models.RarityCommon)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), commons, 2)

	rares, err := suite.repo.FindByRarity(ctx, models.RarityRare)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rares, 1)
	assert.Equal(suite.T(), "魔法戒指", rares[0].Name)

	legendaries, err := suite.repo.FindByRarity(ctx, models.RarityLegendary)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), legendaries)
}

// TestItemRepository_FindByIDs 测试批量查询
func (suite *ItemRepositoryTestSuite) TestItemRepository_FindByIDs() {
	ctx := context.Background()
	a := CreateTestItem(suite.T(), suite.db, "物品A", models.ItemTypeMaterial, models.RarityCommon)
	b := CreateTestItem(suite.T(), suite.db, "物品B", models.ItemTypeMaterial, models.RarityCommon)
	CreateTestItem(suite.T(), suite.db, "物品C", models.ItemTypeMaterial, models.RarityCommon)

	items, err := suite.repo.FindByIDs(ctx, []uint{a.ID, b.ID})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 2)

	items, err = suite.repo.FindByIDs(ctx, nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), items)
}

func TestItemRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ItemRepositoryTestSuite))
}
