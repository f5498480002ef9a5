package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/rpg-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置测试数据库
func SetupTestDB() *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		// 用户系统
		&models.User{},
		&models.UserAuth{},

		// 角色系统
		&models.Character{},
		&models.InventorySlot{},

		// 游戏内容
		&models.Item{},
		&models.Monster{},
		&models.MonsterAbility{},
		&models.LootEntry{},
		&models.Skill{},
		&models.SkillEffect{},

		// 战斗记录
		&models.CombatRecord{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// CreateTestUser 创建测试用户
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Status:   "active",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestCharacter 创建测试角色
func CreateTestCharacter(t *testing.T, db *gorm.DB, userID uint, name, class string) *models.Character {
	character := &models.Character{
		UserID: userID,
		Name:   name,
		Race:   "human",
		Class:  class,
		Level:  1,
		Gold:   100,
		Stats: models.Stats{
			Strength:     10,
			Dexterity:    10,
			Intelligence: 10,
			Vitality:     10,
			Wisdom:       10,
			Charisma:     10,
		},
		CurrentHealth: 105,
		CurrentMana:   53,
		LastActiveAt:  time.Now(),
	}
	require.NoError(t, db.Create(character).Error)
	return character
}

// CreateTestItem 创建测试物品
func CreateTestItem(t *testing.T, db *gorm.DB, name, itemType, rarity string) *models.Item {
	item := &models.Item{
		Name:          name,
		Type:          itemType,
		Rarity:        rarity,
		RequiredLevel: 1,
		RequiredClass: models.ClassAny,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

// CreateTestMonster 创建测试怪物
func CreateTestMonster(t *testing.T, db *gorm.DB, name string, level int) *models.Monster {
	monster := &models.Monster{
		Name:       name,
		Level:      level,
		Type:       models.MonsterTypeBeast,
		Rarity:     models.RarityCommon,
		Stats:      models.MonsterStats{Health: level * 20, Attack: level * 3},
		Experience: level * 10,
		Gold:       level * 5,
		IsActive:   true,
	}
	require.NoError(t, db.Create(monster).Error)
	return monster
}
