package database

import (
	"fmt"

	"github.com/wfunc/rpg-game/internal/logger"
	"github.com/wfunc/rpg-game/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 清理过期锁文件
	CleanupStaleLocks()

	// 获取迁移锁，避免多个进程同时迁移
	dbPath := getDBPath()
	if dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			logger.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	migrationModels := []interface{}{
		// 用户相关
		&models.User{},
		&models.UserAuth{},

		// 角色相关
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
	}

	logger.Info("开始数据库迁移...")

	// SQLite迁移期间关闭外键约束，避免重建表时的锁定问题
	if DB.Dialector.Name() == "sqlite" {
		DB.Exec("PRAGMA foreign_keys = OFF")
		defer DB.Exec("PRAGMA foreign_keys = ON")
	}

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	// 创建索引
	if err := createIndexes(); err != nil {
		return err
	}

	// 初始化默认数据
	if err := initDefaultData(); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建数据库索引
func createIndexes() error {
	indexes := map[string]string{
		"idx_characters_user_id":           "CREATE INDEX IF NOT EXISTS idx_characters_user_id ON characters(user_id)",
		"idx_inventory_slots_character_id": "CREATE INDEX IF NOT EXISTS idx_inventory_slots_character_id ON inventory_slots(character_id)",
		"idx_items_type_rarity":            "CREATE INDEX IF NOT EXISTS idx_items_type_rarity ON items(type, rarity)",
		"idx_monsters_zone_level":          "CREATE INDEX IF NOT EXISTS idx_monsters_zone_level ON monsters(zone_id, level)",
		"idx_skills_class_level":           "CREATE INDEX IF NOT EXISTS idx_skills_class_level ON skills(required_class, required_level)",
		"idx_combat_records_character":     "CREATE INDEX IF NOT EXISTS idx_combat_records_character ON combat_records(character_id, ended_at)",
	}

	for name, sql := range indexes {
		if err := DB.Exec(sql).Error; err != nil {
			logger.Warn("创建索引失败", zap.String("index", name), zap.Error(err))
		}
	}

	logger.Info("数据库索引创建完成")
	return nil
}

// initDefaultData 初始化默认数据
func initDefaultData() error {
	// 检查是否已有数据
	var count int64
	DB.Model(&models.Item{}).Count(&count)
	if count > 0 {
		return nil
	}

	// 基础物品
	defaultItems := []models.Item{
		{
			Name:          "生命药水",
			Description:   "恢复50点生命值",
			Type:          models.ItemTypeConsumable,
			Rarity:        models.RarityCommon,
			Effect:        models.ItemEffect{Kind: models.EffectHeal, Value: 50},
			Value:         10,
			Stackable:     true,
			MaxStack:      99,
			RequiredClass: models.ClassAny,
		},
		{
			Name:          "魔法药水",
			Description:   "恢复30点魔法值",
			Type:          models.ItemTypeConsumable,
			Rarity:        models.RarityCommon,
			Effect:        models.ItemEffect{Kind: models.EffectMana, Value: 30},
			Value:         10,
			Stackable:     true,
			MaxStack:      99,
			RequiredClass: models.ClassAny,
		},
		{
			Name:          "新手短剑",
			Description:   "磨损严重的短剑",
			Type:          models.ItemTypeWeapon,
			Rarity:        models.RarityCommon,
			Damage:        3,
			Value:         15,
			RequiredLevel: 1,
			RequiredClass: models.ClassAny,
		},
		{
			Name:          "皮甲",
			Description:   "简单的皮质护甲",
			Type:          models.ItemTypeArmor,
			Subtype:       models.SubtypeChest,
			Rarity:        models.RarityCommon,
			Bonuses:       models.Stats{Vitality: 1},
			Value:         20,
			RequiredLevel: 1,
			RequiredClass: models.ClassAny,
		},
		{
			Name:          "铁剑",
			Description:   "锻造扎实的铁剑",
			Type:          models.ItemTypeWeapon,
			Rarity:        models.RarityUncommon,
			Damage:        6,
			Bonuses:       models.Stats{Strength: 1},
			Value:         50,
			RequiredLevel: 3,
			RequiredClass: models.ClassAny,
		},
	}

	for _, item := range defaultItems {
		if err := DB.Create(&item).Error; err != nil {
			logger.Error("创建默认物品失败",
				zap.String("name", item.Name),
				zap.Error(err),
			)
		}
	}

	// 基础怪物
	defaultMonsters := []models.Monster{
		{
			Name:       "史莱姆",
			Level:      1,
			Type:       models.MonsterTypeBeast,
			Rarity:     models.RarityCommon,
			Stats:      models.MonsterStats{Health: 30, Attack: 4, Speed: 2},
			Experience: 10,
			Gold:       5,
			IsActive:   true,
		},
		{
			Name:       "野狼",
			Level:      3,
			Type:       models.MonsterTypeBeast,
			Rarity:     models.RarityCommon,
			Stats:      models.MonsterStats{Health: 70, Attack: 9, Speed: 6},
			Experience: 30,
			Gold:       15,
			IsActive:   true,
			Abilities: []models.MonsterAbility{
				{Name: "撕咬", Damage: 5, Cooldown: 2, UseRate: 40},
			},
		},
		{
			Name:       "骷髅兵",
			Level:      5,
			Type:       models.MonsterTypeUndead,
			Rarity:     models.RarityUncommon,
			Stats:      models.MonsterStats{Health: 120, Attack: 14, Defense: 4, Speed: 3},
			Experience: 50,
			Gold:       25,
			IsActive:   true,
		},
	}

	for _, monster := range defaultMonsters {
		if err := DB.Create(&monster).Error; err != nil {
			logger.Error("创建默认怪物失败",
				zap.String("name", monster.Name),
				zap.Error(err),
			)
		}
	}

	// 基础技能
	defaultSkills := []models.Skill{
		{
			Name:          "英勇打击",
			Description:   "蓄力一击，伤害随力量提升",
			Type:          models.SkillTypeDamage,
			ManaCost:      5,
			Cooldown:      1,
			RequiredLevel: 1,
			RequiredClass: models.ClassWarrior,
			BaseDamage:    8,
			ScalingStat:   models.StatStrength,
			ScalingFactor: 0.8,
			IsActive:      true,
		},
		{
			Name:          "火球术",
			Description:   "投掷火球，伤害随智力提升",
			Type:          models.SkillTypeDamage,
			ManaCost:      10,
			Cooldown:      1,
			RequiredLevel: 1,
			RequiredClass: models.ClassMage,
			BaseDamage:    10,
			ScalingStat:   models.StatIntelligence,
			ScalingFactor: 1.0,
			IsActive:      true,
		},
		{
			Name:          "背刺",
			Description:   "出其不意的一击，伤害随敏捷提升",
			Type:          models.SkillTypeDamage,
			ManaCost:      8,
			Cooldown:      2,
			RequiredLevel: 1,
			RequiredClass: models.ClassRogue,
			BaseDamage:    12,
			ScalingStat:   models.StatDexterity,
			ScalingFactor: 0.9,
			IsActive:      true,
		},
		{
			Name:          "治疗术",
			Description:   "恢复生命，治疗量随感知提升",
			Type:          models.SkillTypeHeal,
			ManaCost:      8,
			Cooldown:      2,
			RequiredLevel: 1,
			RequiredClass: models.ClassCleric,
			BaseHealing:   20,
			ScalingFactor: 1.0,
			IsActive:      true,
		},
	}

	for _, skill := range defaultSkills {
		if err := DB.Create(&skill).Error; err != nil {
			logger.Error("创建默认技能失败",
				zap.String("name", skill.Name),
				zap.Error(err),
			)
		}
	}

	logger.Info("默认数据初始化完成")
	return nil
}
