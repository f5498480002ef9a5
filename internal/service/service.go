package service

import (
	"context"
	"time"

	"github.com/wfunc/rpg-game/internal/game/combat"
	"github.com/wfunc/rpg-game/internal/models"
	"github.com/wfunc/rpg-game/internal/repository"
	"github.com/wfunc/rpg-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	MaxCharactersPerUser int
	StartingGold         int
	InventoryCapacity    int

	MaxCombatSessions    int
	CombatSessionTimeout time.Duration
}

// DefaultConfig 默认服务配置
func DefaultConfig() *Config {
	return &Config{
		JWTSecret:            "your-secret-key-change-in-production",
		AccessTokenExpiry:    2 * time.Hour,
		RefreshTokenExpiry:   7 * 24 * time.Hour,
		MaxCharactersPerUser: 3,
		StartingGold:         100,
		InventoryCapacity:    20,
		MaxCombatSessions:    1000,
		CombatSessionTimeout: 30 * time.Minute,
	}
}

// Services 服务集合
type Services struct {
	Auth      AuthService
	Character CharacterService
	Combat    CombatService

	Registry *combat.MemoryRegistry
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, config *Config, log *zap.Logger) *Services {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}

	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewUserAuthRepository(db)
	characterRepo := repository.NewCharacterRepository(db)
	itemRepo := repository.NewItemRepository(db)
	monsterRepo := repository.NewMonsterRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	recordRepo := repository.NewCombatRecordRepository(db)

	// JWT管理器
	jwtManager := utils.NewJWTManager(
		config.JWTSecret,
		config.AccessTokenExpiry,
		config.RefreshTokenExpiry,
	)

	// 战斗会话注册表与成长引擎
	registry := combat.NewMemoryRegistry(config.MaxCombatSessions, log)
	rng := combat.NewCryptoRandomGenerator()
	engine := combat.NewEngine(rng, &itemSourceAdapter{items: itemRepo}, log)

	return &Services{
		Auth: NewAuthService(db, userRepo, authRepo, jwtManager, log),
		Character: NewCharacterService(
			db, characterRepo, itemRepo, skillRepo,
			registry, engine, config, log,
		),
		Combat: NewCombatService(
			db, characterRepo, itemRepo, monsterRepo, skillRepo, recordRepo,
			registry, engine, rng, config, log,
		),
		Registry: registry,
	}
}

// itemSourceAdapter 将物品仓储适配为掉落物品来源
type itemSourceAdapter struct {
	items repository.ItemRepository
}

func (a *itemSourceAdapter) ItemsByRarity(rarity string) ([]models.Item, error) {
	return a.items.FindByRarity(context.Background(), rarity)
}
