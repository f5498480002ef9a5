package service

import (
	"context"

	"github.com/wfunc/rpg-game/internal/game/combat"
	"github.com/wfunc/rpg-game/internal/models"
	"github.com/wfunc/rpg-game/internal/repository"
)

// AuthService 认证服务接口
type AuthService interface {
	// Register 用户注册
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	// Login 用户登录
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	// Logout 用户登出
	Logout(ctx context.Context, userID uint, token string) error
	// RefreshToken 刷新令牌
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	// ValidateToken 验证令牌
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// CharacterService 角色服务接口
type CharacterService interface {
	// Create 创建角色
	Create(ctx context.Context, userID uint, req *CreateCharacterRequest) (*models.Character, error)
	// List 获取用户的所有角色
	List(ctx context.Context, userID uint) ([]*models.Character, error)
	// Get 获取角色详情（含背包与衍生属性）
	Get(ctx context.Context, userID, characterID uint) (*CharacterDetail, error)
	// Rename 重命名角色
	Rename(ctx context.Context, userID, characterID uint, name string) (*models.Character, error)
	// Delete 删除角色
	Delete(ctx context.Context, userID, characterID uint) error
	// AssignStatPoint 分配属性点
	AssignStatPoint(ctx context.Context, userID, characterID uint, stat string) (*CharacterDetail, error)
	// Equip 装备物品
	Equip(ctx context.Context, userID, characterID, itemID uint) (*CharacterDetail, error)
	// Unequip 卸下装备
	Unequip(ctx context.Context, userID, characterID uint, slot string) (*CharacterDetail, error)
	// UseItem 战斗外使用消耗品
	UseItem(ctx context.Context, userID, characterID, itemID uint) (*CharacterDetail, error)
	// Skills 获取角色可用技能
	Skills(ctx context.Context, userID, characterID uint) ([]*models.Skill, error)
}

// CombatService 战斗服务接口
type CombatService interface {
	// Start 发起战斗，指定怪物或在区域内随机遭遇
	Start(ctx context.Context, userID, characterID uint, req *StartCombatRequest) (*combat.View, error)
	// Action 执行战斗动作，战斗结束时附带结算结果
	Action(ctx context.Context, userID, characterID uint, req *CombatActionRequest) (*CombatActionResponse, error)
	// Current 获取进行中的战斗
	Current(ctx context.Context, userID, characterID uint) (*combat.View, error)
	// History 获取战斗记录
	History(ctx context.Context, userID, characterID uint, page, pageSize int) ([]*models.CombatRecord, *repository.Pagination, error)
	// Stats 获取战斗统计
	Stats(ctx context.Context, userID, characterID uint) (*repository.CombatStats, error)
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100"`
	IP       string `json:"-"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Account  string `json:"account" binding:"required"` // 用户名或邮箱
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
	Device   string `json:"-"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// TokenClaims 令牌信息
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// CreateCharacterRequest 创建角色请求
type CreateCharacterRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=20"`
	Race  string `json:"race" binding:"required,min=2,max=20"`
	Class string `json:"class" binding:"required"`
}

// CharacterDetail 角色详情（含衍生属性）
type CharacterDetail struct {
	Character        *models.Character       `json:"character"`
	MaxHealth        int                     `json:"max_health"`
	MaxMana          int                     `json:"max_mana"`
	ExperienceToNext int                     `json:"experience_to_next"`
	EquipmentBonuses models.Stats            `json:"equipment_bonuses"`
	EquippedItems    map[string]*models.Item `json:"equipped_items,omitempty"`
}

// 战斗动作类型
const (
	ActionAttack = "attack"
	ActionSkill  = "skill"
	ActionItem   = "item"
	ActionFlee   = "flee"
)

// StartCombatRequest 发起战斗请求
// 给出monster_id时挑战指定怪物，只给zone_id时在区域内随机遭遇
type StartCombatRequest struct {
	MonsterID uint `json:"monster_id,omitempty"`
	ZoneID    uint `json:"zone_id,omitempty"`
}

// CombatActionRequest 战斗动作请求
type CombatActionRequest struct {
	Action  string `json:"action" binding:"required,oneof=attack skill item flee"`
	SkillID uint   `json:"skill_id,omitempty"` // action=skill时必填
	ItemID  uint   `json:"item_id,omitempty"`  // action=item时必填
}

// CombatActionResponse 战斗动作响应
type CombatActionResponse struct {
	Combat  combat.View           `json:"combat"`
	Victory *combat.VictoryResult `json:"victory,omitempty"`
	Defeat  *combat.DefeatResult  `json:"defeat,omitempty"`
}
