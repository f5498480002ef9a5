package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wfunc/rpg-game/internal/models"
	"github.com/wfunc/rpg-game/internal/repository"
	"github.com/wfunc/rpg-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("用户已存在")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserBanned         = errors.New("账号已被封禁")
	ErrAccountLocked      = errors.New("账号已被锁定，请稍后再试")
	ErrInvalidToken       = errors.New("无效的令牌")
)

// 登录失败锁定策略
const (
	maxLoginAttempts = 5
	lockDuration     = 30 * time.Minute
)

// authService 认证服务实现
type authService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	authRepo   repository.UserAuthRepository
	jwtManager *utils.JWTManager
	log        *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	authRepo repository.UserAuthRepository,
	jwtManager *utils.JWTManager,
	log *zap.Logger,
) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		authRepo:   authRepo,
		jwtManager: jwtManager,
		log:        log,
	}
}

// Register 用户注册
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	// 检查用户名是否已存在
	if existing, _ := s.userRepo.FindByUsername(ctx, req.Username); existing != nil {
		return nil, ErrUserExists
	}
	if existing, _ := s.userRepo.FindByEmail(ctx, req.Email); existing != nil {
		return nil, ErrUserExists
	}

	// 密码哈希
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	// 开启事务创建用户
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Status:      "active",
		LastLoginIP: req.IP,
	}

	userRepoTx := s.userRepo.WithTx(tx).(repository.UserRepository)
	if err := userRepoTx.Create(ctx, user); err != nil {
		tx.Rollback()
		s.log.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	auth := &models.UserAuth{
		UserID:   user.ID,
		Password: hashedPassword,
	}

	authRepoTx := s.authRepo.WithTx(tx).(repository.UserAuthRepository)
	if err := authRepoTx.Create(ctx, auth); err != nil {
		tx.Rollback()
		s.log.Error("Failed to create user auth", zap.Error(err))
		return nil, fmt.Errorf("创建认证信息失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}

	s.log.Info("User registered successfully",
		zap.Uint("userID", user.ID),
		zap.String("username", user.Username))

	return s.issueTokens(user)
}

// Login 用户登录
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	// 账号可以是用户名或邮箱
	var user *models.User
	var err error
	if isEmail(req.Account) {
		user, err = s.userRepo.FindByEmail(ctx, req.Account)
	} else {
		user, err = s.userRepo.FindByUsername(ctx, req.Account)
	}

	if err != nil || user == nil {
		s.log.Warn("Login failed: user not found", zap.String("account", req.Account))
		return nil, ErrInvalidCredentials
	}

	// 检查用户状态
	if user.Status == "banned" {
		return nil, ErrUserBanned
	}

	// 获取认证信息
	auth, err := s.authRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to get auth info", zap.Error(err), zap.Uint("userID", user.ID))
		return nil, ErrInvalidCredentials
	}

	// 检查锁定状态
	if auth.LockedUntil != nil && auth.LockedUntil.After(time.Now()) {
		return nil, ErrAccountLocked
	}

	// 验证密码
	valid, err := utils.VerifyPassword(req.Password, auth.Password)
	if err != nil || !valid {
		s.log.Warn("Login failed: invalid password", zap.Uint("userID", user.ID))
		attempts := auth.LoginAttempts + 1
		_ = s.authRepo.UpdateLoginAttempts(ctx, user.ID, attempts)
		if attempts >= maxLoginAttempts {
			_ = s.authRepo.LockAccount(ctx, user.ID, time.Now().Add(lockDuration))
			s.log.Warn("Account locked after repeated failures", zap.Uint("userID", user.ID))
		}
		return nil, ErrInvalidCredentials
	}

	// 更新登录信息并重置失败次数
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID, req.IP)
	_ = s.authRepo.ResetLoginAttempts(ctx, user.ID)

	s.log.Info("User logged in successfully",
		zap.Uint("userID", user.ID),
		zap.String("username", user.Username))

	return s.issueTokens(user)
}

// Logout 用户登出
// 令牌是无状态JWT，登出只做审计记录，客户端丢弃令牌即可
func (s *authService) Logout(ctx context.Context, userID uint, token string) error {
	if _, err := s.jwtManager.ValidateToken(token); err != nil {
		return ErrInvalidToken
	}

	s.log.Info("User logged out", zap.Uint("userID", userID))
	return nil
}

// RefreshToken 刷新令牌
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != "refresh" {
		return nil, errors.New("不是刷新令牌")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if user.Status == "banned" {
		return nil, ErrUserBanned
	}

	accessToken, err := s.jwtManager.RefreshAccessToken(refreshToken, user.Username)
	if err != nil {
		return nil, fmt.Errorf("生成访问令牌失败: %w", err)
	}

	s.log.Info("Token refreshed successfully", zap.Uint("userID", user.ID))

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetTokenExpiry("access").Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// ValidateToken 验证令牌
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != "access" {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		SessionID: claims.SessionID,
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}

// issueTokens 签发访问令牌和刷新令牌
func (s *authService) issueTokens(user *models.User) (*AuthResponse, error) {
	sessionID, err := utils.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("生成会话ID失败: %w", err)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, sessionID)
	if err != nil {
		return nil, fmt.Errorf("生成访问令牌失败: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("生成刷新令牌失败: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetTokenExpiry("access").Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// isEmail 简单判断账号形态
func isEmail(account string) bool {
	for _, c := range account {
		if c == '@' {
			return true
		}
	}
	return false
}
