package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/rpg-game/internal/repository"
	"github.com/wfunc/rpg-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	svc AuthService
	ctx context.Context
}

func (s *AuthServiceSuite) SetupTest() {
	s.db = repository.SetupTestDB()
	s.ctx = context.Background()

	jwtManager := utils.NewJWTManager("test-secret", 2*time.Hour, 7*24*time.Hour)
	s.svc = NewAuthService(
		s.db,
		repository.NewUserRepository(s.db),
		repository.NewUserAuthRepository(s.db),
		jwtManager,
		zap.NewNop(),
	)
}

func (s *AuthServiceSuite) TearDownTest() {
	repository.CleanupTestDB(s.db)
}

func (s *AuthServiceSuite) register(username string) *AuthResponse {
	resp, err := s.svc.Register(s.ctx, &RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(s.T(), err)
	return resp
}

func (s *AuthServiceSuite) TestRegister() {
	resp := s.register("alice")

	assert.NotZero(s.T(), resp.User.ID)
	assert.Equal(s.T(), "alice", resp.User.Username)
	assert.NotEmpty(s.T(), resp.AccessToken)
	assert.NotEmpty(s.T(), resp.RefreshToken)
	assert.Equal(s.T(), "Bearer", resp.TokenType)
}

func (s *AuthServiceSuite) TestRegisterDuplicate() {
	s.register("alice")

	_, err := s.svc.Register(s.ctx, &RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
	})
	assert.ErrorIs(s.T(), err, ErrUserExists)

	_, err = s.svc.Register(s.ctx, &RegisterRequest{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assert.ErrorIs(s.T(), err, ErrUserExists)
}

func (s *AuthServiceSuite) TestLogin() {
	s.register("alice")

	resp, err := s.svc.Login(s.ctx, &LoginRequest{Account: "alice", Password: "password123"})
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), resp.AccessToken)

	// 邮箱也可以作为登录账号
	resp, err = s.svc.Login(s.ctx, &LoginRequest{Account: "alice@example.com", Password: "password123"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "alice", resp.User.Username)
}

func (s *AuthServiceSuite) TestLoginInvalidCredentials() {
	s.register("alice")

	_, err := s.svc.Login(s.ctx, &LoginRequest{Account: "alice", Password: "wrongpass"})
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)

	_, err = s.svc.Login(s.ctx, &LoginRequest{Account: "nobody", Password: "password123"})
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
}

func (s *AuthServiceSuite) TestLoginLockout() {
	s.register("alice")

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := s.svc.Login(s.ctx, &LoginRequest{Account: "alice", Password: "wrongpass"})
		assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
	}

	// 连续失败后即使密码正确也被锁定
	_, err := s.svc.Login(s.ctx, &LoginRequest{Account: "alice", Password: "password123"})
	assert.ErrorIs(s.T(), err, ErrAccountLocked)
}

func (s *AuthServiceSuite) TestLoginBanned() {
	resp := s.register("alice")

	require.NoError(s.T(), s.db.Model(resp.User).Update("status", "banned").Error)

	_, err := s.svc.Login(s.ctx, &LoginRequest{Account: "alice", Password: "password123"})
	assert.ErrorIs(s.T(), err, ErrUserBanned)
}

func (s *AuthServiceSuite) TestRefreshToken() {
	resp := s.register("alice")

	refreshed, err := s.svc.RefreshToken(s.ctx, resp.RefreshToken)
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), refreshed.AccessToken)
	assert.Equal(s.T(), resp.RefreshToken, refreshed.RefreshToken)

	// 访问令牌不能用于刷新
	_, err = s.svc.RefreshToken(s.ctx, resp.AccessToken)
	assert.Error(s.T(), err)
}

func (s *AuthServiceSuite) TestValidateToken() {
	resp := s.register("alice")

	claims, err := s.svc.ValidateToken(s.ctx, resp.AccessToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), resp.User.ID, claims.UserID)
	assert.Equal(s.T(), "alice", claims.Username)
	assert.NotEmpty(s.T(), claims.SessionID)

	// 刷新令牌不能用于访问
	_, err = s.svc.ValidateToken(s.ctx, resp.RefreshToken)
	assert.ErrorIs(s.T(), err, ErrInvalidToken)

	_, err = s.svc.ValidateToken(s.ctx, "not-a-token")
	assert.ErrorIs(s.T(), err, ErrInvalidToken)
}

func (s *AuthServiceSuite) TestLogout() {
	resp := s.register("alice")

	assert.NoError(s.T(), s.svc.Logout(s.ctx, resp.User.ID, resp.AccessToken))
	assert.ErrorIs(s.T(), s.svc.Logout(s.ctx, resp.User.ID, "not-a-token"), ErrInvalidToken)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}
