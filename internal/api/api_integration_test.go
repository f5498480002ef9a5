package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/rpg-game/internal/game/combat"
	"github.com/wfunc/rpg-game/internal/models"
	"github.com/wfunc/rpg-game/internal/repository"
	"github.com/wfunc/rpg-game/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type APISuite struct {
	suite.Suite
	db     *gorm.DB
	router *Router
	token  string
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.db = repository.SetupTestDB()

	config := service.DefaultConfig()
	config.JWTSecret = "test-secret"
	config.AccessTokenExpiry = time.Hour

	s.router = NewRouter(s.db, config, zap.NewNop())

	// 注册并登录一个测试账号
	resp := s.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(s.T(), http.StatusOK, resp.Code)

	var auth service.AuthResponse
	require.NoError(s.T(), json.Unmarshal(resp.Body.Bytes(), &auth))
	s.token = auth.AccessToken
}

func (s *APISuite) TearDownTest() {
	repository.CleanupTestDB(s.db)
}

func (s *APISuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, req)
	return w
}

func (s *APISuite) createCharacter(name, class string) uint {
	resp := s.request(http.MethodPost, "/api/v1/characters", gin.H{
		"name":  name,
		"race":  "human",
		"class": class,
	}, s.token)
	require.Equal(s.T(), http.StatusCreated, resp.Code)

	var character models.Character
	require.NoError(s.T(), json.Unmarshal(resp.Body.Bytes(), &character))
	return character.ID
}

func (s *APISuite) TestHealth() {
	resp := s.request(http.MethodGet, "/health", nil, "")
	assert.Equal(s.T(), http.StatusOK, resp.Code)
}

func (s *APISuite) TestAuthRequired() {
	resp := s.request(http.MethodGet, "/api/v1/characters", nil, "")
	assert.Equal(s.T(), http.StatusUnauthorized, resp.Code)

	resp = s.request(http.MethodGet, "/api/v1/characters", nil, "bad-token")
	assert.Equal(s.T(), http.StatusUnauthorized, resp.Code)
}

func (s *APISuite) TestCharacterLifecycle() {
	characterID := s.createCharacter("剑客", models.ClassWarrior)

	resp := s.request(http.MethodGet, "/api/v1/characters", nil, s.token)
	assert.Equal(s.T(), http.StatusOK, resp.Code)
	assert.Contains(s.T(), resp.Body.String(), "剑客")

	resp = s.request(http.MethodGet, "/api/v1/characters/999", nil, s.token)
	assert.Equal(s.T(), http.StatusNotFound, resp.Code)

	resp = s.request(http.MethodPut, "/api/v1/characters/"+itoa(characterID)+"/name", gin.H{
		"name": "刀客",
	}, s.token)
	assert.Equal(s.T(), http.StatusOK, resp.Code)

	resp = s.request(http.MethodDelete, "/api/v1/characters/"+itoa(characterID), nil, s.token)
	assert.Equal(s.T(), http.StatusOK, resp.Code)
}

func (s *APISuite) TestInvalidClassRejected() {
	resp := s.request(http.MethodPost, "/api/v1/characters", gin.H{
		"name":  "术士",
		"race":  "human",
		"class": "necromancer",
	}, s.token)
	assert.Equal(s.T(), http.StatusBadRequest, resp.Code)
}

func (s *APISuite) TestCombatFlow() {
	characterID := s.createCharacter("剑客", models.ClassWarrior)
	monster := repository.CreateTestMonster(s.T(), s.db, "史莱姆", 1)

	resp := s.request(http.MethodPost, "/api/v1/characters/"+itoa(characterID)+"/combat", gin.H{
		"monster_id": monster.ID,
	}, s.token)
	require.Equal(s.T(), http.StatusCreated, resp.Code)

	// 重复开战返回409
	resp = s.request(http.MethodPost, "/api/v1/characters/"+itoa(characterID)+"/combat", gin.H{
		"monster_id": monster.ID,
	}, s.token)
	assert.Equal(s.T(), http.StatusConflict, resp.Code)

	// 1级史莱姆打不过战士，连续普攻必定胜利
	var result service.CombatActionResponse
	for i := 0; i < 10; i++ {
		resp = s.request(http.MethodPost, "/api/v1/characters/"+itoa(characterID)+"/combat/action", gin.H{
			"action": "attack",
		}, s.token)
		require.Equal(s.T(), http.StatusOK, resp.Code)
		require.NoError(s.T(), json.Unmarshal(resp.Body.Bytes(), &result))
		if result.Combat.Status.Terminal() {
			break
		}
	}
	assert.Equal(s.T(), combat.StatusVictory, result.Combat.Status)
	require.NotNil(s.T(), result.Victory)
	assert.Equal(s.T(), 10, result.Victory.ExperienceGained)

	// 战斗结束后查询当前战斗返回404
	resp = s.request(http.MethodGet, "/api/v1/characters/"+itoa(characterID)+"/combat", nil, s.token)
	assert.Equal(s.T(), http.StatusNotFound, resp.Code)

	// 战斗记录可查
	resp = s.request(http.MethodGet, "/api/v1/characters/"+itoa(characterID)+"/combat/history", nil, s.token)
	assert.Equal(s.T(), http.StatusOK, resp.Code)
	assert.Contains(s.T(), resp.Body.String(), "victory")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}
