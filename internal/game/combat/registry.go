package combat

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrAlreadyInCombat = errors.New("角色已在战斗中")
	ErrSessionNotFound = errors.New("战斗会话不存在")
	ErrRegistryFull    = errors.New("战斗会话数量已达上限")
)

// Registry 战斗会话注册表
// 每名角色同时只能有一个活跃会话
type Registry interface {
	Start(characterID uint, session *Session) error
	Get(characterID uint) (*Session, error)
	End(characterID uint) (*Session, error)
	Count() int
	CleanupExpired(timeout time.Duration) int
}

// MemoryRegistry 基于内存的会话注册表
type MemoryRegistry struct {
	mu          sync.RWMutex
	sessions    map[uint]*Session
	maxSessions int
	logger      *zap.Logger
}

// NewMemoryRegistry 创建注册表，maxSessions<=0表示不限制
func NewMemoryRegistry(maxSessions int, logger *zap.Logger) *MemoryRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryRegistry{
		sessions:    make(map[uint]*Session),
		maxSessions: maxSessions,
		logger:      logger,
	}
}

// Start 注册新会话
func (r *MemoryRegistry) Start(characterID uint, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[characterID]; exists {
		return ErrAlreadyInCombat
	}
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		r.logger.Warn("战斗会话数量已达上限",
			zap.Int("max_sessions", r.maxSessions))
		return ErrRegistryFull
	}

	r.sessions[characterID] = session
	r.logger.Info("战斗会话开始",
		zap.String("session_id", session.ID),
		zap.Uint("character_id", characterID),
		zap.Uint("monster_id", session.Monster.ID))
	return nil
}

// Get 获取角色的活跃会话
func (r *MemoryRegistry) Get(characterID uint) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[characterID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// End 移除并返回角色的会话
func (r *MemoryRegistry) End(characterID uint) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[characterID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	delete(r.sessions, characterID)
	r.logger.Info("战斗会话结束",
		zap.String("session_id", session.ID),
		zap.Uint("character_id", characterID),
		zap.String("status", string(session.CurrentStatus())))
	return session, nil
}

// Count 当前活跃会话数
func (r *MemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CleanupExpired 清理超时未操作的会话，返回清理数量
func (r *MemoryRegistry) CleanupExpired(timeout time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-timeout)
	cleaned := 0
	for characterID, session := range r.sessions {
		if session.IdleSince().Before(cutoff) {
			delete(r.sessions, characterID)
			cleaned++
			r.logger.Info("清理超时战斗会话",
				zap.String("session_id", session.ID),
				zap.Uint("character_id", characterID))
		}
	}
	return cleaned
}

// StartCleanupLoop 启动后台清理协程，返回停止函数
func (r *MemoryRegistry) StartCleanupLoop(interval, timeout time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if cleaned := r.CleanupExpired(timeout); cleaned > 0 {
					r.logger.Info("定时清理完成", zap.Int("cleaned", cleaned))
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
