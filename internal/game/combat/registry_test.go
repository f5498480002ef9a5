package combat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/rpg-game/internal/models"
)

func newTestSession(characterID uint) *Session {
	character := newTestCharacter(models.ClassWarrior)
	character.ID = characterID
	monster := newTestMonster(1, 30, 5)
	return NewSession(character, 0, monster, &FixedRandomGenerator{Value: 0.5})
}

func TestRegistryStartAndGet(t *testing.T) {
	registry := NewMemoryRegistry(0, nil)

	session := newTestSession(1)
	require.NoError(t, registry.Start(1, session))
	assert.Equal(t, 1, registry.Count())

	got, err := registry.Get(1)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = registry.Get(2)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryDuplicateStart(t *testing.T) {
	registry := NewMemoryRegistry(0, nil)

	require.NoError(t, registry.Start(1, newTestSession(1)))
	assert.ErrorIs(t, registry.Start(1, newTestSession(1)), ErrAlreadyInCombat)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryMaxSessions(t *testing.T) {
	registry := NewMemoryRegistry(2, nil)

	require.NoError(t, registry.Start(1, newTestSession(1)))
	require.NoError(t, registry.Start(2, newTestSession(2)))
	assert.ErrorIs(t, registry.Start(3, newTestSession(3)), ErrRegistryFull)

	// 结束一个会话后释放容量
	_, err := registry.End(1)
	require.NoError(t, err)
	assert.NoError(t, registry.Start(3, newTestSession(3)))
}

func TestRegistryEnd(t *testing.T) {
	registry := NewMemoryRegistry(0, nil)

	session := newTestSession(1)
	require.NoError(t, registry.Start(1, session))

	ended, err := registry.End(1)
	require.NoError(t, err)
	assert.Equal(t, session.ID, ended.ID)
	assert.Equal(t, 0, registry.Count())

	_, err = registry.End(1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryCleanupExpired(t *testing.T) {
	registry := NewMemoryRegistry(0, nil)

	stale := newTestSession(1)
	stale.LastAction = time.Now().Add(-time.Hour)
	require.NoError(t, registry.Start(1, stale))

	fresh := newTestSession(2)
	require.NoError(t, registry.Start(2, fresh))

	cleaned := registry.CleanupExpired(10 * time.Minute)
	assert.Equal(t, 1, cleaned)
	assert.Equal(t, 1, registry.Count())

	_, err := registry.Get(1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = registry.Get(2)
	assert.NoError(t, err)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewMemoryRegistry(0, nil)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			session := newTestSession(id)
			assert.NoError(t, registry.Start(id, session))
			got, err := registry.Get(id)
			assert.NoError(t, err)
			assert.Equal(t, session.ID, got.ID)
		}(uint(i))
	}
	wg.Wait()

	assert.Equal(t, 50, registry.Count())

	// 同角色并发开战只允许一个成功
	var successCount int32
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := registry.Start(100, newTestSession(100)); err == nil {
				mu.Lock()
				successCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), successCount)
}

func TestRegistryCleanupLoop(t *testing.T) {
	registry := NewMemoryRegistry(0, nil)

	stale := newTestSession(1)
	stale.LastAction = time.Now().Add(-time.Hour)
	require.NoError(t, registry.Start(1, stale))

	stop := registry.StartCleanupLoop(10*time.Millisecond, time.Minute)
	defer stop()

	assert.Eventually(t, func() bool {
		return registry.Count() == 0
	}, time.Second, 10*time.Millisecond, fmt.Sprintf("会话未被清理，剩余%d", registry.Count()))
}
