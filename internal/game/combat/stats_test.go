package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wfunc/rpg-game/internal/models"
)

func TestMaxHealth(t *testing.T) {
	stats := models.Stats{Vitality: 10}
	assert.Equal(t, 105, MaxHealth(stats, 1))
	assert.Equal(t, 125, MaxHealth(stats, 5))

	stats.Vitality = 13
	assert.Equal(t, 135, MaxHealth(stats, 1))
}

func TestMaxMana(t *testing.T) {
	stats := models.Stats{Intelligence: 10}
	assert.Equal(t, 53, MaxMana(stats, 1))
	assert.Equal(t, 65, MaxMana(stats, 5))

	stats.Intelligence = 15
	assert.Equal(t, 78, MaxMana(stats, 1))
}

func TestExperienceToNextLevel(t *testing.T) {
	tests := []struct {
		level    int
		expected int
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{5, 506},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExperienceToNextLevel(tt.level), "level %d", tt.level)
	}
}

func TestBaseStatsForClass(t *testing.T) {
	warrior, ok := BaseStatsForClass(models.ClassWarrior)
	assert.True(t, ok)
	assert.Equal(t, 15, warrior.Strength)
	assert.Equal(t, 13, warrior.Vitality)
	assert.Equal(t, 10, warrior.Dexterity)

	mage, ok := BaseStatsForClass(models.ClassMage)
	assert.True(t, ok)
	assert.Equal(t, 15, mage.Intelligence)
	assert.Equal(t, 13, mage.Wisdom)

	rogue, ok := BaseStatsForClass(models.ClassRogue)
	assert.True(t, ok)
	assert.Equal(t, 15, rogue.Dexterity)
	assert.Equal(t, 13, rogue.Charisma)

	cleric, ok := BaseStatsForClass(models.ClassCleric)
	assert.True(t, ok)
	assert.Equal(t, 15, cleric.Wisdom)
	assert.Equal(t, 13, cleric.Vitality)

	_, ok = BaseStatsForClass("necromancer")
	assert.False(t, ok)
}
