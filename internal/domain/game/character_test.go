package game_test

import (
	"testing"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	"github.com/stretchr/testify/assert"
)

func TestAbilityModifier(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{score: 10, want: 0},
		{score: 11, want: 0},
		{score: 12, want: 1},
		{score: 15, want: 2},
		{score: 20, want: 5},
		{score: 9, want: -1},
		{score: 8, want: -1},
		{score: 7, want: -2},
		{score: 3, want: -4},
		{score: 1, want: -5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, game.AbilityModifier(tt.score), "score %d", tt.score)
	}
}

func TestCharacter_DamageFloorsAtZero(t *testing.T) {
	char := &game.Character{Health: 10, MaxHealth: 20}

	char.ApplyDamage(15)
	assert.Equal(t, 0, char.Health)
	assert.False(t, char.IsAlive())
}

func TestCharacter_HealCapsAtMax(t *testing.T) {
	char := &game.Character{Health: 18, MaxHealth: 20}

	char.Heal(10)
	assert.Equal(t, 20, char.Health)
}

func TestCharacter_SpendActionPoints(t *testing.T) {
	char := &game.Character{ActionPoints: 2, MaxActionPoints: 3}

	assert.True(t, char.SpendActionPoints(2))
	assert.Equal(t, 0, char.ActionPoints)
	assert.False(t, char.SpendActionPoints(1))

	char.ResetActionPoints()
	assert.Equal(t, 3, char.ActionPoints)
}

func TestCharacter_ProficiencyBonus(t *testing.T) {
	assert.Equal(t, 2, (&game.Character{Level: 1}).ProficiencyBonus())
	assert.Equal(t, 2, (&game.Character{Level: 4}).ProficiencyBonus())
	assert.Equal(t, 3, (&game.Character{Level: 5}).ProficiencyBonus())
	assert.Equal(t, 6, (&game.Character{Level: 17}).ProficiencyBonus())
	// Unset level behaves like level 1
	assert.Equal(t, 2, (&game.Character{}).ProficiencyBonus())
}

func TestNPCToken_DamageAndHeal(t *testing.T) {
	token := &game.NPCToken{Health: 5, MaxHealth: 12}

	token.ApplyDamage(9)
	assert.Equal(t, 0, token.Health)

	token.Heal(20)
	assert.Equal(t, 12, token.Health)
}
