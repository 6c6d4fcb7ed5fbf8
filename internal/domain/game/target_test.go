package game_test

import (
	"testing"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ResolveTarget_CharacterFirst(t *testing.T) {
	sess := game.NewSession("sess-1", "ABCD1234", "host-1")
	sess.Characters["hero"] = &game.Character{ID: "hero", Name: "Mira", ArmorClass: 15, Health: 12, MaxHealth: 20}
	sess.MapState = game.NewMapState("map-1", 10, 10)
	sess.MapState.Tokens["goblin-1"] = &game.NPCToken{TokenID: "goblin-1", Name: "Goblin", ArmorClass: 13, Health: 7, MaxHealth: 7}

	target, ok := sess.ResolveTarget("hero")
	require.True(t, ok)
	assert.Equal(t, game.TargetTypeCharacter, target.Type)

	summary := target.Summary()
	assert.Equal(t, "Mira", summary.Name)
	assert.Equal(t, 15, summary.ArmorClass)
	assert.Equal(t, 12, summary.RemainingHealth)
	assert.Equal(t, 20, summary.MaxHealth)

	target, ok = sess.ResolveTarget("goblin-1")
	require.True(t, ok)
	assert.Equal(t, game.TargetTypeNPC, target.Type)
	assert.Equal(t, 13, target.ArmorClass())

	_, ok = sess.ResolveTarget("nobody")
	assert.False(t, ok)
}

func TestTarget_DamageRouting(t *testing.T) {
	token := &game.NPCToken{TokenID: "goblin-1", Health: 7, MaxHealth: 7}
	target := &game.Target{Type: game.TargetTypeNPC, NPC: token}

	target.ApplyDamage(10)
	assert.Equal(t, 0, token.Health)

	target.Heal(3)
	assert.Equal(t, 3, token.Health)
}
