package game_test

import (
	"testing"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	"github.com/stretchr/testify/assert"
)

func TestTerrainCost(t *testing.T) {
	assert.Equal(t, 5, game.TerrainCost(game.TerrainNormal))
	assert.Equal(t, 10, game.TerrainCost(game.TerrainDifficult))
	assert.Equal(t, 10, game.TerrainCost(game.TerrainWater))
	assert.Equal(t, game.CostBlocked, game.TerrainCost(game.TerrainLava))
	assert.Equal(t, game.CostBlocked, game.TerrainCost(game.TerrainWall))
}

func TestMapState_EntryCost(t *testing.T) {
	m := game.NewMapState("map-1", 5, 5)
	m.Terrain[game.Position{X: 1, Y: 1}.Key()] = game.TerrainCell{Type: game.TerrainDifficult}
	m.Terrain[game.Position{X: 2, Y: 2}.Key()] = game.TerrainCell{Type: game.TerrainNormal, Blocked: true}

	// Unset cells default to normal terrain
	assert.Equal(t, 5, m.EntryCost(game.Position{X: 0, Y: 0}))
	assert.Equal(t, 10, m.EntryCost(game.Position{X: 1, Y: 1}))
	// Blocked flag beats terrain type
	assert.Equal(t, game.CostBlocked, m.EntryCost(game.Position{X: 2, Y: 2}))
	// Out of bounds is blocked
	assert.Equal(t, game.CostBlocked, m.EntryCost(game.Position{X: 5, Y: 0}))
	assert.Equal(t, game.CostBlocked, m.EntryCost(game.Position{X: -1, Y: 0}))
}
