package movement_test

import (
	"testing"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/KirkDiggler/tabletop-engine/internal/services/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePath_StraightLine(t *testing.T) {
	m := game.NewMapState("map-1", 5, 5)

	path, err := movement.ComputePath(m, game.Position{X: 0, Y: 0}, game.Position{X: 0, Y: 2})
	require.NoError(t, err)
	// Two steps across unset (normal) terrain at 5 feet each
	assert.Equal(t, 10, path.Cost)
	assert.Len(t, path.Cells, 3)
	assert.Equal(t, game.Position{X: 0, Y: 0}, path.Cells[0])
	assert.Equal(t, game.Position{X: 0, Y: 2}, path.Cells[2])
}

func TestComputePath_SameCell(t *testing.T) {
	m := game.NewMapState("map-1", 5, 5)

	path, err := movement.ComputePath(m, game.Position{X: 2, Y: 2}, game.Position{X: 2, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, path.Cost)
	assert.Len(t, path.Cells, 1)
}

func TestComputePath_PrefersCheaperLongerRoute(t *testing.T) {
	m := game.NewMapState("map-1", 5, 5)
	// The direct route from (0,0) to (2,0) passes through difficult
	// terrain; stepping around it through (1,1) is a longer walk but
	// cheaper in feet.
	m.Terrain["1,0"] = game.TerrainCell{Type: game.TerrainDifficult}

	path, err := movement.ComputePath(m, game.Position{X: 0, Y: 0}, game.Position{X: 2, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, 10, path.Cost)
	require.Len(t, path.Cells, 3)
	assert.Equal(t, game.Position{X: 1, Y: 1}, path.Cells[1])
}

func TestComputePath_TakesExpensiveRouteWhenForced(t *testing.T) {
	m := game.NewMapState("map-1", 3, 1)
	// Single-row corridor: the difficult middle cell cannot be avoided
	m.Terrain["1,0"] = game.TerrainCell{Type: game.TerrainWater}

	path, err := movement.ComputePath(m, game.Position{X: 0, Y: 0}, game.Position{X: 2, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, 15, path.Cost)
}

func TestComputePath_RoutesAroundWalls(t *testing.T) {
	m := game.NewMapState("map-1", 5, 5)
	// A wall splits the map except for a gap at (3,4)
	for y := 0; y < 4; y++ {
		m.Terrain[game.Position{X: 3, Y: y}.Key()] = game.TerrainCell{Type: game.TerrainWall}
	}

	path, err := movement.ComputePath(m, game.Position{X: 0, Y: 0}, game.Position{X: 4, Y: 0})
	require.NoError(t, err)
	found := false
	for _, cell := range path.Cells {
		if cell.X == 3 {
			assert.Equal(t, 4, cell.Y)
			found = true
		}
	}
	assert.True(t, found, "path should squeeze through the gap at (3,4)")
}

func TestComputePath_NoRoute(t *testing.T) {
	m := game.NewMapState("map-1", 5, 5)
	for y := 0; y < 5; y++ {
		m.Terrain[game.Position{X: 2, Y: y}.Key()] = game.TerrainCell{Type: game.TerrainWall}
	}

	_, err := movement.ComputePath(m, game.Position{X: 0, Y: 0}, game.Position{X: 4, Y: 0})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestComputePath_BlockedDestination(t *testing.T) {
	m := game.NewMapState("map-1", 5, 5)
	m.Terrain["2,2"] = game.TerrainCell{Type: game.TerrainLava}

	_, err := movement.ComputePath(m, game.Position{X: 0, Y: 0}, game.Position{X: 2, Y: 2})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestComputePath_OutOfBounds(t *testing.T) {
	m := game.NewMapState("map-1", 5, 5)

	_, err := movement.ComputePath(m, game.Position{X: 0, Y: 0}, game.Position{X: 7, Y: 0})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestComputePath_BlockedCellFlag(t *testing.T) {
	m := game.NewMapState("map-1", 3, 1)
	// Blocked flag on otherwise normal terrain behaves like a wall
	m.Terrain["1,0"] = game.TerrainCell{Type: game.TerrainNormal, Blocked: true}

	_, err := movement.ComputePath(m, game.Position{X: 0, Y: 0}, game.Position{X: 2, Y: 0})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}
