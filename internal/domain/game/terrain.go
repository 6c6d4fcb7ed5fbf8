package game

import "fmt"

// TerrainType identifies how costly a cell is to enter
type TerrainType string

const (
	TerrainNormal    TerrainType = "normal"
	TerrainDifficult TerrainType = "difficult"
	TerrainWater     TerrainType = "water"
	TerrainLava      TerrainType = "lava"
	TerrainWall      TerrainType = "wall"
)

// CostBlocked is the reserved cost for cells that cannot be entered
const CostBlocked = -1

// TerrainCost returns the cost of entering a cell of the given type.
// Costs are in feet, matching movement speeds (a normal cell is one
// 5-foot square).
func TerrainCost(t TerrainType) int {
	switch t {
	case TerrainNormal:
		return 5
	case TerrainDifficult, TerrainWater:
		return 10
	case TerrainLava, TerrainWall:
		return CostBlocked
	default:
		return 5
	}
}

// TerrainCell describes a single grid coordinate
type TerrainCell struct {
	Type      TerrainType `json:"type"`
	Elevation int         `json:"elevation"`
	Blocked   bool        `json:"blocked"`
}

// EntryCost is the cost of stepping into this cell
func (c TerrainCell) EntryCost() int {
	if c.Blocked {
		return CostBlocked
	}
	return TerrainCost(c.Type)
}

// Position is a grid coordinate
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key renders the position as the map key used for terrain lookups
func (p Position) Key() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// MapState is the grid a session plays on: terrain, NPC tokens and
// character positions
type MapState struct {
	MapID              string               `json:"map_id"`
	Width              int                  `json:"width"`
	Height             int                  `json:"height"`
	Terrain            map[string]TerrainCell `json:"terrain"`
	Tokens             map[string]*NPCToken   `json:"tokens"`
	CharacterPositions map[string]Position    `json:"character_positions"`
}

// NewMapState creates an empty map of the given dimensions
func NewMapState(mapID string, width, height int) *MapState {
	return &MapState{
		MapID:              mapID,
		Width:              width,
		Height:             height,
		Terrain:            make(map[string]TerrainCell),
		Tokens:             make(map[string]*NPCToken),
		CharacterPositions: make(map[string]Position),
	}
}

// InBounds reports whether the position lies on the grid
func (m *MapState) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

// CellAt returns the terrain cell at a position. Unset cells default
// to normal terrain.
func (m *MapState) CellAt(p Position) TerrainCell {
	if cell, ok := m.Terrain[p.Key()]; ok {
		return cell
	}
	return TerrainCell{Type: TerrainNormal}
}

// EntryCost is the cost of stepping into the cell at p, or CostBlocked
func (m *MapState) EntryCost(p Position) int {
	if !m.InBounds(p) {
		return CostBlocked
	}
	return m.CellAt(p).EntryCost()
}
