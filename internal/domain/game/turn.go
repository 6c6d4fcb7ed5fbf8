package game

import "time"

// EntityType identifies who owns a turn or initiative entry
type EntityType string

const (
	EntityTypePlayer EntityType = "player"
	EntityTypeNPC    EntityType = "npc"
	EntityTypeDM     EntityType = "dm"
)

// DefaultCreatureSpeed is used for NPC and DM turns when the entity
// carries no speed of its own
const DefaultCreatureSpeed = 30

// InitiativeEntry is one slot in the encounter turn sequence
type InitiativeEntry struct {
	EntityID   string     `json:"entity_id"`
	Type       EntityType `json:"type"`
	Initiative int        `json:"initiative"`
	Roll       int        `json:"roll"`
	DexMod     int        `json:"dex_mod"`
}

// ActiveTurn is the single entity currently permitted to act
type ActiveTurn struct {
	Type            EntityType `json:"type"`
	EntityID        string     `json:"entity_id"`
	TurnNumber      int        `json:"turn_number"`
	StartedAt       time.Time  `json:"started_at"`
	MovementUsed    int        `json:"movement_used"`
	MajorActionUsed bool       `json:"major_action_used"`
	MinorActionUsed bool       `json:"minor_action_used"`
	Speed           int        `json:"speed"`
}

// RemainingMovement is the budget left this turn
func (t *ActiveTurn) RemainingMovement() int {
	remaining := t.Speed - t.MovementUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PausedTurn is an interrupted Active Turn awaiting resume; usage
// fields are deliberately dropped
type PausedTurn struct {
	Type       EntityType `json:"type"`
	EntityID   string     `json:"entity_id"`
	TurnNumber int        `json:"turn_number"`
	StartedAt  time.Time  `json:"started_at"`
}
