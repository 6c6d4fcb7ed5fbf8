package dnd5e

//go:generate mockgen -destination=mock/mock_client.go -package=mockdnd5e -source=interface.go

import (
	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
)

// Client is the external spell catalog the combat resolver looks
// spells up in
type Client interface {
	// GetSpell retrieves a spell by its catalog key
	GetSpell(key string) (*game.Spell, error)
}
