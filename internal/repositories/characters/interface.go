package characters

//go:generate mockgen -destination=mock/mock_repository.go -package=mockcharacters -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
)

// Repository stores durable character records. Characters referenced
// by a session are copied into its state blob when the player joins;
// this store is the between-sessions source of truth.
type Repository interface {
	// Create stores a new character record
	Create(ctx context.Context, char *game.Character) error

	// Get retrieves a character by ID
	Get(ctx context.Context, id string) (*game.Character, error)

	// Update replaces an existing character record
	Update(ctx context.Context, char *game.Character) error

	// Delete removes a character record
	Delete(ctx context.Context, id string) error

	// GetByOwner retrieves all characters belonging to a player
	GetByOwner(ctx context.Context, ownerID string) ([]*game.Character, error)
}
