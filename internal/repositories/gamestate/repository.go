package gamestate

//go:generate mockgen -destination=mock/mock_repository.go -package=mockgamestate -source=repository.go

import (
	"context"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
)

// Repository is the session-state store: the authoritative, versioned
// snapshot of each game. Update is the single commit point and bumps
// the snapshot version; a stale snapshot is rejected with a conflict.
type Repository interface {
	// Create stores a brand-new session state
	Create(ctx context.Context, sess *game.Session) error

	// Get retrieves a session state by ID
	Get(ctx context.Context, id string) (*game.Session, error)

	// GetByInviteCode retrieves a session state by its invite code
	GetByInviteCode(ctx context.Context, code string) (*game.Session, error)

	// Update commits a mutated snapshot, bumping its version
	Update(ctx context.Context, sess *game.Session) error

	// Delete removes a session state
	Delete(ctx context.Context, id string) error
}
