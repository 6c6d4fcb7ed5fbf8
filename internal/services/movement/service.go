package movement

//go:generate mockgen -destination=mock/mock_service.go -package=mockmovement -source=service.go

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	"github.com/KirkDiggler/tabletop-engine/internal/engine"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate"
)

// Service validates and applies movement across the session map
type Service interface {
	// Move validates a route for an entity and applies it to the map,
	// charging the active turn's movement budget when it is that
	// entity's turn
	Move(ctx context.Context, input *MoveInput) (*MoveResult, error)
}

// MoveInput identifies the mover and the destination. The engine
// recomputes the path and its cost itself; clients never report costs.
type MoveInput struct {
	SessionID string
	PlayerID  string
	EntityID  string
	To        game.Position
}

// MoveResult carries the applied route and the updated budget
type MoveResult struct {
	Path              *Path         `json:"path"`
	MovementUsed      int           `json:"movement_used"`
	RemainingMovement int           `json:"remaining_movement"`
	Session           *game.Session `json:"-"`
}

// ServiceConfig holds configuration for the movement service
type ServiceConfig struct {
	GameStateRepo gamestate.Repository // Required
	Dispatcher    *engine.Dispatcher   // Required
}

type service struct {
	gameStates gamestate.Repository
	dispatcher *engine.Dispatcher
}

// NewService creates a new movement service
func NewService(cfg *ServiceConfig) Service {
	if cfg.GameStateRepo == nil {
		panic("game state repository is required")
	}
	if cfg.Dispatcher == nil {
		panic("dispatcher is required")
	}

	return &service{
		gameStates: cfg.GameStateRepo,
		dispatcher: cfg.Dispatcher,
	}
}

// Move validates a route and applies it
func (s *service) Move(ctx context.Context, input *MoveInput) (*MoveResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.EntityID) == "" {
		return nil, apperr.InvalidArgument("entity ID is required")
	}

	var result *MoveResult
	err := s.dispatcher.Submit(ctx, input.SessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, input.SessionID)
		if err != nil {
			return err
		}
		if sess.Status != game.SessionStatusActive {
			return apperr.NotReadyf("session is %s, not active", sess.Status)
		}
		if sess.MapState == nil {
			return apperr.NotReady("session has no map")
		}

		if err := s.checkMovePermission(sess, input.PlayerID, input.EntityID); err != nil {
			return err
		}

		from, err := entityPosition(sess.MapState, input.EntityID)
		if err != nil {
			return err
		}

		// Fast-path guard before any pathfinding
		if !sess.MapState.InBounds(input.To) {
			return apperr.InvalidArgumentf("destination %s is out of bounds", input.To.Key())
		}
		if sess.MapState.EntryCost(input.To) == game.CostBlocked {
			return apperr.InvalidArgumentf("destination %s is blocked", input.To.Key())
		}

		path, err := ComputePath(sess.MapState, from, input.To)
		if err != nil {
			return err
		}

		moveResult := &MoveResult{Path: path}

		// Budget bookkeeping belongs to the active turn alone; moves by
		// other entities (DM repositioning) leave it untouched.
		if turn := sess.ActiveTurn; turn != nil && turn.EntityID == input.EntityID {
			if path.Cost > turn.RemainingMovement() && !sess.IsHost(input.PlayerID) {
				return apperr.Insufficientf("path costs %d but only %d movement remains",
					path.Cost, turn.RemainingMovement()).
					WithMeta("entity_id", input.EntityID).
					WithMeta("path_cost", path.Cost)
			}
			turn.MovementUsed += path.Cost
			if turn.MovementUsed > turn.Speed {
				turn.MovementUsed = turn.Speed
			}
			moveResult.MovementUsed = turn.MovementUsed
			moveResult.RemainingMovement = turn.RemainingMovement()
		}

		applyPosition(sess.MapState, input.EntityID, input.To)
		sess.AddLogEntry(fmt.Sprintf("%s moved to %s (cost %d)", input.EntityID, input.To.Key(), path.Cost))

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		moveResult.Session = sess
		result = moveResult
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkMovePermission allows the host to move anything and players to
// move only their own character
func (s *service) checkMovePermission(sess *game.Session, playerID, entityID string) error {
	if sess.IsHost(playerID) {
		return nil
	}
	if char, ok := sess.Characters[entityID]; ok {
		if char.OwnerID == playerID {
			return nil
		}
		return apperr.PermissionDeniedf("character %s belongs to another player", entityID)
	}
	return apperr.PermissionDenied("only the host can move NPC tokens")
}

// entityPosition resolves the mover's current cell
func entityPosition(m *game.MapState, entityID string) (game.Position, error) {
	if pos, ok := m.CharacterPositions[entityID]; ok {
		return pos, nil
	}
	if token, ok := m.Tokens[entityID]; ok {
		return game.Position{X: token.X, Y: token.Y}, nil
	}
	return game.Position{}, apperr.NotFoundf("entity %s is not on the map", entityID)
}

// applyPosition writes the mover's new cell back to the map
func applyPosition(m *game.MapState, entityID string, to game.Position) {
	if _, ok := m.CharacterPositions[entityID]; ok {
		m.CharacterPositions[entityID] = to
		return
	}
	if token, ok := m.Tokens[entityID]; ok {
		token.X = to.X
		token.Y = to.Y
	}
}
