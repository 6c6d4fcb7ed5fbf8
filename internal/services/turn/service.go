package turn

//go:generate mockgen -destination=mock/mock_service.go -package=mockturn -source=service.go

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/KirkDiggler/tabletop-engine/internal/dice"
	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	"github.com/KirkDiggler/tabletop-engine/internal/engine"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate"
)

// Service owns the initiative list and the single active/paused turn
type Service interface {
	// RollInitiative replaces the initiative order with a fresh roll for
	// every participant and hands the first entry the active turn
	RollInitiative(ctx context.Context, sessionID string) (*game.Session, error)

	// AddToInitiativeOrder inserts a single entity mid-encounter; no-op
	// when already present
	AddToInitiativeOrder(ctx context.Context, input *AddEntityInput) (*game.Session, error)

	// RemoveFromInitiativeOrder drops an entity, advancing the active
	// turn when it was theirs
	RemoveFromInitiativeOrder(ctx context.Context, sessionID, entityID string) (*game.Session, error)

	// StartTurn jumps the active turn directly to a named entity
	StartTurn(ctx context.Context, input *StartTurnInput) (*game.Session, error)

	// EndTurn advances the active turn to the next entity in order
	EndTurn(ctx context.Context, sessionID string) (*game.Session, error)

	// UpdateTurnUsage records movement and action usage on the active turn
	UpdateTurnUsage(ctx context.Context, input *UpdateUsageInput) (*game.Session, error)

	// InterruptTurn pauses the active turn and gives the DM control
	InterruptTurn(ctx context.Context, sessionID, dmID string) (*game.Session, error)

	// ResumeTurn restores the paused turn with fresh usage counters
	ResumeTurn(ctx context.Context, sessionID string) (*game.Session, error)

	// RollDice rolls a notation and records it in the session activity log
	RollDice(ctx context.Context, input *RollDiceInput) (*dice.NotationResult, error)
}

// AddEntityInput identifies an entity to insert into the order
type AddEntityInput struct {
	SessionID string
	EntityID  string
	Type      game.EntityType
}

// StartTurnInput names the entity whose turn begins
type StartTurnInput struct {
	SessionID string
	EntityID  string
	Type      game.EntityType
}

// UpdateUsageInput carries optional usage updates; nil fields are untouched
type UpdateUsageInput struct {
	SessionID       string
	ActorEntityID   string // when set, must match the active turn's entity
	MovementUsed    *int
	MajorActionUsed *bool
	MinorActionUsed *bool
}

// RollDiceInput is a free-form dice roll attributed to a player
type RollDiceInput struct {
	SessionID    string
	PlayerName   string
	Notation     string
	Advantage    bool
	Disadvantage bool
}

// ServiceConfig holds configuration for the turn service
type ServiceConfig struct {
	GameStateRepo gamestate.Repository // Required
	Dispatcher    *engine.Dispatcher   // Required
	Roller        dice.Roller          // Optional, will use random roller if nil
}

type service struct {
	gameStates gamestate.Repository
	dispatcher *engine.Dispatcher
	roller     dice.Roller
}

// NewService creates a new turn service
func NewService(cfg *ServiceConfig) Service {
	if cfg.GameStateRepo == nil {
		panic("game state repository is required")
	}
	if cfg.Dispatcher == nil {
		panic("dispatcher is required")
	}

	svc := &service{
		gameStates: cfg.GameStateRepo,
		dispatcher: cfg.Dispatcher,
	}

	if cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}

	return svc
}

// RollInitiative replaces the initiative order for a new encounter
func (s *service) RollInitiative(ctx context.Context, sessionID string) (*game.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.InvalidArgument("session ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.Status != game.SessionStatusActive {
			return apperr.NotReadyf("session is %s, not active", sess.Status)
		}

		// New encounter: everyone back to full health and action points
		sess.RestoreAllParticipants()

		order := make([]*game.InitiativeEntry, 0, len(sess.Characters))
		for _, char := range sess.Characters {
			entry, err := s.rollEntry(char.ID, game.EntityTypePlayer, char.DexModifier())
			if err != nil {
				return err
			}
			order = append(order, entry)
		}
		if sess.MapState != nil {
			for _, token := range sess.MapState.Tokens {
				entry, err := s.rollEntry(token.TokenID, game.EntityTypeNPC, token.DexModifier())
				if err != nil {
					return err
				}
				order = append(order, entry)
			}
		}
		if len(order) == 0 {
			return apperr.NotReady("no participants to roll initiative for")
		}

		sess.InitiativeOrder = order
		sess.SortInitiative()

		first := sess.InitiativeOrder[0]
		sess.SetActiveTurn(first.Type, first.EntityID, sess.EntitySpeed(first.Type, first.EntityID))
		sess.ResetEntityActionPoints(first.Type, first.EntityID)
		sess.AddLogEntry(fmt.Sprintf("initiative rolled, %s goes first (%d)", first.EntityID, first.Initiative))

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddToInitiativeOrder inserts a single entity in sorted position
func (s *service) AddToInitiativeOrder(ctx context.Context, input *AddEntityInput) (*game.Session, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.EntityID) == "" {
		return nil, apperr.InvalidArgument("entity ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, input.SessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, input.SessionID)
		if err != nil {
			return err
		}
		if sess.Status != game.SessionStatusActive {
			return apperr.NotReadyf("session is %s, not active", sess.Status)
		}

		// Idempotent: already in the order means nothing to do
		if sess.InitiativeIndex(input.EntityID) >= 0 {
			result = sess
			return nil
		}

		entry, err := s.rollEntry(input.EntityID, input.Type, s.entityDexMod(sess, input.Type, input.EntityID))
		if err != nil {
			return err
		}

		sess.InitiativeOrder = append(sess.InitiativeOrder, entry)
		sess.SortInitiative()

		// Landing on top of the order (or into an empty one) takes the turn
		if sess.InitiativeIndex(input.EntityID) == 0 {
			sess.SetActiveTurn(entry.Type, entry.EntityID, sess.EntitySpeed(entry.Type, entry.EntityID))
			sess.ResetEntityActionPoints(entry.Type, entry.EntityID)
		}
		sess.AddLogEntry(fmt.Sprintf("%s joined initiative at %d", input.EntityID, entry.Initiative))

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveFromInitiativeOrder drops an entity from the order
func (s *service) RemoveFromInitiativeOrder(ctx context.Context, sessionID, entityID string) (*game.Session, error) {
	if strings.TrimSpace(entityID) == "" {
		return nil, apperr.InvalidArgument("entity ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		idx := sess.InitiativeIndex(entityID)
		if idx < 0 {
			return apperr.NotReadyf("entity %s is not in the initiative order", entityID)
		}

		wasActive := sess.ActiveTurn != nil && sess.ActiveTurn.EntityID == entityID
		sess.InitiativeOrder = append(sess.InitiativeOrder[:idx], sess.InitiativeOrder[idx+1:]...)

		if wasActive {
			if len(sess.InitiativeOrder) == 0 {
				sess.ActiveTurn = nil
			} else {
				// The entry now sitting at the removed slot goes next
				next := sess.InitiativeOrder[idx%len(sess.InitiativeOrder)]
				sess.SetActiveTurn(next.Type, next.EntityID, sess.EntitySpeed(next.Type, next.EntityID))
				sess.ResetEntityActionPoints(next.Type, next.EntityID)
			}
		}

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StartTurn jumps the active turn to a named entity
func (s *service) StartTurn(ctx context.Context, input *StartTurnInput) (*game.Session, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.EntityID) == "" {
		return nil, apperr.InvalidArgument("entity ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, input.SessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, input.SessionID)
		if err != nil {
			return err
		}
		if sess.Status != game.SessionStatusActive {
			return apperr.NotReadyf("session is %s, not active", sess.Status)
		}

		entityType := input.Type
		if idx := sess.InitiativeIndex(input.EntityID); idx >= 0 {
			entityType = sess.InitiativeOrder[idx].Type
		}

		sess.SetActiveTurn(entityType, input.EntityID, sess.EntitySpeed(entityType, input.EntityID))
		sess.ResetEntityActionPoints(entityType, input.EntityID)

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EndTurn advances to the next entity in initiative order
func (s *service) EndTurn(ctx context.Context, sessionID string) (*game.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.InvalidArgument("session ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.ActiveTurn == nil {
			return apperr.NotReady("no active turn to end")
		}
		if len(sess.InitiativeOrder) == 0 {
			return apperr.NotReady("initiative order is empty")
		}

		idx := sess.InitiativeIndex(sess.ActiveTurn.EntityID)
		if idx < 0 {
			return apperr.NotReadyf("active entity %s is not in the initiative order", sess.ActiveTurn.EntityID)
		}

		next := sess.InitiativeOrder[(idx+1)%len(sess.InitiativeOrder)]
		sess.SetActiveTurn(next.Type, next.EntityID, sess.EntitySpeed(next.Type, next.EntityID))
		sess.ResetEntityActionPoints(next.Type, next.EntityID)

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateTurnUsage records usage on the active turn
func (s *service) UpdateTurnUsage(ctx context.Context, input *UpdateUsageInput) (*game.Session, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, input.SessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, input.SessionID)
		if err != nil {
			return err
		}
		if sess.ActiveTurn == nil {
			return apperr.NotReady("no active turn")
		}
		if input.ActorEntityID != "" && input.ActorEntityID != sess.ActiveTurn.EntityID {
			return apperr.PermissionDeniedf("it is %s's turn, not %s's",
				sess.ActiveTurn.EntityID, input.ActorEntityID)
		}

		if input.MovementUsed != nil {
			moved := *input.MovementUsed
			if moved < 0 {
				moved = 0
			}
			if moved > sess.ActiveTurn.Speed {
				moved = sess.ActiveTurn.Speed
			}
			sess.ActiveTurn.MovementUsed = moved
		}
		if input.MajorActionUsed != nil {
			sess.ActiveTurn.MajorActionUsed = *input.MajorActionUsed
		}
		if input.MinorActionUsed != nil {
			sess.ActiveTurn.MinorActionUsed = *input.MinorActionUsed
		}

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// InterruptTurn pauses the active turn and hands control to the DM
func (s *service) InterruptTurn(ctx context.Context, sessionID, dmID string) (*game.Session, error) {
	if strings.TrimSpace(dmID) == "" {
		return nil, apperr.InvalidArgument("DM ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if !sess.IsHost(dmID) {
			return apperr.PermissionDenied("only the host can interrupt a turn")
		}
		if !sess.InterruptTurn(dmID) {
			if sess.PausedTurn != nil {
				return apperr.NotReady("a turn is already paused")
			}
			return apperr.NotReady("no active turn to interrupt")
		}
		sess.AddLogEntry("turn interrupted by the DM")

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResumeTurn restores the paused turn
func (s *service) ResumeTurn(ctx context.Context, sessionID string) (*game.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.InvalidArgument("session ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if !sess.ResumeTurn() {
			return apperr.NotReady("no paused turn to resume")
		}
		sess.AddLogEntry(fmt.Sprintf("turn resumed for %s", sess.ActiveTurn.EntityID))

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RollDice rolls a free-form notation and logs it to the session
func (s *service) RollDice(ctx context.Context, input *RollDiceInput) (*dice.NotationResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}

	rolled, err := dice.RollNotation(s.roller, input.Notation, input.Advantage, input.Disadvantage)
	if err != nil {
		return nil, err
	}

	log.Printf("dice: %s rolled %s: %s", input.PlayerName, input.Notation, rolled.Breakdown)

	if input.SessionID != "" {
		err = s.dispatcher.Submit(ctx, input.SessionID, func(ctx context.Context) error {
			sess, err := s.gameStates.Get(ctx, input.SessionID)
			if err != nil {
				return err
			}
			sess.AddLogEntry(fmt.Sprintf("%s rolled %s: %s", input.PlayerName, input.Notation, rolled.Breakdown))
			return s.gameStates.Update(ctx, sess)
		})
		if err != nil {
			return nil, apperr.Wrap(err, "failed to log dice roll")
		}
	}

	return rolled, nil
}

// rollEntry draws initiative for one entity
func (s *service) rollEntry(entityID string, entityType game.EntityType, dexMod int) (*game.InitiativeEntry, error) {
	rolled, err := s.roller.Roll(1, 20, 0)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to roll initiative")
	}
	return &game.InitiativeEntry{
		EntityID:   entityID,
		Type:       entityType,
		Initiative: rolled.Total + dexMod,
		Roll:       rolled.Total,
		DexMod:     dexMod,
	}, nil
}

// entityDexMod resolves the DEX modifier for a mid-encounter insert
func (s *service) entityDexMod(sess *game.Session, entityType game.EntityType, entityID string) int {
	switch entityType {
	case game.EntityTypePlayer:
		if char, ok := sess.Characters[entityID]; ok {
			return char.DexModifier()
		}
	case game.EntityTypeNPC:
		if sess.MapState != nil {
			if token, ok := sess.MapState.Tokens[entityID]; ok {
				return token.DexModifier()
			}
		}
	}
	return 0
}
