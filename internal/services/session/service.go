package session

//go:generate mockgen -destination=mock/mock_service.go -package=mocksession -source=service.go

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	"github.com/KirkDiggler/tabletop-engine/internal/engine"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/characters"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate"
	"github.com/KirkDiggler/tabletop-engine/internal/uuid"
)

// Service manages session lifecycle: creation, joining, start and end
type Service interface {
	// InitializeSession creates a new session in the waiting state
	InitializeSession(ctx context.Context, input *InitializeSessionInput) (*game.Session, error)

	// JoinSession adds a player and their character to a waiting session
	JoinSession(ctx context.Context, input *JoinSessionInput) (*game.Session, error)

	// StartSession moves a waiting session to active (host only)
	StartSession(ctx context.Context, input *StartSessionInput) (*game.Session, error)

	// EndSession concludes an active session, discarding turn state (host only)
	EndSession(ctx context.Context, sessionID, playerID string) (*game.Session, error)

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, sessionID string) (*game.Session, error)

	// GetSessionByInviteCode retrieves a session by invite code
	GetSessionByInviteCode(ctx context.Context, code string) (*game.Session, error)
}

// InitializeSessionInput contains data for creating a session
type InitializeSessionInput struct {
	HostID       string
	HostName     string
	Quest        string
	World        string
	StartingArea string
}

// JoinSessionInput contains data for joining a session
type JoinSessionInput struct {
	SessionID   string // either SessionID or InviteCode is required
	InviteCode  string
	PlayerID    string
	PlayerName  string
	CharacterID string
}

// StartSessionInput contains data for starting a session
type StartSessionInput struct {
	SessionID string
	PlayerID  string
	MapState  *game.MapState // optional initial map
}

// ServiceConfig holds configuration for the session service
type ServiceConfig struct {
	GameStateRepo gamestate.Repository  // Required
	CharacterRepo characters.Repository // Required
	Dispatcher    *engine.Dispatcher    // Required
	UUIDGenerator uuid.Generator        // Optional, will use default if nil
}

type service struct {
	gameStates    gamestate.Repository
	characters    characters.Repository
	dispatcher    *engine.Dispatcher
	uuidGenerator uuid.Generator
}

// NewService creates a new session service
func NewService(cfg *ServiceConfig) Service {
	if cfg.GameStateRepo == nil {
		panic("game state repository is required")
	}
	if cfg.CharacterRepo == nil {
		panic("character repository is required")
	}
	if cfg.Dispatcher == nil {
		panic("dispatcher is required")
	}

	svc := &service{
		gameStates: cfg.GameStateRepo,
		characters: cfg.CharacterRepo,
		dispatcher: cfg.Dispatcher,
	}

	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}

	return svc
}

// InitializeSession creates a new session in the waiting state
func (s *service) InitializeSession(ctx context.Context, input *InitializeSessionInput) (*game.Session, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.HostID) == "" {
		return nil, apperr.InvalidArgument("host ID is required")
	}

	sessionID := s.uuidGenerator.New()
	inviteCode := generateInviteCode()

	sess := game.NewSession(sessionID, inviteCode, input.HostID)
	sess.Quest = input.Quest
	sess.World = input.World
	sess.StartingArea = input.StartingArea
	sess.AddPlayer(input.HostID, input.HostName, "")

	if err := s.gameStates.Create(ctx, sess); err != nil {
		return nil, apperr.Wrap(err, "failed to create session").
			WithMeta("session_id", sessionID)
	}

	return sess, nil
}

// JoinSession adds a player and their character to a session
func (s *service) JoinSession(ctx context.Context, input *JoinSessionInput) (*game.Session, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.PlayerID) == "" {
		return nil, apperr.InvalidArgument("player ID is required")
	}
	if strings.TrimSpace(input.CharacterID) == "" {
		return nil, apperr.InvalidArgument("character ID is required")
	}
	if input.SessionID == "" && input.InviteCode == "" {
		return nil, apperr.InvalidArgument("session ID or invite code is required")
	}

	sessionID := input.SessionID
	if sessionID == "" {
		found, err := s.gameStates.GetByInviteCode(ctx, input.InviteCode)
		if err != nil {
			return nil, apperr.Wrapf(err, "failed to resolve invite code '%s'", input.InviteCode)
		}
		sessionID = found.ID
	}

	char, err := s.characters.Get(ctx, input.CharacterID)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to get character '%s'", input.CharacterID).
			WithMeta("character_id", input.CharacterID)
	}
	if char.OwnerID != "" && char.OwnerID != input.PlayerID {
		return nil, apperr.PermissionDeniedf("character '%s' belongs to another player", input.CharacterID)
	}

	var result *game.Session
	err = s.dispatcher.Submit(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		if sess.Status == game.SessionStatusCompleted || sess.Status == game.SessionStatusCancelled {
			return apperr.NotReadyf("session %s has ended", sessionID)
		}
		if sess.HasPlayer(input.PlayerID) {
			return apperr.InvalidArgumentf("player %s already joined", input.PlayerID)
		}

		sess.AddPlayer(input.PlayerID, input.PlayerName, char.ID)
		// The session keeps its own copy; the durable record is untouched
		// until the session ends.
		joined := *char
		sess.Characters[char.ID] = &joined
		sess.AddLogEntry(fmt.Sprintf("%s joined with %s", input.PlayerName, char.Name))

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

// StartSession moves a waiting session to active
func (s *service) StartSession(ctx context.Context, input *StartSessionInput) (*game.Session, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, apperr.InvalidArgument("session ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, input.SessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, input.SessionID)
		if err != nil {
			return err
		}

		if !sess.IsHost(input.PlayerID) {
			return apperr.PermissionDenied("only the host can start the session")
		}
		if !sess.Start() {
			return apperr.NotReadyf("session is %s, not waiting", sess.Status)
		}

		if input.MapState != nil {
			sess.MapState = input.MapState
		}
		sess.AddLogEntry("session started")

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

// EndSession concludes an active session
func (s *service) EndSession(ctx context.Context, sessionID, playerID string) (*game.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.InvalidArgument("session ID is required")
	}

	var result *game.Session
	err := s.dispatcher.Submit(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		if !sess.IsHost(playerID) {
			return apperr.PermissionDenied("only the host can end the session")
		}
		if !sess.Complete() {
			return apperr.NotReadyf("session is %s, not active", sess.Status)
		}
		sess.AddLogEntry("session ended")

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

// GetSession retrieves a session by ID
func (s *service) GetSession(ctx context.Context, sessionID string) (*game.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.InvalidArgument("session ID is required")
	}

	sess, err := s.gameStates.Get(ctx, sessionID)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to get session '%s'", sessionID).
			WithMeta("session_id", sessionID)
	}
	return sess, nil
}

// GetSessionByInviteCode retrieves a session by invite code
func (s *service) GetSessionByInviteCode(ctx context.Context, code string) (*game.Session, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperr.InvalidArgument("invite code is required")
	}

	sess, err := s.gameStates.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to get session by invite code '%s'", code).
			WithMeta("invite_code", code)
	}
	return sess, nil
}

// generateInviteCode generates a short shareable invite code
func generateInviteCode() string {
	// 4 bytes, 8 hex chars
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based code
		return fmt.Sprintf("INV%d", time.Now().Unix())
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
