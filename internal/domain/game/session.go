package game

import (
	"sort"
	"time"
)

// SessionStatus represents the current state of a game session
type SessionStatus string

const (
	SessionStatusWaiting   SessionStatus = "waiting"   // Session is being set up
	SessionStatusActive    SessionStatus = "active"    // Session is in progress
	SessionStatusCompleted SessionStatus = "completed" // Session has concluded
	SessionStatusCancelled SessionStatus = "cancelled" // Session was abandoned
)

// maxLogEntries bounds the activity log kept on the state blob
const maxLogEntries = 50

// Player is a human participant in a session
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CharacterID string    `json:"character_id"`
	IsHost      bool      `json:"is_host"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Session is the authoritative snapshot of one game: characters,
// initiative order, the single active/paused turn, map state and
// activity log. Every component mutates a loaded copy and commits it
// back through the repository; Version increases on every commit.
type Session struct {
	ID           string                `json:"id"`
	InviteCode   string                `json:"invite_code"`
	HostID       string                `json:"host_id"`
	Quest        string                `json:"quest"`
	World        string                `json:"world"`
	StartingArea string                `json:"starting_area"`
	Status       SessionStatus         `json:"status"`
	Players      map[string]*Player    `json:"players"`
	Characters   map[string]*Character `json:"characters"`

	InitiativeOrder []*InitiativeEntry `json:"initiative_order,omitempty"`
	ActiveTurn      *ActiveTurn        `json:"active_turn,omitempty"`
	PausedTurn      *PausedTurn        `json:"paused_turn,omitempty"`
	TurnCounter     int                `json:"turn_counter"`

	MapState    *MapState `json:"map_state,omitempty"`
	ActivityLog []string  `json:"activity_log,omitempty"`

	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	LastActive time.Time  `json:"last_active"`
}

// NewSession creates a session in the waiting state
func NewSession(id, inviteCode, hostID string) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		InviteCode: inviteCode,
		HostID:     hostID,
		Status:     SessionStatusWaiting,
		Players:    make(map[string]*Player),
		Characters: make(map[string]*Character),
		CreatedAt:  now,
		LastActive: now,
	}
}

// AddPlayer registers a participant; the host flag follows HostID
func (s *Session) AddPlayer(playerID, name, characterID string) *Player {
	player := &Player{
		ID:          playerID,
		Name:        name,
		CharacterID: characterID,
		IsHost:      playerID == s.HostID,
		JoinedAt:    time.Now(),
	}
	s.Players[playerID] = player
	s.LastActive = time.Now()
	return player
}

// IsHost reports whether the given player holds host/DM privilege
func (s *Session) IsHost(playerID string) bool {
	return playerID == s.HostID
}

// HasPlayer checks whether a player already joined
func (s *Session) HasPlayer(playerID string) bool {
	_, exists := s.Players[playerID]
	return exists
}

// Start moves the session from waiting to active
func (s *Session) Start() bool {
	if s.Status != SessionStatusWaiting {
		return false
	}

	now := time.Now()
	s.Status = SessionStatusActive
	s.StartedAt = &now
	s.LastActive = now
	return true
}

// Complete concludes the session and discards all turn state
func (s *Session) Complete() bool {
	if s.Status != SessionStatusActive {
		return false
	}

	now := time.Now()
	s.Status = SessionStatusCompleted
	s.EndedAt = &now
	s.LastActive = now
	s.discardTurnState()
	return true
}

// Cancel abandons a session in any non-terminal state
func (s *Session) Cancel() bool {
	if s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled {
		return false
	}

	now := time.Now()
	s.Status = SessionStatusCancelled
	s.EndedAt = &now
	s.LastActive = now
	s.discardTurnState()
	return true
}

// discardTurnState drops, not merely clears, encounter-scoped state
func (s *Session) discardTurnState() {
	s.InitiativeOrder = nil
	s.ActiveTurn = nil
	s.PausedTurn = nil
}

// AddLogEntry appends to the activity log, keeping it bounded
func (s *Session) AddLogEntry(entry string) {
	s.ActivityLog = append(s.ActivityLog, entry)
	if len(s.ActivityLog) > maxLogEntries {
		s.ActivityLog = s.ActivityLog[len(s.ActivityLog)-maxLogEntries:]
	}
}

// SortInitiative orders entries descending by initiative, ties broken
// by dexterity modifier
func (s *Session) SortInitiative() {
	sort.SliceStable(s.InitiativeOrder, func(i, j int) bool {
		a, b := s.InitiativeOrder[i], s.InitiativeOrder[j]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		return a.DexMod > b.DexMod
	})
}

// InitiativeIndex locates an entity in the order, -1 when absent
func (s *Session) InitiativeIndex(entityID string) int {
	for i, entry := range s.InitiativeOrder {
		if entry.EntityID == entityID {
			return i
		}
	}
	return -1
}

// SetActiveTurn replaces the active turn with a fresh one for the
// given entity; the turn number advances by one on every replacement
func (s *Session) SetActiveTurn(entityType EntityType, entityID string, speed int) *ActiveTurn {
	s.TurnCounter++
	s.ActiveTurn = &ActiveTurn{
		Type:       entityType,
		EntityID:   entityID,
		TurnNumber: s.TurnCounter,
		StartedAt:  time.Now(),
		Speed:      speed,
	}
	return s.ActiveTurn
}

// InterruptTurn snapshots the active turn and hands control to the DM.
// Fails when there is nothing to interrupt or an interruption is
// already outstanding.
func (s *Session) InterruptTurn(dmID string) bool {
	if s.ActiveTurn == nil || s.PausedTurn != nil {
		return false
	}

	s.PausedTurn = &PausedTurn{
		Type:       s.ActiveTurn.Type,
		EntityID:   s.ActiveTurn.EntityID,
		TurnNumber: s.ActiveTurn.TurnNumber,
		StartedAt:  s.ActiveTurn.StartedAt,
	}
	s.SetActiveTurn(EntityTypeDM, dmID, DefaultCreatureSpeed)
	return true
}

// ResumeTurn restores the paused turn with usage counters reset; the
// original turn number is reused
func (s *Session) ResumeTurn() bool {
	if s.PausedTurn == nil {
		return false
	}

	paused := s.PausedTurn
	s.ActiveTurn = &ActiveTurn{
		Type:       paused.Type,
		EntityID:   paused.EntityID,
		TurnNumber: paused.TurnNumber,
		StartedAt:  paused.StartedAt,
		Speed:      s.EntitySpeed(paused.Type, paused.EntityID),
	}
	s.PausedTurn = nil
	return true
}

// EntitySpeed resolves the movement speed for a turn owner. NPC and DM
// turns fall back to the default creature speed.
func (s *Session) EntitySpeed(entityType EntityType, entityID string) int {
	switch entityType {
	case EntityTypePlayer:
		if char, ok := s.Characters[entityID]; ok && char.Speed > 0 {
			return char.Speed
		}
	case EntityTypeNPC:
		if s.MapState != nil {
			if token, ok := s.MapState.Tokens[entityID]; ok && token.Speed > 0 {
				return token.Speed
			}
		}
	}
	return DefaultCreatureSpeed
}

// ResetEntityActionPoints refills the action budget of a turn owner
func (s *Session) ResetEntityActionPoints(entityType EntityType, entityID string) {
	switch entityType {
	case EntityTypePlayer:
		if char, ok := s.Characters[entityID]; ok {
			char.ResetActionPoints()
		}
	case EntityTypeNPC:
		if s.MapState != nil {
			if token, ok := s.MapState.Tokens[entityID]; ok {
				token.ResetActionPoints()
			}
		}
	}
}

// RestoreAllParticipants returns every character and NPC token to full
// health and action points (new-encounter reset)
func (s *Session) RestoreAllParticipants() {
	for _, char := range s.Characters {
		char.RestoreAll()
	}
	if s.MapState != nil {
		for _, token := range s.MapState.Tokens {
			token.RestoreAll()
		}
	}
}
