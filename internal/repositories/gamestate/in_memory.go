package gamestate

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
)

type inMemoryRepository struct {
	mu       sync.RWMutex
	states   map[string][]byte // stored serialized so callers never share memory
	byInvite map[string]string // invite code -> session ID
}

// NewInMemoryRepository creates an in-memory session-state repository,
// useful for tests and local development
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		states:   make(map[string][]byte),
		byInvite: make(map[string]string),
	}
}

// Create stores a brand-new session state
func (r *inMemoryRepository) Create(_ context.Context, sess *game.Session) error {
	if sess == nil {
		return apperr.InvalidArgument("session cannot be nil")
	}
	if sess.ID == "" {
		return apperr.InvalidArgument("session ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[sess.ID]; exists {
		return apperr.Newf(apperr.CodeInvalidArgument, "session state %s already exists", sess.ID)
	}

	sess.Version = 1

	data, err := json.Marshal(sess)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize session state")
	}

	r.states[sess.ID] = data
	if sess.InviteCode != "" {
		r.byInvite[sess.InviteCode] = sess.ID
	}
	return nil
}

// Get retrieves a session state by ID
func (r *inMemoryRepository) Get(_ context.Context, id string) (*game.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.getLocked(id)
}

func (r *inMemoryRepository) getLocked(id string) (*game.Session, error) {
	data, exists := r.states[id]
	if !exists {
		return nil, apperr.NotFoundf("session state not found: %s", id)
	}

	var sess game.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, apperr.Wrap(err, "failed to deserialize session state")
	}
	return &sess, nil
}

// GetByInviteCode retrieves a session state by its invite code
func (r *inMemoryRepository) GetByInviteCode(_ context.Context, code string) (*game.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byInvite[code]
	if !exists {
		return nil, apperr.NotFoundf("no session found with invite code: %s", code)
	}
	return r.getLocked(id)
}

// Update commits a mutated snapshot, rejecting stale versions
func (r *inMemoryRepository) Update(_ context.Context, sess *game.Session) error {
	if sess == nil {
		return apperr.InvalidArgument("session cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.getLocked(sess.ID)
	if err != nil {
		return err
	}

	if existing.Version != sess.Version {
		return apperr.Conflict("session state was modified concurrently").
			WithMeta("session_id", sess.ID).
			WithMeta("loaded_version", sess.Version).
			WithMeta("stored_version", existing.Version)
	}

	sess.Version++

	data, err := json.Marshal(sess)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize session state")
	}

	if existing.InviteCode != sess.InviteCode {
		if existing.InviteCode != "" {
			delete(r.byInvite, existing.InviteCode)
		}
		if sess.InviteCode != "" {
			r.byInvite[sess.InviteCode] = sess.ID
		}
	}

	r.states[sess.ID] = data
	return nil
}

// Delete removes a session state
func (r *inMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.getLocked(id)
	if err != nil {
		return err
	}

	delete(r.states, id)
	if existing.InviteCode != "" {
		delete(r.byInvite, existing.InviteCode)
	}
	return nil
}
