package characters

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
)

type inMemoryRepository struct {
	mu      sync.RWMutex
	chars   map[string][]byte
	byOwner map[string]map[string]struct{}
}

// NewInMemoryRepository creates an in-memory character repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		chars:   make(map[string][]byte),
		byOwner: make(map[string]map[string]struct{}),
	}
}

func (r *inMemoryRepository) Create(_ context.Context, char *game.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chars[char.ID]; exists {
		return apperr.Newf(apperr.CodeInvalidArgument, "character %s already exists", char.ID)
	}

	data, err := json.Marshal(char)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize character")
	}

	r.chars[char.ID] = data
	if char.OwnerID != "" {
		if r.byOwner[char.OwnerID] == nil {
			r.byOwner[char.OwnerID] = make(map[string]struct{})
		}
		r.byOwner[char.OwnerID][char.ID] = struct{}{}
	}
	return nil
}

func (r *inMemoryRepository) Get(_ context.Context, id string) (*game.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.getLocked(id)
}

func (r *inMemoryRepository) getLocked(id string) (*game.Character, error) {
	data, exists := r.chars[id]
	if !exists {
		return nil, apperr.NotFoundf("character not found: %s", id)
	}

	var char game.Character
	if err := json.Unmarshal(data, &char); err != nil {
		return nil, apperr.Wrap(err, "failed to deserialize character")
	}
	return &char, nil
}

func (r *inMemoryRepository) Update(_ context.Context, char *game.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chars[char.ID]; !exists {
		return apperr.NotFoundf("character not found: %s", char.ID)
	}

	data, err := json.Marshal(char)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize character")
	}

	r.chars[char.ID] = data
	return nil
}

func (r *inMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	char, err := r.getLocked(id)
	if err != nil {
		return err
	}

	delete(r.chars, id)
	if char.OwnerID != "" {
		delete(r.byOwner[char.OwnerID], id)
	}
	return nil
}

func (r *inMemoryRepository) GetByOwner(_ context.Context, ownerID string) ([]*game.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chars := make([]*game.Character, 0, len(r.byOwner[ownerID]))
	for id := range r.byOwner[ownerID] {
		char, err := r.getLocked(id)
		if err != nil {
			continue
		}
		chars = append(chars, char)
	}
	return chars, nil
}
