package characters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/redis/go-redis/v9"
)

const (
	characterKeyPrefix = "character:"
	ownerIndexKey      = "owner:%s:characters"

	// Character records stick around far longer than session state
	defaultCharacterTTL = 30 * 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

type redisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis-backed character repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCharacterTTL
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    ttl,
	}
}

// Create stores a new character record
func (r *redisRepository) Create(ctx context.Context, char *game.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID cannot be empty")
	}

	data, err := json.Marshal(char)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, characterKeyPrefix+char.ID, data, r.ttl)
	if char.OwnerID != "" {
		pipe.SAdd(ctx, fmt.Sprintf(ownerIndexKey, char.OwnerID), char.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(err, "failed to create character")
	}

	return nil
}

// Get retrieves a character by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*game.Character, error) {
	data, err := r.client.Get(ctx, characterKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("character not found: %s", id)
		}
		return nil, apperr.Wrap(err, "failed to get character")
	}

	var char game.Character
	if err := json.Unmarshal(data, &char); err != nil {
		return nil, apperr.Wrap(err, "failed to deserialize character")
	}

	return &char, nil
}

// Update replaces an existing character record
func (r *redisRepository) Update(ctx context.Context, char *game.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}

	if _, err := r.Get(ctx, char.ID); err != nil {
		return err
	}

	data, err := json.Marshal(char)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize character")
	}

	if err := r.client.Set(ctx, characterKeyPrefix+char.ID, data, r.ttl).Err(); err != nil {
		return apperr.Wrap(err, "failed to update character")
	}

	return nil
}

// Delete removes a character record
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	char, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, characterKeyPrefix+id)
	if char.OwnerID != "" {
		pipe.SRem(ctx, fmt.Sprintf(ownerIndexKey, char.OwnerID), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(err, "failed to delete character")
	}

	return nil
}

// GetByOwner retrieves all characters belonging to a player
func (r *redisRepository) GetByOwner(ctx context.Context, ownerID string) ([]*game.Character, error) {
	ids, err := r.client.SMembers(ctx, fmt.Sprintf(ownerIndexKey, ownerID)).Result()
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list characters for owner")
	}

	chars := make([]*game.Character, 0, len(ids))
	for _, id := range ids {
		char, err := r.Get(ctx, id)
		if err != nil {
			// Record expired out from under the index, skip it
			if apperr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		chars = append(chars, char)
	}

	return chars, nil
}
