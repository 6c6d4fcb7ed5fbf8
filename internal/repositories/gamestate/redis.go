package gamestate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// Key patterns
	stateKeyPrefix      = "gamestate:"
	inviteCodeKeyPrefix = "invite:"

	// TTL for session state (7 days)
	defaultStateTTL = 7 * 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client   redis.UniversalClient
	StateTTL time.Duration
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client   redis.UniversalClient
	stateTTL time.Duration
}

// NewRedisRepository creates a new Redis-backed session-state repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.StateTTL
	if ttl == 0 {
		ttl = defaultStateTTL
	}

	return &redisRepository{
		client:   cfg.Client,
		stateTTL: ttl,
	}
}

// Create stores a brand-new session state
func (r *redisRepository) Create(ctx context.Context, sess *game.Session) error {
	if sess == nil {
		return apperr.InvalidArgument("session cannot be nil")
	}
	if sess.ID == "" {
		return apperr.InvalidArgument("session ID cannot be empty")
	}

	stateKey := stateKeyPrefix + sess.ID

	exists, err := r.client.Exists(ctx, stateKey).Result()
	if err != nil {
		return apperr.Wrap(err, "failed to check session state")
	}
	if exists > 0 {
		return apperr.Newf(apperr.CodeInvalidArgument, "session state %s already exists", sess.ID)
	}

	sess.Version = 1

	data, err := json.Marshal(sess)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize session state")
	}

	// Use pipeline for atomic writes
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, stateKey, data, r.stateTTL)
	if sess.InviteCode != "" {
		pipe.Set(ctx, inviteCodeKeyPrefix+sess.InviteCode, sess.ID, r.stateTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(err, "failed to create session state")
	}

	return nil
}

// Get retrieves a session state by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*game.Session, error) {
	stateKey := stateKeyPrefix + id

	data, err := r.client.Get(ctx, stateKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("session state not found: %s", id)
		}
		return nil, apperr.Wrap(err, "failed to get session state")
	}

	var sess game.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, apperr.Wrap(err, "failed to deserialize session state")
	}

	// Refresh TTL
	r.client.Expire(ctx, stateKey, r.stateTTL)

	return &sess, nil
}

// GetByInviteCode retrieves a session state by its invite code
func (r *redisRepository) GetByInviteCode(ctx context.Context, code string) (*game.Session, error) {
	inviteKey := inviteCodeKeyPrefix + code

	sessionID, err := r.client.Get(ctx, inviteKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("no session found with invite code: %s", code)
		}
		return nil, apperr.Wrap(err, "failed to get session by invite code")
	}

	// Refresh invite code TTL
	r.client.Expire(ctx, inviteKey, r.stateTTL)

	return r.Get(ctx, sessionID)
}

// Update commits a mutated snapshot. The committed snapshot must have
// been loaded at the currently stored version, otherwise the write is
// rejected as a conflict and the caller must reload and retry.
func (r *redisRepository) Update(ctx context.Context, sess *game.Session) error {
	if sess == nil {
		return apperr.InvalidArgument("session cannot be nil")
	}
	if sess.ID == "" {
		return apperr.InvalidArgument("session ID cannot be empty")
	}

	existing, err := r.Get(ctx, sess.ID)
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

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, stateKeyPrefix+sess.ID, data, r.stateTTL)

	// Handle invite code changes
	if existing.InviteCode != sess.InviteCode {
		if existing.InviteCode != "" {
			pipe.Del(ctx, inviteCodeKeyPrefix+existing.InviteCode)
		}
		if sess.InviteCode != "" {
			pipe.Set(ctx, inviteCodeKeyPrefix+sess.InviteCode, sess.ID, r.stateTTL)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(err, "failed to update session state")
	}

	return nil
}

// Delete removes a session state
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	sess, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, stateKeyPrefix+id)
	if sess.InviteCode != "" {
		pipe.Del(ctx, inviteCodeKeyPrefix+sess.InviteCode)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(err, "failed to delete session state")
	}

	return nil
}
