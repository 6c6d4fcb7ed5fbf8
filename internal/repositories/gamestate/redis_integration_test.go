//go:build integration
// +build integration

package gamestate_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate"
	"github.com/KirkDiggler/tabletop-engine/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_Integration(t *testing.T) {
	// This test requires Redis to be running
	client := testutils.CreateTestRedisClientOrSkip(t)

	repo := gamestate.NewRedisRepository(&gamestate.RedisRepoConfig{
		Client: client,
	})

	ctx := context.Background()

	t.Run("create and retrieve session state", func(t *testing.T) {
		sess := game.NewSession("integ-sess-1", "INTEG001", "host-1")
		sess.Characters["char-1"] = &game.Character{
			ID: "char-1", Name: "Mira", Health: 20, MaxHealth: 20,
			ActionPoints: 3, MaxActionPoints: 3, Speed: 30, ArmorClass: 15,
		}
		sess.MapState = game.NewMapState("map-1", 20, 20)

		require.NoError(t, repo.Create(ctx, sess))

		loaded, err := repo.Get(ctx, "integ-sess-1")
		require.NoError(t, err)
		assert.Equal(t, sess.ID, loaded.ID)
		assert.Equal(t, int64(1), loaded.Version)
		require.Contains(t, loaded.Characters, "char-1")
		assert.Equal(t, "Mira", loaded.Characters["char-1"].Name)
		require.NotNil(t, loaded.MapState)
		assert.Equal(t, 20, loaded.MapState.Width)
	})

	t.Run("lookup by invite code", func(t *testing.T) {
		loaded, err := repo.GetByInviteCode(ctx, "INTEG001")
		require.NoError(t, err)
		assert.Equal(t, "integ-sess-1", loaded.ID)
	})

	t.Run("update bumps version and rejects stale writes", func(t *testing.T) {
		first, err := repo.Get(ctx, "integ-sess-1")
		require.NoError(t, err)
		stale, err := repo.Get(ctx, "integ-sess-1")
		require.NoError(t, err)

		first.Quest = "the sunken keep"
		require.NoError(t, repo.Update(ctx, first))
		assert.Equal(t, int64(2), first.Version)

		stale.Quest = "a different quest"
		err = repo.Update(ctx, stale)
		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))
	})

	t.Run("delete removes state and invite index", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "integ-sess-1"))

		_, err := repo.Get(ctx, "integ-sess-1")
		assert.True(t, apperr.IsNotFound(err))

		_, err = repo.GetByInviteCode(ctx, "INTEG001")
		assert.True(t, apperr.IsNotFound(err))
	})
}
