package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/KirkDiggler/tabletop-engine/internal/engine"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_SerializesPerSession(t *testing.T) {
	d := engine.NewDispatcher()
	ctx := context.Background()

	// Deliberately unsynchronized counter; the dispatcher is the only
	// thing standing between these ops and a data race.
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Submit(ctx, "sess-1", func(context.Context) error {
				counter++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	require.NoError(t, d.Shutdown(ctx))
}

func TestDispatcher_IndependentSessions(t *testing.T) {
	d := engine.NewDispatcher()
	ctx := context.Background()

	blockFirst := make(chan struct{})
	firstRunning := make(chan struct{})

	go func() {
		_ = d.Submit(ctx, "sess-1", func(context.Context) error {
			close(firstRunning)
			<-blockFirst
			return nil
		})
	}()

	<-firstRunning

	// A different session is not held up by sess-1's in-flight op
	err := d.Submit(ctx, "sess-2", func(context.Context) error { return nil })
	assert.NoError(t, err)

	close(blockFirst)
	require.NoError(t, d.Shutdown(ctx))
}

func TestDispatcher_PropagatesOpError(t *testing.T) {
	d := engine.NewDispatcher()
	ctx := context.Background()

	err := d.Submit(ctx, "sess-1", func(context.Context) error {
		return apperr.NotReady("game is not active")
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotReady(err))
}

func TestDispatcher_RejectsAfterShutdown(t *testing.T) {
	d := engine.NewDispatcher()
	ctx := context.Background()

	require.NoError(t, d.Submit(ctx, "sess-1", func(context.Context) error { return nil }))
	require.NoError(t, d.Shutdown(ctx))

	err := d.Submit(ctx, "sess-1", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.True(t, apperr.IsNotReady(err))
}

func TestDispatcher_RequiresSessionID(t *testing.T) {
	d := engine.NewDispatcher()

	err := d.Submit(context.Background(), "", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}
