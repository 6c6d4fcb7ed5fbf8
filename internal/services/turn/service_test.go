package turn_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/tabletop-engine/internal/dice"
	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	"github.com/KirkDiggler/tabletop-engine/internal/engine"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate"
	mockgamestate "github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate/mock"
	"github.com/KirkDiggler/tabletop-engine/internal/services/turn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	svc    turn.Service
	repo   gamestate.Repository
	roller *dice.MockRoller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	roller := dice.NewMockRoller()
	repo := gamestate.NewInMemoryRepository()
	svc := turn.NewService(&turn.ServiceConfig{
		GameStateRepo: repo,
		Dispatcher:    engine.NewDispatcher(),
		Roller:        roller,
	})
	return &fixture{svc: svc, repo: repo, roller: roller}
}

// seedSession builds an active session with one character (DEX 14, +2)
// and one goblin token (DEX 16, +3)
func (f *fixture) seedSession(t *testing.T) *game.Session {
	t.Helper()
	ctx := context.Background()

	sess := game.NewSession("sess-1", "ABCD1234", "host-1")
	sess.Characters["char-1"] = &game.Character{
		ID:              "char-1",
		Name:            "Thorin",
		Level:           3,
		Stats:           game.Stats{Strength: 16, Dexterity: 14},
		Health:          10,
		MaxHealth:       24,
		ActionPoints:    0,
		MaxActionPoints: 3,
		Speed:           25,
		ArmorClass:      16,
	}
	sess.MapState = game.NewMapState("map-1", 20, 20)
	sess.MapState.Tokens["npc-1"] = &game.NPCToken{
		TokenID:         "npc-1",
		Name:            "Goblin",
		Dexterity:       16,
		Health:          3,
		MaxHealth:       7,
		ActionPoints:    0,
		MaxActionPoints: 2,
		ArmorClass:      13,
	}
	require.True(t, sess.Start())
	require.NoError(t, f.repo.Create(ctx, sess))
	return sess
}

func TestRollInitiative_OrderAndReset(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	// Character rolls 15 (+2 = 17), goblin rolls 10 (+3 = 13); 17 > 13
	f.roller.SetRolls([]int{15, 10})

	sess, err := f.svc.RollInitiative(context.Background(), "sess-1")
	require.NoError(t, err)

	require.Len(t, sess.InitiativeOrder, 2)
	assert.Equal(t, "char-1", sess.InitiativeOrder[0].EntityID)
	assert.Equal(t, 17, sess.InitiativeOrder[0].Initiative)
	assert.Equal(t, 15, sess.InitiativeOrder[0].Roll)
	assert.Equal(t, 2, sess.InitiativeOrder[0].DexMod)
	assert.Equal(t, "npc-1", sess.InitiativeOrder[1].EntityID)
	assert.Equal(t, 13, sess.InitiativeOrder[1].Initiative)

	// New-encounter reset: everyone back to full
	assert.Equal(t, 24, sess.Characters["char-1"].Health)
	assert.Equal(t, 3, sess.Characters["char-1"].ActionPoints)
	assert.Equal(t, 7, sess.MapState.Tokens["npc-1"].Health)

	require.NotNil(t, sess.ActiveTurn)
	assert.Equal(t, "char-1", sess.ActiveTurn.EntityID)
	assert.Equal(t, 1, sess.ActiveTurn.TurnNumber)
	assert.Equal(t, 0, sess.ActiveTurn.MovementUsed)
	assert.Equal(t, 25, sess.ActiveTurn.Speed)
}

func TestRollInitiative_TieBrokenByDexMod(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	// Character 15+2=17, goblin 14+3=17; the goblin's +3 DEX wins the tie
	f.roller.SetRolls([]int{15, 14})

	sess, err := f.svc.RollInitiative(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "npc-1", sess.InitiativeOrder[0].EntityID)
	assert.Equal(t, "char-1", sess.InitiativeOrder[1].EntityID)
}

func TestRollInitiative_RequiresActiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess := game.NewSession("sess-1", "ABCD1234", "host-1")
	require.NoError(t, f.repo.Create(ctx, sess))

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.Error(t, err)
	assert.True(t, apperr.IsNotReady(err))
}

func TestEndTurn_RoundTripAdvancesTurnNumbers(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	sess, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)
	first := sess.ActiveTurn.EntityID
	startNumber := sess.ActiveTurn.TurnNumber

	// One full cycle of the two-entry order lands back on the first
	// entity with the turn number advanced by exactly the list length
	for i := 0; i < 2; i++ {
		sess, err = f.svc.EndTurn(ctx, "sess-1")
		require.NoError(t, err)
	}
	assert.Equal(t, first, sess.ActiveTurn.EntityID)
	assert.Equal(t, startNumber+2, sess.ActiveTurn.TurnNumber)
}

func TestEndTurn_ResetsNextEntityActionPoints(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	sess, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)
	sess.MapState.Tokens["npc-1"].ActionPoints = 0
	require.NoError(t, f.repo.Update(ctx, sess))

	sess, err = f.svc.EndTurn(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "npc-1", sess.ActiveTurn.EntityID)
	assert.Equal(t, 2, sess.MapState.Tokens["npc-1"].ActionPoints)
	assert.Equal(t, game.DefaultCreatureSpeed, sess.ActiveTurn.Speed)
}

func TestEndTurn_NoActiveTurn(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)

	_, err := f.svc.EndTurn(context.Background(), "sess-1")
	require.Error(t, err)
	assert.True(t, apperr.IsNotReady(err))
}

func TestStartTurn_JumpsToNamedEntity(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)

	sess, err := f.svc.StartTurn(ctx, &turn.StartTurnInput{
		SessionID: "sess-1",
		EntityID:  "npc-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "npc-1", sess.ActiveTurn.EntityID)
	assert.Equal(t, game.EntityTypeNPC, sess.ActiveTurn.Type)
	assert.Equal(t, 2, sess.ActiveTurn.TurnNumber)
}

func TestAddToInitiativeOrder(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)

	// A second goblin is placed mid-encounter
	sess, err := f.repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	sess.MapState.Tokens["npc-2"] = &game.NPCToken{TokenID: "npc-2", Name: "Goblin Archer", Dexterity: 10}
	require.NoError(t, f.repo.Update(ctx, sess))

	f.roller.SetNextRoll(12)
	sess, err = f.svc.AddToInitiativeOrder(ctx, &turn.AddEntityInput{
		SessionID: "sess-1",
		EntityID:  "npc-2",
		Type:      game.EntityTypeNPC,
	})
	require.NoError(t, err)
	require.Len(t, sess.InitiativeOrder, 3)
	// 17, 13, 12: the newcomer slots in last and does not take the turn
	assert.Equal(t, "npc-2", sess.InitiativeOrder[2].EntityID)
	assert.Equal(t, "char-1", sess.ActiveTurn.EntityID)
}

func TestAddToInitiativeOrder_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)

	// No rolls queued: a duplicate insert must not roll at all
	sess, err := f.svc.AddToInitiativeOrder(ctx, &turn.AddEntityInput{
		SessionID: "sess-1",
		EntityID:  "char-1",
		Type:      game.EntityTypePlayer,
	})
	require.NoError(t, err)
	assert.Len(t, sess.InitiativeOrder, 2)
}

func TestAddToInitiativeOrder_TopInsertTakesTurn(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)

	f.roller.SetNextRoll(20)
	sess, err := f.svc.AddToInitiativeOrder(ctx, &turn.AddEntityInput{
		SessionID: "sess-1",
		EntityID:  "npc-2",
		Type:      game.EntityTypeNPC,
	})
	require.NoError(t, err)
	assert.Equal(t, "npc-2", sess.InitiativeOrder[0].EntityID)
	assert.Equal(t, "npc-2", sess.ActiveTurn.EntityID)
}

func TestRemoveFromInitiativeOrder_AdvancesWhenActive(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)

	// Removing the active first entry hands the turn to the entry that
	// now occupies its slot
	sess, err := f.svc.RemoveFromInitiativeOrder(ctx, "sess-1", "char-1")
	require.NoError(t, err)
	require.Len(t, sess.InitiativeOrder, 1)
	assert.Equal(t, "npc-1", sess.ActiveTurn.EntityID)
}

func TestRemoveFromInitiativeOrder_LastEntryClearsTurn(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)
	_, err = f.svc.RemoveFromInitiativeOrder(ctx, "sess-1", "npc-1")
	require.NoError(t, err)

	sess, err := f.svc.RemoveFromInitiativeOrder(ctx, "sess-1", "char-1")
	require.NoError(t, err)
	assert.Empty(t, sess.InitiativeOrder)
	assert.Nil(t, sess.ActiveTurn)
}

func TestRemoveFromInitiativeOrder_NotPresent(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)

	_, err := f.svc.RemoveFromInitiativeOrder(context.Background(), "sess-1", "ghost")
	require.Error(t, err)
	assert.True(t, apperr.IsNotReady(err))
}

func TestUpdateTurnUsage_ClampsMovement(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)

	over := 999
	sess, err := f.svc.UpdateTurnUsage(ctx, &turn.UpdateUsageInput{
		SessionID:    "sess-1",
		MovementUsed: &over,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, sess.ActiveTurn.MovementUsed)

	negative := -5
	sess, err = f.svc.UpdateTurnUsage(ctx, &turn.UpdateUsageInput{
		SessionID:    "sess-1",
		MovementUsed: &negative,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, sess.ActiveTurn.MovementUsed)
}

func TestUpdateTurnUsage_WrongActor(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)

	used := true
	_, err = f.svc.UpdateTurnUsage(ctx, &turn.UpdateUsageInput{
		SessionID:       "sess-1",
		ActorEntityID:   "npc-1",
		MajorActionUsed: &used,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsPermissionDenied(err))
}

func TestInterruptAndResume(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	sess, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)
	originalNumber := sess.ActiveTurn.TurnNumber

	// Spend some budget before the interruption
	moved := 15
	major := true
	_, err = f.svc.UpdateTurnUsage(ctx, &turn.UpdateUsageInput{
		SessionID:       "sess-1",
		MovementUsed:    &moved,
		MajorActionUsed: &major,
	})
	require.NoError(t, err)

	sess, err = f.svc.InterruptTurn(ctx, "sess-1", "host-1")
	require.NoError(t, err)
	assert.Equal(t, game.EntityTypeDM, sess.ActiveTurn.Type)
	assert.Equal(t, "host-1", sess.ActiveTurn.EntityID)
	assert.Equal(t, originalNumber+1, sess.ActiveTurn.TurnNumber)
	require.NotNil(t, sess.PausedTurn)
	assert.Equal(t, "char-1", sess.PausedTurn.EntityID)

	sess, err = f.svc.ResumeTurn(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "char-1", sess.ActiveTurn.EntityID)
	// Original turn number is reused and usage comes back clean
	assert.Equal(t, originalNumber, sess.ActiveTurn.TurnNumber)
	assert.Equal(t, 0, sess.ActiveTurn.MovementUsed)
	assert.False(t, sess.ActiveTurn.MajorActionUsed)
	assert.Nil(t, sess.PausedTurn)
}

func TestInterruptTurn_AlreadyPaused(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{15, 10})
	ctx := context.Background()

	_, err := f.svc.RollInitiative(ctx, "sess-1")
	require.NoError(t, err)
	_, err = f.svc.InterruptTurn(ctx, "sess-1", "host-1")
	require.NoError(t, err)

	_, err = f.svc.InterruptTurn(ctx, "sess-1", "host-1")
	require.Error(t, err)
	assert.True(t, apperr.IsNotReady(err))
}

func TestResumeTurn_NothingPaused(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)

	_, err := f.svc.ResumeTurn(context.Background(), "sess-1")
	require.Error(t, err)
	assert.True(t, apperr.IsNotReady(err))
}

func TestRollDice_LogsToSession(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t)
	f.roller.SetRolls([]int{4, 5, 3})
	ctx := context.Background()

	result, err := f.svc.RollDice(ctx, &turn.RollDiceInput{
		SessionID:  "sess-1",
		PlayerName: "Alice",
		Notation:   "3d6",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, result.Total)
	assert.Equal(t, "4 + 5 + 3 = 12", result.Breakdown)

	sess, err := f.repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ActivityLog)
	assert.Contains(t, sess.ActivityLog[len(sess.ActivityLog)-1], "4 + 5 + 3 = 12")
}

func TestEndTurn_StorageFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mockgamestate.NewMockRepository(ctrl)
	svc := turn.NewService(&turn.ServiceConfig{
		GameStateRepo: repo,
		Dispatcher:    engine.NewDispatcher(),
		Roller:        dice.NewMockRoller(),
	})
	ctx := context.Background()

	sess := game.NewSession("sess-1", "ABCD1234", "host-1")
	sess.Start()
	sess.InitiativeOrder = []*game.InitiativeEntry{
		{EntityID: "char-1", Type: game.EntityTypePlayer, Initiative: 17},
		{EntityID: "npc-1", Type: game.EntityTypeNPC, Initiative: 13},
	}
	sess.SetActiveTurn(game.EntityTypePlayer, "char-1", 30)

	repo.EXPECT().Get(gomock.Any(), "sess-1").Return(sess, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(apperr.Internal("redis write failed"))

	_, err := svc.EndTurn(ctx, "sess-1")
	require.Error(t, err)
}

func TestRollDice_BadNotation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RollDice(context.Background(), &turn.RollDiceInput{Notation: "banana"})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}
