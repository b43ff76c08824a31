package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/webchess-backend/internal/model"
	"github.com/benbeisheim/webchess-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*GameService, *GameManager, store.Store) {
	t.Helper()
	st := store.NewMemoryStore(0)
	gm := NewGameManager(st, 0)
	t.Cleanup(gm.Close)
	return NewGameService(gm), gm, st
}

func TestCreateGameAndMove(t *testing.T) {
	gs, _, st := newTestService(t)
	ctx := context.Background()

	id, state, err := gs.CreateGame(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, model.NewBoard(), state.Board)
	assert.Equal(t, model.White, state.Turn)

	verdict, state, err := gs.HandleMove(ctx, id, model.MoveRequest{From: "e2", To: "e4"})
	require.NoError(t, err)
	assert.True(t, verdict.Legal)
	assert.Equal(t, model.Black, state.Turn)

	// The accepted move is persisted.
	stored, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, state.Board, stored.Board)
	assert.Equal(t, model.Black, stored.Turn)

	verdict, _, err = gs.HandleMove(ctx, id, model.MoveRequest{From: "e4", To: "e5"})
	require.NoError(t, err)
	assert.False(t, verdict.Legal)
	assert.Equal(t, model.ReasonNotYourTurn, verdict.Reason)
}

func TestCreateGameFromFEN(t *testing.T) {
	gs, _, _ := newTestService(t)
	ctx := context.Background()

	id, state, err := gs.CreateGame(ctx, "4k3/8/8/8/8/8/8/R3K3 b - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, model.Black, state.Turn)
	assert.Equal(t, 3, state.Board.Count())

	verdict, _, err := gs.HandleMove(ctx, id, model.MoveRequest{From: "e8", To: "d7"})
	require.NoError(t, err)
	assert.True(t, verdict.Legal)

	_, _, err = gs.CreateGame(ctx, "garbage")
	assert.ErrorIs(t, err, model.ErrInvalidFEN)
}

func TestUnknownGame(t *testing.T) {
	gs, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := gs.GetGameState(ctx, "nope")
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, _, err = gs.HandleMove(ctx, "nope", model.MoveRequest{From: "e2", To: "e4"})
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = gs.ResetGame(ctx, "nope")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestSessionGameCreatedOnce(t *testing.T) {
	gs, _, _ := newTestService(t)
	ctx := context.Background()

	state, err := gs.SessionGame(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.NewBoard(), state.Board)

	_, _, err = gs.HandleMove(ctx, "session-1", model.MoveRequest{From: "b1", To: "c3"})
	require.NoError(t, err)

	state, err = gs.SessionGame(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.MoveCount)

	state, err = gs.ResetGame(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 0, state.MoveCount)
	assert.Equal(t, model.NewBoard(), state.Board)
}

func TestGameReloadedFromStore(t *testing.T) {
	st := store.NewMemoryStore(0)
	ctx := context.Background()

	first := NewGameService(NewGameManager(st, 0))
	id, _, err := first.CreateGame(ctx, "")
	require.NoError(t, err)
	_, _, err = first.HandleMove(ctx, id, model.MoveRequest{From: "d2", To: "d4"})
	require.NoError(t, err)

	// A fresh manager over the same store picks up where the first left off.
	second := NewGameService(NewGameManager(st, 0))
	state, err := second.GetGameState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Black, state.Turn)
	require.NotNil(t, state.LastMove)
	assert.Equal(t, "d4", state.LastMove.Notation)
}

type failingStore struct {
	store.Store
}

func (failingStore) Save(context.Context, string, model.GameState) error {
	return errors.New("write failed")
}

func TestCreateGameSaveFailure(t *testing.T) {
	gm := NewGameManager(failingStore{store.NewMemoryStore(0)}, 0)
	defer gm.Close()

	_, _, err := NewGameService(gm).CreateGame(context.Background(), "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	gs, _, _ := newTestService(t)
	start := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	tests := []struct {
		name     string
		from, to string
		turn     string
		want     model.Verdict
	}{
		{"side to move from fen", "e2", "e4", "", model.Verdict{Legal: true}},
		{"explicit turn", "e2", "e4", "b", model.Verdict{Reason: model.ReasonNotYourTurn}},
		{"long color name", "e7", "e5", "black", model.Verdict{Legal: true}},
		{"rook blocked", "a1", "a8", "w", model.Verdict{Reason: model.ReasonRookBlocked}},
		{"bad square", "e9", "e4", "", model.Verdict{Reason: model.ReasonInvalidCoordinates}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gs.Validate(start, tt.from, tt.to, tt.turn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := gs.Validate(start, "e2", "e4", "green")
	assert.ErrorIs(t, err, model.ErrInvalidColor)
}

func TestEvictIdle(t *testing.T) {
	gs, gm, _ := newTestService(t)
	ctx := context.Background()
	gm.idle = time.Minute

	id, _, err := gs.CreateGame(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 0, gm.evictIdle(time.Now()))
	assert.Equal(t, 1, gm.evictIdle(time.Now().Add(2*time.Minute)))

	// Evicted games are reloaded from the store on demand.
	state, err := gs.GetGameState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.White, state.Turn)
}

func TestEvictedGameHeldByCaller(t *testing.T) {
	gs, gm, st := newTestService(t)
	ctx := context.Background()
	gm.idle = time.Minute

	id, _, err := gs.CreateGame(ctx, "")
	require.NoError(t, err)

	held, err := gm.GetGame(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 1, gm.evictIdle(time.Now().Add(2*time.Minute)))

	fresh, err := gm.GetGame(ctx, id)
	require.NoError(t, err)
	assert.NotSame(t, held, fresh)

	// The evicted copy refuses the move instead of applying it a second time.
	_, err = held.MakeMove(model.MoveRequest{From: "e2", To: "e4"})
	assert.ErrorIs(t, err, model.ErrGameRetired)

	verdict, err := gm.MakeMove(ctx, id, model.MoveRequest{From: "e2", To: "e4"})
	require.NoError(t, err)
	assert.True(t, verdict.Legal)

	verdict, err = gm.MakeMove(ctx, id, model.MoveRequest{From: "e2", To: "e4"})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonNoPiece, verdict.Reason)

	stored, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.MoveCount)
	assert.Equal(t, model.Black, stored.Turn)
}

func TestGetGameKeepsGameActive(t *testing.T) {
	gs, gm, _ := newTestService(t)
	ctx := context.Background()
	gm.idle = time.Minute

	id, _, err := gs.CreateGame(ctx, "")
	require.NoError(t, err)
	game, err := gm.GetGame(ctx, id)
	require.NoError(t, err)

	// A fetch newer than the idle cutoff keeps the game cached.
	before := game.LastActive()
	_, err = gm.GetGame(ctx, id)
	require.NoError(t, err)
	assert.False(t, game.LastActive().Before(before))
	assert.Equal(t, 0, gm.evictIdle(game.LastActive().Add(30*time.Second)))
}

func TestDeleteGame(t *testing.T) {
	gs, gm, st := newTestService(t)
	ctx := context.Background()

	id, _, err := gs.CreateGame(ctx, "")
	require.NoError(t, err)
	held, err := gm.GetGame(ctx, id)
	require.NoError(t, err)

	require.NoError(t, gs.DeleteGame(ctx, id))
	_, err = st.Load(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// A caller still holding the game cannot write it back.
	assert.ErrorIs(t, held.Reset(), model.ErrGameRetired)
	_, err = gs.ResetGame(ctx, id)
	assert.ErrorIs(t, err, ErrGameNotFound)

	assert.ErrorIs(t, gs.DeleteGame(ctx, id), ErrGameNotFound)
	assert.ErrorIs(t, gs.DeleteGame(ctx, "never-existed"), ErrGameNotFound)
}

func TestDeleteGameOnlyInStore(t *testing.T) {
	gs, _, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, "stored", model.NewGameState()))
	require.NoError(t, gs.DeleteGame(ctx, "stored"))
	_, err := st.Load(ctx, "stored")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
