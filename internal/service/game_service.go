package service

import (
	"context"
	"fmt"

	"github.com/benbeisheim/webchess-backend/internal/model"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame starts a new game under a fresh ID, from the standard position or
// from fen when it is non-empty.
func (gs *GameService) CreateGame(ctx context.Context, fen string) (string, model.GameState, error) {
	state := model.NewGameState()
	if fen != "" {
		board, turn, err := model.ParseFEN(fen)
		if err != nil {
			return "", model.GameState{}, err
		}
		state.Board = board
		state.Turn = turn
	}

	gameID := uuid.New().String()
	game, err := gs.gameManager.CreateGame(ctx, gameID, state)
	if err != nil {
		return "", model.GameState{}, fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, game.GetState(), nil
}

// SessionGame returns the state of the game bound to a browser session,
// starting one on first visit.
func (gs *GameService) SessionGame(ctx context.Context, sessionID string) (model.GameState, error) {
	game, err := gs.gameManager.GetOrCreateGame(ctx, sessionID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(ctx, gameID)
}

// HandleMove applies move to the game and returns the verdict with the resulting state.
func (gs *GameService) HandleMove(ctx context.Context, gameID string, move model.MoveRequest) (model.Verdict, model.GameState, error) {
	verdict, err := gs.gameManager.MakeMove(ctx, gameID, move)
	if err != nil {
		return model.Verdict{}, model.GameState{}, err
	}

	state, err := gs.gameManager.GetGameState(ctx, gameID)
	if err != nil {
		return model.Verdict{}, model.GameState{}, err
	}
	return verdict, state, nil
}

func (gs *GameService) ResetGame(ctx context.Context, gameID string) (model.GameState, error) {
	if err := gs.gameManager.ResetGame(ctx, gameID); err != nil {
		return model.GameState{}, err
	}
	return gs.gameManager.GetGameState(ctx, gameID)
}

func (gs *GameService) DeleteGame(ctx context.Context, gameID string) error {
	return gs.gameManager.DeleteGame(ctx, gameID)
}

// Validate checks a single move against an arbitrary position without touching
// any stored game. An empty turn means the side to move recorded in fen.
func (gs *GameService) Validate(fen, from, to, turn string) (model.Verdict, error) {
	board, sideToMove, err := model.ParseFEN(fen)
	if err != nil {
		return model.Verdict{}, err
	}
	if turn != "" {
		sideToMove, err = model.ParseColor(turn)
		if err != nil {
			return model.Verdict{}, err
		}
	}
	return model.Validate(board, from, to, sideToMove), nil
}

func (gs *GameService) RegisterConnection(ctx context.Context, gameID string, connID string, sub model.Subscriber) error {
	return gs.gameManager.RegisterConnection(ctx, gameID, connID, sub)
}

func (gs *GameService) UnregisterConnection(gameID string, connID string) {
	gs.gameManager.UnregisterConnection(gameID, connID)
}
