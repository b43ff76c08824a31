package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/webchess-backend/internal/model"
	"github.com/benbeisheim/webchess-backend/internal/store"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameManager caches live games in memory on top of a Store. Each game's
// read-validate-apply-save cycle runs under that game's own lock.
type GameManager struct {
	games map[string]*model.Game
	store store.Store
	idle  time.Duration
	done  chan struct{}
	once  sync.Once
	mu    sync.RWMutex
}

// NewGameManager returns a manager backed by st. Games with no connections that
// have been idle for longer than idle are dropped from memory (they stay in the
// store); idle <= 0 disables the sweep.
func NewGameManager(st store.Store, idle time.Duration) *GameManager {
	gm := &GameManager{
		games: make(map[string]*model.Game),
		store: st,
		idle:  idle,
		done:  make(chan struct{}),
	}

	if idle > 0 {
		go gm.sweepIdleGames()
	}

	return gm
}

func (gm *GameManager) sweepIdleGames() {
	ticker := time.NewTicker(gm.idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			gm.evictIdle(time.Now())
		}
	}
}

func (gm *GameManager) evictIdle(now time.Time) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	cutoff := now.Add(-gm.idle)
	evicted := 0
	for id, game := range gm.games {
		// A retired game refuses changes, so anyone still holding it fetches
		// the stored state again instead of racing a fresh copy.
		if game.RetireIfIdle(cutoff) {
			delete(gm.games, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debugf("evicted %d idle games, %d live", evicted, len(gm.games))
	}
	return evicted
}

// Close stops the idle sweep. It does not close the store.
func (gm *GameManager) Close() {
	gm.once.Do(func() { close(gm.done) })
}

// track wires a game into the manager. Callers hold gm.mu.
func (gm *GameManager) track(game *model.Game) *model.Game {
	id := game.ID
	game.OnChange(func(state model.GameState) error {
		return gm.store.Save(context.Background(), id, state)
	})
	gm.games[id] = game
	return game
}

func (gm *GameManager) CreateGame(ctx context.Context, gameID string, state model.GameState) (*model.Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, ErrGameExists
	}
	if _, err := gm.store.Load(ctx, gameID); err == nil {
		return nil, ErrGameExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if err := gm.store.Save(ctx, gameID, state); err != nil {
		return nil, fmt.Errorf("failed to save new game: %w", err)
	}
	return gm.track(model.NewGameFromState(gameID, state)), nil
}

// GetGame returns the live game for gameID, loading it from the store when it
// is not cached. Fetching a game counts as activity for the idle sweep.
func (gm *GameManager) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists && game.Touch() {
		return game, nil
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.loadLocked(ctx, gameID)
}

func (gm *GameManager) loadLocked(ctx context.Context, gameID string) (*model.Game, error) {
	// Another request may have loaded it while we waited for the lock.
	if game, exists := gm.games[gameID]; exists {
		if game.Touch() {
			return game, nil
		}
		delete(gm.games, gameID)
	}

	state, err := gm.store.Load(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	return gm.track(model.NewGameFromState(gameID, state)), nil
}

// GetOrCreateGame returns the game for gameID, starting a new one if none exists.
func (gm *GameManager) GetOrCreateGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := gm.GetGame(ctx, gameID)
	if !errors.Is(err, ErrGameNotFound) {
		return game, err
	}

	game, err = gm.CreateGame(ctx, gameID, model.NewGameState())
	if errors.Is(err, ErrGameExists) {
		return gm.GetGame(ctx, gameID)
	}
	return game, err
}

// withGame runs fn against the live game, fetching it again if it was retired
// between the lookup and the call.
func (gm *GameManager) withGame(ctx context.Context, gameID string, fn func(*model.Game) error) error {
	for {
		game, err := gm.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		err = fn(game)
		if !errors.Is(err, model.ErrGameRetired) {
			return err
		}
		log.Debugf("game %s retired during use, reloading", gameID)
	}
}

func (gm *GameManager) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	var state model.GameState
	err := gm.withGame(ctx, gameID, func(game *model.Game) (err error) {
		state, err = game.Snapshot()
		return err
	})
	return state, err
}

func (gm *GameManager) MakeMove(ctx context.Context, gameID string, move model.MoveRequest) (model.Verdict, error) {
	var verdict model.Verdict
	err := gm.withGame(ctx, gameID, func(game *model.Game) (err error) {
		verdict, err = game.MakeMove(move)
		return err
	})
	return verdict, err
}

func (gm *GameManager) ResetGame(ctx context.Context, gameID string) error {
	return gm.withGame(ctx, gameID, func(game *model.Game) error {
		return game.Reset()
	})
}

// DeleteGame removes the game from memory and the store. Unknown ids return
// ErrGameNotFound.
func (gm *GameManager) DeleteGame(ctx context.Context, gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if game, exists := gm.games[gameID]; exists {
		game.Retire()
		delete(gm.games, gameID)
	} else if _, err := gm.store.Load(ctx, gameID); errors.Is(err, store.ErrNotFound) {
		return ErrGameNotFound
	} else if err != nil {
		return fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	return gm.store.Delete(ctx, gameID)
}

func (gm *GameManager) RegisterConnection(ctx context.Context, gameID string, connID string, sub model.Subscriber) error {
	return gm.withGame(ctx, gameID, func(game *model.Game) error {
		return game.RegisterConnection(connID, sub)
	})
}

func (gm *GameManager) UnregisterConnection(gameID string, connID string) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if !exists {
		return
	}

	game.UnregisterConnection(connID)
}
