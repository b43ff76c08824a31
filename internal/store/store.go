// Package store persists game sessions between requests.
package store

import (
	"context"
	"errors"

	"github.com/benbeisheim/webchess-backend/internal/model"
)

var ErrNotFound = errors.New("game not found in store")

// Store loads and saves game state by session or game ID.
type Store interface {
	Load(ctx context.Context, id string) (model.GameState, error)
	Save(ctx context.Context, id string, state model.GameState) error
	Delete(ctx context.Context, id string) error
	Close() error
}
