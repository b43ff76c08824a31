package store

import (
	"context"
	"sync"
	"time"

	"github.com/benbeisheim/webchess-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
)

// MemoryStore keeps sessions in process memory. Everything is lost on restart.
type MemoryStore struct {
	games map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
	mu    sync.RWMutex
}

type memoryEntry struct {
	state     model.GameState
	expiresAt time.Time
}

// NewMemoryStore returns an empty store. When ttl > 0 each entry expires ttl
// after its last save and expired entries are swept in the background; ttl <= 0
// keeps entries until they are deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}

	if ttl > 0 {
		go s.sweepExpired()
	}

	return s
}

func (s *MemoryStore) sweepExpired() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debugf("expired %d sessions", n)
			}
		}
	}
}

// Sweep removes expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.games {
		if entry.expired(now) {
			delete(s.games, id)
			removed++
		}
	}
	return removed
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (s *MemoryStore) Load(_ context.Context, id string) (model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.games[id]
	if !ok || entry.expired(s.now()) {
		return model.GameState{}, ErrNotFound
	}
	return entry.state, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, state model.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{state: state}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.games[id] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.games, id)
	return nil
}

// Close stops the expiry sweep.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
