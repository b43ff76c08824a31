package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/webchess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
)

const ReasonGameOver = "Game is over"

// ErrGameRetired is returned by a Game that has been dropped by its owner.
// Callers should fetch the game again.
var ErrGameRetired = errors.New("game retired")

// Subscriber receives game state updates, typically a websocket connection.
type Subscriber interface {
	Send(msg ws.Message) error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Subscriber // connection ID -> subscriber
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Subscriber),
	}
}

// GameState is everything the session layer persists between requests.
type GameState struct {
	Board     Board  `json:"board"`
	Turn      Color  `json:"turn"`
	Winner    *Color `json:"winner"`
	LastMove  *Ply   `json:"lastMove"`
	MoveCount int    `json:"moveCount"`
	Message   string `json:"message"`
}

func NewGameState() GameState {
	return GameState{
		Board: NewBoard(),
		Turn:  White,
	}
}

// IsOver reports whether a king has been captured.
func (s GameState) IsOver() bool {
	return s.Winner != nil
}

// The Game struct focuses on a single game's state and its observers
type Game struct {
	ID          string
	mu          sync.Mutex
	state       GameState
	connections *GameConnections
	persist     func(GameState) error
	lastActive  time.Time
	retired     bool
	out         outbox
}

// outbox delivers state updates in commit order on a single goroutine.
type outbox struct {
	mu      sync.Mutex
	pending []delivery
	running bool
}

// delivery is one state update; a nil sub means every registered connection.
type delivery struct {
	state  GameState
	connID string
	sub    Subscriber
}

func NewGame(id string) *Game {
	return NewGameFromState(id, NewGameState())
}

// NewGameFromState resumes a game from a stored state.
func NewGameFromState(id string, state GameState) *Game {
	return &Game{
		ID:          id,
		state:       state,
		connections: NewGameConnections(),
		lastActive:  time.Now(),
	}
}

// OnChange registers fn to run, under the game lock, before any new state is
// committed. If fn fails the change is discarded.
func (g *Game) OnChange(fn func(GameState) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.persist = fn
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

// Snapshot is GetState for callers that must not read a retired game.
func (g *Game) Snapshot() (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.retired {
		return GameState{}, ErrGameRetired
	}
	return g.state, nil
}

// Touch marks the game as in use. It reports false once the game is retired.
func (g *Game) Touch() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.retired {
		return false
	}
	g.lastActive = time.Now()
	return true
}

// RetireIfIdle retires the game when it has no connections and has not been
// used since before cutoff. A retired game refuses further changes.
func (g *Game) RetireIfIdle(cutoff time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.retired || g.lastActive.After(cutoff) || g.ConnectionCount() > 0 {
		return false
	}
	g.retired = true
	return true
}

// Retire unconditionally retires the game.
func (g *Game) Retire() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retired = true
}

// MakeMove validates the move against the current position and, if it is legal,
// applies it and passes the turn. A non-nil error means the move was legal but
// the new state could not be saved.
func (g *Game) MakeMove(move MoveRequest) (Verdict, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.retired {
		return Verdict{}, ErrGameRetired
	}
	if g.state.IsOver() {
		return reject(ReasonGameOver), nil
	}

	verdict := Validate(g.state.Board, move.From, move.To, g.state.Turn)
	if !verdict.Legal {
		log.Debugf("game %s: rejected %s-%s: %s", g.ID, move.From, move.To, verdict.Reason)
		return verdict, nil
	}

	// Validate succeeded, so both squares parse.
	from, _ := ParseSquare(move.From)
	to, _ := ParseSquare(move.To)

	next := g.state
	ply := makePly(next.Board, from, to)
	next.Board, _ = next.Board.Apply(from, to)
	next.LastMove = &ply
	next.MoveCount++
	next.Message = fmt.Sprintf("%s played %s", capitalize(g.state.Turn.Name()), ply.Notation)

	if ply.CapturedPiece != nil && ply.CapturedPiece.Type == King {
		winner := g.state.Turn
		next.Winner = &winner
		next.Message = fmt.Sprintf("%s captured the king and wins", capitalize(winner.Name()))
	}
	next.Turn = g.state.Turn.Opponent()

	if err := g.commit(next); err != nil {
		return verdict, err
	}
	return verdict, nil
}

// Reset restores the starting position.
func (g *Game) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.retired {
		return ErrGameRetired
	}
	next := NewGameState()
	next.Message = "New game started"
	return g.commit(next)
}

func (g *Game) commit(next GameState) error {
	if g.persist != nil {
		if err := g.persist(next); err != nil {
			return fmt.Errorf("failed to save game %s: %w", g.ID, err)
		}
	}
	g.state = next
	g.lastActive = time.Now()
	g.publish(delivery{state: next})
	return nil
}

// publish queues d behind earlier deliveries. Callers hold g.mu, so the queue
// follows commit order.
func (g *Game) publish(d delivery) {
	g.out.mu.Lock()
	g.out.pending = append(g.out.pending, d)
	if g.out.running {
		g.out.mu.Unlock()
		return
	}
	g.out.running = true
	g.out.mu.Unlock()

	go g.drain()
}

func (g *Game) drain() {
	for {
		g.out.mu.Lock()
		if len(g.out.pending) == 0 {
			g.out.running = false
			g.out.mu.Unlock()
			return
		}
		d := g.out.pending[0]
		g.out.pending = g.out.pending[1:]
		g.out.mu.Unlock()

		if d.sub != nil {
			g.sendState(d.connID, d.sub, d.state)
		} else {
			g.broadcastState(d.state)
		}
	}
}

// RegisterConnection subscribes sub to state updates, starting with the
// current state.
func (g *Game) RegisterConnection(connID string, sub Subscriber) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.retired {
		return ErrGameRetired
	}

	g.connections.mu.Lock()
	g.connections.connections[connID] = sub
	g.connections.mu.Unlock()
	log.Debugf("game %s: registered connection %s", g.ID, connID)

	g.publish(delivery{state: g.state, connID: connID, sub: sub})
	return nil
}

func (g *Game) UnregisterConnection(connID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if _, exists := g.connections.connections[connID]; exists {
		log.Debugf("game %s: unregistering connection %s", g.ID, connID)
		delete(g.connections.connections, connID)
	}
}

// LastActive returns when the game was created, last changed or last fetched.
func (g *Game) LastActive() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

// ConnectionCount returns the number of live subscribers.
func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

func (g *Game) broadcastState(state GameState) {
	// Get a snapshot of connections under the connections mutex
	g.connections.mu.RLock()
	active := make(map[string]Subscriber, len(g.connections.connections))
	for id, sub := range g.connections.connections {
		active[id] = sub
	}
	g.connections.mu.RUnlock()

	// Now broadcast to each connection without holding any locks
	for id, sub := range active {
		g.sendState(id, sub, state)
	}
}

func (g *Game) sendState(connID string, sub Subscriber, state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("game %s: failed to marshal state: %v", g.ID, err)
		return
	}
	if err := sub.Send(msg); err != nil {
		log.Warnf("game %s: failed to send state to %s: %v", g.ID, connID, err)
		g.UnregisterConnection(connID)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
