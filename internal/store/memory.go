// internal/store/memory.go
//
// In-memory registry of running game sessions.
//
// Characteristics:
//   - Stores *Game values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Each Game serializes access to its session with its own mutex, since a
//     session.Session is not safe for concurrent use.
//   - State is lost when the process restarts.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/boardrules/internal/rules"
	"github.com/robalobadob/boardrules/internal/session"
)

var ErrNotFound = errors.New("session not found")

// Game is one registered session plus the metadata the host needs.
type Game struct {
	ID        string
	RulesName string
	OwnerID   string
	CreatedAt time.Time

	mu       sync.Mutex
	session  *session.Session
	recorded bool
}

// NewGame starts a session for r under a fresh random ID.
func NewGame(rulesName, ownerID string, r *rules.Checked, opts ...session.Option) *Game {
	return &Game{
		ID:        uuid.NewString(),
		RulesName: rulesName,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
		session:   session.New(r, opts...),
	}
}

// Do runs fn with exclusive access to the session.
func (g *Game) Do(fn func(s *session.Session) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.session)
}

// MarkRecorded reports whether this is the first call; the host uses it to
// persist a finished game exactly once. Call it from within Do.
func (g *Game) MarkRecorded() bool {
	if g.recorded {
		return false
	}
	g.recorded = true
	return true
}

// Store defines the registry interface for game sessions.
type Store interface {
	// Save adds or replaces a game.
	Save(ctx context.Context, g *Game) error

	// Get retrieves a game by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Game, error)

	// Delete removes a game; unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// List returns every game, oldest first.
	List(ctx context.Context) ([]*Game, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex     // guards games map
	games map[string]*Game // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*Game)}
}

func (m *memory) Save(ctx context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memory) List(ctx context.Context) ([]*Game, error) {
	m.mu.RLock()
	out := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
