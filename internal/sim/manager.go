package sim

import (
	crand "crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/config"
)

// Game pairs one simulation with its orchestration identity. The mutex
// serializes actions; the core itself is single-threaded by contract.
type Game struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	ChallengeID string    `json:"challenge_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	mu    sync.Mutex
	State *GameState `json:"-"`
}

// Do runs fn with exclusive access to the game state.
func (g *Game) Do(fn func(*GameState)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.State)
}

// Manager handles game lifecycle — creation, lookup, cleanup.
type Manager struct {
	mu      sync.RWMutex
	games   map[string]*Game
	balance config.Balance
}

func NewManager(balance config.Balance) *Manager {
	return &Manager{
		games:   make(map[string]*Game),
		balance: balance,
	}
}

// Create starts a game. A nil seed means a fresh random master seed; a
// challenge supplies its fixed seed explicitly so every participant faces
// the identical sequence.
func (m *Manager) Create(playerID string, seed *uint32, challengeID string) *Game {
	s := uint32(0)
	if seed != nil {
		s = *seed
	} else {
		s = randomSeed()
	}

	g := &Game{
		ID:          uuid.New().String(),
		PlayerID:    playerID,
		ChallengeID: challengeID,
		CreatedAt:   time.Now().UTC(),
		State:       NewGameState(s, m.balance),
	}

	m.mu.Lock()
	m.games[g.ID] = g
	m.mu.Unlock()
	return g
}

// Restore re-registers a loaded game, for resuming from a snapshot.
func (m *Manager) Restore(g *Game) {
	m.mu.Lock()
	m.games[g.ID] = g
	m.mu.Unlock()
}

func (m *Manager) Get(id string) (*Game, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	return g, ok
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// randomSeed is the single entropy entry point: a master seed is drawn
// once per non-challenge game and everything downstream is derived.
func randomSeed() uint32 {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint32(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint32(b[:])
}
