// Package store keeps versioned game snapshots in memory. Every write
// is a full-snapshot compare-and-swap: callers read a version, apply
// one logical action and replace the snapshot with that version as the
// precondition, so concurrent writers cannot silently lose updates.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/homegame/holdem/internal/game"
	"github.com/homegame/holdem/internal/gameid"
)

var (
	ErrNotFound        = errors.New("game not found")
	ErrAlreadyExists   = errors.New("game already exists")
	ErrVersionConflict = errors.New("version conflict")
)

// Versioned pairs a snapshot with its monotonically increasing version.
type Versioned struct {
	Version  uint64        `json:"version"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// Store is a thread-safe in-memory snapshot store.
type Store struct {
	mu    sync.RWMutex
	games map[string]Versioned
}

// New creates an empty store.
func New() *Store {
	return &Store{games: make(map[string]Versioned)}
}

// Create inserts a snapshot under its own id at version 1. The id must
// be a well-formed game id.
func (s *Store) Create(snap game.Snapshot) (Versioned, error) {
	if err := gameid.Validate(snap.ID); err != nil {
		return Versioned{}, fmt.Errorf("create: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[snap.ID]; ok {
		return Versioned{}, fmt.Errorf("%w: %s", ErrAlreadyExists, snap.ID)
	}
	v := Versioned{Version: 1, Snapshot: snap}
	s.games[snap.ID] = v
	return v, nil
}

// Get returns the current versioned snapshot for id.
func (s *Store) Get(id string) (Versioned, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.games[id]
	if !ok {
		return Versioned{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v, nil
}

// Replace swaps in a new snapshot if the stored version still equals
// expected, bumping the version. A stale expected version returns
// ErrVersionConflict and leaves the stored snapshot untouched.
func (s *Store) Replace(id string, snap game.Snapshot, expected uint64) (Versioned, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.games[id]
	if !ok {
		return Versioned{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if cur.Version != expected {
		return Versioned{}, fmt.Errorf("%w: stored version %d, expected %d", ErrVersionConflict, cur.Version, expected)
	}
	v := Versioned{Version: cur.Version + 1, Snapshot: snap}
	s.games[id] = v
	return v, nil
}

// Delete removes a game.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.games, id)
	return nil
}

// List returns all stored snapshots ordered by id. Ids sort by
// creation time.
func (s *Store) List() []Versioned {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Versioned, 0, len(s.games))
	for _, v := range s.games {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Snapshot.ID < out[j].Snapshot.ID
	})
	return out
}
