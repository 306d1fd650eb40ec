// Package handlers exposes the game engine over HTTP: session lifecycle,
// player actions and health checks.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luckylarry/romance-engine/pkg/game"
	"github.com/luckylarry/romance-engine/pkg/storage"
	"github.com/luckylarry/romance-engine/pkg/world"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// entry pairs a running session with its notification recorder.
type entry struct {
	session *game.Session
	rec     *game.Recorder
}

// SessionManager owns the running sessions and their persistence.
type SessionManager struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry

	catalog    *world.Catalog
	store      storage.Storage
	logger     *slog.Logger
	thinkDelay time.Duration
}

// NewSessionManager creates a session manager over the catalog and store.
func NewSessionManager(c *world.Catalog, store storage.Storage, logger *slog.Logger, thinkDelay time.Duration) *SessionManager {
	return &SessionManager{
		entries:    make(map[uuid.UUID]*entry),
		catalog:    c,
		store:      store,
		logger:     logger,
		thinkDelay: thinkDelay,
	}
}

// Create starts a new session with running timers.
func (m *SessionManager) Create() (*game.Session, *game.Recorder) {
	rec := &game.Recorder{}
	s := game.NewSession(m.catalog, game.Config{
		Logger:     m.logger,
		Events:     rec,
		ThinkDelay: m.thinkDelay,
	})
	s.Start()

	m.mu.Lock()
	m.entries[s.ID()] = &entry{session: s, rec: rec}
	m.mu.Unlock()
	return s, rec
}

// Get returns a running session by id.
func (m *SessionManager) Get(id uuid.UUID) (*game.Session, *game.Recorder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e.session, e.rec, nil
}

// Remove stops a session and forgets it.
func (m *SessionManager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.session.Stop()
	return nil
}

// Save snapshots a session into storage.
func (m *SessionManager) Save(ctx context.Context, id uuid.UUID) error {
	s, _, err := m.Get(id)
	if err != nil {
		return err
	}
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	return m.store.SaveGameState(ctx, id, snap)
}

// Load restores a session from storage.
func (m *SessionManager) Load(ctx context.Context, id uuid.UUID) error {
	s, _, err := m.Get(id)
	if err != nil {
		return err
	}
	snap, err := m.store.LoadGameState(ctx, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("%w: no save for %s", ErrSessionNotFound, id)
	}
	return s.Restore(snap)
}

// StopAll shuts down every running session.
func (m *SessionManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		e.session.Stop()
		delete(m.entries, id)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}
