package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/luckylarry/romance-engine/pkg/state"
)

// Storage persists game state snapshots between sessions.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveGameState writes a snapshot under the session id.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	// LoadGameState returns the snapshot for the id, or nil when absent.
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	// DeleteGameState removes a saved session.
	DeleteGameState(ctx context.Context, id uuid.UUID) error
	// ListGameStates returns the ids of all saved sessions.
	ListGameStates(ctx context.Context) ([]uuid.UUID, error)
}
