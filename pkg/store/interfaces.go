package store

import (
	"context"
	"errors"
	"time"

	"walksim/pkg/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// RunStore handles playback run history.
type RunStore interface {
	SaveRun(ctx context.Context, r *model.RunRecord) error
	GetRun(ctx context.Context, id string) (*model.RunRecord, error)
	// ListRuns returns the newest runs first. limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]*model.RunRecord, error)
	// PruneRuns deletes runs finished more than olderThan ago.
	PruneRuns(ctx context.Context, olderThan time.Duration) (int64, error)
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// Store composes all sub-interfaces.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	RunStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// Persistent state keys.
const (
	KeyLastRunID = "last_run_id"
)
