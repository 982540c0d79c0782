package store

import (
	"context"

	"github.com/me/gauntlet/pkg/model"
)

// Store is the persistence layer for runs and their operation journals.
type Store interface {
	// Run catalog
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context) ([]*model.Run, error)
	FinishRun(ctx context.Context, id string, state model.RunState, opCount int) error

	// Operation journal
	OpenJournal(ctx context.Context, runID string) (Journal, error)
	History(ctx context.Context, runID string) (model.History, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Journal is an append-only writer for one run's operations. Appends are
// durable on return; History is valid once the journal is closed and
// re-reads the stored ops in strict index order.
type Journal interface {
	Append(ctx context.Context, op model.Op) error
	Close(ctx context.Context) error
	History(ctx context.Context) (model.History, error)
}
