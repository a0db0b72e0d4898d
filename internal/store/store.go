package store

import (
	"context"

	"github.com/me/rtsched/pkg/model"
)

// Store persists registered task sets. Analysis results are never stored.
type Store interface {
	// Task set registry
	CreateTaskSet(ctx context.Context, ts *model.TaskSetRecord) error
	GetTaskSet(ctx context.Context, id string) (*model.TaskSetRecord, error)
	GetTaskSetByHash(ctx context.Context, hash string) (*model.TaskSetRecord, error)
	ListTaskSets(ctx context.Context, opts model.ListOptions) ([]*model.TaskSetRecord, int, error)
	DeleteTaskSet(ctx context.Context, id string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
