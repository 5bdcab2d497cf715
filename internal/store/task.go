package store

import (
	"context"

	"github.com/duvethq/duvet-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// None of the methods filter by creator: visibility is the database's
// job. A store bound to a stamped tenant session only observes rows the
// row-level security policy admits for that tenant; a store bound to an
// admin session sees everything.
type TaskStore interface {
	// Create saves a new task to the store and fills in its assigned ID.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist or is invisible
	// to the current tenant.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List returns all tasks visible on the current session, newest first.
	List(ctx context.Context) ([]domain.Task, error)

	// UpdateStatus sets the status of a task.
	// Returns ErrTaskNotFound if the task does not exist or is invisible.
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error
}
