package postgres

import (
	"context"
	"fmt"

	"github.com/duvethq/duvet-api/internal/domain"
	"github.com/duvethq/duvet-api/internal/platform/logger"
	"github.com/duvethq/duvet-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using PostgreSQL.
// Tenant isolation comes entirely from the row-level security policy on
// the tasks table; the SQL here never mentions the caller.
type TaskStore struct {
	q store.Querier
}

// NewTaskStore creates a PostgreSQL implementation of store.TaskStore
// bound to the given querier.
func NewTaskStore(q store.Querier) *TaskStore {
	return &TaskStore{q: q}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

const taskColumns = "id, creator_id, title, status, created_at, updated_at"

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (creator_id, title, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.q.QueryRow(ctx, query,
		task.CreatorID,
		task.Title,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to create task",
			"creator_id", task.CreatorID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = $1"

	var task domain.Task
	err := s.q.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.CreatorID,
		&task.Title,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, taskError(err)
	}
	return &task, nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(ctx context.Context) ([]domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks ORDER BY created_at DESC, id DESC"

	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.CreatorID,
			&task.Title,
			&task.Status,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
func (s *TaskStore) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	query := "UPDATE tasks SET status = $2, updated_at = now() WHERE id = $1"

	tag, err := s.q.Exec(ctx, query, id, status)
	if err != nil {
		logger.FromContext(ctx).Error("failed to update task status",
			"task_id", id,
			"status", string(status),
			"error", err)
		return MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// taskError maps a raw database error, narrowing generic not-found to
// the task-specific sentinel.
func taskError(err error) error {
	mapped := MapError(err)
	if store.IsNotFoundError(mapped) {
		return fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
	}
	return mapped
}
