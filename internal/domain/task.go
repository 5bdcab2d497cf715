package domain

import (
	"errors"
	"time"
)

// Task validation errors
var (
	ErrEmptyTaskTitle = errors.New("task title cannot be empty")
	ErrNoCreator      = errors.New("task must have a creator")
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Valid task statuses
const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

// Task is the tenant-scoped entity of the application. Visibility is
// enforced by the database: the row-level security policy on the tasks
// table compares CreatorID against the identity stamped on the current
// session, so an API-role session only ever sees its own tenant's rows.
type Task struct {
	ID        int64      `json:"id"`
	CreatorID int64      `json:"creator_id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewTask creates a new open task owned by the given creator.
// Returns an error if validation fails.
func NewTask(creatorID int64, title string) (*Task, error) {
	task := &Task{
		CreatorID: creatorID,
		Title:     title,
		Status:    TaskStatusOpen,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.CreatorID == 0 {
		return ErrNoCreator
	}

	if t.Status != TaskStatusOpen && t.Status != TaskStatusDone {
		return errors.New("invalid task status: " + string(t.Status))
	}

	return nil
}
