package api

import (
	"time"

	"github.com/duvethq/duvet-api/internal/domain"
)

// CreateTaskRequest represents the request body for creating a new task
type CreateTaskRequest struct {
	Title string `json:"title" validate:"required,min=1,max=500"`
}

// UpdateTaskStatusRequest represents the request body for a status change
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open done"`
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskListResponse represents the response data for a task listing
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// UserResponse represents the response data for the authenticated user
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// taskToResponse converts a domain.Task to a TaskResponse. The creator
// is implied by the authenticated tenant and not echoed back.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Title:     task.Title,
		Status:    string(task.Status),
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

// userToResponse converts a domain.User to a UserResponse.
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
