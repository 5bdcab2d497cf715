package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/duvethq/duvet-api/internal/api/shared"
	"github.com/duvethq/duvet-api/internal/dbaccess"
	"github.com/duvethq/duvet-api/internal/domain"
	"github.com/duvethq/duvet-api/internal/platform/logger"
	"github.com/duvethq/duvet-api/internal/redact"
	"github.com/duvethq/duvet-api/internal/store"
)

// TenantSessions is the slice of the database access service handlers
// need: a session stamped for the authenticated user, scoped to one
// request.
type TenantSessions interface {
	WithTenantSession(ctx context.Context, user *domain.User, fn dbaccess.SessionFn) error
}

// TaskStoreFactory binds a task store to a database session.
type TaskStoreFactory func(q store.Querier) store.TaskStore

// TaskHandler handles task-related HTTP requests. Every operation runs
// on a tenant session, so the handler never filters by creator itself.
type TaskHandler struct {
	sessions TenantSessions
	tasks    TaskStoreFactory
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(sessions TenantSessions, tasks TaskStoreFactory) *TaskHandler {
	return &TaskHandler{
		sessions: sessions,
		tasks:    tasks,
	}
}

// ListTasks handles GET /api/tasks requests.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var tasks []domain.Task
	err := h.sessions.WithTenantSession(r.Context(), user, func(ctx context.Context, s *dbaccess.Session) error {
		var err error
		tasks, err = h.tasks(s).List(ctx)
		return err
	})
	if err != nil {
		h.respondError(w, r, err, "failed to list tasks")
		return
	}

	response := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for i := range tasks {
		response.Tasks = append(response.Tasks, taskToResponse(&tasks[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: title is required")
		return
	}

	task, err := domain.NewTask(user.ID, req.Title)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data")
		return
	}

	err = h.sessions.WithTenantSession(r.Context(), user, func(ctx context.Context, s *dbaccess.Session) error {
		return h.tasks(s).Create(ctx, task)
	})
	if err != nil {
		h.respondError(w, r, err, "failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := taskIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var task *domain.Task
	err = h.sessions.WithTenantSession(r.Context(), user, func(ctx context.Context, s *dbaccess.Session) error {
		var err error
		task, err = h.tasks(s).GetByID(ctx, id)
		return err
	})
	if err != nil {
		h.respondError(w, r, err, "failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTaskStatus handles PATCH /api/tasks/{id} requests.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := taskIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: status must be open or done")
		return
	}

	var task *domain.Task
	err = h.sessions.WithTenantSession(r.Context(), user, func(ctx context.Context, s *dbaccess.Session) error {
		tasks := h.tasks(s)
		if err := tasks.UpdateStatus(ctx, id, domain.TaskStatus(req.Status)); err != nil {
			return err
		}
		var err error
		task, err = tasks.GetByID(ctx, id)
		return err
	})
	if err != nil {
		h.respondError(w, r, err, "failed to update task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// respondError sends the mapped, sanitized response and logs the
// detailed (redacted) error.
func (h *TaskHandler) respondError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger.FromContext(r.Context()).Debug(msg, "error", redact.Error(err))
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

func taskIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
