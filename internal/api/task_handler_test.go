package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvethq/duvet-api/internal/api/shared"
	"github.com/duvethq/duvet-api/internal/dbaccess"
	"github.com/duvethq/duvet-api/internal/domain"
	"github.com/duvethq/duvet-api/internal/store"
)

// fakeTenantSessions runs session bodies inline and records the user
// each session was stamped for.
type fakeTenantSessions struct {
	stampedFor []int64
	err        error
}

func (f *fakeTenantSessions) WithTenantSession(ctx context.Context, user *domain.User, fn dbaccess.SessionFn) error {
	f.stampedFor = append(f.stampedFor, user.ID)
	if f.err != nil {
		return f.err
	}
	return fn(ctx, nil)
}

// fakeTaskStore is an in-memory store.TaskStore.
type fakeTaskStore struct {
	tasks  map[int64]*domain.Task
	nextID int64
	err    error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[int64]*domain.Task), nextID: 1}
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if f.err != nil {
		return f.err
	}
	task.ID = f.nextID
	f.nextID++
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskStore) List(ctx context.Context) ([]domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Task, 0, len(f.tasks))
	for _, task := range f.tasks {
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskStore) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	if f.err != nil {
		return f.err
	}
	task, ok := f.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	task.UpdatedAt = time.Now().UTC()
	return nil
}

func testUser() *domain.User {
	return &domain.User{ID: 42, Email: "alice@example.com"}
}

// newTaskRouter wires a handler into a chi router the way the server
// does, with the authenticated user pre-set on the request context.
func newTaskRouter(handler *TaskHandler, user *domain.User) http.Handler {
	r := chi.NewRouter()
	if user != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(shared.WithUser(req.Context(), user)))
			})
		})
	}
	r.Get("/api/tasks", handler.ListTasks)
	r.Post("/api/tasks", handler.CreateTask)
	r.Get("/api/tasks/{id}", handler.GetTask)
	r.Patch("/api/tasks/{id}", handler.UpdateTaskStatus)
	return r
}

func TestCreateTask(t *testing.T) {
	tasks := newFakeTaskStore()
	sessions := &fakeTenantSessions{}
	handler := NewTaskHandler(sessions, func(q store.Querier) store.TaskStore { return tasks })
	router := newTaskRouter(handler, testUser())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks",
		strings.NewReader(`{"title":"write the report"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "write the report", resp.Title)
	assert.Equal(t, "open", resp.Status)
	assert.NotZero(t, resp.ID)

	// The session was stamped for the authenticated user.
	assert.Equal(t, []int64{42}, sessions.stampedFor)
	// The store recorded the creator from the stamped identity path.
	assert.Equal(t, int64(42), tasks.tasks[resp.ID].CreatorID)
}

func TestCreateTask_ValidationFailure(t *testing.T) {
	handler := NewTaskHandler(&fakeTenantSessions{}, func(q store.Querier) store.TaskStore {
		return newFakeTaskStore()
	})
	router := newTaskRouter(handler, testUser())

	for _, body := range []string{`{"title":""}`, `{}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestListTasks(t *testing.T) {
	tasks := newFakeTaskStore()
	task, err := domain.NewTask(42, "first")
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))

	handler := NewTaskHandler(&fakeTenantSessions{}, func(q store.Querier) store.TaskStore { return tasks })
	router := newTaskRouter(handler, testUser())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TaskListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "first", resp.Tasks[0].Title)
}

func TestListTasks_EmptyIsJSONArray(t *testing.T) {
	handler := NewTaskHandler(&fakeTenantSessions{}, func(q store.Querier) store.TaskStore {
		return newFakeTaskStore()
	})
	router := newTaskRouter(handler, testUser())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
}

func TestGetTask_NotFound(t *testing.T) {
	handler := NewTaskHandler(&fakeTenantSessions{}, func(q store.Querier) store.TaskStore {
		return newFakeTaskStore()
	})
	router := newTaskRouter(handler, testUser())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTask_InvalidID(t *testing.T) {
	handler := NewTaskHandler(&fakeTenantSessions{}, func(q store.Querier) store.TaskStore {
		return newFakeTaskStore()
	})
	router := newTaskRouter(handler, testUser())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskStatus(t *testing.T) {
	tasks := newFakeTaskStore()
	task, err := domain.NewTask(42, "close me")
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))

	handler := NewTaskHandler(&fakeTenantSessions{}, func(q store.Querier) store.TaskStore { return tasks })
	router := newTaskRouter(handler, testUser())

	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/1",
		strings.NewReader(`{"status":"done"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "done", resp.Status)
}

func TestUpdateTaskStatus_InvalidStatus(t *testing.T) {
	handler := NewTaskHandler(&fakeTenantSessions{}, func(q store.Querier) store.TaskStore {
		return newFakeTaskStore()
	})
	router := newTaskRouter(handler, testUser())

	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/1",
		strings.NewReader(`{"status":"paused"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskHandlers_RequireAuthenticatedUser(t *testing.T) {
	handler := NewTaskHandler(&fakeTenantSessions{}, func(q store.Querier) store.TaskStore {
		return newFakeTaskStore()
	})
	router := newTaskRouter(handler, nil) // no user on context

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListTasks_PoolExhaustedMapsTo503(t *testing.T) {
	sessions := &fakeTenantSessions{err: dbaccess.ErrPoolExhausted}
	handler := NewTaskHandler(sessions, func(q store.Querier) store.TaskStore {
		return newFakeTaskStore()
	})
	router := newTaskRouter(handler, testUser())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	// The sanitized message leaks nothing about pools or roles.
	assert.NotContains(t, rec.Body.String(), "role")
}
