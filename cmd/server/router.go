package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/duvethq/duvet-api/internal/api"
	apiMiddleware "github.com/duvethq/duvet-api/internal/api/middleware"
	"github.com/duvethq/duvet-api/internal/platform/postgres"
	"github.com/duvethq/duvet-api/internal/store"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.verifier, app.identity)
	taskHandler := api.NewTaskHandler(app.db, func(q store.Querier) store.TaskStore {
		return postgres.NewTaskStore(q)
	})
	userHandler := api.NewUserHandler()

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", userHandler.GetCurrentUser)

			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTaskStatus)
		})
	})

	// Health check endpoint (public, no database work)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
