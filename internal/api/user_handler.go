package api

import (
	"net/http"

	"github.com/duvethq/duvet-api/internal/api/shared"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct{}

// NewUserHandler creates a new UserHandler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetCurrentUser handles GET /api/me requests. The user was already
// resolved by the auth middleware; no further database work is needed.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
