package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/duvethq/duvet-api/internal/api/shared"
	"github.com/duvethq/duvet-api/internal/dbaccess"
	"github.com/duvethq/duvet-api/internal/domain"
	"github.com/duvethq/duvet-api/internal/identity"
	"github.com/duvethq/duvet-api/internal/platform/logger"
	"github.com/duvethq/duvet-api/internal/redact"
	"github.com/duvethq/duvet-api/internal/service/auth"
	"github.com/duvethq/duvet-api/internal/store"
)

// IdentityResolver resolves a verified principal to a local user.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, subject, token string) (*domain.User, error)
}

// AuthMiddleware authenticates requests: it verifies the bearer token,
// resolves the principal to a local user, and places the user on the
// request context for handlers to pick up.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	identity IdentityResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(verifier auth.TokenVerifier, resolver IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		identity: resolver,
	}
}

// Authenticate validates bearer tokens from the Authorization header and
// adds the resolved user to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}
		token := parts[1]

		subject, err := m.verifier.VerifySubject(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContext(r.Context()).Error("failed to verify token",
					"error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		user, err := m.identity.ResolveIdentity(r.Context(), subject, token)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrUserNotFound):
				// A valid token for a principal with no local account is an
				// authentication failure, not a 404: the resource space of
				// this API does not exist for that principal.
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Unknown principal")
			case errors.Is(err, identity.ErrUpstreamIdentity):
				logger.FromContext(r.Context()).Warn("identity provider unavailable",
					"error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Identity verification failed")
			case errors.Is(err, dbaccess.ErrPoolExhausted):
				logger.FromContext(r.Context()).Error("identity resolution starved of connections",
					"error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable")
			default:
				logger.FromContext(r.Context()).Error("identity resolution failed",
					"error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := shared.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
