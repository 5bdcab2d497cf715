package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duvethq/duvet-api/internal/config"
	"github.com/duvethq/duvet-api/internal/platform/logger"
)

// TokenVerifier verifies a bearer token and extracts the external subject
// it was issued for. The subject is the stable principal identifier the
// identity layer resolves to a local user.
type TokenVerifier interface {
	VerifySubject(ctx context.Context, tokenString string) (string, error)
}

// hmacVerifier verifies HMAC-SHA signed tokens.
type hmacVerifier struct {
	signingKey []byte
	audience   string
	issuer     string
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration    // Allowed time difference for validation to handle clock drift
}

// Ensure hmacVerifier implements TokenVerifier interface
var _ TokenVerifier = (*hmacVerifier)(nil)

// NewTokenVerifier creates a token verifier using HMAC-SHA256 signature
// checks plus audience and issuer claims validation where configured.
func NewTokenVerifier(cfg config.AuthConfig) (TokenVerifier, error) {
	// Validate that the secret meets minimum length requirements
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacVerifier{
		signingKey: []byte(cfg.JWTSecret),
		audience:   cfg.Audience,
		issuer:     cfg.Issuer,
		timeFunc:   time.Now,
		clockSkew:  2 * time.Minute,
	}, nil
}

// VerifySubject validates the token and returns its subject claim.
// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on
// failure; the raw parser error is never surfaced to callers.
func (v *hmacVerifier) VerifySubject(ctx context.Context, tokenString string) (string, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return "", ErrMissingToken
	}

	now := v.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired", "error", err)
			return "", ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid", "error", err)
			return "", ErrTokenNotYetValid
		default:
			log.Debug("token validation failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return "", ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		log.Debug("token validation failed: missing subject claim")
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
