package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvethq/duvet-api/internal/config"
)

const testSecret = "test-secret-key-thats-long-enough-for-hmac"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		ProviderDomain: "tenant.example.auth0.com",
		JWTSecret:      testSecret,
		Audience:       "https://api.duvet.example.com",
		Issuer:         "https://tenant.example.auth0.com/",
	}
}

// signToken builds an HS256 token for test scenarios.
func signToken(t *testing.T, secret string, mutate func(*jwt.RegisteredClaims)) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "auth0|alice",
		Audience:  jwt.ClaimStrings{"https://api.duvet.example.com"},
		Issuer:    "https://tenant.example.auth0.com/",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	if mutate != nil {
		mutate(&claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifySubject_ValidToken(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	subject, err := verifier.VerifySubject(context.Background(), signToken(t, testSecret, nil))
	require.NoError(t, err)
	assert.Equal(t, "auth0|alice", subject)
}

func TestVerifySubject_WrongSignature(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	token := signToken(t, "a-completely-different-signing-secret-value", nil)
	_, err = verifier.VerifySubject(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySubject_ExpiredToken(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	token := signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
		c.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	})
	_, err = verifier.VerifySubject(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifySubject_NotYetValid(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	token := signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
		c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
	})
	_, err = verifier.VerifySubject(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestVerifySubject_WrongAudience(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	token := signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
		c.Audience = jwt.ClaimStrings{"https://some-other-api.example.com"}
	})
	_, err = verifier.VerifySubject(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySubject_WrongIssuer(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	token := signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
		c.Issuer = "https://evil.example.com/"
	})
	_, err = verifier.VerifySubject(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySubject_MissingSubject(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	token := signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
		c.Subject = ""
	})
	_, err = verifier.VerifySubject(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySubject_MalformedToken(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	_, err = verifier.VerifySubject(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySubject_EmptyToken(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	_, err = verifier.VerifySubject(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestVerifySubject_ClockSkewTolerated(t *testing.T) {
	verifier, err := NewTokenVerifier(testAuthConfig())
	require.NoError(t, err)

	// Expired one minute ago, within the two minute leeway.
	token := signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	})
	subject, err := verifier.VerifySubject(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "auth0|alice", subject)
}

func TestNewTokenVerifier_ShortSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "too-short"
	_, err := NewTokenVerifier(cfg)
	assert.Error(t, err)
}
