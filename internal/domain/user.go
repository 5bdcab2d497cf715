package domain

import (
	"errors"
	"strings"
	"time"
)

// Common validation errors
var (
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrInvalidEmail = errors.New("invalid email format")
	ErrEmptySubject = errors.New("external subject cannot be empty")
)

// User represents a local account. Accounts are pre-provisioned
// out-of-band; there is no self-service signup. ExternalSubject is the
// identity-provider subject claim, nil until the account's first login
// links it. A user with a nil subject is "pre-provisioned but unlinked".
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	ExternalSubject *string   `json:"-"` // IdP subject; never exposed in responses
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewUser creates a pre-provisioned (unlinked) user with the given email.
// The ID is assigned by the database on insert.
// Returns an error if validation fails.
func NewUser(email string) (*User, error) {
	user := &User{
		Email:     email,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Linked reports whether the user has been linked to an identity-provider
// subject.
func (u *User) Linked() bool {
	return u.ExternalSubject != nil && *u.ExternalSubject != ""
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.ExternalSubject != nil && *u.ExternalSubject == "" {
		return ErrEmptySubject
	}

	return nil
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
// Intentionally simple; the identity provider is the authority on
// address validity, this only rejects obvious garbage.
func validateEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}
