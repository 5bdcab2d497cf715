package identity

import "errors"

// ErrUpstreamIdentity indicates that the identity provider could not be
// reached or answered with an error. Surfaced to callers as an
// authentication failure; never retried automatically and never
// swallowed.
var ErrUpstreamIdentity = errors.New("identity provider request failed")
