// Package identity resolves identity-provider principals to local user
// accounts. Accounts are pre-provisioned out-of-band: resolution either
// finds the already-linked user, performs a one-time link of a
// pre-provisioned row on first login, or fails. It never creates
// accounts.
package identity
