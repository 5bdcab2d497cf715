// Package api implements the HTTP surface of the service: request
// models, handlers and the error-to-status mapping. Handlers never hold
// a database connection themselves; each request runs its store calls
// inside a scoped session stamped for the authenticated user, so
// row-level security does the tenant filtering.
package api
