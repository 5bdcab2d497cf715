// Package postgres contains the PostgreSQL implementations of the store
// interfaces. Stores are bound to a store.Querier, usually a
// dbaccess.Session, and therefore inherit whatever visibility the
// session's role and tenant stamp give them; no store filters by tenant
// itself.
package postgres
