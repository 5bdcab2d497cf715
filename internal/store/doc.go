// Package store defines the persistence interfaces consumed by services
// and handlers, together with the common error vocabulary shared by all
// implementations. Concrete Postgres implementations live in
// internal/platform/postgres.
//
// Store implementations are constructed per leased database session (see
// internal/dbaccess): a store is bound to exactly one Querier and lives
// no longer than the session it wraps. This is what keeps tenant-scoped
// queries on the session that was stamped for the tenant.
package store
