// Package dbaccess is the database access core of the application. It
// owns every physical Postgres connection the process opens and hands
// them out as scoped, optionally tenant-stamped sessions.
//
// The package is built around three ideas:
//
//   - Roles. Two disjoint database roles exist: the administrative role
//     (schema owner, migrations, background maintenance) and the
//     restricted API role used on behalf of requests. They use disjoint
//     credentials and disjoint pools, so a buggy or compromised API-role
//     session can never exceed the privilege boundary the database
//     enforces for that role.
//
//   - Execution domains. A domain is one cooperative scheduling scope:
//     the HTTP serving loop, the background job runner, a test harness.
//     Pools are cached per (role, domain) and never shared across
//     domains. The Manager is constructed once at startup and passed by
//     reference into each domain; the domain's key travels on the
//     context, and CloseDomain releases a domain's pools when it ends.
//
//   - Tenant stamping. Row-level security policies in the database
//     decide row visibility by comparing a session-scoped setting
//     against row owner columns. Session.Stamp is the single mechanism
//     that sets it; a session is stamped for at most one user and the
//     stamp dies with the session.
package dbaccess
