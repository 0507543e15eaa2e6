// Package pg bootstraps the PostgreSQL layer behind the pgx-backed stores:
// env-driven pool configuration, Connect with retry and backoff, a readiness
// probe for the health endpoint and error classification helpers shared by
// query code.
package pg
