// Package pg provides helpers for connecting to PostgreSQL with pgx and for
// applying schema migrations with goose.
//
// Connect establishes a pgxpool connection pool with retry logic so services
// survive transient startup races against the database. Migrate applies goose
// migrations through the same pool, routing migration output through the
// application's structured logger. The error helpers (IsNotFoundError,
// IsDuplicateKeyError, ...) give callers a driver-agnostic way to branch on
// common SQLSTATEs.
//
// Configuration is described by the Config struct whose fields are populated
// from environment variables via github.com/caarlos0/env.
package pg
