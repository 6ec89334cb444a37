package database

import "time"

// Database Connection Pool Constants
const (
	// DefaultMinConnections is the minimum number of connections to maintain in the pool
	DefaultMinConnections = 2

	// DefaultMaxConnections is used when the caller does not override the pool size
	DefaultMaxConnections = 10

	// DefaultMaxIdleTime is how long a connection may sit idle before the
	// pool closes it
	DefaultMaxIdleTime = 5 * time.Minute

	// DefaultMaxLifetime bounds the total age of a pooled connection
	DefaultMaxLifetime = 30 * time.Minute
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
	ErrMsgFailedToApplySchema     = "failed to apply schema"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
	LogMsgSchemaApplied                   = "Database schema applied"
)
