package util

import "errors"

// Sentinel errors for the migration failure taxonomy
var (
	// ErrConfiguration indicates bad inputs or paths, detected pre-flight
	ErrConfiguration = errors.New("configuration error")

	// ErrSchema indicates a malformed schema descriptor
	ErrSchema = errors.New("schema error")

	// ErrDatabaseMigration indicates a row insertion, key collision, or
	// transaction failure while committing a single shot
	ErrDatabaseMigration = errors.New("database migration error")

	// ErrMediaMigration indicates an unclassifiable or colliding media file
	ErrMediaMigration = errors.New("media migration error")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")
)
