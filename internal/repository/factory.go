package repository

import "context"

// Repositories holds all repository instances.
type Repositories struct {
	User UserRepository
	Item ItemRepository
	Cart CartRepository
}

// DatabaseHealth is an interface for database health checks.
// Both the SQLite and PostgreSQL backends satisfy it.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
