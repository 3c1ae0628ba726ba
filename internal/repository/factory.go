package repository

import (
	"context"
)

// Repositories holds all repository instances.
type Repositories struct {
	User        UserRepository
	Transaction TransactionRepository
}

// DatabaseHealth is an interface for database health checks.
// It satisfies handler.HealthChecker.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}

// Migrator applies the embedded schema migrations.
type Migrator interface {
	Migrate(ctx context.Context) error
}
