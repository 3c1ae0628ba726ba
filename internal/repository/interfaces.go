// Package repository defines data access interfaces for the caixa ledger.
// These interfaces abstract database operations, allowing for different implementations
// (SQLite, PostgreSQL, mocks for testing) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create inserts a new user and sets its ID.
	// Returns domain.ErrUserAlreadyExists if the username is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByUsername retrieves a user by exact (case-sensitive) username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns users ordered by ID with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)
}

// =============================================================================
// Transaction Repository
// =============================================================================

// TransactionRepository defines the interface for ledger data access.
// Every method is scoped to a single owner.
type TransactionRepository interface {
	// Create inserts a new transaction and sets its ID.
	Create(ctx context.Context, tx *domain.Transaction) error

	// List returns the owner's transactions ordered by created_at, then ID.
	List(ctx context.Context, ownerID int64, filter TransactionFilter) ([]*domain.Transaction, error)

	// Delete removes one of the owner's transactions.
	// Returns domain.ErrTransactionNotFound if no such row is visible to the owner.
	Delete(ctx context.Context, ownerID, id int64) error
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	// Period restricts created_at to whole UTC days; open sides are unbounded.
	Period domain.Period

	// Limit caps the number of rows returned. Zero means no limit.
	Limit int
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}
