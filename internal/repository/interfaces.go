// Package repository defines data access interfaces for shopcore.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while keeping
// the service layer clean. Field projections from the generic entity-store
// contract become purpose-named methods (GetOwnerID, GetByResetToken) so
// the fields a caller depends on are explicit in the signature.
package repository

import (
	"context"
	"time"

	"github.com/prn-tf/shopcore/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. Returns domain.ErrEmailTaken if the
	// normalized email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByResetToken retrieves the user holding the given reset token,
	// provided the stored expiry is at or after expiryNotBefore.
	GetByResetToken(ctx context.Context, token string, expiryNotBefore time.Time) (*domain.User, error)

	// Update updates an existing user, including password hash, permission
	// set, and reset-token fields.
	Update(ctx context.Context, user *domain.User) error

	// ReplacePermissions replaces the user's permission set wholesale.
	ReplacePermissions(ctx context.Context, id int64, perms []domain.Permission) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByEmail checks if a user with the given normalized email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Item Repository
// =============================================================================

// ItemUpdate carries the updatable item fields. The id and owner are
// deliberately absent: updates apply fields-by-id and never move ownership.
type ItemUpdate struct {
	Title       *string
	Description *string
	Image       *string
	LargeImage  *string
	Price       *int64
}

// ItemRepository defines the interface for catalog item data access.
type ItemRepository interface {
	// Create creates a new item.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item by ID.
	GetByID(ctx context.Context, id int64) (*domain.Item, error)

	// GetOwnerID retrieves only the owner id of an item.
	GetOwnerID(ctx context.Context, id int64) (int64, error)

	// ApplyUpdate applies the non-nil fields of upd to the item and returns
	// the post-update state.
	ApplyUpdate(ctx context.Context, id int64, upd ItemUpdate) (*domain.Item, error)

	// Delete deletes an item by ID.
	Delete(ctx context.Context, id int64) error

	// List returns items with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.Item], error)
}

// =============================================================================
// Cart Repository
// =============================================================================

// CartRepository defines the interface for cart entry data access.
type CartRepository interface {
	// AddOne atomically merges one unit of the item into the user's cart:
	// it increments the quantity of the existing (user, item) row or
	// inserts a new row with quantity 1, and returns the post-update state.
	// The store guarantees at most one row per (user, item) pair.
	AddOne(ctx context.Context, userID, itemID int64) (*domain.CartItem, error)

	// GetByID retrieves a cart entry by ID, including its owner id.
	GetByID(ctx context.Context, id int64) (*domain.CartItem, error)

	// GetByUserAndItem retrieves the cart entry for a (user, item) pair.
	GetByUserAndItem(ctx context.Context, userID, itemID int64) (*domain.CartItem, error)

	// ListByUser returns all cart entries for a user.
	ListByUser(ctx context.Context, userID int64) ([]*domain.CartItem, error)

	// Delete deletes a cart entry by ID.
	Delete(ctx context.Context, id int64) error
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
