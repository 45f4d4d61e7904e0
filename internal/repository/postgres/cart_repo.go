package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// cartRepository implements repository.CartRepository for PostgreSQL.
type cartRepository struct {
	db *DB
}

// NewCartRepository creates a new PostgreSQL cart repository.
func NewCartRepository(db *DB) repository.CartRepository {
	return &cartRepository{db: db}
}

const cartColumns = `id, user_id, item_id, quantity, created_at, updated_at`

// AddOne merges one unit of the item into the user's cart in a single
// atomic UPSERT, returning the post-update row.
func (r *cartRepository) AddOne(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	now := time.Now().UTC()

	query := `
		INSERT INTO cart_items (user_id, item_id, quantity, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (user_id, item_id)
		DO UPDATE SET quantity = cart_items.quantity + 1, updated_at = EXCLUDED.updated_at
		RETURNING ` + cartColumns + `
	`

	entry := &domain.CartItem{}
	err := r.db.Pool.QueryRow(ctx, query, userID, itemID, now).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ItemID,
		&entry.Quantity,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	return entry, nil
}

// GetByID retrieves a cart entry by ID.
func (r *cartRepository) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByUserAndItem retrieves the cart entry for a (user, item) pair.
func (r *cartRepository) GetByUserAndItem(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 AND item_id = $2`
	return r.getOne(ctx, query, userID, itemID)
}

func (r *cartRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.CartItem, error) {
	entry := &domain.CartItem{}
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ItemID,
		&entry.Quantity,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return entry, nil
}

// ListByUser returns all cart entries for a user.
func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var entries []*domain.CartItem
	for rows.Next() {
		entry := &domain.CartItem{}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ItemID,
			&entry.Quantity,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return entries, nil
}

// Delete deletes a cart entry by ID.
func (r *cartRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}

	return nil
}

// Ensure cartRepository implements repository.CartRepository.
var _ repository.CartRepository = (*cartRepository)(nil)
