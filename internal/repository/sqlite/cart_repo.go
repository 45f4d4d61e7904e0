package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// cartRepository implements repository.CartRepository for SQLite.
type cartRepository struct {
	db *DB
}

// NewCartRepository creates a new SQLite cart repository.
func NewCartRepository(db *DB) repository.CartRepository {
	return &cartRepository{db: db}
}

const cartColumns = `id, user_id, item_id, quantity, created_at, updated_at`

// AddOne merges one unit of the item into the user's cart. The UPSERT is a
// single statement, so the at-most-one-row-per-(user,item) invariant holds
// under concurrent adds without application-level locking.
func (r *cartRepository) AddOne(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO cart_items (user_id, item_id, quantity, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (user_id, item_id)
		DO UPDATE SET quantity = quantity + 1, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, itemID, now, now); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	return r.GetByUserAndItem(ctx, userID, itemID)
}

// GetByID retrieves a cart entry by ID.
func (r *cartRepository) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE id = ?`

	entry, err := scanCartItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to get cart item by ID: %w", err)
	}
	return entry, nil
}

// GetByUserAndItem retrieves the cart entry for a (user, item) pair.
func (r *cartRepository) GetByUserAndItem(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = ? AND item_id = ?`

	entry, err := scanCartItem(r.db.QueryRowContext(ctx, query, userID, itemID))
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
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = ? ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var entries []*domain.CartItem
	for rows.Next() {
		entry, err := scanCartItem(rows)
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
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}

	return nil
}

// scanCartItem scans a full cart entry row.
func scanCartItem(row rowScanner) (*domain.CartItem, error) {
	entry := &domain.CartItem{}
	var createdAt, updatedAt string

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ItemID,
		&entry.Quantity,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	entry.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return entry, nil
}

// Ensure cartRepository implements repository.CartRepository.
var _ repository.CartRepository = (*cartRepository)(nil)
