package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// itemRepository implements repository.ItemRepository for SQLite.
type itemRepository struct {
	db *DB
}

// NewItemRepository creates a new SQLite item repository.
func NewItemRepository(db *DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, title, description, image, large_image, price, owner_id, created_at, updated_at`

// Create creates a new item.
func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (title, description, image, large_image, price, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		item.Title,
		item.Description,
		item.Image,
		item.LargeImage,
		item.Price,
		item.OwnerID,
		item.CreatedAt.Format(time.RFC3339),
		item.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	item.ID = id

	return nil
}

// GetByID retrieves an item by ID.
func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item by ID: %w", err)
	}
	return item, nil
}

// GetOwnerID retrieves only the owner id of an item.
func (r *itemRepository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM items WHERE id = ?`, id).Scan(&ownerID)
	if err != nil {
		if isNoRows(err) {
			return 0, domain.ErrItemNotFound
		}
		return 0, fmt.Errorf("failed to get item owner: %w", err)
	}
	return ownerID, nil
}

// ApplyUpdate applies the non-nil fields of upd and returns the new state.
func (r *itemRepository) ApplyUpdate(ctx context.Context, id int64, upd repository.ItemUpdate) (*domain.Item, error) {
	set := "updated_at = ?"
	args := []interface{}{time.Now().UTC().Format(time.RFC3339)}

	if upd.Title != nil {
		set += ", title = ?"
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		set += ", description = ?"
		args = append(args, *upd.Description)
	}
	if upd.Image != nil {
		set += ", image = ?"
		args = append(args, *upd.Image)
	}
	if upd.LargeImage != nil {
		set += ", large_image = ?"
		args = append(args, *upd.LargeImage)
	}
	if upd.Price != nil {
		set += ", price = ?"
		args = append(args, *upd.Price)
	}
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, `UPDATE items SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, domain.ErrItemNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete deletes an item by ID.
func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// List returns items with pagination.
func (r *itemRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Item], error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return &repository.ListResult[domain.Item]{
		Items:  items,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// scanItem scans a full item row.
func scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	var createdAt, updatedAt string

	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Image,
		&item.LargeImage,
		&item.Price,
		&item.OwnerID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return item, nil
}

// Ensure itemRepository implements repository.ItemRepository.
var _ repository.ItemRepository = (*itemRepository)(nil)
