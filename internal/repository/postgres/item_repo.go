package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// itemRepository implements repository.ItemRepository for PostgreSQL.
type itemRepository struct {
	db *DB
}

// NewItemRepository creates a new PostgreSQL item repository.
func NewItemRepository(db *DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, title, description, image, large_image, price, owner_id, created_at, updated_at`

// Create creates a new item.
func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (title, description, image, large_image, price, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.Image,
		item.LargeImage,
		item.Price,
		item.OwnerID,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by ID.
func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item := &domain.Item{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Image,
		&item.LargeImage,
		&item.Price,
		&item.OwnerID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
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
	err := r.db.Pool.QueryRow(ctx, `SELECT owner_id FROM items WHERE id = $1`, id).Scan(&ownerID)
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
	query := `
		UPDATE items
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    image = COALESCE($3, image),
		    large_image = COALESCE($4, large_image),
		    price = COALESCE($5, price),
		    updated_at = $6
		WHERE id = $7
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		upd.Title,
		upd.Description,
		upd.Image,
		upd.LargeImage,
		upd.Price,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, domain.ErrItemNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete deletes an item by ID.
func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// List returns items with pagination.
func (r *itemRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Item], error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Image,
			&item.LargeImage,
			&item.Price,
			&item.OwnerID,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
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

// Ensure itemRepository implements repository.ItemRepository.
var _ repository.ItemRepository = (*itemRepository)(nil)
