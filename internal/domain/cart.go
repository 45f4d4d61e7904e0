package domain

import "time"

// CartItem links a user to an item with a quantity.
// Invariant: at most one CartItem per (user, item) pair at any time,
// enforced by merge-on-add plus a unique index in the store.
type CartItem struct {
	// ID is the unique identifier for the cart entry (auto-generated).
	ID int64 `json:"id"`

	// UserID references the owning user.
	UserID int64 `json:"user_id"`

	// ItemID references the catalog item.
	ItemID int64 `json:"item_id"`

	// Quantity is the number of units in the cart. Always >= 1; merge
	// semantics increment this instead of inserting a duplicate row.
	Quantity int `json:"quantity"`

	// CreatedAt is the timestamp when the cart entry was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the cart entry was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}
