package domain

import "time"

// Item represents a catalog item offered in the storefront.
// Every item has exactly one owner at creation; ownership is immutable
// through the mutation layer.
type Item struct {
	// ID is the unique identifier for the item (auto-generated).
	ID int64 `json:"id"`

	// Title is the display title of the item.
	Title string `json:"title"`

	// Description is the long-form item description.
	Description string `json:"description"`

	// Image is the URL of the item thumbnail.
	Image string `json:"image"`

	// LargeImage is the URL of the full-size item image.
	LargeImage string `json:"large_image"`

	// Price is the item price in the smallest currency unit (cents).
	Price int64 `json:"price"`

	// OwnerID references the user who created the item. This is a
	// relation, not a lifecycle dependency; deleting users is out of scope.
	OwnerID int64 `json:"owner_id"`

	// CreatedAt is the timestamp when the item was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the item was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewItem creates a new Item owned by the given user.
func NewItem(ownerID int64, title, description, image, largeImage string, price int64) *Item {
	now := time.Now().UTC()
	return &Item{
		Title:       title,
		Description: description,
		Image:       image,
		LargeImage:  largeImage,
		Price:       price,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
