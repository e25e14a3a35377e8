package models

import "github.com/google/uuid"

// Cart holds a user's pending items. One cart per user; items are
// deleted (not the cart itself) when an order is placed.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Items  []CartItem `json:"items,omitempty"`
}

type CartItem struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;index" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
}
