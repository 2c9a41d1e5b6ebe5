package model

import (
	"time"
)

// Wishlist is a per-user document stored in Redis
type Wishlist struct {
	UserID    uint           `json:"user_id"`
	Items     []WishlistItem `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type WishlistItem struct {
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Contains reports whether a product is already on the wishlist
func (w *Wishlist) Contains(productID uint) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
