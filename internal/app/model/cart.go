package model

import (
	"time"
)

// Cart is a per-user document stored in Redis. It references products by ID
// only; name, price and image are snapshots taken when the item was added.
type Cart struct {
	UserID    uint       `json:"user_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// Recalculate recomputes the denormalized total from the line items. Must be
// called after every mutation so total == sum(price * quantity) holds.
func (c *Cart) Recalculate() {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.Total = total
	c.UpdatedAt = time.Now()
}

// IsEmpty reports whether the cart has no line items
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
