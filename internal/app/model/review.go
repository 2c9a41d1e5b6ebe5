package model

import (
	"time"
)

// Review is a product review document stored in Redis, one per user per
// product. It references the product and author by ID value only.
type Review struct {
	ProductID uint      `json:"product_id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewSummary aggregates the reviews of one product
type ReviewSummary struct {
	ProductID     uint    `json:"product_id"`
	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}
