package model

import (
	"time"

	"gorm.io/gorm"
)

// Payment records one checkout session created with the external gateway.
// Its status follows the webhook events for the session.
type Payment struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	Provider    string         `gorm:"type:varchar(50);not null" json:"provider"`
	SessionID   string         `gorm:"type:varchar(100);index" json:"session_id"`
	CheckoutURL string         `gorm:"type:text" json:"checkout_url,omitempty"`
	Amount      float64        `gorm:"not null" json:"amount"`
	Currency    string         `gorm:"size:3;default:'usd'" json:"currency"`
	Status      PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Order Order `gorm:"foreignKey:OrderID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
