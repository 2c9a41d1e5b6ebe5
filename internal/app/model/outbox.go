package model

import (
	"time"
)

type CartClearStatus string

const (
	CartClearPending CartClearStatus = "pending"
	CartClearDone    CartClearStatus = "done"
)

// CartClearTask is an outbox row created inside the order transaction so the
// Redis cart clear survives a crash between commit and the inline clear. A
// background sweeper retries pending tasks until the clear succeeds.
type CartClearTask struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Status    CartClearStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Attempts  int             `gorm:"default:0" json:"attempts"`
	LastError string          `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CartClearTask) TableName() string {
	return "cart_clear_tasks"
}
