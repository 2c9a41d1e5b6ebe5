package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ShippingMethod is a selectable delivery option. An empty Countries list
// means the method ships worldwide.
type ShippingMethod struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	Cost          float64        `gorm:"not null" json:"cost"`
	EstimatedDays int            `gorm:"default:0" json:"estimated_days"`
	Countries     pq.StringArray `gorm:"type:text[];default:'{}';not null" json:"countries"`
	IsActive      bool           `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

// ShipsTo reports whether this method can deliver to the given country code
func (m *ShippingMethod) ShipsTo(country string) bool {
	if len(m.Countries) == 0 {
		return true
	}
	for _, c := range m.Countries {
		if c == country {
			return true
		}
	}
	return false
}
