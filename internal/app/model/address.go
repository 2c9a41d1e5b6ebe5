package model

import (
	"time"

	"gorm.io/gorm"
)

type AddressType string

const (
	AddressTypeShipping AddressType = "shipping"
	AddressTypeBilling  AddressType = "billing"
)

// Address is a reusable shipping/billing address owned by a user. At most
// one address per (user, type) may be the default.
type Address struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	AddressType AddressType    `gorm:"type:varchar(20);default:'shipping'" json:"address_type"`
	FullName    string         `gorm:"size:100;not null" json:"full_name"`
	Phone       string         `gorm:"size:30" json:"phone"`
	Street      string         `gorm:"type:text;not null" json:"street"`
	City        string         `gorm:"size:100;not null" json:"city"`
	State       string         `gorm:"size:100" json:"state"`
	ZipCode     string         `gorm:"size:20" json:"zip_code"`
	Country     string         `gorm:"size:2;not null" json:"country"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}

// Matches reports whether two addresses are field-for-field identical,
// ignoring identity and bookkeeping columns. Used for dedup at checkout.
func (a *Address) Matches(other *Address) bool {
	return a.FullName == other.FullName &&
		a.Phone == other.Phone &&
		a.Street == other.Street &&
		a.City == other.City &&
		a.State == other.State &&
		a.ZipCode == other.ZipCode &&
		a.Country == other.Country
}
