package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order is an immutable snapshot of a placed purchase. Status and payment
// status are the only fields mutated after creation.
type Order struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	OrderNumber        string         `gorm:"size:40;uniqueIndex;not null" json:"order_number"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	Status             OrderStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentStatus      PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PaymentMethod      string         `gorm:"type:varchar(50)" json:"payment_method"`
	Subtotal           float64        `gorm:"not null" json:"subtotal"`
	ShippingCost       float64        `gorm:"not null" json:"shipping_cost"`
	DiscountAmount     float64        `gorm:"default:0" json:"discount_amount"`
	DiscountCode       string         `gorm:"size:50" json:"discount_code,omitempty"`
	Total              float64        `gorm:"not null" json:"total"`
	ShippingMethodID   uint           `gorm:"not null;index" json:"shipping_method_id"`
	ShippingMethodName string         `gorm:"size:100" json:"shipping_method_name"`
	ShippingAddressID  uint           `gorm:"not null;index" json:"shipping_address_id"`
	BillingAddressID   uint           `gorm:"not null;index" json:"billing_address_id"`
	Notes              string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	User            User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
	ShippingAddress *Address    `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
	BillingAddress  *Address    `gorm:"foreignKey:BillingAddressID" json:"billing_address,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots price, name and image at time of purchase and is never
// mutated after creation.
type OrderItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	OrderID      uint           `gorm:"not null;index" json:"order_id"`
	ProductID    uint           `gorm:"not null;index" json:"product_id"`
	ProductName  string         `gorm:"not null" json:"product_name"`
	ProductImage string         `json:"product_image,omitempty"`
	Price        float64        `gorm:"not null" json:"price"`
	Quantity     int            `gorm:"not null" json:"quantity"`
	Total        float64        `gorm:"not null" json:"total"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// CanBeCancelled reports whether stock can still be restored for this order
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return true
}
