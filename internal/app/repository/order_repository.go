package repository

import (
	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

// DashboardStats aggregates storewide order metrics for the admin dashboard
type DashboardStats struct {
	TotalOrders      int64   `json:"total_orders"`
	PendingOrders    int64   `json:"pending_orders"`
	ProcessingOrders int64   `json:"processing_orders"`
	ShippedOrders    int64   `json:"shipped_orders"`
	DeliveredOrders  int64   `json:"delivered_orders"`
	CancelledOrders  int64   `json:"cancelled_orders"`
	TotalRevenue     float64 `json:"total_revenue"`
}

// SalesRow is one aggregated line of the sales report
type SalesRow struct {
	OrderNumber   string  `json:"order_number"`
	CustomerEmail string  `json:"customer_email"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	ItemCount     int     `json:"item_count"`
	Total         float64 `json:"total"`
	CreatedAt     string  `json:"created_at"`
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByOrderNumber(orderNumber string) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindAll(status string, limit, offset int) ([]model.Order, int64, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	UpdatePaymentStatus(id uint, status model.PaymentStatus) error
	GetDashboardStats() (*DashboardStats, error)
	GetSalesRows() ([]SalesRow, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Product")
	}).Preload("ShippingAddress").Preload("BillingAddress").Preload("User")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id":      order.UserID,
			"order_number": order.OrderNumber,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByOrderNumber(orderNumber string) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindAll(status string, limit, offset int) ([]model.Order, int64, error) {
	query := r.db.Model(&model.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count orders in database", err)
		return nil, 0, err
	}

	finder := r.preloadOrder()
	if status != "" {
		finder = finder.Where("status = ?", status)
	}
	if limit > 0 {
		finder = finder.Limit(limit)
	}
	if offset > 0 {
		finder = finder.Offset(offset)
	}

	var orders []model.Order
	if err := finder.Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders in database", err)
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(id uint, status model.PaymentStatus) error {
	logger.Debug("Updating order payment status in database", map[string]interface{}{
		"order_id":       id,
		"payment_status": status,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("payment_status", status).Error; err != nil {
		logger.Error("Failed to update order payment status in database", err, map[string]interface{}{
			"order_id":       id,
			"payment_status": status,
		})
		return err
	}
	return nil
}

func (r *orderRepository) GetDashboardStats() (*DashboardStats, error) {
	logger.Debug("Collecting dashboard statistics from database")

	stats := &DashboardStats{}

	if err := r.db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		logger.Error("Failed to count total orders", err)
		return nil, err
	}

	statusCounts := []struct {
		Status model.OrderStatus
		Count  int64
	}{}
	if err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		logger.Error("Failed to count orders by status", err)
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case model.OrderStatusPending:
			stats.PendingOrders = sc.Count
		case model.OrderStatusProcessing:
			stats.ProcessingOrders = sc.Count
		case model.OrderStatusShipped:
			stats.ShippedOrders = sc.Count
		case model.OrderStatusDelivered:
			stats.DeliveredOrders = sc.Count
		case model.OrderStatusCancelled:
			stats.CancelledOrders = sc.Count
		}
	}

	var revenue struct {
		TotalRevenue float64
	}
	if err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total), 0) as total_revenue").
		Where("payment_status = ?", model.PaymentStatusPaid).
		Scan(&revenue).Error; err != nil {
		logger.Error("Failed to calculate total revenue", err)
		return nil, err
	}
	stats.TotalRevenue = revenue.TotalRevenue

	return stats, nil
}

func (r *orderRepository) GetSalesRows() ([]SalesRow, error) {
	var rows []SalesRow
	if err := r.db.Model(&model.Order{}).
		Select(`orders.order_number,
			users.email as customer_email,
			orders.status,
			orders.payment_status,
			COUNT(order_items.id) as item_count,
			orders.total,
			orders.created_at`).
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("LEFT JOIN order_items ON order_items.order_id = orders.id").
		Group("orders.id, users.email").
		Order("orders.created_at DESC").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to collect sales rows from database", err)
		return nil, err
	}
	return rows, nil
}
