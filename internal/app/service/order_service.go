package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/util"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrInvalidTransition   = errors.New("invalid order status transition")
)

// OrderAddressInput is the checkout address; either AddressID references a
// saved address or the inline fields describe a new one.
type OrderAddressInput struct {
	AddressID *uint
	FullName  string
	Phone     string
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
}

// CreateOrderInput carries everything needed to place an order from the
// current cart.
type CreateOrderInput struct {
	ShippingMethodID uint
	Address          OrderAddressInput
	DiscountCode     string
	Notes            string
}

type OrderService interface {
	CreateOrderFromCart(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	CancelOrder(userID, orderID uint) (*model.Order, error)
	GetAllOrders(status string, limit, offset int) ([]model.Order, int64, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error
}

type orderService struct {
	orderRepo  repository.OrderRepository
	cartRepo   repository.CartRepository
	outboxRepo repository.OutboxRepository
	db         *gorm.DB
	notifier   NotificationService
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	outboxRepo repository.OutboxRepository,
	db *gorm.DB,
	notifier ...NotificationService,
) OrderService {
	var n NotificationService
	if len(notifier) > 0 {
		n = notifier[0]
	}
	return &orderService{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		outboxRepo: outboxRepo,
		db:         db,
		notifier:   n,
	}
}

// CreateOrderFromCart places an order from the user's cart document. All
// relational work — address resolution, shipping validation, discount
// consumption, stock decrement, order and outbox rows — happens in one
// transaction. The Redis cart clear runs after commit, best-effort; the
// outbox sweeper retries it if it fails here.
func (s *orderService) CreateOrderFromCart(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":            userID,
		"shipping_method_id": input.ShippingMethodID,
		"discount_code":      input.DiscountCode,
	})

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch cart for order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if cart.IsEmpty() {
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	address, err := s.resolveAddress(tx, userID, input.Address)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var method model.ShippingMethod
	if err := tx.First(&method, input.ShippingMethodID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Shipping method not found during order creation", map[string]interface{}{
				"user_id":            userID,
				"shipping_method_id": input.ShippingMethodID,
			})
			return nil, ErrShippingMethodNotFound
		}
		logger.Error("Failed to fetch shipping method during order creation", err, map[string]interface{}{
			"shipping_method_id": input.ShippingMethodID,
		})
		return nil, err
	}
	if !method.IsActive {
		tx.Rollback()
		return nil, ErrShippingMethodNotFound
	}
	if !method.ShipsTo(address.Country) {
		tx.Rollback()
		logger.Warn("Shipping method does not ship to order destination", map[string]interface{}{
			"user_id":            userID,
			"shipping_method_id": method.ID,
			"country":            address.Country,
		})
		return nil, ErrShippingMethodUnavailable
	}

	var (
		subtotal   float64
		orderItems []model.OrderItem
	)
	for _, cartItem := range cart.Items {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product not found during order creation", map[string]interface{}{
					"user_id":    userID,
					"product_id": cartItem.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch product during order creation", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		if product.StockQuantity < cartItem.Quantity {
			tx.Rollback()
			logger.Warn("Order creation failed: insufficient product stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
				"requested":  cartItem.Quantity,
				"available":  product.StockQuantity,
			})
			return nil, ErrInsufficientStock
		}

		lineTotal := product.Price * float64(cartItem.Quantity)
		orderItems = append(orderItems, model.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.ImageURL,
			Price:        product.Price,
			Quantity:     cartItem.Quantity,
			Total:        lineTotal,
		})
		subtotal += lineTotal

		if err := tx.Model(&model.Product{}).
			Where("id = ?", product.ID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", cartItem.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to update product stock", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, err
		}
	}

	discountAmount, discountCode, err := s.consumeDiscount(tx, userID, input.DiscountCode, subtotal)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	order := &model.Order{
		OrderNumber:        util.GenerateOrderNumber(),
		UserID:             userID,
		Status:             model.OrderStatusPending,
		PaymentStatus:      model.PaymentStatusPending,
		Subtotal:           subtotal,
		ShippingCost:       method.Cost,
		DiscountAmount:     discountAmount,
		DiscountCode:       discountCode,
		Total:              subtotal + method.Cost - discountAmount,
		ShippingMethodID:   method.ID,
		ShippingMethodName: method.Name,
		ShippingAddressID:  address.ID,
		BillingAddressID:   address.ID,
		Notes:              input.Notes,
		OrderItems:         orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
			"total":   order.Total,
		})
		return nil, err
	}

	// Outbox row so the Redis cart clear survives a crash after commit
	task := &model.CartClearTask{
		OrderID: order.ID,
		UserID:  userID,
		Status:  model.CartClearPending,
	}
	if err := tx.Create(task).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create cart clear task", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	s.clearCartAfterCommit(ctx, task)

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"subtotal":     order.Subtotal,
		"discount":     order.DiscountAmount,
		"total":        order.Total,
		"item_count":   len(orderItems),
	})

	s.notify(ctx, userID, model.NotificationTypeOrderStatus,
		"Order placed",
		fmt.Sprintf("Order %s has been placed.", order.OrderNumber),
		fmt.Sprintf("/orders/%d", order.ID))

	return s.orderRepo.FindByID(order.ID)
}

// resolveAddress returns a saved address by ID, reuses a field-identical
// saved address, or creates a new one inside the transaction.
func (s *orderService) resolveAddress(tx *gorm.DB, userID uint, input OrderAddressInput) (*model.Address, error) {
	if input.AddressID != nil {
		var address model.Address
		if err := tx.First(&address, *input.AddressID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAddressNotFound
			}
			logger.Error("Failed to fetch address during order creation", err, map[string]interface{}{
				"address_id": *input.AddressID,
			})
			return nil, err
		}
		if address.UserID != userID {
			logger.Warn("Order address denied: ownership mismatch", map[string]interface{}{
				"user_id":    userID,
				"address_id": address.ID,
			})
			return nil, ErrAddressNotFound
		}
		return &address, nil
	}

	candidate := &model.Address{
		UserID:      userID,
		AddressType: model.AddressTypeShipping,
		FullName:    input.FullName,
		Phone:       input.Phone,
		Street:      input.Street,
		City:        input.City,
		State:       input.State,
		ZipCode:     input.ZipCode,
		Country:     input.Country,
	}

	var saved []model.Address
	if err := tx.Where("user_id = ?", userID).Find(&saved).Error; err != nil {
		logger.Error("Failed to fetch saved addresses during order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	for i := range saved {
		if saved[i].Matches(candidate) {
			logger.Debug("Reusing saved address for order", map[string]interface{}{
				"user_id":    userID,
				"address_id": saved[i].ID,
			})
			return &saved[i], nil
		}
	}

	if err := tx.Create(candidate).Error; err != nil {
		logger.Error("Failed to create address during order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return candidate, nil
}

// consumeDiscount evaluates and consumes a discount code inside the order
// transaction. An inapplicable code degrades to zero discount rather than
// failing the order. The usage increment is guarded against the limit so a
// concurrent order cannot push the counter past it; losing that race also
// degrades to zero.
func (s *orderService) consumeDiscount(tx *gorm.DB, userID uint, code string, subtotal float64) (float64, string, error) {
	if code == "" {
		return 0, "", nil
	}

	now := time.Now()
	var discount model.Discount
	err := tx.Where("code = ? AND is_active = ?", code, true).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Discount code not applicable, placing order without discount", map[string]interface{}{
				"user_id": userID,
				"code":    code,
			})
			return 0, "", nil
		}
		logger.Error("Failed to fetch discount during order creation", err, map[string]interface{}{
			"code": code,
		})
		return 0, "", err
	}

	if subtotal < discount.MinimumPurchase {
		logger.Warn("Discount below minimum purchase, placing order without discount", map[string]interface{}{
			"user_id":          userID,
			"code":             code,
			"subtotal":         subtotal,
			"minimum_purchase": discount.MinimumPurchase,
		})
		return 0, "", nil
	}

	res := tx.Model(&model.Discount{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", discount.ID).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		logger.Error("Failed to increment discount usage", res.Error, map[string]interface{}{
			"discount_id": discount.ID,
		})
		return 0, "", res.Error
	}
	if res.RowsAffected == 0 {
		logger.Warn("Discount usage limit reached concurrently, placing order without discount", map[string]interface{}{
			"user_id":     userID,
			"discount_id": discount.ID,
		})
		return 0, "", nil
	}

	return discount.AmountFor(subtotal), discount.Code, nil
}

// clearCartAfterCommit clears the Redis cart and marks the outbox task done.
// Failures are only logged; the sweeper picks the task up again.
func (s *orderService) clearCartAfterCommit(ctx context.Context, task *model.CartClearTask) {
	if err := s.cartRepo.Clear(ctx, task.UserID); err != nil {
		logger.Error("Inline cart clear failed, leaving task for sweeper", err, map[string]interface{}{
			"user_id":  task.UserID,
			"order_id": task.OrderID,
		})
		if markErr := s.outboxRepo.MarkFailed(task.ID, err.Error()); markErr != nil {
			logger.Error("Failed to record cart clear failure", markErr, map[string]interface{}{
				"task_id": task.ID,
			})
		}
		return
	}
	if err := s.outboxRepo.MarkDone(task.ID); err != nil {
		logger.Error("Failed to mark cart clear task done", err, map[string]interface{}{
			"task_id": task.ID,
		})
	}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// CancelOrder cancels a not-yet-shipped order and restores the stock its
// items reserved, in one transaction.
func (s *orderService) CancelOrder(userID, orderID uint) (*model.Order, error) {
	logger.Info("Cancelling order", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.GetOrderByID(userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		logger.Warn("Order cannot be cancelled", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotCancellable
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order cancellation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_id": orderID,
			})
		}
	}()

	// Flip the status first with the cancellable states in the predicate,
	// so a concurrent cancel (or a shipment racing this call) loses and the
	// stock restore below runs at most once per order.
	updates := map[string]interface{}{"status": model.OrderStatusCancelled}
	if order.PaymentStatus == model.PaymentStatusPaid {
		updates["payment_status"] = model.PaymentStatusRefunded
	}
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status NOT IN ?", orderID, []model.OrderStatus{
			model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled,
		}).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		logger.Error("Failed to update cancelled order", res.Error, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		logger.Warn("Order already cancelled or shipped, skipping", map[string]interface{}{
			"order_id": orderID,
		})
		return nil, ErrOrderNotCancellable
	}

	for _, item := range order.OrderItems {
		if err := tx.Model(&model.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to restore product stock", err, map[string]interface{}{
				"order_id":   orderID,
				"product_id": item.ProductID,
			})
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order cancellation", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Info("Order cancelled successfully", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	s.notify(context.Background(), userID, model.NotificationTypeOrderStatus,
		"Order cancelled",
		fmt.Sprintf("Order %s has been cancelled.", order.OrderNumber),
		fmt.Sprintf("/orders/%d", order.ID))

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) GetAllOrders(status string, limit, offset int) ([]model.Order, int64, error) {
	orders, total, err := s.orderRepo.FindAll(status, limit, offset)
	if err != nil {
		logger.Error("Failed to fetch orders", err)
		return nil, 0, err
	}
	return orders, total, nil
}

// Status moves forward through pending, processing, shipped, delivered;
// cancellation is handled by CancelOrder.
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:    {model.OrderStatusDelivered},
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	valid := false
	for _, next := range allowedTransitions[order.Status] {
		if next == status {
			valid = true
			break
		}
	}
	if !valid {
		logger.Warn("Invalid order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
	})

	s.notify(context.Background(), order.UserID, model.NotificationTypeOrderStatus,
		"Order update",
		fmt.Sprintf("Order %s is now %s.", order.OrderNumber, status),
		fmt.Sprintf("/orders/%d", order.ID))

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error {
	if err := s.orderRepo.UpdatePaymentStatus(orderID, status); err != nil {
		logger.Error("Failed to update payment status", err, map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return err
	}

	logger.Info("Payment status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

// notify sends a user notification when a notifier is wired; failures are
// logged and never surface to the caller.
func (s *orderService) notify(ctx context.Context, userID uint, typ model.NotificationType, title, content, link string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, typ, title, content, link); err != nil {
		logger.Error("Failed to send order notification", err, map[string]interface{}{
			"user_id": userID,
		})
	}
}
