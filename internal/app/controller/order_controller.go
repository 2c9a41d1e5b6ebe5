package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/service"
	apperrors "storefront-backend/internal/errors"
	"storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type OrderAddressRequest struct {
	AddressID *uint  `json:"address_id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

type CreateOrderRequest struct {
	ShippingMethodID uint                `json:"shipping_method_id" binding:"required"`
	Address          OrderAddressRequest `json:"address" binding:"required"`
	DiscountCode     string              `json:"discount_code"`
	Notes            string              `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// GetOrders returns the user's orders
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one order owned by the user
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid order ID")
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// CreateOrder places an order from the current cart
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create order request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid order data")
		return
	}

	log.Debug("Creating order", map[string]interface{}{
		"user_id":            userID,
		"shipping_method_id": req.ShippingMethodID,
		"has_discount_code":  req.DiscountCode != "",
	})

	order, err := ctrl.orderService.CreateOrderFromCart(c.Request.Context(), userID, service.CreateOrderInput{
		ShippingMethodID: req.ShippingMethodID,
		Address: service.OrderAddressInput{
			AddressID: req.Address.AddressID,
			FullName:  req.Address.FullName,
			Phone:     req.Address.Phone,
			Street:    req.Address.Street,
			City:      req.Address.City,
			State:     req.Address.State,
			ZipCode:   req.Address.ZipCode,
			Country:   req.Address.Country,
		},
		DiscountCode: req.DiscountCode,
		Notes:        req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
			return
		case errors.Is(err, service.ErrInsufficientStock):
			apperrors.BadRequest(c, apperrors.CatalogInsufficientStock, "Insufficient stock for one or more items")
			return
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.BadRequest(c, apperrors.CatalogProductNotFound, "One or more products are unavailable")
			return
		case errors.Is(err, service.ErrShippingMethodNotFound):
			apperrors.BadRequest(c, apperrors.ShippingUnavailable, "Shipping method not found")
			return
		case errors.Is(err, service.ErrShippingMethodUnavailable):
			apperrors.BadRequest(c, apperrors.ShippingUnavailable, "Selected shipping method does not serve the destination country")
			return
		case errors.Is(err, service.ErrAddressNotFound):
			apperrors.BadRequest(c, apperrors.AddressNotFound, "Address not found")
			return
		default:
			log.Error("Failed to create order", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "Failed to create order")
			return
		}
	}

	log.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// CancelOrder cancels the user's own order while still cancellable
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid order ID")
		return
	}

	order, err := ctrl.orderService.CancelOrder(userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		case errors.Is(err, service.ErrOrderNotCancellable):
			apperrors.BadRequest(c, apperrors.OrderNotCancellable, "Order can no longer be cancelled")
			return
		default:
			log.Error("Failed to cancel order", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": id,
			})
			apperrors.InternalError(c, "Failed to cancel order")
			return
		}
	}

	log.Info("Order cancelled", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

// GetAllOrders returns paginated orders across all users (admin only)
// GET /api/v1/admin/orders
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := c.Query("status")
	limit := defaultPageSize
	offset := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPageSize {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	orders, total, err := ctrl.orderService.GetAllOrders(status, limit, offset)
	if err != nil {
		log.Error("Failed to fetch all orders", err, map[string]interface{}{
			"status": status,
		})
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// UpdateOrderStatus advances an order's status (admin only)
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid status data")
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Invalid status transition")
			return
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": id,
				"status":   req.Status,
			})
			apperrors.InternalError(c, "Failed to update order status")
			return
		}
	}

	log.Info("Order status updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   order,
	})
}
