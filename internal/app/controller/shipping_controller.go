package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/app/service"
	apperrors "storefront-backend/internal/errors"
	"storefront-backend/internal/middleware"
)

type ShippingController struct {
	shippingService service.ShippingService
}

func NewShippingController(shippingService service.ShippingService) *ShippingController {
	return &ShippingController{
		shippingService: shippingService,
	}
}

type ShippingMethodRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Cost          float64  `json:"cost" binding:"min=0"`
	EstimatedDays int      `json:"estimated_days" binding:"min=0"`
	Countries     []string `json:"countries"`
	IsActive      *bool    `json:"is_active"`
}

func (r ShippingMethodRequest) toInput() service.ShippingMethodInput {
	return service.ShippingMethodInput{
		Name:          r.Name,
		Description:   r.Description,
		Cost:          r.Cost,
		EstimatedDays: r.EstimatedDays,
		Countries:     r.Countries,
		IsActive:      r.IsActive,
	}
}

// ListMethods returns shipping methods. Customers see active methods only;
// admins can request everything with ?all=true.
// GET /api/v1/shipping-methods
func (ctrl *ShippingController) ListMethods(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	activeOnly := true
	if c.Query("all") == "true" && middleware.IsStaff(c) {
		activeOnly = false
	}

	methods, err := ctrl.shippingService.ListMethods(activeOnly)
	if err != nil {
		log.Error("Failed to list shipping methods", err, nil)
		apperrors.InternalError(c, "Failed to fetch shipping methods")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shipping_methods": methods,
	})
}

// CreateMethod creates a shipping method (admin only)
// POST /api/v1/admin/shipping-methods
func (ctrl *ShippingController) CreateMethod(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid shipping method data")
		return
	}

	method, err := ctrl.shippingService.CreateMethod(req.toInput())
	if err != nil {
		log.Error("Failed to create shipping method", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "Failed to create shipping method")
		return
	}

	log.Info("Shipping method created", map[string]interface{}{
		"shipping_method_id": method.ID,
		"name":               method.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Shipping method created successfully",
		"shipping_method": method,
	})
}

// UpdateMethod updates a shipping method (admin only)
// PUT /api/v1/admin/shipping-methods/:id
func (ctrl *ShippingController) UpdateMethod(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid shipping method ID")
		return
	}

	var req ShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid shipping method data")
		return
	}

	method, err := ctrl.shippingService.UpdateMethod(uint(id), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrShippingMethodNotFound) {
			apperrors.NotFound(c, apperrors.ShippingUnavailable, "Shipping method not found")
			return
		}
		log.Error("Failed to update shipping method", err, map[string]interface{}{
			"shipping_method_id": id,
		})
		apperrors.InternalError(c, "Failed to update shipping method")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Shipping method updated successfully",
		"shipping_method": method,
	})
}

// DeleteMethod removes a shipping method (admin only)
// DELETE /api/v1/admin/shipping-methods/:id
func (ctrl *ShippingController) DeleteMethod(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid shipping method ID")
		return
	}

	if err := ctrl.shippingService.DeleteMethod(uint(id)); err != nil {
		if errors.Is(err, service.ErrShippingMethodNotFound) {
			apperrors.NotFound(c, apperrors.ShippingUnavailable, "Shipping method not found")
			return
		}
		log.Error("Failed to delete shipping method", err, map[string]interface{}{
			"shipping_method_id": id,
		})
		apperrors.InternalError(c, "Failed to delete shipping method")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping method deleted successfully",
	})
}
