package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/service"
	apperrors "storefront-backend/internal/errors"
	"storefront-backend/internal/middleware"
)

type DiscountController struct {
	discountService service.DiscountService
	cartService     service.CartService
}

func NewDiscountController(discountService service.DiscountService, cartService service.CartService) *DiscountController {
	return &DiscountController{
		discountService: discountService,
		cartService:     cartService,
	}
}

type ValidateDiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

type DiscountRequest struct {
	Code            string             `json:"code" binding:"required"`
	Description     string             `json:"description"`
	Type            model.DiscountType `json:"type" binding:"required,oneof=percentage fixed"`
	Value           float64            `json:"value" binding:"required,gt=0"`
	MinimumPurchase *float64           `json:"minimum_purchase" binding:"omitempty,gte=0"`
	MaxDiscount     *float64           `json:"max_discount"`
	ValidFrom       time.Time          `json:"valid_from" binding:"required"`
	ValidUntil      time.Time          `json:"valid_until" binding:"required"`
	UsageLimit      *int               `json:"usage_limit"`
	IsActive        *bool              `json:"is_active"`
}

// ValidateDiscount previews a code against the current cart. The preview has
// no side effects; the code is consumed only when the order is placed.
// POST /api/v1/discounts/validate
func (ctrl *DiscountController) ValidateDiscount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Discount code is required")
		return
	}

	cart, err := ctrl.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch cart for discount preview", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to validate discount")
		return
	}

	result, err := ctrl.discountService.Evaluate(req.Code, cart.Total, time.Now())
	if err != nil {
		log.Error("Failed to evaluate discount", err, map[string]interface{}{
			"user_id": userID,
			"code":    req.Code,
		})
		apperrors.InternalError(c, "Failed to validate discount")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
	})
}

// ListDiscounts returns all discount codes (admin only)
// GET /api/v1/admin/discounts
func (ctrl *DiscountController) ListDiscounts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	discounts, err := ctrl.discountService.ListDiscounts()
	if err != nil {
		log.Error("Failed to list discounts", err, nil)
		apperrors.InternalError(c, "Failed to fetch discounts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"discounts": discounts,
	})
}

// CreateDiscount creates a discount code (admin only)
// POST /api/v1/admin/discounts
func (ctrl *DiscountController) CreateDiscount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create discount request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid discount data")
		return
	}

	discount, err := ctrl.discountService.CreateDiscount(service.DiscountInput{
		Code:            req.Code,
		Description:     req.Description,
		Type:            req.Type,
		Value:           req.Value,
		MinimumPurchase: req.MinimumPurchase,
		MaxDiscount:     req.MaxDiscount,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		UsageLimit:      req.UsageLimit,
		IsActive:        req.IsActive,
	})
	if err != nil {
		if errors.Is(err, service.ErrDiscountCodeTaken) {
			apperrors.Conflict(c, apperrors.DiscountCodeExists, "This discount code already exists")
			return
		}
		log.Error("Failed to create discount", err, map[string]interface{}{
			"code": req.Code,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "discount")
		return
	}

	log.Info("Discount created", map[string]interface{}{
		"discount_id": discount.ID,
		"code":        discount.Code,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Discount created successfully",
		"discount": discount,
	})
}

// UpdateDiscount updates a discount code (admin only)
// PUT /api/v1/admin/discounts/:id
func (ctrl *DiscountController) UpdateDiscount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid discount ID")
		return
	}

	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid discount data")
		return
	}

	discount, err := ctrl.discountService.UpdateDiscount(uint(id), service.DiscountInput{
		Code:            req.Code,
		Description:     req.Description,
		Type:            req.Type,
		Value:           req.Value,
		MinimumPurchase: req.MinimumPurchase,
		MaxDiscount:     req.MaxDiscount,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		UsageLimit:      req.UsageLimit,
		IsActive:        req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDiscountNotFound):
			apperrors.NotFound(c, apperrors.DiscountNotFound, "Discount not found")
			return
		case errors.Is(err, service.ErrDiscountCodeTaken):
			apperrors.Conflict(c, apperrors.DiscountCodeExists, "This discount code already exists")
			return
		default:
			log.Error("Failed to update discount", err, map[string]interface{}{
				"discount_id": id,
			})
			apperrors.InternalError(c, "Failed to update discount")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Discount updated successfully",
		"discount": discount,
	})
}

// DeleteDiscount removes a discount code (admin only)
// DELETE /api/v1/admin/discounts/:id
func (ctrl *DiscountController) DeleteDiscount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid discount ID")
		return
	}

	if err := ctrl.discountService.DeleteDiscount(uint(id)); err != nil {
		if errors.Is(err, service.ErrDiscountNotFound) {
			apperrors.NotFound(c, apperrors.DiscountNotFound, "Discount not found")
			return
		}
		log.Error("Failed to delete discount", err, map[string]interface{}{
			"discount_id": id,
		})
		apperrors.InternalError(c, "Failed to delete discount")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount deleted successfully",
	})
}
