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

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddWishlistItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetWishlist returns the user's wishlist
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	wishlist, err := ctrl.wishlistService.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch wishlist", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wishlist": wishlist,
	})
}

// AddItem adds a product to the wishlist; adding twice is a no-op
// POST /api/v1/wishlist/items
func (ctrl *WishlistController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Product ID is required")
		return
	}

	wishlist, err := ctrl.wishlistService.AddItem(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to add wishlist item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "Failed to add item to wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Item added to wishlist",
		"wishlist": wishlist,
	})
}

// RemoveItem removes a product from the wishlist
// DELETE /api/v1/wishlist/items/:productId
func (ctrl *WishlistController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid product ID")
		return
	}

	wishlist, err := ctrl.wishlistService.RemoveItem(c.Request.Context(), userID, uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrWishlistItemMissing) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Item is not on the wishlist")
			return
		}
		log.Error("Failed to remove wishlist item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apperrors.InternalError(c, "Failed to remove item from wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Item removed from wishlist",
		"wishlist": wishlist,
	})
}
