package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/app/service"
	apperrors "storefront-backend/internal/errors"
	"storefront-backend/internal/middleware"
	"storefront-backend/pkg/payment/stripe"
)

// maxWebhookBodySize caps webhook payload reads at 64KB
const maxWebhookBodySize = 64 * 1024

type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

type CreateCheckoutRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreateCheckout starts a hosted checkout session for an order
// POST /api/v1/payments/checkout
func (ctrl *PaymentController) CreateCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Order ID is required")
		return
	}

	payment, err := ctrl.paymentService.CreateCheckoutSession(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		case errors.Is(err, service.ErrOrderAlreadyPaid):
			apperrors.Conflict(c, apperrors.PaymentAlreadyProcessed, "Order is already paid")
			return
		default:
			log.Error("Failed to create checkout session", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": req.OrderID,
			})
			apperrors.InternalError(c, "Failed to start checkout")
			return
		}
	}

	log.Info("Checkout session created", map[string]interface{}{
		"user_id":    userID,
		"order_id":   req.OrderID,
		"session_id": payment.SessionID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"payment":      payment,
		"checkout_url": payment.CheckoutURL,
	})
}

// GetPaymentByOrder returns the payment record for an order
// GET /api/v1/payments/orders/:orderId
func (ctrl *PaymentController) GetPaymentByOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid order ID")
		return
	}

	payment, err := ctrl.paymentService.GetPaymentByOrderID(userID, uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		case errors.Is(err, service.ErrPaymentNotFound):
			apperrors.NotFound(c, apperrors.PaymentNotFound, "No payment found for this order")
			return
		default:
			log.Error("Failed to fetch payment", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			apperrors.InternalError(c, "Failed to fetch payment")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"payment": payment,
	})
}

// Webhook handles asynchronous payment events from the gateway. Signature
// verification makes the endpoint safe to expose without authentication.
// POST /api/v1/payments/webhook
func (ctrl *PaymentController) Webhook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		log.Warn("Failed to read webhook body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Unreadable request body")
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")

	if err := ctrl.paymentService.HandleWebhook(payload, sigHeader); err != nil {
		switch {
		case errors.Is(err, stripe.ErrInvalidSignature), errors.Is(err, stripe.ErrSignatureExpired):
			log.Warn("Webhook signature verification failed", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.PaymentInvalidSignature, "Invalid webhook signature")
			return
		case errors.Is(err, service.ErrUnknownOrderRef), errors.Is(err, service.ErrInvalidWebhookBody):
			log.Warn("Webhook payload rejected", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid webhook payload")
			return
		default:
			log.Error("Failed to process webhook", err, nil)
			apperrors.InternalError(c, "Failed to process webhook")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
	})
}
