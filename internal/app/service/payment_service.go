package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/payment/stripe"
)

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrOrderAlreadyPaid   = errors.New("order is already paid")
	ErrUnknownOrderRef    = errors.New("webhook references an unknown order")
	ErrInvalidWebhookBody = errors.New("invalid webhook payload")
)

const paymentProvider = "stripe"

type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, userID, orderID uint) (*model.Payment, error)
	HandleWebhook(payload []byte, sigHeader string) error
	GetPaymentByOrderID(userID, orderID uint) (*model.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	orderSvc    OrderService
	client      *stripe.Client
	notifier    NotificationService
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	orderSvc OrderService,
	client *stripe.Client,
	notifier ...NotificationService,
) PaymentService {
	var n NotificationService
	if len(notifier) > 0 {
		n = notifier[0]
	}
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		orderSvc:    orderSvc,
		client:      client,
		notifier:    n,
	}
}

// CreateCheckoutSession opens a hosted checkout session for a pending order
// and records the session as a Payment row. The order id travels in the
// session metadata so the webhook can find its way back.
func (s *paymentService) CreateCheckoutSession(ctx context.Context, userID, orderID uint) (*model.Payment, error) {
	logger.Info("Creating checkout session", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order for checkout", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Checkout denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return nil, ErrOrderAlreadyPaid
	}

	amountCents := int64(math.Round(order.Total * 100))
	session, err := s.client.CreateCheckoutSession(ctx, stripe.CheckoutSessionRequest{
		AmountCents: amountCents,
		Currency:    "usd",
		Description: fmt.Sprintf("Order %s", order.OrderNumber),
		Metadata: map[string]string{
			"order_id": strconv.FormatUint(uint64(order.ID), 10),
		},
	})
	if err != nil {
		logger.Error("Failed to create checkout session with gateway", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	payment := &model.Payment{
		OrderID:     order.ID,
		Provider:    paymentProvider,
		SessionID:   session.ID,
		CheckoutURL: session.URL,
		Amount:      order.Total,
		Currency:    "usd",
		Status:      model.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		logger.Error("Failed to record payment", err, map[string]interface{}{
			"order_id":   orderID,
			"session_id": session.ID,
		})
		return nil, err
	}

	logger.Info("Checkout session created", map[string]interface{}{
		"order_id":   orderID,
		"payment_id": payment.ID,
		"session_id": session.ID,
		"amount":     order.Total,
	})
	return payment, nil
}

// HandleWebhook verifies the gateway signature and applies the event to the
// payment and order. Unknown event types are acknowledged and ignored.
func (s *paymentService) HandleWebhook(payload []byte, sigHeader string) error {
	event, err := s.client.ConstructEvent(payload, sigHeader)
	if err != nil {
		logger.Warn("Webhook rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	logger.Info("Webhook received", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"session_id": event.Data.Object.ID,
	})

	switch event.Type {
	case stripe.EventCheckoutCompleted:
		return s.applyPaymentResult(event, model.PaymentStatusPaid)
	case stripe.EventPaymentFailed, stripe.EventCheckoutExpired:
		return s.applyPaymentResult(event, model.PaymentStatusFailed)
	default:
		logger.Debug("Ignoring webhook event type", map[string]interface{}{
			"event_type": event.Type,
		})
		return nil
	}
}

func (s *paymentService) applyPaymentResult(event *stripe.Event, status model.PaymentStatus) error {
	orderID, err := orderIDFromEvent(event)
	if err != nil {
		return err
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Webhook references unknown order", ErrUnknownOrderRef, map[string]interface{}{
				"order_id": orderID,
				"event_id": event.ID,
			})
			return ErrUnknownOrderRef
		}
		return err
	}

	// Once an order is paid, no replayed or late event may move it off paid:
	// duplicate confirmations and stale failure/expiry events are both no-ops.
	if order.PaymentStatus == model.PaymentStatusPaid {
		logger.Debug("Ignoring webhook event for already paid order", map[string]interface{}{
			"order_id":     orderID,
			"event_id":     event.ID,
			"event_status": status,
		})
		return nil
	}

	if payment, err := s.paymentRepo.FindBySessionID(event.Data.Object.ID); err == nil {
		completedAt := timePtrForStatus(status)
		if err := s.paymentRepo.UpdateStatus(payment.ID, status, completedAt); err != nil {
			logger.Error("Failed to update payment record", err, map[string]interface{}{
				"payment_id": payment.ID,
			})
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.orderSvc.UpdatePaymentStatus(orderID, status); err != nil {
		return err
	}

	if status == model.PaymentStatusPaid {
		if err := s.orderRepo.UpdateStatus(orderID, model.OrderStatusProcessing); err != nil {
			logger.Error("Failed to move paid order to processing", err, map[string]interface{}{
				"order_id": orderID,
			})
			return err
		}
		s.notifyPayment(order, "Payment received",
			fmt.Sprintf("Payment for order %s was received.", order.OrderNumber))
	} else {
		s.notifyPayment(order, "Payment failed",
			fmt.Sprintf("Payment for order %s did not complete.", order.OrderNumber))
	}

	logger.Info("Webhook applied", map[string]interface{}{
		"order_id":       orderID,
		"payment_status": status,
	})
	return nil
}

func (s *paymentService) GetPaymentByOrderID(userID, orderID uint) (*model.Payment, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	payment, err := s.paymentRepo.FindByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) notifyPayment(order *model.Order, title, content string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(context.Background(), order.UserID, model.NotificationTypePayment,
		title, content, fmt.Sprintf("/orders/%d", order.ID)); err != nil {
		logger.Error("Failed to send payment notification", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}
}

func timePtrForStatus(status model.PaymentStatus) *time.Time {
	if status != model.PaymentStatusPaid {
		return nil
	}
	now := time.Now()
	return &now
}

func orderIDFromEvent(event *stripe.Event) (uint, error) {
	raw, ok := event.Data.Object.Metadata["order_id"]
	if !ok {
		logger.Error("Webhook event missing order metadata", ErrInvalidWebhookBody, map[string]interface{}{
			"event_id": event.ID,
		})
		return 0, ErrInvalidWebhookBody
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidWebhookBody
	}
	return uint(id), nil
}
