package repository

import (
	"time"

	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

type PaymentRepository interface {
	Create(payment *model.Payment) error
	FindByOrderID(orderID uint) (*model.Payment, error)
	FindBySessionID(sessionID string) (*model.Payment, error)
	UpdateStatus(id uint, status model.PaymentStatus, completedAt *time.Time) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(payment *model.Payment) error {
	logger.Debug("Creating payment record in database", map[string]interface{}{
		"order_id":   payment.OrderID,
		"provider":   payment.Provider,
		"session_id": payment.SessionID,
	})

	if err := r.db.Create(payment).Error; err != nil {
		logger.Error("Failed to create payment record in database", err, map[string]interface{}{
			"order_id": payment.OrderID,
		})
		return err
	}
	return nil
}

func (r *paymentRepository) FindByOrderID(orderID uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindBySessionID(sessionID string) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.Where("session_id = ?", sessionID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(id uint, status model.PaymentStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}

	if err := r.db.Model(&model.Payment{}).Where("id = ?", id).
		Updates(updates).Error; err != nil {
		logger.Error("Failed to update payment status in database", err, map[string]interface{}{
			"payment_id": id,
			"status":     status,
		})
		return err
	}
	return nil
}
