package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

var (
	ErrDiscountNotFound  = errors.New("discount not found")
	ErrDiscountCodeTaken = errors.New("discount code already exists")
)

// DiscountResult is the outcome of evaluating a code against a cart total.
// An inapplicable code yields Valid=false with a reason, never an error.
type DiscountResult struct {
	Valid  bool    `json:"valid"`
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason,omitempty"`
}

// DiscountInput carries admin-supplied discount fields
type DiscountInput struct {
	Code            string
	Description     string
	Type            model.DiscountType
	Value           float64
	MinimumPurchase *float64
	MaxDiscount     *float64
	ValidFrom       time.Time
	ValidUntil      time.Time
	UsageLimit      *int
	IsActive        *bool
}

type DiscountService interface {
	Evaluate(code string, cartTotal float64, now time.Time) (*DiscountResult, error)
	ListDiscounts() ([]model.Discount, error)
	GetDiscountByID(id uint) (*model.Discount, error)
	CreateDiscount(input DiscountInput) (*model.Discount, error)
	UpdateDiscount(id uint, input DiscountInput) (*model.Discount, error)
	DeleteDiscount(id uint) error
}

type discountService struct {
	discountRepo repository.DiscountRepository
}

func NewDiscountService(discountRepo repository.DiscountRepository) DiscountService {
	return &discountService{discountRepo: discountRepo}
}

// Evaluate checks a code against the full applicability predicate and
// computes the amount for the given cart total. It never mutates usage
// counters; consumption happens inside the order transaction.
func (s *discountService) Evaluate(code string, cartTotal float64, now time.Time) (*DiscountResult, error) {
	result := &DiscountResult{Code: code}

	discount, err := s.discountRepo.FindApplicable(code, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("Discount code not applicable", map[string]interface{}{
				"code": code,
			})
			result.Reason = "code is invalid, inactive, expired or exhausted"
			return result, nil
		}
		logger.Error("Failed to evaluate discount code", err, map[string]interface{}{
			"code": code,
		})
		return nil, err
	}

	if cartTotal < discount.MinimumPurchase {
		logger.Debug("Discount below minimum purchase", map[string]interface{}{
			"code":             code,
			"cart_total":       cartTotal,
			"minimum_purchase": discount.MinimumPurchase,
		})
		result.Reason = "cart total is below the minimum purchase"
		return result, nil
	}

	result.Valid = true
	result.Amount = discount.AmountFor(cartTotal)

	logger.Debug("Discount evaluated", map[string]interface{}{
		"code":       code,
		"cart_total": cartTotal,
		"amount":     result.Amount,
	})
	return result, nil
}

func (s *discountService) ListDiscounts() ([]model.Discount, error) {
	discounts, err := s.discountRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list discounts", err)
		return nil, err
	}
	return discounts, nil
}

func (s *discountService) GetDiscountByID(id uint) (*model.Discount, error) {
	discount, err := s.discountRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}
	return discount, nil
}

func (s *discountService) CreateDiscount(input DiscountInput) (*model.Discount, error) {
	logger.Info("Creating discount", map[string]interface{}{
		"code": input.Code,
		"type": input.Type,
	})

	existing, err := s.discountRepo.FindByCode(input.Code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing discount code", err, map[string]interface{}{
			"code": input.Code,
		})
		return nil, err
	}
	if existing != nil {
		logger.Warn("Discount creation failed: code already exists", map[string]interface{}{
			"code": input.Code,
		})
		return nil, ErrDiscountCodeTaken
	}

	discount := &model.Discount{
		Code:        input.Code,
		Description: input.Description,
		Type:        input.Type,
		Value:       input.Value,
		MaxDiscount: input.MaxDiscount,
		ValidFrom:   input.ValidFrom,
		ValidUntil:  input.ValidUntil,
		UsageLimit:  input.UsageLimit,
		IsActive:    true,
	}
	if input.MinimumPurchase != nil {
		discount.MinimumPurchase = *input.MinimumPurchase
	}
	if input.IsActive != nil {
		discount.IsActive = *input.IsActive
	}

	if err := s.discountRepo.Create(discount); err != nil {
		logger.Error("Failed to create discount", err, map[string]interface{}{
			"code": input.Code,
		})
		return nil, err
	}

	logger.Info("Discount created successfully", map[string]interface{}{
		"discount_id": discount.ID,
		"code":        discount.Code,
	})
	return discount, nil
}

func (s *discountService) UpdateDiscount(id uint, input DiscountInput) (*model.Discount, error) {
	discount, err := s.discountRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}

	if input.Code != "" && input.Code != discount.Code {
		existing, err := s.discountRepo.FindByCode(input.Code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrDiscountCodeTaken
		}
		discount.Code = input.Code
	}
	if input.Description != "" {
		discount.Description = input.Description
	}
	if input.Type != "" {
		discount.Type = input.Type
	}
	if input.Value > 0 {
		discount.Value = input.Value
	}
	if input.MinimumPurchase != nil {
		discount.MinimumPurchase = *input.MinimumPurchase
	}
	if input.MaxDiscount != nil {
		discount.MaxDiscount = input.MaxDiscount
	}
	if !input.ValidFrom.IsZero() {
		discount.ValidFrom = input.ValidFrom
	}
	if !input.ValidUntil.IsZero() {
		discount.ValidUntil = input.ValidUntil
	}
	if input.UsageLimit != nil {
		discount.UsageLimit = input.UsageLimit
	}
	if input.IsActive != nil {
		discount.IsActive = *input.IsActive
	}

	if err := s.discountRepo.Update(discount); err != nil {
		logger.Error("Failed to update discount", err, map[string]interface{}{
			"discount_id": id,
		})
		return nil, err
	}

	logger.Info("Discount updated successfully", map[string]interface{}{
		"discount_id": discount.ID,
		"code":        discount.Code,
	})
	return discount, nil
}

func (s *discountService) DeleteDiscount(id uint) error {
	if _, err := s.discountRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDiscountNotFound
		}
		return err
	}

	if err := s.discountRepo.Delete(id); err != nil {
		logger.Error("Failed to delete discount", err, map[string]interface{}{
			"discount_id": id,
		})
		return err
	}

	logger.Info("Discount deleted successfully", map[string]interface{}{
		"discount_id": id,
	})
	return nil
}
