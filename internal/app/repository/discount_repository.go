package repository

import (
	"time"

	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

type DiscountRepository interface {
	Create(discount *model.Discount) error
	FindAll() ([]model.Discount, error)
	FindByID(id uint) (*model.Discount, error)
	FindByCode(code string) (*model.Discount, error)
	// FindApplicable returns the discount only when it is active, inside its
	// validity window and not usage-exhausted at the given instant.
	FindApplicable(code string, now time.Time) (*model.Discount, error)
	Update(discount *model.Discount) error
	Delete(id uint) error
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) Create(discount *model.Discount) error {
	logger.Debug("Creating discount in database", map[string]interface{}{
		"code": discount.Code,
		"type": discount.Type,
	})

	if err := r.db.Create(discount).Error; err != nil {
		logger.Error("Failed to create discount in database", err, map[string]interface{}{
			"code": discount.Code,
		})
		return err
	}
	return nil
}

func (r *discountRepository) FindAll() ([]model.Discount, error) {
	var discounts []model.Discount
	if err := r.db.Order("created_at DESC").Find(&discounts).Error; err != nil {
		logger.Error("Failed to find discounts in database", err)
		return nil, err
	}
	return discounts, nil
}

func (r *discountRepository) FindByID(id uint) (*model.Discount, error) {
	var discount model.Discount
	if err := r.db.First(&discount, id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) FindByCode(code string) (*model.Discount, error) {
	var discount model.Discount
	if err := r.db.Where("code = ?", code).First(&discount).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) FindApplicable(code string, now time.Time) (*model.Discount, error) {
	logger.Debug("Finding applicable discount in database", map[string]interface{}{
		"code": code,
	})

	var discount model.Discount
	err := r.db.
		Where("code = ? AND is_active = ?", code, true).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) Update(discount *model.Discount) error {
	if err := r.db.Save(discount).Error; err != nil {
		logger.Error("Failed to update discount in database", err, map[string]interface{}{
			"discount_id": discount.ID,
		})
		return err
	}
	return nil
}

func (r *discountRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Discount{}, id).Error; err != nil {
		logger.Error("Failed to delete discount from database", err, map[string]interface{}{
			"discount_id": id,
		})
		return err
	}
	return nil
}
