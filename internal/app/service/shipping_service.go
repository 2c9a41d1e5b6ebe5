package service

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

var (
	ErrShippingMethodNotFound    = errors.New("shipping method not found")
	ErrShippingMethodUnavailable = errors.New("shipping method not available for destination")
)

// ShippingMethodInput carries admin-supplied shipping method fields
type ShippingMethodInput struct {
	Name          string
	Description   string
	Cost          float64
	EstimatedDays int
	Countries     []string
	IsActive      *bool
}

type ShippingService interface {
	ListMethods(activeOnly bool) ([]model.ShippingMethod, error)
	GetMethodByID(id uint) (*model.ShippingMethod, error)
	// ResolveForCountry returns the method only when it is active and
	// ships to the given country.
	ResolveForCountry(id uint, country string) (*model.ShippingMethod, error)
	CreateMethod(input ShippingMethodInput) (*model.ShippingMethod, error)
	UpdateMethod(id uint, input ShippingMethodInput) (*model.ShippingMethod, error)
	DeleteMethod(id uint) error
}

type shippingService struct {
	shippingRepo repository.ShippingRepository
}

func NewShippingService(shippingRepo repository.ShippingRepository) ShippingService {
	return &shippingService{shippingRepo: shippingRepo}
}

func (s *shippingService) ListMethods(activeOnly bool) ([]model.ShippingMethod, error) {
	methods, err := s.shippingRepo.FindAll(activeOnly)
	if err != nil {
		logger.Error("Failed to list shipping methods", err)
		return nil, err
	}
	return methods, nil
}

func (s *shippingService) GetMethodByID(id uint) (*model.ShippingMethod, error) {
	method, err := s.shippingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShippingMethodNotFound
		}
		logger.Error("Failed to fetch shipping method", err, map[string]interface{}{
			"shipping_method_id": id,
		})
		return nil, err
	}
	return method, nil
}

func (s *shippingService) ResolveForCountry(id uint, country string) (*model.ShippingMethod, error) {
	method, err := s.GetMethodByID(id)
	if err != nil {
		return nil, err
	}

	if !method.IsActive {
		logger.Warn("Shipping method is inactive", map[string]interface{}{
			"shipping_method_id": id,
		})
		return nil, ErrShippingMethodNotFound
	}
	if !method.ShipsTo(country) {
		logger.Warn("Shipping method does not ship to destination", map[string]interface{}{
			"shipping_method_id": id,
			"country":            country,
		})
		return nil, ErrShippingMethodUnavailable
	}
	return method, nil
}

func (s *shippingService) CreateMethod(input ShippingMethodInput) (*model.ShippingMethod, error) {
	logger.Info("Creating shipping method", map[string]interface{}{
		"name": input.Name,
		"cost": input.Cost,
	})

	method := &model.ShippingMethod{
		Name:          input.Name,
		Description:   input.Description,
		Cost:          input.Cost,
		EstimatedDays: input.EstimatedDays,
		Countries:     pq.StringArray(input.Countries),
		IsActive:      true,
	}
	if method.Countries == nil {
		method.Countries = pq.StringArray{}
	}
	if input.IsActive != nil {
		method.IsActive = *input.IsActive
	}

	if err := s.shippingRepo.Create(method); err != nil {
		logger.Error("Failed to create shipping method", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	logger.Info("Shipping method created successfully", map[string]interface{}{
		"shipping_method_id": method.ID,
		"name":               method.Name,
	})
	return method, nil
}

func (s *shippingService) UpdateMethod(id uint, input ShippingMethodInput) (*model.ShippingMethod, error) {
	method, err := s.GetMethodByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		method.Name = input.Name
	}
	if input.Description != "" {
		method.Description = input.Description
	}
	if input.Cost >= 0 {
		method.Cost = input.Cost
	}
	if input.EstimatedDays > 0 {
		method.EstimatedDays = input.EstimatedDays
	}
	if input.Countries != nil {
		method.Countries = pq.StringArray(input.Countries)
	}
	if input.IsActive != nil {
		method.IsActive = *input.IsActive
	}

	if err := s.shippingRepo.Update(method); err != nil {
		logger.Error("Failed to update shipping method", err, map[string]interface{}{
			"shipping_method_id": id,
		})
		return nil, err
	}

	logger.Info("Shipping method updated successfully", map[string]interface{}{
		"shipping_method_id": method.ID,
	})
	return method, nil
}

func (s *shippingService) DeleteMethod(id uint) error {
	if _, err := s.GetMethodByID(id); err != nil {
		return err
	}

	if err := s.shippingRepo.Delete(id); err != nil {
		logger.Error("Failed to delete shipping method", err, map[string]interface{}{
			"shipping_method_id": id,
		})
		return err
	}

	logger.Info("Shipping method deleted successfully", map[string]interface{}{
		"shipping_method_id": id,
	})
	return nil
}
