package service

import (
	"errors"

	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressInput carries user-supplied address fields
type AddressInput struct {
	AddressType model.AddressType
	FullName    string
	Phone       string
	Street      string
	City        string
	State       string
	ZipCode     string
	Country     string
	IsDefault   bool
}

type AddressService interface {
	ListAddresses(userID uint) ([]model.Address, error)
	GetAddressByID(userID, addressID uint) (*model.Address, error)
	CreateAddress(userID uint, input AddressInput) (*model.Address, error)
	UpdateAddress(userID, addressID uint, input AddressInput) (*model.Address, error)
	DeleteAddress(userID, addressID uint) error
	SetDefaultAddress(userID, addressID uint) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) ListAddresses(userID uint) ([]model.Address, error) {
	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to list addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return addresses, nil
}

func (s *addressService) GetAddressByID(userID, addressID uint) (*model.Address, error) {
	return s.ownedAddress(userID, addressID)
}

func (s *addressService) CreateAddress(userID uint, input AddressInput) (*model.Address, error) {
	logger.Info("Creating address", map[string]interface{}{
		"user_id":      userID,
		"address_type": input.AddressType,
	})

	addressType := input.AddressType
	if addressType == "" {
		addressType = model.AddressTypeShipping
	}

	address := &model.Address{
		UserID:      userID,
		AddressType: addressType,
		FullName:    input.FullName,
		Phone:       input.Phone,
		Street:      input.Street,
		City:        input.City,
		State:       input.State,
		ZipCode:     input.ZipCode,
		Country:     input.Country,
	}
	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if input.IsDefault {
		if err := s.addressRepo.SetDefault(userID, address.ID, address.AddressType); err != nil {
			logger.Error("Failed to set created address as default", err, map[string]interface{}{
				"user_id":    userID,
				"address_id": address.ID,
			})
			return nil, err
		}
		address.IsDefault = true
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
	})
	return address, nil
}

func (s *addressService) UpdateAddress(userID, addressID uint, input AddressInput) (*model.Address, error) {
	address, err := s.ownedAddress(userID, addressID)
	if err != nil {
		return nil, err
	}

	if input.AddressType != "" {
		address.AddressType = input.AddressType
	}
	if input.FullName != "" {
		address.FullName = input.FullName
	}
	if input.Phone != "" {
		address.Phone = input.Phone
	}
	if input.Street != "" {
		address.Street = input.Street
	}
	if input.City != "" {
		address.City = input.City
	}
	if input.State != "" {
		address.State = input.State
	}
	if input.ZipCode != "" {
		address.ZipCode = input.ZipCode
	}
	if input.Country != "" {
		address.Country = input.Country
	}

	if err := s.addressRepo.Update(address); err != nil {
		logger.Error("Failed to update address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return nil, err
	}

	if input.IsDefault && !address.IsDefault {
		if err := s.addressRepo.SetDefault(userID, addressID, address.AddressType); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}

	logger.Info("Address updated successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return address, nil
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	if _, err := s.ownedAddress(userID, addressID); err != nil {
		return err
	}

	if err := s.addressRepo.Delete(addressID); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return nil
}

func (s *addressService) SetDefaultAddress(userID, addressID uint) error {
	address, err := s.ownedAddress(userID, addressID)
	if err != nil {
		return err
	}

	if err := s.addressRepo.SetDefault(userID, addressID, address.AddressType); err != nil {
		logger.Error("Failed to set default address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}

	logger.Info("Default address set", map[string]interface{}{
		"user_id":      userID,
		"address_id":   addressID,
		"address_type": address.AddressType,
	})
	return nil
}

// ownedAddress loads an address and enforces ownership; a foreign address
// is reported as not found rather than forbidden.
func (s *addressService) ownedAddress(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		logger.Error("Failed to fetch address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return nil, err
	}
	if address.UserID != userID {
		logger.Warn("Address access denied: ownership mismatch", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
			"owner_id":   address.UserID,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}
