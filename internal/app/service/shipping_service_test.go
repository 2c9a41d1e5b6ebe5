package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/db"
)

func setupShippingServiceTest(t *testing.T) (ShippingService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	shippingRepo := repository.NewShippingRepository(testDB)
	return NewShippingService(shippingRepo), testDB
}

func TestShippingService_CreateMethod_InactivePersists(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t)

	inactive := false
	created, err := shippingService.CreateMethod(ShippingMethodInput{
		Name:     "Seasonal Courier",
		Cost:     12,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	var stored model.ShippingMethod
	require.NoError(t, testDB.First(&stored, created.ID).Error)
	assert.False(t, stored.IsActive)

	// Inactive methods stay out of the customer-facing list
	methods, err := shippingService.ListMethods(true)
	require.NoError(t, err)
	assert.Empty(t, methods)

	_, err = shippingService.ResolveForCountry(created.ID, "US")
	assert.ErrorIs(t, err, ErrShippingMethodNotFound)
}
