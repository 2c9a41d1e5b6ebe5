package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/db"
)

func setupDiscountServiceTest(t *testing.T) (DiscountService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	discountRepo := repository.NewDiscountRepository(testDB)
	return NewDiscountService(discountRepo), testDB
}

func TestDiscountService_Evaluate(t *testing.T) {
	discountService, testDB := setupDiscountServiceTest(t)

	now := time.Now()
	maxDiscount := 8.0
	limit := 2

	seed := []model.Discount{
		{
			Code: "PCT10", Type: model.DiscountTypePercentage, Value: 10,
			MaxDiscount: &maxDiscount,
			ValidFrom:   now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
			IsActive: true,
		},
		{
			Code: "FLAT5", Type: model.DiscountTypeFixed, Value: 5,
			MinimumPurchase: 50,
			ValidFrom:       now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
			IsActive: true,
		},
		{
			Code: "OLD", Type: model.DiscountTypeFixed, Value: 5,
			ValidFrom: now.Add(-48 * time.Hour), ValidUntil: now.Add(-24 * time.Hour),
			IsActive: true,
		},
		{
			Code: "OFF", Type: model.DiscountTypeFixed, Value: 5,
			ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
			IsActive: false,
		},
		{
			Code: "USED", Type: model.DiscountTypeFixed, Value: 5,
			ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
			UsageLimit: &limit, UsageCount: 2,
			IsActive: true,
		},
	}
	for i := range seed {
		require.NoError(t, testDB.Create(&seed[i]).Error)
	}

	tests := []struct {
		name       string
		code       string
		cartTotal  float64
		wantValid  bool
		wantAmount float64
	}{
		{name: "percentage capped by max discount", code: "PCT10", cartTotal: 100, wantValid: true, wantAmount: 8},
		{name: "percentage below cap", code: "PCT10", cartTotal: 50, wantValid: true, wantAmount: 5},
		{name: "fixed above minimum purchase", code: "FLAT5", cartTotal: 60, wantValid: true, wantAmount: 5},
		{name: "below minimum purchase", code: "FLAT5", cartTotal: 40, wantValid: false},
		{name: "expired window", code: "OLD", cartTotal: 100, wantValid: false},
		{name: "inactive", code: "OFF", cartTotal: 100, wantValid: false},
		{name: "usage limit reached", code: "USED", cartTotal: 100, wantValid: false},
		{name: "unknown code", code: "NOPE", cartTotal: 100, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := discountService.Evaluate(tt.code, tt.cartTotal, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.wantAmount, result.Amount)
			if !tt.wantValid {
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}

func TestDiscountService_Evaluate_WindowBoundary(t *testing.T) {
	discountService, testDB := setupDiscountServiceTest(t)

	now := time.Now().Truncate(time.Second)
	discount := &model.Discount{
		Code:       "EDGE",
		Type:       model.DiscountTypeFixed,
		Value:      5,
		ValidFrom:  now,
		ValidUntil: now.Add(time.Hour),
		IsActive:   true,
	}
	require.NoError(t, testDB.Create(discount).Error)

	// Inclusive at both ends of the window
	atStart, err := discountService.Evaluate("EDGE", 100, now)
	require.NoError(t, err)
	assert.True(t, atStart.Valid)

	atEnd, err := discountService.Evaluate("EDGE", 100, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, atEnd.Valid)

	after, err := discountService.Evaluate("EDGE", 100, now.Add(time.Hour+time.Second))
	require.NoError(t, err)
	assert.False(t, after.Valid)
}

func TestDiscountService_Evaluate_NeverMutatesUsage(t *testing.T) {
	discountService, testDB := setupDiscountServiceTest(t)

	now := time.Now()
	discount := &model.Discount{
		Code:       "READONLY",
		Type:       model.DiscountTypeFixed,
		Value:      5,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
		IsActive:   true,
	}
	require.NoError(t, testDB.Create(discount).Error)

	for i := 0; i < 3; i++ {
		result, err := discountService.Evaluate("READONLY", 100, now)
		require.NoError(t, err)
		require.True(t, result.Valid)
	}

	var updated model.Discount
	testDB.First(&updated, discount.ID)
	assert.Zero(t, updated.UsageCount)
}

func TestDiscountService_CreateDiscount_DuplicateCode(t *testing.T) {
	discountService, _ := setupDiscountServiceTest(t)

	input := DiscountInput{
		Code:       "WELCOME",
		Type:       model.DiscountTypePercentage,
		Value:      15,
		ValidFrom:  time.Now(),
		ValidUntil: time.Now().Add(24 * time.Hour),
	}
	_, err := discountService.CreateDiscount(input)
	require.NoError(t, err)

	_, err = discountService.CreateDiscount(input)
	assert.ErrorIs(t, err, ErrDiscountCodeTaken)
}

func TestDiscountService_CreateDiscount_InactivePersists(t *testing.T) {
	discountService, testDB := setupDiscountServiceTest(t)

	inactive := false
	created, err := discountService.CreateDiscount(DiscountInput{
		Code:       "DISABLED",
		Type:       model.DiscountTypeFixed,
		Value:      5,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		IsActive:   &inactive,
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	var stored model.Discount
	require.NoError(t, testDB.First(&stored, created.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestDiscountService_UpdateDiscount_PartialKeepsMinimumPurchase(t *testing.T) {
	discountService, _ := setupDiscountServiceTest(t)

	minPurchase := 50.0
	created, err := discountService.CreateDiscount(DiscountInput{
		Code:            "BIGCART",
		Type:            model.DiscountTypeFixed,
		Value:           5,
		MinimumPurchase: &minPurchase,
		ValidFrom:       time.Now().Add(-time.Hour),
		ValidUntil:      time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, 50.0, created.MinimumPurchase)

	updated, err := discountService.UpdateDiscount(created.ID, DiscountInput{
		Description: "Five off big carts",
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.MinimumPurchase)
	assert.Equal(t, "Five off big carts", updated.Description)
}
