package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/db"
)

func setupWishlistServiceTest(t *testing.T) (WishlistService, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	rdb := setupTestRedis(t)
	wishlistRepo := repository.NewWishlistRepository(rdb)
	productRepo := repository.NewProductRepository(testDB)

	product := &model.Product{Name: "Noise-Cancelling Headphones", Price: 199, StockQuantity: 4, IsActive: true}
	testDB.Create(product)

	return NewWishlistService(wishlistRepo, productRepo), product
}

func TestWishlistService_AddItem(t *testing.T) {
	wishlistService, product := setupWishlistServiceTest(t)

	wishlist, err := wishlistService.AddItem(context.Background(), 1, product.ID)
	require.NoError(t, err)
	require.Len(t, wishlist.Items, 1)
	assert.Equal(t, product.ID, wishlist.Items[0].ProductID)
	assert.Equal(t, "Noise-Cancelling Headphones", wishlist.Items[0].Name)
}

func TestWishlistService_AddItem_Idempotent(t *testing.T) {
	wishlistService, product := setupWishlistServiceTest(t)

	_, err := wishlistService.AddItem(context.Background(), 1, product.ID)
	require.NoError(t, err)
	wishlist, err := wishlistService.AddItem(context.Background(), 1, product.ID)
	require.NoError(t, err)
	assert.Len(t, wishlist.Items, 1)
}

func TestWishlistService_AddItem_UnknownProduct(t *testing.T) {
	wishlistService, _ := setupWishlistServiceTest(t)

	wishlist, err := wishlistService.AddItem(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, wishlist)
}

func TestWishlistService_RemoveItem(t *testing.T) {
	wishlistService, product := setupWishlistServiceTest(t)

	_, err := wishlistService.AddItem(context.Background(), 1, product.ID)
	require.NoError(t, err)

	wishlist, err := wishlistService.RemoveItem(context.Background(), 1, product.ID)
	require.NoError(t, err)
	assert.Empty(t, wishlist.Items)

	_, err = wishlistService.RemoveItem(context.Background(), 1, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemMissing)
}
