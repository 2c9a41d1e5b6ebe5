package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/db"
)

// setupTestRedis starts an in-process Redis and returns a client bound to it
func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
	})
	return rdb
}

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	rdb := setupTestRedis(t)
	cartRepo := repository.NewCartRepository(rdb)
	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo)

	product := &model.Product{
		Name:          "USB-C Cable",
		Price:         12.5,
		StockQuantity: 10,
		IsActive:      true,
	}
	testDB.Create(product)

	return cartService, testDB, product
}

func TestCartService_AddItem_Success(t *testing.T) {
	cartService, _, product := setupCartServiceTest(t)

	cart, err := cartService.AddItem(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, product.ID, cart.Items[0].ProductID)
	assert.Equal(t, "USB-C Cable", cart.Items[0].Name)
	assert.Equal(t, 12.5, cart.Items[0].Price)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 25.0, cart.Total)
}

func TestCartService_AddItem_MergesQuantities(t *testing.T) {
	cartService, _, product := setupCartServiceTest(t)

	_, err := cartService.AddItem(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)
	cart, err := cartService.AddItem(context.Background(), 1, product.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 62.5, cart.Total)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	cartService, _, _ := setupCartServiceTest(t)

	cart, err := cartService.AddItem(context.Background(), 1, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, cart)
}

func TestCartService_AddItem_InactiveProduct(t *testing.T) {
	cartService, testDB, product := setupCartServiceTest(t)

	testDB.Model(&model.Product{}).Where("id = ?", product.ID).Update("is_active", false)

	cart, err := cartService.AddItem(context.Background(), 1, product.ID, 1)
	assert.ErrorIs(t, err, ErrProductInactive)
	assert.Nil(t, cart)
}

func TestCartService_AddItem_ExceedsStock(t *testing.T) {
	cartService, _, product := setupCartServiceTest(t)

	_, err := cartService.AddItem(context.Background(), 1, product.ID, 8)
	require.NoError(t, err)

	// 8 already in cart, 3 more would exceed the 10 in stock
	cart, err := cartService.AddItem(context.Background(), 1, product.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, cart)
}

func TestCartService_UpdateItemQuantity(t *testing.T) {
	cartService, _, product := setupCartServiceTest(t)

	_, err := cartService.AddItem(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)

	cart, err := cartService.UpdateItemQuantity(context.Background(), 1, product.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	assert.Equal(t, 50.0, cart.Total)

	// Zero quantity removes the line
	cart, err = cartService.UpdateItemQuantity(context.Background(), 1, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)
}

func TestCartService_UpdateItemQuantity_MissingItem(t *testing.T) {
	cartService, _, product := setupCartServiceTest(t)

	cart, err := cartService.UpdateItemQuantity(context.Background(), 1, product.ID, 2)
	assert.ErrorIs(t, err, ErrCartItemMissing)
	assert.Nil(t, cart)
}

func TestCartService_RemoveItem(t *testing.T) {
	cartService, _, product := setupCartServiceTest(t)

	_, err := cartService.AddItem(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)

	cart, err := cartService.RemoveItem(context.Background(), 1, product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)

	_, err = cartService.RemoveItem(context.Background(), 1, product.ID)
	assert.ErrorIs(t, err, ErrCartItemMissing)
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, _, product := setupCartServiceTest(t)

	_, err := cartService.AddItem(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, cartService.ClearCart(context.Background(), 1))

	cart, err := cartService.GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Zero(t, cart.Total)
}

func TestCartService_GetCart_EmptyByDefault(t *testing.T) {
	cartService, _, _ := setupCartServiceTest(t)

	cart, err := cartService.GetCart(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), cart.UserID)
	assert.True(t, cart.IsEmpty())
}
