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

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	return NewProductService(productRepo, categoryRepo), testDB
}

func TestProductService_CreateProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	category := &model.Category{Name: "Electronics", Slug: "electronics"}
	testDB.Create(category)

	product, err := productService.CreateProduct(ProductInput{
		Name:          "Webcam",
		Description:   "1080p webcam",
		Price:         49.99,
		StockQuantity: 20,
		CategoryID:    &category.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.True(t, product.IsActive)
	assert.Equal(t, category.ID, *product.CategoryID)
}

func TestProductService_CreateProduct_UnknownCategory(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	badID := uint(9999)
	product, err := productService.CreateProduct(ProductInput{
		Name:       "Webcam",
		Price:      49.99,
		CategoryID: &badID,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, product)
}

func TestProductService_CreateProduct_InactivePersists(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	inactive := false
	product, err := productService.CreateProduct(ProductInput{
		Name:     "Prelaunch Headset",
		Price:    129.99,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, product.IsActive)

	var stored model.Product
	require.NoError(t, testDB.First(&stored, product.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestProductService_ListProducts_Filtering(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	category := &model.Category{Name: "Audio", Slug: "audio"}
	testDB.Create(category)

	seed := []model.Product{
		{Name: "Speaker", Price: 80, StockQuantity: 5, CategoryID: &category.ID, IsActive: true},
		{Name: "Soundbar", Price: 200, StockQuantity: 2, CategoryID: &category.ID, IsActive: true},
		{Name: "Discontinued Amp", Price: 150, StockQuantity: 0, IsActive: false},
	}
	for i := range seed {
		testDB.Create(&seed[i])
	}

	products, total, err := productService.ListProducts(repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)

	maxPrice := 100.0
	products, total, err = productService.ListProducts(repository.ProductFilter{
		CategoryID: &category.ID,
		MaxPrice:   &maxPrice,
		ActiveOnly: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Speaker", products[0].Name)

	products, _, err = productService.ListProducts(repository.ProductFilter{Search: "sound"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Soundbar", products[0].Name)
}

func TestProductService_UpdateProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	product := &model.Product{Name: "Mouse", Price: 25, StockQuantity: 10, IsActive: true}
	testDB.Create(product)

	inactive := false
	updated, err := productService.UpdateProduct(product.ID, ProductInput{
		Price:    29.99,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, 29.99, updated.Price)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Mouse", updated.Name)
}

func TestProductService_DeleteProduct_NotFound(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	err := productService.DeleteProduct(9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
