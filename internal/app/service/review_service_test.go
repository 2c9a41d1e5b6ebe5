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

func setupReviewServiceTest(t *testing.T) (ReviewService, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	rdb := setupTestRedis(t)
	reviewRepo := repository.NewReviewRepository(rdb)
	productRepo := repository.NewProductRepository(testDB)

	product := &model.Product{Name: "Espresso Machine", Price: 250, StockQuantity: 3, IsActive: true}
	testDB.Create(product)

	return NewReviewService(reviewRepo, productRepo), product
}

func TestReviewService_SubmitReview(t *testing.T) {
	reviewService, product := setupReviewServiceTest(t)

	review, err := reviewService.SubmitReview(context.Background(), 1, "Alice", product.ID, 5, "Great machine")
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "Alice", review.UserName)

	reviews, summary, err := reviewService.GetProductReviews(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 1, summary.ReviewCount)
	assert.Equal(t, 5.0, summary.AverageRating)
}

func TestReviewService_SubmitReview_InvalidRating(t *testing.T) {
	reviewService, product := setupReviewServiceTest(t)

	for _, rating := range []int{0, 6, -1} {
		review, err := reviewService.SubmitReview(context.Background(), 1, "Alice", product.ID, rating, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
		assert.Nil(t, review)
	}
}

func TestReviewService_SubmitReview_UnknownProduct(t *testing.T) {
	reviewService, _ := setupReviewServiceTest(t)

	review, err := reviewService.SubmitReview(context.Background(), 1, "Alice", 9999, 4, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, review)
}

func TestReviewService_SubmitReview_OnePerUserPerProduct(t *testing.T) {
	reviewService, product := setupReviewServiceTest(t)

	_, err := reviewService.SubmitReview(context.Background(), 1, "Alice", product.ID, 2, "Meh")
	require.NoError(t, err)
	_, err = reviewService.SubmitReview(context.Background(), 1, "Alice", product.ID, 4, "Better after descaling")
	require.NoError(t, err)

	reviews, summary, err := reviewService.GetProductReviews(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)
	assert.Equal(t, "Better after descaling", reviews[0].Comment)
	assert.Equal(t, 4.0, summary.AverageRating)
}

func TestReviewService_Summary_AveragesAcrossUsers(t *testing.T) {
	reviewService, product := setupReviewServiceTest(t)

	_, err := reviewService.SubmitReview(context.Background(), 1, "Alice", product.ID, 5, "")
	require.NoError(t, err)
	_, err = reviewService.SubmitReview(context.Background(), 2, "Bob", product.ID, 2, "")
	require.NoError(t, err)

	_, summary, err := reviewService.GetProductReviews(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ReviewCount)
	assert.Equal(t, 3.5, summary.AverageRating)
}

func TestReviewService_DeleteReview(t *testing.T) {
	reviewService, product := setupReviewServiceTest(t)

	_, err := reviewService.SubmitReview(context.Background(), 1, "Alice", product.ID, 3, "")
	require.NoError(t, err)

	require.NoError(t, reviewService.DeleteReview(context.Background(), 1, product.ID))

	reviews, summary, err := reviewService.GetProductReviews(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Zero(t, summary.ReviewCount)

	err = reviewService.DeleteReview(context.Background(), 1, product.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}
