package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)

type ReviewService interface {
	SubmitReview(ctx context.Context, userID uint, userName string, productID uint, rating int, comment string) (*model.Review, error)
	GetProductReviews(ctx context.Context, productID uint) ([]model.Review, *model.ReviewSummary, error)
	DeleteReview(ctx context.Context, userID, productID uint) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// SubmitReview creates or replaces the caller's review for a product. One
// review per user per product; resubmitting overwrites.
func (s *reviewService) SubmitReview(ctx context.Context, userID uint, userName string, productID uint, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found for review", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for review", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	now := time.Now()
	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Preserve the original creation time on resubmission
	if existing, err := s.reviewRepo.FindByProductAndUser(ctx, productID, userID); err != nil {
		return nil, err
	} else if existing != nil {
		review.CreatedAt = existing.CreatedAt
	}

	if err := s.reviewRepo.Upsert(ctx, review); err != nil {
		logger.Error("Failed to save review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	logger.Info("Review submitted", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"rating":     rating,
	})
	return review, nil
}

func (s *reviewService) GetProductReviews(ctx context.Context, productID uint) ([]model.Review, *model.ReviewSummary, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}

	reviews, err := s.reviewRepo.FindByProduct(ctx, productID)
	if err != nil {
		logger.Error("Failed to fetch product reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, nil, err
	}

	summary, err := s.reviewRepo.Summary(ctx, productID)
	if err != nil {
		logger.Error("Failed to fetch review summary", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, nil, err
	}

	return reviews, summary, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, userID, productID uint) error {
	existing, err := s.reviewRepo.FindByProductAndUser(ctx, productID, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrReviewNotFound
	}

	if err := s.reviewRepo.Delete(ctx, productID, userID); err != nil {
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return nil
}
