package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

// ReviewRepository stores product reviews in Redis hashes, one hash per
// product keyed by reviewer user ID. One review per user per product.
type ReviewRepository interface {
	Upsert(ctx context.Context, review *model.Review) error
	FindByProduct(ctx context.Context, productID uint) ([]model.Review, error)
	FindByProductAndUser(ctx context.Context, productID, userID uint) (*model.Review, error)
	Delete(ctx context.Context, productID, userID uint) error
	Summary(ctx context.Context, productID uint) (*model.ReviewSummary, error)
}

type reviewRepository struct {
	rdb *redis.Client
}

func NewReviewRepository(rdb *redis.Client) ReviewRepository {
	return &reviewRepository{rdb: rdb}
}

func reviewKey(productID uint) string {
	return fmt.Sprintf("reviews:product:%d", productID)
}

func (r *reviewRepository) Upsert(ctx context.Context, review *model.Review) error {
	data, err := json.Marshal(review)
	if err != nil {
		return err
	}

	field := strconv.FormatUint(uint64(review.UserID), 10)
	if err := r.rdb.HSet(ctx, reviewKey(review.ProductID), field, data).Err(); err != nil {
		logger.Error("Failed to save review document", err, map[string]interface{}{
			"product_id": review.ProductID,
			"user_id":    review.UserID,
		})
		return err
	}

	logger.Debug("Review document saved", map[string]interface{}{
		"product_id": review.ProductID,
		"user_id":    review.UserID,
		"rating":     review.Rating,
	})
	return nil
}

func (r *reviewRepository) FindByProduct(ctx context.Context, productID uint) ([]model.Review, error) {
	entries, err := r.rdb.HGetAll(ctx, reviewKey(productID)).Result()
	if err != nil {
		logger.Error("Failed to read review documents", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	reviews := make([]model.Review, 0, len(entries))
	for _, raw := range entries {
		var review model.Review
		if err := json.Unmarshal([]byte(raw), &review); err != nil {
			logger.Warn("Skipping undecodable review document", map[string]interface{}{
				"product_id": productID,
				"error":      err.Error(),
			})
			continue
		}
		reviews = append(reviews, review)
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (r *reviewRepository) FindByProductAndUser(ctx context.Context, productID, userID uint) (*model.Review, error) {
	field := strconv.FormatUint(uint64(userID), 10)
	raw, err := r.rdb.HGet(ctx, reviewKey(productID), field).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var review model.Review
	if err := json.Unmarshal([]byte(raw), &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, productID, userID uint) error {
	field := strconv.FormatUint(uint64(userID), 10)
	if err := r.rdb.HDel(ctx, reviewKey(productID), field).Err(); err != nil {
		logger.Error("Failed to delete review document", err, map[string]interface{}{
			"product_id": productID,
			"user_id":    userID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) Summary(ctx context.Context, productID uint) (*model.ReviewSummary, error) {
	reviews, err := r.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	summary := &model.ReviewSummary{ProductID: productID, ReviewCount: len(reviews)}
	if len(reviews) == 0 {
		return summary, nil
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	summary.AverageRating = float64(sum) / float64(len(reviews))
	return summary, nil
}
