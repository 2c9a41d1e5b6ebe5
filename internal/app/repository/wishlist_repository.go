package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

// WishlistRepository stores wishlists as JSON documents in Redis
type WishlistRepository interface {
	Get(ctx context.Context, userID uint) (*model.Wishlist, error)
	Save(ctx context.Context, wishlist *model.Wishlist) error
}

type wishlistRepository struct {
	rdb *redis.Client
}

func NewWishlistRepository(rdb *redis.Client) WishlistRepository {
	return &wishlistRepository{rdb: rdb}
}

func wishlistKey(userID uint) string {
	return fmt.Sprintf("wishlist:%d", userID)
}

func (r *wishlistRepository) Get(ctx context.Context, userID uint) (*model.Wishlist, error) {
	data, err := r.rdb.Get(ctx, wishlistKey(userID)).Bytes()
	if err == redis.Nil {
		return &model.Wishlist{UserID: userID, Items: []model.WishlistItem{}}, nil
	}
	if err != nil {
		logger.Error("Failed to read wishlist document", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var wishlist model.Wishlist
	if err := json.Unmarshal(data, &wishlist); err != nil {
		logger.Error("Failed to decode wishlist document", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &wishlist, nil
}

func (r *wishlistRepository) Save(ctx context.Context, wishlist *model.Wishlist) error {
	wishlist.UpdatedAt = time.Now()

	data, err := json.Marshal(wishlist)
	if err != nil {
		return err
	}

	if err := r.rdb.Set(ctx, wishlistKey(wishlist.UserID), data, 0).Err(); err != nil {
		logger.Error("Failed to save wishlist document", err, map[string]interface{}{
			"user_id": wishlist.UserID,
		})
		return err
	}
	return nil
}
