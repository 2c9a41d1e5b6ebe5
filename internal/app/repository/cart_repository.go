package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

// CartRepository stores carts as JSON documents in Redis, one per user.
// Carts are created lazily on first read and cleared (not deleted) after a
// successful checkout.
type CartRepository interface {
	Get(ctx context.Context, userID uint) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Clear(ctx context.Context, userID uint) error
}

type cartRepository struct {
	rdb *redis.Client
}

func NewCartRepository(rdb *redis.Client) CartRepository {
	return &cartRepository{rdb: rdb}
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (r *cartRepository) Get(ctx context.Context, userID uint) (*model.Cart, error) {
	data, err := r.rdb.Get(ctx, cartKey(userID)).Bytes()
	if err == redis.Nil {
		// Lazy creation: an absent document is an empty cart
		return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
	}
	if err != nil {
		logger.Error("Failed to read cart document", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		logger.Error("Failed to decode cart document", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) error {
	cart.Recalculate()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	if err := r.rdb.Set(ctx, cartKey(cart.UserID), data, 0).Err(); err != nil {
		logger.Error("Failed to save cart document", err, map[string]interface{}{
			"user_id": cart.UserID,
		})
		return err
	}

	logger.Debug("Cart document saved", map[string]interface{}{
		"user_id":    cart.UserID,
		"item_count": len(cart.Items),
		"total":      cart.Total,
	})
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID uint) error {
	empty := &model.Cart{UserID: userID, Items: []model.CartItem{}}
	if err := r.Save(ctx, empty); err != nil {
		logger.Error("Failed to clear cart document", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Debug("Cart document cleared", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
