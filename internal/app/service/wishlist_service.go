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

var ErrWishlistItemMissing = errors.New("item not on wishlist")

type WishlistService interface {
	GetWishlist(ctx context.Context, userID uint) (*model.Wishlist, error)
	AddItem(ctx context.Context, userID, productID uint) (*model.Wishlist, error)
	RemoveItem(ctx context.Context, userID, productID uint) (*model.Wishlist, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) GetWishlist(ctx context.Context, userID uint) (*model.Wishlist, error) {
	wishlist, err := s.wishlistRepo.Get(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch wishlist", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return wishlist, nil
}

// AddItem is idempotent: adding a product already on the wishlist returns
// the wishlist unchanged.
func (s *wishlistService) AddItem(ctx context.Context, userID, productID uint) (*model.Wishlist, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found while adding to wishlist", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for wishlist", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	wishlist, err := s.wishlistRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist.Contains(productID) {
		return wishlist, nil
	}

	wishlist.Items = append(wishlist.Items, model.WishlistItem{
		ProductID: productID,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		AddedAt:   time.Now(),
	})

	if err := s.wishlistRepo.Save(ctx, wishlist); err != nil {
		return nil, err
	}

	logger.Info("Item added to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"item_count": len(wishlist.Items),
	})
	return wishlist, nil
}

func (s *wishlistService) RemoveItem(ctx context.Context, userID, productID uint) (*model.Wishlist, error) {
	wishlist, err := s.wishlistRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := wishlist.Items[:0]
	removed := false
	for _, item := range wishlist.Items {
		if item.ProductID == productID {
			removed = true
			continue
		}
		items = append(items, item)
	}
	if !removed {
		return nil, ErrWishlistItemMissing
	}
	wishlist.Items = items

	if err := s.wishlistRepo.Save(ctx, wishlist); err != nil {
		return nil, err
	}

	logger.Info("Item removed from wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"item_count": len(wishlist.Items),
	})
	return wishlist, nil
}
