package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCartItemMissing = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type CartService interface {
	GetCart(ctx context.Context, userID uint) (*model.Cart, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*model.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, productID uint, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uint) (*model.Cart, error)
	ClearCart(ctx context.Context, userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cart, nil
}

// AddItem validates the product against the catalog, snapshots its name,
// price and image into the cart document and merges quantities for a
// product already in the cart.
func (s *cartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found while adding to cart", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for cart", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	if !product.IsActive {
		logger.Warn("Cannot add inactive product to cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrProductInactive
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	newQuantity := quantity
	for _, item := range cart.Items {
		if item.ProductID == productID {
			newQuantity += item.Quantity
			break
		}
	}

	// Stock is only an advisory check here; the real reservation happens
	// inside the order transaction.
	if product.StockQuantity < newQuantity {
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  newQuantity,
			"available":  product.StockQuantity,
		})
		return nil, ErrInsufficientStock
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = newQuantity
			// Refresh the snapshot so a price change shows up
			cart.Items[i].Name = product.Name
			cart.Items[i].Price = product.Price
			cart.Items[i].ImageURL = product.ImageURL
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, model.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			ImageURL:  product.ImageURL,
		})
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"item_count": len(cart.Items),
		"cart_total": cart.Total,
	})
	return cart, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID uint, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.StockQuantity < quantity {
		logger.Warn("Cannot update cart item: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  quantity,
			"available":  product.StockQuantity,
		})
		return nil, ErrInsufficientStock
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		logger.Warn("Cart item not found for quantity update", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrCartItemMissing
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	logger.Debug("Cart item quantity updated", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.ProductID == productID {
			removed = true
			continue
		}
		items = append(items, item)
	}
	if !removed {
		return nil, ErrCartItemMissing
	}
	cart.Items = items

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	logger.Info("Item removed from cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"item_count": len(cart.Items),
	})
	return cart, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uint) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
