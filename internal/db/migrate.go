package db

import (
	"github.com/lib/pq"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

// Migrate runs database migrations for the relational entities. Document
// entities (cart, wishlist, reviews, chat, notifications) live in Redis and
// need no schema.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Discount{},
		&model.Address{},
		&model.ShippingMethod{},
		&model.Payment{},
		&model.CartClearTask{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial reference data if missing
func Seed() error {
	logger.Info("Seeding initial data...")

	if err := seedShippingMethods(); err != nil {
		logger.Error("Failed to seed shipping methods", err)
		return err
	}
	if err := seedCategories(); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedShippingMethods() error {
	var count int64
	if err := DB.Model(&model.ShippingMethod{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Shipping methods already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	methods := []model.ShippingMethod{
		{Name: "Standard Shipping", Description: "Delivered in 5-7 business days", Cost: 5, EstimatedDays: 7, IsActive: true},
		{Name: "Express Shipping", Description: "Delivered in 1-2 business days", Cost: 15, EstimatedDays: 2, IsActive: true},
		{Name: "Domestic Economy", Description: "US only, 7-10 business days", Cost: 3, EstimatedDays: 10, Countries: pq.StringArray{"US"}, IsActive: true},
	}

	for _, method := range methods {
		if err := DB.Create(&method).Error; err != nil {
			logger.Error("Failed to create shipping method", err, map[string]interface{}{
				"name": method.Name,
			})
			return err
		}
	}

	logger.Info("Shipping methods seeded successfully", map[string]interface{}{
		"count": len(methods),
	})
	return nil
}

func seedCategories() error {
	var count int64
	if err := DB.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	categories := []model.Category{
		{Name: "Electronics", Slug: "electronics"},
		{Name: "Clothing", Slug: "clothing"},
		{Name: "Home & Kitchen", Slug: "home-kitchen"},
		{Name: "Books", Slug: "books"},
		{Name: "Sports & Outdoors", Slug: "sports-outdoors"},
	}

	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			logger.Error("Failed to create category", err, map[string]interface{}{
				"name": category.Name,
			})
			return err
		}
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"count": len(categories),
	})
	return nil
}
