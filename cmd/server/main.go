package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront-backend/config"
	"storefront-backend/internal/app/controller"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/app/service"
	"storefront-backend/internal/db"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/router"
	"storefront-backend/internal/scheduler"
	"storefront-backend/internal/storage"
	ws "storefront-backend/internal/websocket"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/payment/stripe"
	"storefront-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed baseline data (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Redis; carts, wishlists, reviews, chat and notifications
	// live there
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()
	rdb := redis.GetClient()

	// Payment gateway client
	stripeClient, err := stripe.NewClient(stripe.Config{
		SecretKey:     cfg.Payment.Stripe.SecretKey,
		WebhookSecret: cfg.Payment.Stripe.WebhookSecret,
		BaseURL:       cfg.Payment.Stripe.BaseURL,
		SuccessURL:    cfg.Payment.Stripe.SuccessURL,
		CancelURL:     cfg.Payment.Stripe.CancelURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize payment client", err)
	}

	// WebSocket hub for chat and notification delivery
	hub := ws.NewHub()
	go hub.Run()

	// S3 storage for product images
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	discountRepo := repository.NewDiscountRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	shippingRepo := repository.NewShippingRepository(db.GetDB())
	paymentRepo := repository.NewPaymentRepository(db.GetDB())
	outboxRepo := repository.NewOutboxRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(rdb)
	wishlistRepo := repository.NewWishlistRepository(rdb)
	reviewRepo := repository.NewReviewRepository(rdb)
	chatRepo := repository.NewChatRepository(rdb)
	notificationRepo := repository.NewNotificationRepository(rdb)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	discountService := service.NewDiscountService(discountRepo)
	addressService := service.NewAddressService(addressRepo)
	shippingService := service.NewShippingService(shippingRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, outboxRepo, db.GetDB(), notificationService)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, orderService, stripeClient, notificationService)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	chatService := service.NewChatService(chatRepo, notificationService)
	adminService := service.NewAdminService(orderRepo, userRepo, productRepo)
	outboxService := service.NewOutboxService(outboxRepo, cartRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	categoryController := controller.NewCategoryController(categoryService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	discountController := controller.NewDiscountController(discountService, cartService)
	addressController := controller.NewAddressController(addressService)
	shippingController := controller.NewShippingController(shippingService)
	paymentController := controller.NewPaymentController(paymentService)
	reviewController := controller.NewReviewController(reviewService, authService)
	wishlistController := controller.NewWishlistController(wishlistService)
	chatController := controller.NewChatController(chatService, hub)
	notificationController := controller.NewNotificationController(notificationService)
	adminController := controller.NewAdminController(adminService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the outbox sweeper
	outboxScheduler := scheduler.NewOutboxScheduler(outboxService)
	if err := outboxScheduler.Start(); err != nil {
		logger.Fatal("Failed to start outbox scheduler", err)
	}
	defer outboxScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		categoryController,
		cartController,
		orderController,
		discountController,
		addressController,
		shippingController,
		paymentController,
		reviewController,
		wishlistController,
		chatController,
		notificationController,
		adminController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
