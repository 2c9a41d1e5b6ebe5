package router

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/config"
	"storefront-backend/internal/app/controller"
	"storefront-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	productController      *controller.ProductController
	categoryController     *controller.CategoryController
	cartController         *controller.CartController
	orderController        *controller.OrderController
	discountController     *controller.DiscountController
	addressController      *controller.AddressController
	shippingController     *controller.ShippingController
	paymentController      *controller.PaymentController
	reviewController       *controller.ReviewController
	wishlistController     *controller.WishlistController
	chatController         *controller.ChatController
	notificationController *controller.NotificationController
	adminController        *controller.AdminController
	uploadController       *controller.UploadController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	categoryController *controller.CategoryController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	discountController *controller.DiscountController,
	addressController *controller.AddressController,
	shippingController *controller.ShippingController,
	paymentController *controller.PaymentController,
	reviewController *controller.ReviewController,
	wishlistController *controller.WishlistController,
	chatController *controller.ChatController,
	notificationController *controller.NotificationController,
	adminController *controller.AdminController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		productController:      productController,
		categoryController:     categoryController,
		cartController:         cartController,
		orderController:        orderController,
		discountController:     discountController,
		addressController:      addressController,
		shippingController:     shippingController,
		paymentController:      paymentController,
		reviewController:       reviewController,
		wishlistController:     wishlistController,
		chatController:         chatController,
		notificationController: notificationController,
		adminController:        adminController,
		uploadController:       uploadController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	controller.SetAllowedOrigins(r.config.CORS.AllowedOrigins)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetProfile)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
			products.GET("/:id/reviews", r.reviewController.GetProductReviews)
			products.POST("/:id/reviews",
				r.authMiddleware.Authenticate(),
				r.reviewController.SubmitReview,
			)
			products.DELETE("/:id/reviews",
				r.authMiddleware.Authenticate(),
				r.reviewController.DeleteReview,
			)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/:slug", r.categoryController.GetCategoryBySlug)
		}

		v1.GET("/shipping-methods", r.shippingController.ListMethods)

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:productId", r.cartController.UpdateItem)
			cart.DELETE("/items/:productId", r.cartController.RemoveItem)
			cart.DELETE("", r.cartController.ClearCart)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.POST("", r.orderController.CreateOrder)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
		}

		discounts := v1.Group("/discounts")
		discounts.Use(r.authMiddleware.Authenticate())
		{
			discounts.POST("/validate", r.discountController.ValidateDiscount)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.PUT("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
			addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
		}

		payments := v1.Group("/payments")
		{
			// webhook authenticates by signature, not by user token
			payments.POST("/webhook", r.paymentController.Webhook)

			payments.POST("/checkout",
				r.authMiddleware.Authenticate(),
				r.paymentController.CreateCheckout,
			)
			payments.GET("/orders/:orderId",
				r.authMiddleware.Authenticate(),
				r.paymentController.GetPaymentByOrder,
			)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(r.authMiddleware.Authenticate())
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("/items", r.wishlistController.AddItem)
			wishlist.DELETE("/items/:productId", r.wishlistController.RemoveItem)
		}

		chats := v1.Group("/chats")
		chats.Use(r.authMiddleware.Authenticate())
		{
			chats.GET("/ws", r.chatController.WebSocketHandler)
			chats.POST("/rooms", r.chatController.StartRoom)
			chats.GET("/rooms", r.chatController.GetRooms)
			chats.GET("/rooms/:id/messages", r.chatController.GetMessages)
			chats.POST("/rooms/:id/messages", r.chatController.SendMessage)
			chats.POST("/rooms/:id/join", r.chatController.JoinRoom)
			chats.POST("/rooms/:id/leave", r.chatController.LeaveRoom)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.GetNotifications)
			notifications.PUT("/read-all", r.notificationController.MarkAllRead)
			notifications.PUT("/:id/read", r.notificationController.MarkRead)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/dashboard", r.adminController.GetDashboard)
			admin.GET("/reports/sales", r.adminController.ExportSalesReport)

			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)

			admin.POST("/categories", r.categoryController.CreateCategory)
			admin.PUT("/categories/:id", r.categoryController.UpdateCategory)
			admin.DELETE("/categories/:id", r.categoryController.DeleteCategory)

			admin.GET("/orders", r.orderController.GetAllOrders)
			admin.PUT("/orders/:id/status", r.orderController.UpdateOrderStatus)

			admin.GET("/discounts", r.discountController.ListDiscounts)
			admin.POST("/discounts", r.discountController.CreateDiscount)
			admin.PUT("/discounts/:id", r.discountController.UpdateDiscount)
			admin.DELETE("/discounts/:id", r.discountController.DeleteDiscount)

			admin.POST("/shipping-methods", r.shippingController.CreateMethod)
			admin.PUT("/shipping-methods/:id", r.shippingController.UpdateMethod)
			admin.DELETE("/shipping-methods/:id", r.shippingController.DeleteMethod)

			admin.POST("/uploads/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
