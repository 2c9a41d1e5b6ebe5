package service

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/db"
)

type orderTestEnv struct {
	orderService OrderService
	cartRepo     repository.CartRepository
	db           *gorm.DB
	user         *model.User
	product      *model.Product
	method       *model.ShippingMethod
}

func setupOrderServiceTest(t *testing.T) *orderTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	rdb := setupTestRedis(t)
	cartRepo := repository.NewCartRepository(rdb)
	orderRepo := repository.NewOrderRepository(testDB)
	outboxRepo := repository.NewOutboxRepository(testDB)
	orderService := NewOrderService(orderRepo, cartRepo, outboxRepo, testDB)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Mechanical Keyboard",
		Price:         20,
		StockQuantity: 10,
		IsActive:      true,
	}
	testDB.Create(product)

	method := &model.ShippingMethod{
		Name:      "Standard",
		Cost:      5,
		Countries: pq.StringArray{},
		IsActive:  true,
	}
	testDB.Create(method)

	return &orderTestEnv{
		orderService: orderService,
		cartRepo:     cartRepo,
		db:           testDB,
		user:         user,
		product:      product,
		method:       method,
	}
}

func (e *orderTestEnv) fillCart(t *testing.T, quantity int) {
	cart := &model.Cart{
		UserID: e.user.ID,
		Items: []model.CartItem{
			{
				ProductID: e.product.ID,
				Name:      e.product.Name,
				Price:     e.product.Price,
				Quantity:  quantity,
			},
		},
	}
	require.NoError(t, e.cartRepo.Save(context.Background(), cart))
}

func testAddressInput() OrderAddressInput {
	return OrderAddressInput{
		FullName: "Test User",
		Phone:    "555-0100",
		Street:   "1 Main St",
		City:     "Springfield",
		State:    "IL",
		ZipCode:  "62701",
		Country:  "US",
	}
}

func TestOrderService_CreateOrderFromCart_Success(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 2)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, env.user.ID, order.UserID)
	assert.Equal(t, float64(40), order.Subtotal)
	assert.Equal(t, float64(5), order.ShippingCost)
	assert.Equal(t, float64(45), order.Total)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, "Mechanical Keyboard", order.OrderItems[0].ProductName)
	assert.Equal(t, float64(20), order.OrderItems[0].Price)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)

	// Stock decreased
	var updatedProduct model.Product
	env.db.First(&updatedProduct, env.product.ID)
	assert.Equal(t, 8, updatedProduct.StockQuantity)

	// Cart cleared after commit
	cart, err := env.cartRepo.Get(context.Background(), env.user.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// Outbox task marked done by the inline clear
	var task model.CartClearTask
	require.NoError(t, env.db.Where("order_id = ?", order.ID).First(&task).Error)
	assert.Equal(t, model.CartClearDone, task.Status)
}

func TestOrderService_CreateOrderFromCart_EmptyCart(t *testing.T) {
	env := setupOrderServiceTest(t)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrderFromCart_InsufficientStock(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 100)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order)

	// Everything rolled back
	var updatedProduct model.Product
	env.db.First(&updatedProduct, env.product.ID)
	assert.Equal(t, 10, updatedProduct.StockQuantity)

	var orderCount int64
	env.db.Model(&model.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)

	// Cart untouched
	cart, err := env.cartRepo.Get(context.Background(), env.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestOrderService_CreateOrderFromCart_ShippingCountryRestricted(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 1)

	domestic := &model.ShippingMethod{
		Name:      "Domestic Economy",
		Cost:      3,
		Countries: pq.StringArray{"US"},
		IsActive:  true,
	}
	env.db.Create(domestic)

	address := testAddressInput()
	address.Country = "DE"

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: domestic.ID,
		Address:          address,
	})
	assert.ErrorIs(t, err, ErrShippingMethodUnavailable)
	assert.Nil(t, order)

	var updatedProduct model.Product
	env.db.First(&updatedProduct, env.product.ID)
	assert.Equal(t, 10, updatedProduct.StockQuantity)
}

func TestOrderService_CreateOrderFromCart_PercentageDiscountCapped(t *testing.T) {
	env := setupOrderServiceTest(t)

	// Subtotal 100: price 50, quantity 2
	env.db.Model(&model.Product{}).Where("id = ?", env.product.ID).Update("price", 50)
	env.product.Price = 50
	env.fillCart(t, 2)

	maxDiscount := 8.0
	discount := &model.Discount{
		Code:        "SAVE10",
		Type:        model.DiscountTypePercentage,
		Value:       10,
		MaxDiscount: &maxDiscount,
		ValidFrom:   time.Now().Add(-time.Hour),
		ValidUntil:  time.Now().Add(time.Hour),
		IsActive:    true,
	}
	env.db.Create(discount)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
		DiscountCode:     "SAVE10",
	})
	require.NoError(t, err)

	// 10% of 100 is 10, capped at 8: 100 + 5 - 8 = 97
	assert.Equal(t, float64(100), order.Subtotal)
	assert.Equal(t, float64(8), order.DiscountAmount)
	assert.Equal(t, float64(97), order.Total)
	assert.Equal(t, "SAVE10", order.DiscountCode)

	// Usage consumed exactly once
	var updated model.Discount
	env.db.First(&updated, discount.ID)
	assert.Equal(t, 1, updated.UsageCount)
}

func TestOrderService_CreateOrderFromCart_ExpiredDiscountDegrades(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 2)

	discount := &model.Discount{
		Code:       "EXPIRED",
		Type:       model.DiscountTypePercentage,
		Value:      10,
		ValidFrom:  time.Now().Add(-48 * time.Hour),
		ValidUntil: time.Now().Add(-24 * time.Hour),
		IsActive:   true,
	}
	env.db.Create(discount)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
		DiscountCode:     "EXPIRED",
	})
	require.NoError(t, err)

	// Order goes through at full price, code not recorded
	assert.Zero(t, order.DiscountAmount)
	assert.Empty(t, order.DiscountCode)
	assert.Equal(t, float64(45), order.Total)

	var updated model.Discount
	env.db.First(&updated, discount.ID)
	assert.Zero(t, updated.UsageCount)
}

func TestOrderService_CreateOrderFromCart_UsageLimitExhausted(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 2)

	limit := 1
	discount := &model.Discount{
		Code:       "ONCE",
		Type:       model.DiscountTypeFixed,
		Value:      5,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		UsageLimit: &limit,
		UsageCount: 1,
		IsActive:   true,
	}
	env.db.Create(discount)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
		DiscountCode:     "ONCE",
	})
	require.NoError(t, err)
	assert.Zero(t, order.DiscountAmount)

	var updated model.Discount
	env.db.First(&updated, discount.ID)
	assert.Equal(t, 1, updated.UsageCount)
}

func TestOrderService_CreateOrderFromCart_BelowMinimumPurchase(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 1) // subtotal 20

	discount := &model.Discount{
		Code:            "BIGSPEND",
		Type:            model.DiscountTypeFixed,
		Value:           5,
		MinimumPurchase: 50,
		ValidFrom:       time.Now().Add(-time.Hour),
		ValidUntil:      time.Now().Add(time.Hour),
		IsActive:        true,
	}
	env.db.Create(discount)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
		DiscountCode:     "BIGSPEND",
	})
	require.NoError(t, err)
	assert.Zero(t, order.DiscountAmount)
	assert.Equal(t, float64(25), order.Total)
}

func TestOrderService_CreateOrderFromCart_AddressDedup(t *testing.T) {
	env := setupOrderServiceTest(t)

	env.fillCart(t, 1)
	first, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	env.fillCart(t, 1)
	second, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	// Identical address fields resolve to the same row
	assert.Equal(t, first.ShippingAddressID, second.ShippingAddressID)
	assert.Equal(t, first.ShippingAddressID, first.BillingAddressID)

	var addressCount int64
	env.db.Model(&model.Address{}).Where("user_id = ?", env.user.ID).Count(&addressCount)
	assert.Equal(t, int64(1), addressCount)
}

func TestOrderService_CancelOrder_RestoresStock(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 3)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	var afterOrder model.Product
	env.db.First(&afterOrder, env.product.ID)
	require.Equal(t, 7, afterOrder.StockQuantity)

	cancelled, err := env.orderService.CancelOrder(env.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

	var afterCancel model.Product
	env.db.First(&afterCancel, env.product.ID)
	assert.Equal(t, 10, afterCancel.StockQuantity)
}

func TestOrderService_CancelOrder_PaidOrderRefunded(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 1)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	require.NoError(t, env.orderService.UpdatePaymentStatus(order.ID, model.PaymentStatusPaid))

	cancelled, err := env.orderService.CancelOrder(env.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, cancelled.PaymentStatus)
}

func TestOrderService_CancelOrder_SecondCancelDoesNotRestoreTwice(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 3)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	_, err = env.orderService.CancelOrder(env.user.ID, order.ID)
	require.NoError(t, err)

	cancelled, err := env.orderService.CancelOrder(env.user.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
	assert.Nil(t, cancelled)

	// Stock is restored exactly once
	var product model.Product
	env.db.First(&product, env.product.ID)
	assert.Equal(t, 10, product.StockQuantity)
}

func TestOrderService_CancelOrder_ShippedNotCancellable(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 1)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	env.db.Model(&model.Order{}).Where("id = ?", order.ID).Update("status", model.OrderStatusShipped)

	cancelled, err := env.orderService.CancelOrder(env.user.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
	assert.Nil(t, cancelled)

	// Stock stays reserved
	var product model.Product
	env.db.First(&product, env.product.ID)
	assert.Equal(t, 9, product.StockQuantity)
}

func TestOrderService_GetOrderByID_OwnershipEnforced(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 1)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other"}
	env.db.Create(other)

	fetched, err := env.orderService.GetOrderByID(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, fetched)
}

func TestOrderService_UpdateOrderStatus_Transitions(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.fillCart(t, 1)

	order, err := env.orderService.CreateOrderFromCart(context.Background(), env.user.ID, CreateOrderInput{
		ShippingMethodID: env.method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	// pending cannot jump straight to delivered
	_, err = env.orderService.UpdateOrderStatus(order.ID, model.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := env.orderService.UpdateOrderStatus(order.ID, model.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, updated.Status)

	updated, err = env.orderService.UpdateOrderStatus(order.ID, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.Status)

	updated, err = env.orderService.UpdateOrderStatus(order.ID, model.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, updated.Status)

	// delivered is terminal
	_, err = env.orderService.UpdateOrderStatus(order.ID, model.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
