package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/db"
	"storefront-backend/pkg/payment/stripe"
)

const testWebhookSecret = "whsec_test"

type paymentTestEnv struct {
	paymentService PaymentService
	orderService   OrderService
	db             *gorm.DB
	user           *model.User
	order          *model.Order
}

func setupPaymentServiceTest(t *testing.T) *paymentTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_session","url":"https://pay.example.com/cs_test_session","payment_status":"unpaid"}`)
	}))
	t.Cleanup(gateway.Close)

	client, err := stripe.NewClient(stripe.Config{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
		BaseURL:       gateway.URL,
		SuccessURL:    "https://shop.example.com/success",
		CancelURL:     "https://shop.example.com/cancel",
	})
	require.NoError(t, err)

	rdb := setupTestRedis(t)
	cartRepo := repository.NewCartRepository(rdb)
	orderRepo := repository.NewOrderRepository(testDB)
	outboxRepo := repository.NewOutboxRepository(testDB)
	paymentRepo := repository.NewPaymentRepository(testDB)
	orderService := NewOrderService(orderRepo, cartRepo, outboxRepo, testDB)
	paymentService := NewPaymentService(paymentRepo, orderRepo, orderService, client)

	user := &model.User{Email: "pay@example.com", PasswordHash: "hash", Name: "Payer"}
	testDB.Create(user)

	product := &model.Product{Name: "Desk Lamp", Price: 30, StockQuantity: 5, IsActive: true}
	testDB.Create(product)

	method := &model.ShippingMethod{Name: "Standard", Cost: 5, Countries: pq.StringArray{}, IsActive: true}
	testDB.Create(method)

	cart := &model.Cart{
		UserID: user.ID,
		Items:  []model.CartItem{{ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: 1}},
	}
	require.NoError(t, cartRepo.Save(context.Background(), cart))

	order, err := orderService.CreateOrderFromCart(context.Background(), user.ID, CreateOrderInput{
		ShippingMethodID: method.ID,
		Address:          testAddressInput(),
	})
	require.NoError(t, err)

	return &paymentTestEnv{
		paymentService: paymentService,
		orderService:   orderService,
		db:             testDB,
		user:           user,
		order:          order,
	}
}

func completedEventPayload(orderID uint) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_session","payment_status":"paid","metadata":{"order_id":"%d"}}}}`,
		orderID))
}

func TestPaymentService_CreateCheckoutSession(t *testing.T) {
	env := setupPaymentServiceTest(t)

	payment, err := env.paymentService.CreateCheckoutSession(context.Background(), env.user.ID, env.order.ID)
	require.NoError(t, err)
	assert.Equal(t, env.order.ID, payment.OrderID)
	assert.Equal(t, "stripe", payment.Provider)
	assert.Equal(t, "cs_test_session", payment.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_test_session", payment.CheckoutURL)
	assert.Equal(t, env.order.Total, payment.Amount)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
}

func TestPaymentService_CreateCheckoutSession_OwnershipEnforced(t *testing.T) {
	env := setupPaymentServiceTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other"}
	env.db.Create(other)

	payment, err := env.paymentService.CreateCheckoutSession(context.Background(), other.ID, env.order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, payment)
}

func TestPaymentService_HandleWebhook_Completed(t *testing.T) {
	env := setupPaymentServiceTest(t)

	_, err := env.paymentService.CreateCheckoutSession(context.Background(), env.user.ID, env.order.ID)
	require.NoError(t, err)

	payload := completedEventPayload(env.order.ID)
	header := stripe.SignPayload(payload, testWebhookSecret, time.Now())

	require.NoError(t, env.paymentService.HandleWebhook(payload, header))

	var order model.Order
	env.db.First(&order, env.order.ID)
	assert.Equal(t, model.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)

	var payment model.Payment
	require.NoError(t, env.db.Where("order_id = ?", env.order.ID).First(&payment).Error)
	assert.Equal(t, model.PaymentStatusPaid, payment.Status)
	assert.NotNil(t, payment.CompletedAt)
}

func TestPaymentService_HandleWebhook_DuplicateCompletedIgnored(t *testing.T) {
	env := setupPaymentServiceTest(t)

	payload := completedEventPayload(env.order.ID)
	header := stripe.SignPayload(payload, testWebhookSecret, time.Now())

	require.NoError(t, env.paymentService.HandleWebhook(payload, header))
	require.NoError(t, env.paymentService.HandleWebhook(payload, header))

	var order model.Order
	env.db.First(&order, env.order.ID)
	assert.Equal(t, model.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)
}

func TestPaymentService_HandleWebhook_Failed(t *testing.T) {
	env := setupPaymentServiceTest(t)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_2","type":"checkout.session.async_payment_failed","data":{"object":{"id":"cs_test_session","metadata":{"order_id":"%d"}}}}`,
		env.order.ID))
	header := stripe.SignPayload(payload, testWebhookSecret, time.Now())

	require.NoError(t, env.paymentService.HandleWebhook(payload, header))

	var order model.Order
	env.db.First(&order, env.order.ID)
	assert.Equal(t, model.PaymentStatusFailed, order.PaymentStatus)
	assert.Equal(t, model.OrderStatusPending, order.Status)
}

func TestPaymentService_HandleWebhook_LateFailureAfterPaidIgnored(t *testing.T) {
	env := setupPaymentServiceTest(t)

	completed := completedEventPayload(env.order.ID)
	header := stripe.SignPayload(completed, testWebhookSecret, time.Now())
	require.NoError(t, env.paymentService.HandleWebhook(completed, header))

	// A replayed expiry for the same session arrives after the confirmation
	failed := []byte(fmt.Sprintf(
		`{"id":"evt_4","type":"checkout.session.expired","data":{"object":{"id":"cs_test_session","metadata":{"order_id":"%d"}}}}`,
		env.order.ID))
	header = stripe.SignPayload(failed, testWebhookSecret, time.Now())
	require.NoError(t, env.paymentService.HandleWebhook(failed, header))

	var order model.Order
	env.db.First(&order, env.order.ID)
	assert.Equal(t, model.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)
}

func TestPaymentService_HandleWebhook_BadSignature(t *testing.T) {
	env := setupPaymentServiceTest(t)

	payload := completedEventPayload(env.order.ID)
	header := stripe.SignPayload(payload, "whsec_wrong", time.Now())

	err := env.paymentService.HandleWebhook(payload, header)
	assert.ErrorIs(t, err, stripe.ErrInvalidSignature)

	// Order untouched
	var order model.Order
	env.db.First(&order, env.order.ID)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
}

func TestPaymentService_HandleWebhook_UnknownOrder(t *testing.T) {
	env := setupPaymentServiceTest(t)

	payload := completedEventPayload(99999)
	header := stripe.SignPayload(payload, testWebhookSecret, time.Now())

	err := env.paymentService.HandleWebhook(payload, header)
	assert.ErrorIs(t, err, ErrUnknownOrderRef)
}

func TestPaymentService_HandleWebhook_UnknownEventTypeIgnored(t *testing.T) {
	env := setupPaymentServiceTest(t)

	payload := []byte(`{"id":"evt_3","type":"invoice.created","data":{"object":{"id":"in_1"}}}`)
	header := stripe.SignPayload(payload, testWebhookSecret, time.Now())

	assert.NoError(t, env.paymentService.HandleWebhook(payload, header))
}
