package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	client, err := NewClient(Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test_secret",
		BaseURL:       "https://api.stripe.com/v1",
		SuccessURL:    "https://shop.example.com/checkout/success",
		CancelURL:     "https://shop.example.com/checkout/cancel",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "missing secret key",
			config: Config{WebhookSecret: "whsec", BaseURL: "https://api.stripe.com/v1"},
		},
		{
			name:   "missing webhook secret",
			config: Config{SecretKey: "sk_test", BaseURL: "https://api.stripe.com/v1"},
		},
		{
			name:   "missing base url",
			config: Config{SecretKey: "sk_test", WebhookSecret: "whsec"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestConstructEvent_ValidSignature(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","payment_status":"paid","metadata":{"order_id":"42"}}}}`)

	header := SignPayload(payload, "whsec_test_secret", time.Now())

	event, err := client.ConstructEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_test_1", event.Data.Object.ID)
	assert.Equal(t, "42", event.Data.Object.Metadata["order_id"])
}

func TestConstructEvent_WrongSecret(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	header := SignPayload(payload, "whsec_other_secret", time.Now())

	_, err := client.ConstructEvent(payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEvent_TamperedPayload(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	header := SignPayload(payload, "whsec_test_secret", time.Now())
	tampered := []byte(`{"id":"evt_1","type":"checkout.session.expired"}`)

	_, err := client.ConstructEvent(tampered, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEvent_ExpiredTimestamp(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	header := SignPayload(payload, "whsec_test_secret", time.Now().Add(-10*time.Minute))

	_, err := client.ConstructEvent(payload, header)
	assert.ErrorIs(t, err, ErrSignatureExpired)
}

func TestVerifySignature_MalformedHeader(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{}`)

	tests := []struct {
		name   string
		header string
	}{
		{name: "empty header", header: ""},
		{name: "missing signature", header: "t=1700000000"},
		{name: "missing timestamp", header: "v1=deadbeef"},
		{name: "garbage timestamp", header: "t=abc,v1=deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.VerifySignature(payload, tt.header, time.Now())
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}
