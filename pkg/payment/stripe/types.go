package stripe

// CheckoutSessionRequest describes a hosted checkout session to create.
// Metadata must carry the order id so the webhook can correlate events.
type CheckoutSessionRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	SuccessURL  string            `json:"success_url,omitempty"`
	CancelURL   string            `json:"cancel_url,omitempty"`
}

// CheckoutSession is the gateway's representation of a created session
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

// Event is a webhook event envelope
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    EventData `json:"data"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

// EventObject is the session/payment object inside an event
type EventObject struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

// Webhook event types handled by this integration
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "checkout.session.async_payment_failed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// ErrorResponse is the gateway's error body
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
