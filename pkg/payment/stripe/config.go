package stripe

// Config represents the configuration for the Stripe client
type Config struct {
	// SecretKey is the API secret key used for authentication
	SecretKey string

	// WebhookSecret is the shared secret used to verify webhook signatures
	WebhookSecret string

	// BaseURL is the Stripe API base URL
	BaseURL string

	// SuccessURL is the redirect URL for completed checkout sessions
	SuccessURL string

	// CancelURL is the redirect URL for abandoned checkout sessions
	CancelURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidRequest
	}
	if c.WebhookSecret == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	if c.SuccessURL == "" {
		return ErrInvalidRequest
	}
	if c.CancelURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
