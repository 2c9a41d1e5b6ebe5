package errors

// Error code constants returned in error responses.
// Format: CATEGORY_SPECIFIC_DETAIL. Frontends map these codes to their own
// user-facing messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Catalog (CATALOG_) ====================
	CatalogProductNotFound   = "CATALOG_PRODUCT_NOT_FOUND"
	CatalogCategoryNotFound  = "CATALOG_CATEGORY_NOT_FOUND"
	CatalogInsufficientStock = "CATALOG_INSUFFICIENT_STOCK"

	// ==================== Cart (CART_) ====================
	CartEmpty           = "CART_EMPTY"
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"

	// ==================== Order (ORDER_) ====================
	OrderNotFound       = "ORDER_NOT_FOUND"
	OrderNotCancellable = "ORDER_NOT_CANCELLABLE"
	OrderInvalidStatus  = "ORDER_INVALID_STATUS"
	ShippingUnavailable = "ORDER_SHIPPING_UNAVAILABLE"
	AddressNotFound     = "ORDER_ADDRESS_NOT_FOUND"

	// ==================== Discount (DISCOUNT_) ====================
	DiscountNotFound      = "DISCOUNT_NOT_FOUND"
	DiscountNotApplicable = "DISCOUNT_NOT_APPLICABLE"
	DiscountCodeExists    = "DISCOUNT_CODE_EXISTS"

	// ==================== Payment (PAYMENT_) ====================
	PaymentNotFound         = "PAYMENT_NOT_FOUND"
	PaymentAlreadyProcessed = "PAYMENT_ALREADY_PROCESSED"
	PaymentInvalidSignature = "PAYMENT_INVALID_SIGNATURE"

	// ==================== Review (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"

	// ==================== Chat (CHAT_) ====================
	ChatRoomNotFound = "CHAT_ROOM_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationFailed       = "VALIDATION_FAILED"
	ValidationMissingField = "VALIDATION_MISSING_FIELD"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	ResourceConflict = "RESOURCE_CONFLICT"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API"
)
