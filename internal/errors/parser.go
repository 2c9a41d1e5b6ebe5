package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo carries a response code plus a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a raw database or infrastructure error into a code and
// message safe to return to clients. Sensitive detail stays in the logs.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An unexpected error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM sentinel errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL constraint violations

	// 2-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// 2-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The operation conflicts with related data",
		}
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationMissingField,
			Message: "A required field is missing",
		}
	}

	// 2-4. Check constraint violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationFailed,
			Message: "The request contains an invalid value",
		}
	}

	// 3. Network / connectivity errors
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An external service is unavailable. Please try again later",
		}
	}

	// 4. Default internal server error
	return ErrorInfo{
		Code:    InternalServerError,
		Message: "An unexpected error occurred. Please try again later",
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email is already registered",
		}
	}
	if strings.Contains(errLower, "idx_discounts_code") || strings.Contains(errLower, "discounts") {
		return ErrorInfo{
			Code:    DiscountCodeExists,
			Message: "This discount code already exists",
		}
	}
	if strings.Contains(errLower, "order_number") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Order number collision, please retry",
		}
	}
	return ErrorInfo{
		Code:    ResourceConflict,
		Message: "This record already exists",
	}
}

// ParseAndRespond parses the error and writes the standard response in one step
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func getNotFoundMessage(context string) string {
	switch context {
	case "product":
		return "Product not found"
	case "category":
		return "Category not found"
	case "order":
		return "Order not found"
	case "discount":
		return "Discount code not found"
	case "address":
		return "Address not found"
	case "shipping":
		return "Shipping method not found"
	case "payment":
		return "Payment not found"
	case "user":
		return "User not found"
	default:
		return "The requested resource was not found"
	}
}
