package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts storage and infrastructure errors into a code and a
// message safe to show users. Sensitive details stay out of the response.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "An internal error occurred"}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// Postgres constraint violations surface through the driver as text.

	// unique_violation (23505)
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// foreign_key_violation (23503)
	if strings.Contains(errStr, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// not_null_violation (23502)
	if strings.Contains(errStr, "null value") && strings.Contains(errStr, "not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A dependent service is unavailable, please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "email") || strings.Contains(errStr, "idx_users_email") {
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email address is already registered"}
	}

	// one cart per owner
	if strings.Contains(errStr, "idx_carts_user_id") || strings.Contains(errStr, "carts") {
		return ErrorInfo{Code: ResourceConflict, Message: "A cart already exists for this user"}
	}

	// one line per (cart, product)
	if strings.Contains(errStr, "idx_cart_product") || strings.Contains(errStr, "cart_items") {
		return ErrorInfo{Code: ResourceConflict, Message: "This product is already in the cart"}
	}

	return ErrorInfo{Code: ResourceAlreadyExists, Message: "The record already exists"}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "still referenced") {
		return ErrorInfo{Code: ResourceConflict, Message: "The record is referenced by other data and cannot be deleted"}
	}
	if strings.Contains(errStr, "product_id") {
		return ErrorInfo{Code: ProductNotFound, Message: "The referenced product does not exist"}
	}
	if strings.Contains(errStr, "user_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "The referenced user does not exist"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
}

func notFoundMessage(context string) string {
	ctx := strings.ToLower(context)
	switch {
	case strings.Contains(ctx, "product"):
		return "Product not found"
	case strings.Contains(ctx, "cart"):
		return "Cart item not found"
	case strings.Contains(ctx, "user"):
		return "User not found"
	default:
		return "The requested record was not found"
	}
}

func defaultMessage(context string) string {
	ctx := strings.ToLower(context)
	switch {
	case strings.Contains(ctx, "create"), strings.Contains(ctx, "register"):
		return "Failed to create the record, please try again later"
	case strings.Contains(ctx, "update"):
		return "Failed to update the record, please try again later"
	case strings.Contains(ctx, "delete"), strings.Contains(ctx, "remove"):
		return "Failed to delete the record, please try again later"
	default:
		return "An internal error occurred, please try again later"
	}
}

// ParseAndRespond parses an error and writes the standard response
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
