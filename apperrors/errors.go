package apperrors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-checkable error kinds returned to clients alongside the message.
const (
	KindValidation          = "VALIDATION_ERROR"
	KindEmptyCart           = "EMPTY_CART"
	KindProductNotFound     = "PRODUCT_NOT_FOUND"
	KindProductInactive     = "PRODUCT_INACTIVE"
	KindInsufficientStock   = "INSUFFICIENT_STOCK"
	KindPaymentNotCompleted = "PAYMENT_NOT_COMPLETED"
	KindDuplicatePaymentRef = "DUPLICATE_PAYMENT_REFERENCE"
	KindNotFound            = "NOT_FOUND"
	KindForbidden           = "FORBIDDEN"
	KindUnauthorized        = "UNAUTHORIZED"
	KindGateway             = "GATEWAY_ERROR"
	KindInternal            = "INTERNAL_ERROR"
)

// Error represents an application error. Err is never serialized; clients
// only see the HTTP code, kind and message.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(code int, kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Common error values. These carry no wrapped cause and are safe to share.
var (
	ErrEmptyCart = New(http.StatusBadRequest, KindEmptyCart, "At least one item is required", nil)

	ErrPaymentNotCompleted = New(http.StatusBadRequest, KindPaymentNotCompleted, "Payment not completed", nil)

	// ErrDuplicatePaymentReference is recovered transparently by the checkout
	// flow; it is never surfaced to a caller.
	ErrDuplicatePaymentReference = New(http.StatusConflict, KindDuplicatePaymentRef, "Order already exists for this payment", nil)

	ErrOrderNotFound = New(http.StatusNotFound, KindNotFound, "Order not found", nil)
	ErrForbidden     = New(http.StatusForbidden, KindForbidden, "Not authorized to access this resource", nil)
	ErrUnauthorized  = New(http.StatusUnauthorized, KindUnauthorized, "Unauthorized", nil)
)

// Validation returns a 400 for malformed or missing input.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

// ProductNotFound reports a cart line referencing a missing product.
func ProductNotFound(productID string) *Error {
	return New(http.StatusBadRequest, KindProductNotFound, fmt.Sprintf("Product %s not found", productID), nil)
}

// ProductInactive reports a cart line referencing a deactivated product.
func ProductInactive(name string) *Error {
	return New(http.StatusBadRequest, KindProductInactive, fmt.Sprintf("Product %s is no longer available", name), nil)
}

// InsufficientStock reports that a product cannot cover the requested quantity.
func InsufficientStock(name string) *Error {
	return New(http.StatusBadRequest, KindInsufficientStock, fmt.Sprintf("Insufficient stock for %s", name), nil)
}

// Gateway wraps an upstream payment processor failure.
func Gateway(err error) *Error {
	return New(http.StatusBadGateway, KindGateway, "Payment processor unavailable", err)
}

// Internal wraps an unexpected server-side failure.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, KindInternal, "Server error", err)
}

// Respond writes the error as a JSON response on the gin context.
func Respond(c *gin.Context, err *Error) {
	c.JSON(err.Code, gin.H{"error": err.Message, "kind": err.Kind})
}
