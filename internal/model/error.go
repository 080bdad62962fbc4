package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Details       any    `json:"details,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorKind classifies domain failures so callers can react without string matching.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindNetwork      ErrorKind = "network"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindInternal     ErrorKind = "internal"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeBodyTooLarge       = "BODY_TOO_LARGE"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeCurrencyMismatch   = "CURRENCY_MISMATCH"
	ErrCodePricingNotFound    = "PRICING_NOT_FOUND"
	ErrCodeRFQNotFound        = "RFQ_NOT_FOUND"
	ErrCodeQuoteNotFound      = "QUOTE_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeRFQExpired         = "RFQ_EXPIRED"
	ErrCodeStaleState         = "STALE_STATE"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeIdempotencyReused  = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeIdempotencyBusy    = "IDEMPOTENCY_KEY_IN_PROGRESS"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-logic failure carrying a kind and a stable code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	details any
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so wrapped copies still compare equal to sentinels.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Wrap returns a copy of e that carries cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		details: e.details,
		cause:   cause,
	}
}

// WithMessage returns a copy of e with a more specific message.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		details: e.details,
		cause:   e.cause,
	}
}

// WithDetails returns a copy of e carrying client-visible details.
func (e *DomainError) WithDetails(details any) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		details: details,
		cause:   e.cause,
	}
}

// Details returns the client-visible details, if any.
func (e *DomainError) Details() any {
	return e.details
}

// KindOf reports the kind of err, defaulting to KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Validation builds an ad-hoc validation error.
func Validation(format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrInvalidJSON        = NewDomainError(KindValidation, ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrBodyTooLarge       = NewDomainError(KindValidation, ErrCodeBodyTooLarge, "Request body is too large")
	ErrInvalidQuantity    = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrCurrencyMismatch   = NewDomainError(KindValidation, ErrCodeCurrencyMismatch, "All items must share the same currency")
	ErrPricingNotFound    = NewDomainError(KindNotFound, ErrCodePricingNotFound, "No volume pricing for product")
	ErrRFQNotFound        = NewDomainError(KindNotFound, ErrCodeRFQNotFound, "RFQ not found")
	ErrQuoteNotFound      = NewDomainError(KindNotFound, ErrCodeQuoteNotFound, "Quote not found on RFQ")
	ErrCartItemNotFound   = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "Cart item not found")
	ErrUserNotFound       = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrInvalidTransition  = NewDomainError(KindConflict, ErrCodeInvalidTransition, "RFQ status does not allow this operation")
	ErrRFQExpired         = NewDomainError(KindConflict, ErrCodeRFQExpired, "RFQ has expired")
	ErrStaleState         = NewDomainError(KindConflict, ErrCodeStaleState, "RFQ was modified concurrently")
	ErrEmailTaken         = NewDomainError(KindConflict, ErrCodeEmailTaken, "Email is already registered")
	ErrIdempotencyReused  = NewDomainError(KindConflict, ErrCodeIdempotencyReused, "Idempotency key reused with a different request body")
	ErrIdempotencyBusy    = NewDomainError(KindConflict, ErrCodeIdempotencyBusy, "A request with this idempotency key is still in progress")
	ErrStoreUnavailable   = NewDomainError(KindNetwork, ErrCodeStoreUnavailable, "Backing store is unavailable")
	ErrInvalidCredentials = NewDomainError(KindUnauthorized, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrUnauthorised       = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Authentication required")
	ErrForbidden          = NewDomainError(KindForbidden, ErrCodeForbidden, "Access denied")
)
