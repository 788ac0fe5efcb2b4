package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the JSON error envelope
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeUnknownProduct     = "UNKNOWN_PRODUCT"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError carries an error code and the HTTP status it maps to
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so errors.Is(err, ErrNotFound("")) style checks work across messages
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetails replaces the details map
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap attaches the underlying cause
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func ErrValidation(message string) *AppError {
	return New(CodeValidationError, message, http.StatusBadRequest)
}

func ErrValidationWithFields(message string, fields map[string]string) *AppError {
	return ErrValidation(message).WithDetails(fields)
}

// ErrNotFound builds "<resource> not found"
func ErrNotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func ErrNotFoundWithID(resource string, id int) *AppError {
	return ErrNotFound(resource).WithDetail("id", fmt.Sprintf("%d", id))
}

// ErrInsufficientStock reports the product and both quantities
func ErrInsufficientStock(product, available, requested string) *AppError {
	msg := fmt.Sprintf("Not enough stock for product %s. Available: %s, Requested: %s", product, available, requested)
	return New(CodeInsufficientStock, msg, http.StatusBadRequest).
		WithDetails(map[string]string{
			"product":   product,
			"available": available,
			"requested": requested,
		})
}

func ErrUnknownProduct(name string) *AppError {
	return New(CodeUnknownProduct, fmt.Sprintf("Product with name '%s' not found", name), http.StatusBadRequest).
		WithDetail("product", name)
}

func ErrConflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func ErrUnauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func ErrForbidden(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return New(CodeForbidden, message, http.StatusForbidden)
}

func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return New(CodeInternalError, message, http.StatusInternalServerError)
}

func ErrServiceUnavailable(service string) *AppError {
	return New(CodeServiceUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

// AsAppError unwraps err to an *AppError if one is in the chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// FromError converts any error to an AppError, defaulting to INTERNAL_ERROR
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return ErrInternal("").Wrap(err)
}
