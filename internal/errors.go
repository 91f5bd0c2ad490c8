package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidPassword  ErrorCode = "INVALID_PASSWORD"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"
	ErrCodeInvalidPrice     ErrorCode = "INVALID_PRICE"
	ErrCodeInvalidQuantity  ErrorCode = "INVALID_QUANTITY"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"

	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeStoreNotFound ErrorCode = "STORE_NOT_FOUND"
	ErrCodeItemNotFound  ErrorCode = "ITEM_NOT_FOUND"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserNotVerified    ErrorCode = "USER_NOT_VERIFIED"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
)

type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Field      string    `json:"field,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	err := NewValidationError(message, code)
	err.Field = field
	return err
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrInvalidToken = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrForbidden    = NewForbiddenError("Insufficient permissions", ErrCodeForbidden)
)

// RejectionError turns a failed business outcome message into the AppError
// the transport layer reports for it.
func RejectionError(message string) *AppError {
	switch {
	case message == "User or store not found":
		return NewNotFoundError(message, ErrCodeNotFound)
	case strings.HasPrefix(message, "User not found"):
		return NewNotFoundError(message, ErrCodeUserNotFound)
	case strings.HasPrefix(message, "Store not found"):
		return NewNotFoundError(message, ErrCodeStoreNotFound)
	case strings.HasSuffix(message, "not found"):
		return NewNotFoundError(message, ErrCodeItemNotFound)
	case strings.HasSuffix(message, "already exists"),
		strings.HasSuffix(message, "already added"),
		strings.HasSuffix(message, "already granted"):
		return NewConflictError(message, ErrCodeAlreadyExists)
	case message == "Wrong password":
		return NewUnauthorizedError(message, ErrCodeInvalidCredentials)
	case message == "User is not verified":
		return NewForbiddenError(message, ErrCodeUserNotVerified)
	case strings.HasPrefix(message, "Email"):
		return NewValidationFieldError("email", message, ErrCodeInvalidEmail)
	case strings.HasPrefix(message, "Password"):
		return NewValidationFieldError("password", message, ErrCodeInvalidPassword)
	case strings.HasSuffix(message, "name is empty"):
		return NewValidationFieldError("name", message, ErrCodeInvalidName)
	case message == "Invalid price":
		return NewValidationFieldError("price", message, ErrCodeInvalidPrice)
	case message == "Invalid quantity":
		return NewValidationFieldError("quantity", message, ErrCodeInvalidQuantity)
	default:
		return NewValidationError(message, ErrCodeValidationFailed)
	}
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType `json:"type"`
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
		Field   string    `json:"field,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Field:   e.Field,
	})
}
