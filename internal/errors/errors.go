// Package errors defines the structured error type used across the service.
// Service-layer code returns AppErrors so handlers can translate them into
// consistent JSON responses without leaking internal detail to clients.
package errors

import "net/http"

// AppError is an application error carrying a stable error code, a
// client-safe message, the HTTP status to respond with, and an optional
// wrapped internal error for logging.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap returns a copy of sentinel carrying internal as the wrapped cause.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage returns a copy of sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Stock errors.
var (
	ErrStockNotFound = &AppError{Code: "STOCK_NOT_FOUND", Message: "Stock not found", StatusCode: http.StatusNotFound}

	// ErrStockStorage signals that an insert or update affected no row.
	ErrStockStorage = &AppError{Code: "STOCK_STORAGE_FAILURE", Message: "Failed to persist stock data", StatusCode: http.StatusNotFound}

	// ErrQuoteDataUnavailable is returned when the quotes upstream yields no
	// usable OHLC data. Reconciliation fails hard instead of persisting a
	// record with undefined numeric fields.
	ErrQuoteDataUnavailable = &AppError{Code: "QUOTE_DATA_UNAVAILABLE", Message: "Quote data is currently unavailable for this symbol", StatusCode: http.StatusBadGateway}
)
