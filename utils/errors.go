package utils

import "net/http"

// Stable client-facing error codes (kontrak dengan frontend, jangan diubah).
const (
	CodeTableOccupied       = "TABLE_OCCUPIED"
	CodeAlreadyAtOtherTable = "ALREADY_AT_ANOTHER_TABLE"
	CodeSessionClosed       = "SESSION_CLOSED"
	CodeSessionNotActive    = "SESSION_NOT_ACTIVE"
	CodeEmptyCart           = "EMPTY_CART"
	CodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	CodeAlreadyRequesting   = "ALREADY_REQUESTING"
	CodeNotRequesting       = "NOT_REQUESTING"
)

// AppError membawa code stabil di samping pesan human-readable.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

var (
	ErrTableOccupied       = NewAppError(CodeTableOccupied, "table is occupied by another customer")
	ErrAlreadyAtOtherTable = NewAppError(CodeAlreadyAtOtherTable, "device already holds an active session at another table")
	ErrSessionClosed       = NewAppError(CodeSessionClosed, "session is already closed")
	ErrSessionNotActive    = NewAppError(CodeSessionNotActive, "session is not active")
	ErrEmptyCart           = NewAppError(CodeEmptyCart, "cart is empty")
	ErrInvalidTransition   = NewAppError(CodeInvalidTransition, "invalid order status transition")
	ErrAlreadyRequesting   = NewAppError(CodeAlreadyRequesting, "bill closure already requested")
	ErrNotRequesting       = NewAppError(CodeNotRequesting, "bill closure is not being requested")
)

// HTTPStatus memetakan code ke status HTTP: conflict 409, stale 410,
// validasi 400/422.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeTableOccupied, CodeAlreadyAtOtherTable, CodeAlreadyRequesting, CodeNotRequesting:
		return http.StatusConflict
	case CodeSessionClosed:
		return http.StatusGone
	case CodeSessionNotActive, CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case CodeEmptyCart:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
