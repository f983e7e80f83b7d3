package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind is the closed set of failure categories the API can surface.
type Kind int

const (
	KindInvalidArgument Kind = iota
	KindInvalidState
	KindNotFound
	KindBackendUnavailable
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to the HTTP status the middleware responds with.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindInvalidArgument:
		return fiber.StatusBadRequest
	case KindInvalidState:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	case KindBackendUnavailable:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func NewInvalidArgument(message string) *AppError {
	return &AppError{Kind: KindInvalidArgument, Message: message}
}

// NewInvalidState marks an operation attempted from a phase that does not permit it.
// These are programmer/UI errors, rejected defensively rather than shown to end users.
func NewInvalidState(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewBackendUnavailable(message string, err error) *AppError {
	return &AppError{Kind: KindBackendUnavailable, Message: message, Err: err}
}

func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
