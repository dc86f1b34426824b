package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid          ErrorCode = "invalid"
	ErrorForbidden        ErrorCode = "forbidden"
	ErrorNotFound         ErrorCode = "not_found"
	ErrorConflict         ErrorCode = "conflict"
	ErrorUnauthorized     ErrorCode = "unauthorized"
	ErrorDuplicatePending ErrorCode = "duplicate_pending"
	ErrorAlreadyCompleted ErrorCode = "already_completed"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

// NewDuplicatePendingError signals that a user already has a pending
// testing application.
func NewDuplicatePendingError(msg string) error {
	return &ServiceError{Code: ErrorDuplicatePending, Message: msg}
}

// NewAlreadyCompletedError guards the exactly-once reward payout on
// assignment completion.
func NewAlreadyCompletedError(msg string) error {
	return &ServiceError{Code: ErrorAlreadyCompleted, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err is a ServiceError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
