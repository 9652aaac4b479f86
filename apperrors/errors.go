package apperrors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kinds of errors the API distinguishes. Every error returned by a service
// should be marked with exactly one of these so the error middleware can map
// it to an HTTP status and a machine-readable code.
var (
	ErrValidation       = newKind(CodeValidation, "validation error")
	ErrUnauthorized     = newKind(CodeUnauthorized, "unauthorized")
	ErrForbidden        = newKind(CodeForbidden, "forbidden")
	ErrNotFound         = newKind(CodeNotFound, "resource not found")
	ErrAlreadyExists    = newKind(CodeAlreadyExists, "resource already exists")
	ErrInvalidOperation = newKind(CodeInvalidOperation, "invalid operation")
	ErrRateLimited      = newKind(CodeRateLimited, "too many requests")
	ErrDatabase         = newKind(CodeDatabase, "database error")
	ErrSystem           = newKind(CodeSystem, "system error")

	statusCodes = []struct {
		kind   error
		status int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
	}
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyExists    = "ALREADY_EXISTS"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeRateLimited      = "RATE_LIMITED"
	CodeDatabase         = "DATABASE_ERROR"
	CodeSystem           = "INTERNAL_ERROR"
)

// Kind is a sentinel error identifying a class of failures.
type Kind struct {
	Code    string
	Message string
}

func (k *Kind) Error() string {
	return fmt.Sprintf("%s: %s", k.Code, k.Message)
}

func newKind(code, message string) *Kind {
	return &Kind{Code: code, Message: message}
}

// HTTPStatus maps err to the status code of the first kind it is marked with.
func HTTPStatus(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.kind) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// Code returns the machine-readable code for err.
func Code(err error) string {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.kind) {
			return sc.kind.(*Kind).Code
		}
	}
	return CodeSystem
}

// Hint returns the first user-facing hint attached to err, or fallback.
func Hint(err error, fallback string) string {
	for _, h := range errors.GetAllHints(err) {
		if h != "" {
			return h
		}
	}
	return fallback
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
