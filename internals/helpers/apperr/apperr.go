// file: internals/helpers/apperr/apperr.go
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind is the closed set of failure categories the workflow reports.
type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindAuthorization Kind = "AUTHORIZATION_ERROR"
	KindConflict      Kind = "CONFLICT_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindDependency    Kind = "DEPENDENCY_ERROR"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error    { return New(KindValidation, message) }
func Authorization(message string) *Error { return New(KindAuthorization, message) }
func Conflict(message string) *Error      { return New(KindConflict, message) }
func NotFound(message string) *Error      { return New(KindNotFound, message) }
func Dependency(message string) *Error    { return New(KindDependency, message) }

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return fiber.StatusUnprocessableEntity
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	case KindDependency:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
