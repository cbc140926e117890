package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one variant of the taxonomy.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is implemented only by the variants declared in this package, so a type switch over
// *UnauthorizedError, *ForbiddenError, *NotFoundError, *ValidationError and *InternalError is exhaustive.
type Error interface {
	error
	Kind() Kind
	sealed()
}

// UnauthorizedError: no identity was presented.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string { return "authentication required" }
func (e *UnauthorizedError) Kind() Kind    { return KindUnauthorized }
func (e *UnauthorizedError) sealed()       {}

// ForbiddenError: identity present but lacking the required membership.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}
func (e *ForbiddenError) Kind() Kind { return KindForbidden }
func (e *ForbiddenError) sealed()    {}

// NotFoundError: the entity does not exist in the caller's visible scope. ID may be empty.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
func (e *NotFoundError) Kind() Kind { return KindNotFound }
func (e *NotFoundError) sealed()    {}

// FieldError is a single input problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field problem found in one input.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
func (e *ValidationError) Kind() Kind { return KindValidation }
func (e *ValidationError) sealed()    {}

// InternalError is a storage failure or a broken post-write invariant. Cause is for logs only.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}
func (e *InternalError) Unwrap() error { return e.Cause }
func (e *InternalError) Kind() Kind    { return KindInternal }
func (e *InternalError) sealed()       {}

// ErrUnauthorized is the shared Unauthorized value; the variant carries no data.
var ErrUnauthorized Error = &UnauthorizedError{}

func NewForbidden(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewValidation(errs ...FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

func NewInternal(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Wrap returns err untouched when it already belongs to the taxonomy, otherwise an InternalError
// carrying message and err as cause. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var de Error
	if errors.As(err, &de) {
		return err
	}
	return NewInternal(message, err)
}

// KindOf reports the taxonomy variant of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var de Error
	if errors.As(err, &de) {
		return de.Kind()
	}
	return KindUnknown
}

// Is reports whether err is a taxonomy error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
