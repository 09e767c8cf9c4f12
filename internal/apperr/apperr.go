package apperr

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindInvalidCredentials
	KindForbidden
	KindNotFound
	KindDuplicateEmail
	KindDuplicateApplication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindDuplicateApplication:
		return "duplicate_application"
	}
	return "internal"
}

// HTTPStatus maps a Kind onto the response status the API answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindDuplicateEmail, KindDuplicateApplication:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error is the only error type handed back to the HTTP layer. Message is
// safe to show to callers, Err is kept for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

// InvalidCredentials carries one message for every login failure so callers
// cannot tell an unknown email from a wrong password.
func InvalidCredentials() error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid email or password"}
}

func DuplicateEmail() error {
	return &Error{Kind: KindDuplicateEmail, Message: "Email already registered"}
}

func DuplicateApplication() error {
	return &Error{Kind: KindDuplicateApplication, Message: "You have already applied for this job"}
}

func Internal(err error, msg string) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, KindInternal
// for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// PublicMessage is what the API prints for err. Internal failures never
// leak their cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Oops! An internal error has occurred"
}

// FromValidation turns validator failures into a single Validation error
// naming the first offending field.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Validation(err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return Validation(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return Validation(fmt.Sprintf("%s must be a valid email address", fe.Field()))
	case "oneof":
		return Validation(fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
	case "max":
		return Validation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	case "min":
		return Validation(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	}
	return Validation(fmt.Sprintf("%s is invalid", fe.Field()))
}
