// Package apperr defines the error taxonomy shared by services and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kinds of failure surfaced to callers. Code doubles as the HTTP status.
const (
	CodeBadRequest    = http.StatusBadRequest
	CodeUnauthorized  = http.StatusUnauthorized
	CodeForbidden     = http.StatusForbidden
	CodeNotFound      = http.StatusNotFound
	CodeInternalError = http.StatusInternalServerError
)

// AppError is an expected failure with a caller-safe message
type AppError struct {
	Code    int                 `json:"-"`
	Message string              `json:"error"`
	Fields  map[string][]string `json:"fields,omitempty"`
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.err
}

// NotFound reports an absent or invisible resource. Both cases share one message.
func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: resource + " not found"}
}

// Forbidden reports a caller lacking the identity or role for a write
func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// Unauthorized reports credentials that could not be verified
func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// Invalid reports a payload that violates field constraints
func Invalid(fields map[string][]string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: "validation failed", Fields: fields}
}

// InvalidField is Invalid for a single field
func InvalidField(field, message string) *AppError {
	return Invalid(map[string][]string{field: {message}})
}

// BadRequest reports a request that could not be decoded
func BadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *AppError {
	return &AppError{Code: CodeInternalError, Message: "internal server error", err: err}
}

// From converts any error into an AppError, treating unknown errors as internal
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Is reports whether err is an AppError with the given code
func Is(err error, code int) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

// FromBinding converts a request binding failure into field-level messages
func FromBinding(err error) *AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return BadRequest("invalid request body")
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe)
		fields[name] = append(fields[name], describe(fe))
	}
	return Invalid(fields)
}

// fieldName maps a struct field to its JSON name, e.g. "ArticleInput.Tags[0]" -> "tags"
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "UserName":
		return "user_name"
	case "PubDate":
		return "pub_date"
	}
	return strings.ToLower(name)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// Merge combines field errors, keeping each field's messages in order
func Merge(dst, src map[string][]string) map[string][]string {
	if dst == nil {
		dst = make(map[string][]string)
	}
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dst[k] = append(dst[k], src[k]...)
	}
	return dst
}
