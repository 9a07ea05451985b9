package api_errors

import (
	"github.com/pkg/errors"

	recipeerrors "github.com/customeros/recipestack/internal/errors"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeBadInput        = "BAD_USER_INPUT"
	CodeInternal        = "INTERNAL_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
)

const internalErrorMessage = "Internal server error."

// Error is returned from resolvers. graphql-go copies Extensions into the response.
type Error struct {
	Message    string
	Code       string
	extensions map[string]interface{}
}

// NewError creates a standardized GraphQL error
func NewError(message string, code string, extensions map[string]interface{}) *Error {
	if extensions == nil {
		extensions = make(map[string]interface{})
	}
	extensions["code"] = code

	return &Error{
		Message:    message,
		Code:       code,
		extensions: extensions,
	}
}

func NewUnauthenticatedError() *Error {
	return NewError(recipeerrors.ErrUnauthenticated.Error(), CodeUnauthenticated, nil)
}

func NewInternalError() *Error {
	return NewError(internalErrorMessage, CodeInternal, nil)
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Extensions() map[string]interface{} {
	return e.extensions
}

// FromDomainError maps a service error onto the client facing error. The second
// result reports whether err was unexpected and should be logged.
func FromDomainError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}

	var validationErr *recipeerrors.ValidationError
	var notFoundErr *recipeerrors.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		var extensions map[string]interface{}
		if len(validationErr.Fields) > 0 {
			extensions = map[string]interface{}{"fields": validationErr.Fields}
		}
		return NewError(validationErr.Error(), CodeBadInput, extensions), false
	case errors.As(err, &notFoundErr):
		return NewError(notFoundErr.Error(), CodeNotFound, nil), false
	case recipeerrors.IsUnauthenticated(err):
		return NewUnauthenticatedError(), false
	default:
		return NewInternalError(), true
	}
}

// Response is the body written when a request fails before GraphQL execution.
type Response struct {
	Errors []ResponseError `json:"errors"`
}

type ResponseError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

func NewResponse(errs ...*Error) Response {
	response := Response{Errors: make([]ResponseError, 0, len(errs))}
	for _, err := range errs {
		response.Errors = append(response.Errors, ResponseError{Message: err.Message, Extensions: err.extensions})
	}
	return response
}
