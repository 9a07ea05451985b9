package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// auth errors
	ErrUnauthenticated    = errors.New("Authentication required.")
	ErrInvalidCredentials = errors.New("No active account found with the given credentials")
	ErrTokenInvalid       = errors.New("Token is invalid or expired")

	// recipe errors
	ErrNoValidIngredients = errors.New("No valid ingredients to add.")
)

// ValidationError lists the messages for each rejected input field.
type ValidationError struct {
	Op      string
	Message string
	Fields  map[string][]string
}

func NewValidationError(op string) *ValidationError {
	return &ValidationError{
		Op:     op,
		Fields: make(map[string][]string),
	}
}

// NewValidationMessage is a validation failure whose message is shown to the client verbatim.
func NewValidationMessage(field, message string) *ValidationError {
	validationErr := NewValidationError("")
	validationErr.Message = message
	validationErr.Add(field, message)
	return validationErr
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil keeps callers from returning a typed nil inside an error interface.
func (e *ValidationError) OrNil() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		for _, message := range e.Fields[field] {
			parts = append(parts, fmt.Sprintf("%s: %s", field, message))
		}
	}

	details := strings.Join(parts, " | ")
	if e.Op == "" {
		return details
	}
	return fmt.Sprintf("Failed to %s: %s", e.Op, details)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found.", e.Entity)
}

type AuthenticationError struct {
	Reason string
}

func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{Reason: reason}
}

func (e *AuthenticationError) Error() string {
	return ErrUnauthenticated.Error()
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrUnauthenticated
}

func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
