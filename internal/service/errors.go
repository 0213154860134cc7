package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateMembership = errors.New("recipe is already in this collection")
	ErrNotAMember          = errors.New("recipe is not in this collection")
	ErrSelfFollowForbidden = errors.New("users cannot follow themselves")
	ErrAlreadyFollowing    = errors.New("already following this user")
	ErrNotFollowing        = errors.New("not following this user")
	ErrEmptyCollection     = errors.New("shopping cart is empty")
	ErrDuplicateRecipe     = errors.New("author already has a recipe with this name")
	ErrInvalidInput        = errors.New("invalid input")
	ErrForbidden           = errors.New("only the author may modify this recipe")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserExists          = errors.New("user already exists")
	ErrShortCodeExhausted  = errors.New("short code generation exhausted")
)

// ShortCodeExhaustedError reports that every generated candidate collided.
type ShortCodeExhaustedError struct {
	Attempts int
}

func (e *ShortCodeExhaustedError) Error() string {
	return fmt.Sprintf("no free short code after %d attempts", e.Attempts)
}

func (e *ShortCodeExhaustedError) Unwrap() error {
	return ErrShortCodeExhausted
}

// ValidationError wraps ErrInvalidInput with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
