package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrDuplicateIdentity   = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid login credentials")
	ErrAccountLocked       = errors.New("account locked")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFoundOrForbidden = errors.New("article not found or you are not the author")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrValidation          = errors.New("validation failed")
)

// LockedError is returned while an account is locked. JustLocked is set when
// the failing attempt is the one that applied the lock.
type LockedError struct {
	Remaining  time.Duration
	JustLocked bool
}

func (e *LockedError) Minutes() int {
	return int(math.Round(e.Remaining.Minutes()))
}

func (e *LockedError) Error() string {
	if e.JustLocked {
		return fmt.Sprintf("%s. Account has been locked for %d minutes due to too many failed attempts", ErrInvalidCredentials, e.Minutes())
	}
	return fmt.Sprintf("%s. Please try again in %d minutes", ErrAccountLocked, e.Minutes())
}

func (e *LockedError) Is(target error) bool { return target == ErrAccountLocked }

type ForbiddenError struct {
	Required RoleSet
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: required role(s): %s", ErrForbidden, e.Required)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

type TransitionError struct {
	From ArticleStatus
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s an article with status '%s'", ErrInvalidTransition, e.Op, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Msg: msg}}}
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Field + ": " + f.Msg)
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
