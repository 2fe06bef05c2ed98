package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the small fixed set of failure categories callers render on.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindWrongScope      Kind = "wrong_scope"
	KindValidation      Kind = "validation_error"
	KindPersistence     Kind = "persistence_error"
	KindSchemaOutOfDate Kind = "schema_out_of_date"
	KindUnknown         Kind = "unknown"
)

// AppError carries a Kind and a user-facing message.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// ErrNotFound is returned when a row lookup misses.
type ErrNotFound struct {
	Entity string
	ID     int
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

func NewNotFound(entity string, id int) error {
	return &ErrNotFound{Entity: entity, ID: id}
}

func NewWrongScope(message string) error {
	return &AppError{Kind: KindWrongScope, Message: message}
}

func NewValidation(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewPersistence(message string, err error) error {
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

// NewSchemaOutOfDate signals a migration problem rather than bad input.
func NewSchemaOutOfDate(message string, err error) error {
	return &AppError{Kind: KindSchemaOutOfDate, Message: message, Err: err}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var nf *ErrNotFound
	if errors.As(err, &nf) {
		return KindNotFound
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	var nf *ErrNotFound
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return "internal error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindWrongScope:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindSchemaOutOfDate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
