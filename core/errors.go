package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by an EntityStore when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// StoreError reports a failed EntityStore operation.
type StoreError struct {
	Op         string // get, list, create, update, delete, upsert
	Collection Collection
	Err        error
}

func NewStoreError(op string, coll Collection, err error) error {
	return &StoreError{Op: op, Collection: coll, Err: err}
}

func (err *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Op, err.Collection, err.Err)
}

func (err *StoreError) Unwrap() error { return err.Err }

// IsNotFound reports whether err, or any error it wraps, is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// OperationError is what a failed primary CRUD action surfaces to users: the action and
// entity attempted, never the underlying cause.
type OperationError struct {
	Action Action
	Entity string
	Err    error
}

func NewOperationError(action Action, entity string, err error) error {
	return &OperationError{Action: action, Entity: entity, Err: err}
}

func (err *OperationError) Error() string {
	return fmt.Sprintf("error %s %s: %v", action2Gerund[err.Action], err.Entity, err.Err)
}

func (err *OperationError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
