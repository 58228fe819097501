// Package apperror defines the error kinds surfaced by the catalog core.
// Callers classify them with errors.As or the Is* helpers; only the HTTP
// boundary turns them into responses.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports one or more fields that failed validation.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidation creates a ValidationError for a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field errors were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NotFoundError reports that a lookup by key found no record.
type NotFoundError struct {
	Resource string
	Key      string
	Value    any
}

// NewNotFound creates a NotFoundError.
func NewNotFound(resource, key string, value any) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key, Value: value}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %v not found", e.Resource, e.Key, e.Value)
}

// ConflictError reports a uniqueness violation, such as a duplicate SKU.
type ConflictError struct {
	Resource string
	Key      string
	Value    any
}

// NewConflict creates a ConflictError.
func NewConflict(resource, key string, value any) *ConflictError {
	return &ConflictError{Resource: resource, Key: key, Value: value}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %v already exists", e.Resource, e.Key, e.Value)
}

// InfrastructureError wraps a storage or transport failure. Its message is
// for logs only and must not reach API clients.
type InfrastructureError struct {
	Op  string
	Err error
}

// NewInfrastructure wraps err as an InfrastructureError for operation op.
func NewInfrastructure(op string, err error) *InfrastructureError {
	return &InfrastructureError{Op: op, Err: err}
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsInfrastructure reports whether err is or wraps an InfrastructureError.
func IsInfrastructure(err error) bool {
	var target *InfrastructureError
	return errors.As(err, &target)
}
