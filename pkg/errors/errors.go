// Package errors provides custom error types for the nsdata pipeline.
// These errors enable programmatic error checking with errors.Is and errors.As
// across the registry, identity, dataset and collector packages.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are the standard library functions, re-exported so callers need
// only one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Sentinel errors for the nsdata pipeline.
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates bad constructor arguments or configuration
	ErrConfiguration = errors.New("configuration error")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrAPIKeyInvalid indicates that the provided API key was rejected
	ErrAPIKeyInvalid = errors.New("API key invalid")

	// ErrSourceUnavailable indicates that an upstream source is temporarily unavailable
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrUnknownIdentity indicates a name, country or ID not present in the registry
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrSchemaMismatch indicates a structural column or indicator mismatch
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnsupportedFilter indicates a source that cannot apply the requested filters
	ErrUnsupportedFilter = errors.New("unsupported filter")

	// ErrPartialBatch indicates that one or more datasets in a batch were skipped
	ErrPartialBatch = errors.New("partial batch")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents bad constructor arguments or configuration.
// It is fatal at construction and never retried.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// APIError represents an error from an upstream source API
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrAPIKeyInvalid
	case e.StatusCode >= 500:
		return target == ErrSourceUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(source string, statusCode int, message string) *APIError {
	return &APIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
	}
}

// UnknownIdentityError reports values that could not be matched against the
// canonical registry in the given dimension.
type UnknownIdentityError struct {
	Dimension string
	Target    string
	Values    []string
}

// Error implements the error interface
func (e *UnknownIdentityError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("unknown %s values will not be converted to %s: %s",
			e.Dimension, e.Target, quoteList(e.Values))
	}
	return fmt.Sprintf("unknown %s values: %s", e.Dimension, quoteList(e.Values))
}

// Is implements errors.Is support
func (e *UnknownIdentityError) Is(target error) bool {
	return target == ErrUnknownIdentity
}

// NewUnknownIdentityError creates a new UnknownIdentityError with sorted, distinct values.
func NewUnknownIdentityError(dimension, target string, values []string) *UnknownIdentityError {
	return &UnknownIdentityError{
		Dimension: dimension,
		Target:    target,
		Values:    distinctSorted(values),
	}
}

// SchemaMismatchError reports a column set (or declared indicator set) that does
// not match what was expected.
type SchemaMismatchError struct {
	Dataset string
	Kind    string // "columns" or "indicators"
	Missing []string
	Extra   []string
}

// Error implements the error interface
func (e *SchemaMismatchError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "columns"
	}
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+quoteList(e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "extra "+quoteList(e.Extra))
	}
	return fmt.Sprintf("schema mismatch in %s %s: %s", e.Dataset, kind, strings.Join(parts, "; "))
}

// Is implements errors.Is support
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// NewSchemaMismatchError creates a new SchemaMismatchError
func NewSchemaMismatchError(dataset, kind string, missing, extra []string) *SchemaMismatchError {
	return &SchemaMismatchError{
		Dataset: dataset,
		Kind:    kind,
		Missing: distinctSorted(missing),
		Extra:   distinctSorted(extra),
	}
}

// UnsupportedFilterError reports filters a source could not push down.
// It is logged as a diagnostic and never returned from a data call.
type UnsupportedFilterError struct {
	Dataset string
	Keys    []string
}

// Error implements the error interface
func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("%s cannot apply filters %s at the source; filtering client-side",
		e.Dataset, quoteList(e.Keys))
}

// Is implements errors.Is support
func (e *UnsupportedFilterError) Is(target error) bool {
	return target == ErrUnsupportedFilter
}

// PartialBatchError lists the datasets of a batch that were skipped and why.
type PartialBatchError struct {
	Skipped map[string]error
}

// Error implements the error interface
func (e *PartialBatchError) Error() string {
	names := make([]string, 0, len(e.Skipped))
	for name := range e.Skipped {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Skipped[name]))
	}
	return fmt.Sprintf("%d datasets skipped: %s", len(names), strings.Join(parts, "; "))
}

// Is implements errors.Is support
func (e *PartialBatchError) Is(target error) bool {
	return target == ErrPartialBatch
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv", "xlsx", "html"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "open", "fetch"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUnknownIdentity checks if an error reports unmatched registry values
func IsUnknownIdentity(err error) bool {
	return errors.Is(err, ErrUnknownIdentity)
}

// IsSchemaMismatch checks if an error is a schema mismatch
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsSourceUnavailable checks if an error indicates source unavailability
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(source string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}

func distinctSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
