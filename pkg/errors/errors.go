// Package errors defines the typed error taxonomy for the reconciliation
// pipeline.
//
// Every failure surfaced by the pipeline is a *ReconError carrying a
// category, a specific code, a human-readable message and optional
// context/suggestion information. Errors are raised eagerly during input
// validation or immediately after a stage's extraction and propagate to the
// caller unrecovered; the caller maps categories to exit codes or responses.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category groups errors by the kind of failure.
type Category string

const (
	CategoryFile       Category = "file"
	CategoryValidation Category = "validation"
	CategoryExtraction Category = "extraction"
	CategorySchema     Category = "schema"
	CategoryInternal   Category = "internal"
)

// Code identifies a specific failure within a category.
type Code string

const (
	// File errors
	CodeFileNotFound   Code = "file_not_found"
	CodeNotRegularFile Code = "not_regular_file"
	CodeDirNotWritable Code = "dir_not_writable"
	CodeFileCorrupted  Code = "file_corrupted"

	// Validation errors
	CodeInvalidFileType Code = "invalid_file_type"
	CodeMissingField    Code = "missing_field"

	// Extraction errors
	CodeNoTableData Code = "no_table_data"

	// Schema errors
	CodeMissingColumn Code = "missing_column"

	// Internal errors
	CodeWriteFailed     Code = "write_failed"
	CodeUnexpectedError Code = "unexpected_error"
)

// ReconError is the error type for all pipeline failures.
type ReconError struct {
	Category   Category          `json:"category"`
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context carries additional key-value information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *ReconError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ReconError) Unwrap() error {
	return e.Cause
}

// GetExitCode maps the error category to a process exit code.
func (e *ReconError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryValidation:
		return 3
	case CategoryExtraction, CategorySchema:
		return 4
	case CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext attaches a context key-value pair to the error.
func (e *ReconError) WithContext(key string, value interface{}) *ReconError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches a remediation hint to the error.
func (e *ReconError) WithSuggestion(suggestion string) *ReconError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ReconError.
func New(category Category, code Code, message string) *ReconError {
	return &ReconError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with category and code information.
func Wrap(err error, category Category, code Code, message string) *ReconError {
	if err == nil {
		return nil
	}
	return &ReconError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// NotFoundError reports a missing input path.
func NotFoundError(what, path string) *ReconError {
	return New(CategoryFile, CodeFileNotFound,
		fmt.Sprintf("%s not found: %s", what, path)).
		WithSuggestion("check that the path is correct and the file exists").
		WithContext("path", path)
}

// NotRegularFileError reports an input path that exists but is not a regular file.
func NotRegularFileError(what, path string) *ReconError {
	return New(CategoryFile, CodeNotRegularFile,
		fmt.Sprintf("%s is not a regular file: %s", what, path)).
		WithSuggestion("provide a file path, not a directory or special file").
		WithContext("path", path)
}

// PermissionError reports an output directory that is not writable.
func PermissionError(what, dir string, err error) *ReconError {
	result := &ReconError{
		Category: CategoryFile,
		Code:     CodeDirNotWritable,
		Message:  fmt.Sprintf("parent directory for %s is not writable: %s", what, dir),
		Cause:    err,
	}
	return result.
		WithSuggestion("ensure the output directory exists and is writable").
		WithContext("directory", dir)
}

// TypeValidationError reports an input file with an unexpected extension.
func TypeValidationError(what, path string, allowed []string) *ReconError {
	return New(CategoryValidation, CodeInvalidFileType,
		fmt.Sprintf("%s must have extension in %v, got: %s", what, allowed, path)).
		WithSuggestion(fmt.Sprintf("supply a file with one of these extensions: %s", strings.Join(allowed, ", "))).
		WithContext("path", path)
}

// ValidationError reports a missing or invalid request field.
func ValidationError(field, message string) *ReconError {
	return New(CategoryValidation, CodeMissingField,
		fmt.Sprintf("invalid %s: %s", field, message)).
		WithContext("field", field)
}

// ExtractionError reports that a source yielded no tabular data at all.
func ExtractionError(path string) *ReconError {
	return New(CategoryExtraction, CodeNoTableData,
		fmt.Sprintf("no tables found in document: %s", path)).
		WithSuggestion("check that the PDF contains at least one tabular page").
		WithContext("path", path)
}

// SchemaError reports required columns absent from an input table.
func SchemaError(source string, missing []string, available []string) *ReconError {
	return New(CategorySchema, CodeMissingColumn,
		fmt.Sprintf("missing required columns %v in %s", missing, source)).
		WithSuggestion(fmt.Sprintf("available columns: %v", available)).
		WithContext("source", source).
		WithContext("missing_columns", missing)
}

// WriteError reports a failure persisting an output file.
func WriteError(path string, err error) *ReconError {
	return Wrap(err, CategoryInternal, CodeWriteFailed,
		fmt.Sprintf("failed to write output file: %s", path)).
		WithContext("path", path)
}

// IsReconError checks whether an error is a *ReconError.
func IsReconError(err error) bool {
	_, ok := err.(*ReconError)
	return ok
}

// AsReconError extracts a *ReconError from an error chain.
func AsReconError(err error) (*ReconError, bool) {
	var reconErr *ReconError
	if errors.As(err, &reconErr) {
		return reconErr, true
	}
	return nil, false
}
