package oaserrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrParse indicates a document could not be read or decoded.
	ErrParse = errors.New("parse error")

	// ErrVersion indicates the document version is missing or unparsable.
	ErrVersion = errors.New("version error")

	// ErrValidation indicates a document or request has errors.
	ErrValidation = errors.New("validation error")

	// ErrTemplate indicates a path template could not be compiled.
	ErrTemplate = errors.New("template error")

	// ErrDecode indicates a parameter value could not be decoded.
	ErrDecode = errors.New("decode error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a failure to load a document.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Format is the detected source format ("json" or "yaml"), if known
	Format string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Format != "" {
		msg += " (" + e.Format + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// VersionError is the fatal condition raised before normalization starts:
// the top-level document lacks both "swagger" and "openapi", or the declared
// value is not of the form major.minor[.patch].
type VersionError struct {
	// Property is "swagger" or "openapi"; empty when neither is present
	Property string
	// Value is the received version value (nil when missing)
	Value any
}

// Error returns the message reported for the fatal condition.
func (e *VersionError) Error() string {
	if e.Property == "" {
		return `Missing required "openapi" or "swagger" property`
	}
	return "Invalid value for property: " + e.Property
}

// Is reports whether target matches this error type.
func (e *VersionError) Is(target error) bool {
	return target == ErrVersion
}

// ValidationError carries a rendered error tree for callers that treat a
// non-empty tree as a failure.
type ValidationError struct {
	// Header is the top-level sentence of the tree
	Header string
	// Count is the number of messages in the tree
	Count int
	// Detail is the full rendering of the tree, header included
	Detail string
}

// Error returns the rendered tree, or a summary when no detail is available.
func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	msg := "validation error"
	if e.Header != "" {
		msg = e.Header
	}
	if e.Count > 0 {
		msg += fmt.Sprintf(" (%d)", e.Count)
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TemplateError represents a path template that cannot be compiled.
type TemplateError struct {
	// Template is the offending path template
	Template string
	// Position is the byte offset of the problem (-1 when not applicable)
	Position int
	// Message describes the problem
	Message string
}

// Error returns a human-readable error message.
func (e *TemplateError) Error() string {
	msg := "template error"
	if e.Template != "" {
		msg += fmt.Sprintf(" in %q", e.Template)
	}
	if e.Position >= 0 {
		msg += fmt.Sprintf(" at position %d", e.Position)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}

// DecodeError represents a parameter value that cannot be decoded from, or
// encoded into, its serialized form.
type DecodeError struct {
	// Parameter is the parameter name
	Parameter string
	// In is the parameter location (path, query, header, cookie)
	In string
	// Value is the raw text that failed to decode
	Value string
	// Message describes the problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *DecodeError) Error() string {
	msg := "decode error"
	if e.In != "" || e.Parameter != "" {
		msg += fmt.Sprintf(" in %s parameter %q", e.In, e.Parameter)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// ResourceLimitError represents a resource exhaustion condition, such as a
// validator graph nested deeper than the configured maximum.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded (e.g., "nesting_depth")
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid option value.
type ConfigError struct {
	// Option is the name of the problematic option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += ": " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
