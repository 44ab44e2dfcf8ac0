// Package errors provides centralized error definitions and error handling utilities
// for blfilter. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - RuleError: a candidate or stored rule was rejected or could not be compiled
//   - IndexError: a 1-based rule index was outside the current rule set
//   - StoreError: the blacklist store could not be read or written
//   - PartialError: a batch of entries was applied with some entries rejected
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found (e.g. the input file)
//   - AlreadyExistsError: resource already exists (e.g. a duplicate rule)
//
// # Usage
//
//	err := errors.NewRuleError("127..0.0.1", errors.ErrConsecutiveDots)
//	if errors.Is(err, errors.ErrRuleInvalid) { ... }
//
//	var ruleErr *errors.RuleError
//	if errors.As(err, &ruleErr) {
//	    fmt.Println(ruleErr.Rule, ruleErr.Reason())
//	}
//
// # Error Classification
//
// Recoverable errors (invalid candidates, duplicates, bad indices, skipped
// rules) are reported and the surrounding batch continues. Use [IsRecoverable]
// to tell them apart from fatal I/O failures.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that are reported but don't stop the workflow.
	SeverityWarning
	// SeverityError is for errors that abort the current operation.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Rule-related sentinel errors
var (
	// ErrRuleInvalid is matched by every rejected rule.
	ErrRuleInvalid = New("invalid rule")
	// ErrConsecutiveDots indicates the rule contains "..".
	ErrConsecutiveDots = New("rule contains consecutive dots")
	// ErrBadWildcard indicates a wildcard rule does not compile as a pattern.
	ErrBadWildcard = New("wildcard rule is not a valid pattern")
	// ErrUnrecognizedRule indicates the rule matches none of the supported forms.
	ErrUnrecognizedRule = New("not an IPv4 address, CIDR block or domain")
	// ErrEmptyRule indicates an empty candidate.
	ErrEmptyRule = New("rule cannot be empty")
	// ErrRuleExists indicates the rule is already in the set.
	ErrRuleExists = New("rule already exists")
	// ErrIndexOutOfRange indicates a rule index outside 1..len(set).
	ErrIndexOutOfRange = New("rule index out of range")
	// ErrIndexNotNumeric indicates a rule index entry that is not an integer.
	ErrIndexNotNumeric = New("rule index is not a number")
	// ErrMultilineRule indicates a candidate containing a line break, which
	// the one-rule-per-line store cannot hold.
	ErrMultilineRule = New("rule contains a line break")
)

// Store and file sentinel errors
var (
	// ErrStoreRead indicates the blacklist store could not be read.
	ErrStoreRead = New("failed to read rule store")
	// ErrStoreWrite indicates the blacklist store could not be written.
	ErrStoreWrite = New("failed to write rule store")
	// ErrInputNotFound indicates the input file does not exist.
	ErrInputNotFound = New("input file not found")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// BlfilterError is the base interface for all blfilter errors.
type BlfilterError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRecoverable returns true if the surrounding batch or menu loop
	// should continue after reporting this error.
	IsRecoverable() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

type baseError struct {
	message     string
	cause       error
	severity    Severity
	recoverable bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRecoverable returns whether the workflow continues after this error.
func (e *baseError) IsRecoverable() bool {
	return e.recoverable
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// RuleError represents a rule that was rejected by validation or could not
// be compiled.
//
// Example:
//
//	err := errors.NewRuleError("a..b", errors.ErrConsecutiveDots)
//	fmt.Println(err) // "rule error [rule=a..b]: rule contains consecutive dots"
type RuleError struct {
	baseError
	Rule string
}

// NewRuleError creates a new RuleError for rule with the given cause.
func NewRuleError(rule string, cause error) *RuleError {
	return &RuleError{
		baseError: baseError{
			message:     "invalid rule",
			cause:       cause,
			severity:    SeverityWarning,
			recoverable: true,
		},
		Rule: rule,
	}
}

// Reason returns the human-readable rejection reason.
func (e *RuleError) Reason() string {
	if e.cause == nil {
		return e.message
	}
	return e.cause.Error()
}

// Error returns the formatted error message.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule error [rule=%s]: %s", e.Rule, e.Reason())
}

// Is checks if this error matches the target.
func (e *RuleError) Is(target error) bool {
	if _, ok := target.(*RuleError); ok {
		return true
	}
	if target == ErrRuleInvalid {
		return true
	}
	return e.baseError.Is(target)
}

// IndexError represents a 1-based rule index outside the rule set, or an
// index entry that is not a number at all (Entry set).
type IndexError struct {
	baseError
	Index int
	Len   int
	Entry string
}

// NewIndexError creates a new IndexError.
func NewIndexError(index, length int) *IndexError {
	return &IndexError{
		baseError: baseError{
			message:     "rule index out of range",
			cause:       ErrIndexOutOfRange,
			severity:    SeverityWarning,
			recoverable: true,
		},
		Index: index,
		Len:   length,
	}
}

// NewIndexEntryError creates an IndexError for an entry that does not parse
// as an integer.
func NewIndexEntryError(entry string) *IndexError {
	return &IndexError{
		baseError: baseError{
			message:     "invalid rule index",
			cause:       ErrIndexNotNumeric,
			severity:    SeverityWarning,
			recoverable: true,
		},
		Entry: entry,
	}
}

// Error returns the formatted error message.
func (e *IndexError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("invalid index %q: expected an integer", e.Entry)
	}
	if e.Len == 0 {
		return fmt.Sprintf("index %d is out of range: rule set is empty", e.Index)
	}
	return fmt.Sprintf("index %d is out of range (1-%d)", e.Index, e.Len)
}

// Is checks if this error matches the target.
func (e *IndexError) Is(target error) bool {
	if _, ok := target.(*IndexError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// StoreError represents a failure reading or writing the blacklist store.
//
// Example:
//
//	err := errors.NewStoreError("save", "/tmp/rules.txt", errors.Join(errors.ErrStoreWrite, ioErr))
type StoreError struct {
	baseError
	Op   string
	Path string
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, path string, cause error) *StoreError {
	return &StoreError{
		baseError: baseError{
			message:     op,
			cause:       cause,
			severity:    SeverityError,
			recoverable: false,
		},
		Op:   op,
		Path: path,
	}
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}

	prefix := "store error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("store error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Op, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Op)
}

// Is checks if this error matches the target.
func (e *StoreError) Is(target error) bool {
	if _, ok := target.(*StoreError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PartialError reports a batch in which some entries were rejected and the
// rest were applied. Its message is a summary; the rejected entries' errors
// are reachable through Unwrap.
type PartialError struct {
	baseError
	Rejected []error
}

// NewPartialError creates a PartialError summarising the rejected entries.
func NewPartialError(message string, rejected ...error) *PartialError {
	return &PartialError{
		baseError: baseError{
			message:     message,
			cause:       Join(rejected...),
			severity:    SeverityWarning,
			recoverable: true,
		},
		Rejected: rejected,
	}
}

// Error returns the summary message.
func (e *PartialError) Error() string {
	return e.message
}

// Is checks if this error matches the target.
func (e *PartialError) Is(target error) bool {
	if _, ok := target.(*PartialError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("input file", "in.txt").WithCause(errors.ErrInputNotFound)
//	fmt.Println(err) // "input file 'in.txt' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:  fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity: SeverityError,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	return e.message
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AlreadyExistsError represents a resource that already exists.
//
// Example:
//
//	err := errors.NewAlreadyExistsError("rule", "*.gov.cn")
//	fmt.Println(err) // "rule '*.gov.cn' already exists"
type AlreadyExistsError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(resourceType, resourceID string) *AlreadyExistsError {
	return &AlreadyExistsError{
		baseError: baseError{
			message:     fmt.Sprintf("%s '%s' already exists", resourceType, resourceID),
			cause:       ErrRuleExists,
			severity:    SeverityInfo,
			recoverable: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Error returns the formatted error message.
func (e *AlreadyExistsError) Error() string {
	return e.message
}

// Is checks if this error matches the target.
func (e *AlreadyExistsError) Is(target error) bool {
	if _, ok := target.(*AlreadyExistsError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRecoverable returns true if the error should be reported as a diagnostic
// while the surrounding workflow keeps going. Unknown errors are treated as
// fatal.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}

	var blErr BlfilterError
	if As(err, &blErr) {
		return blErr.IsRecoverable()
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement BlfilterError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var blErr BlfilterError
	if As(err, &blErr) {
		return blErr.Severity()
	}

	return SeverityError
}

// Reason returns the short explanation shown next to a rejected entry: the
// cause of a RuleError, or the full message of any other error.
func Reason(err error) string {
	var ruleErr *RuleError
	if As(err, &ruleErr) {
		return ruleErr.Reason()
	}
	return err.Error()
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
