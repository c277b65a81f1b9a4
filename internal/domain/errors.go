// Package domain defines core types, interfaces, and errors for the text-to-SQL pipeline.
package domain

import (
	"fmt"
	"time"
)

// SafetyReason identifies why a candidate statement was rejected by the safety gate.
type SafetyReason string

const (
	SafetyEmptyInput         SafetyReason = "empty_input"
	SafetyMultipleStatements SafetyReason = "multiple_statements"
	SafetyParseError         SafetyReason = "parse_error"
	SafetyNotReadOnly        SafetyReason = "not_read_only"
	SafetyEmptyStatement     SafetyReason = "empty_statement"
)

// InputTooLongError indicates the question exceeded the configured character bound.
type InputTooLongError struct {
	Length int
	Max    int
}

func (e *InputTooLongError) Error() string {
	return fmt.Sprintf("question is %d characters, maximum is %d", e.Length, e.Max)
}

// RateLimitedError indicates the client was denied by the admission gate.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %.0f seconds", e.RetryAfter.Seconds())
}

// GenerationError indicates the text-generation backend failed or timed out.
type GenerationError struct {
	Provider string
	Message  string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// SafetyError indicates the candidate SQL was rejected by the validator.
type SafetyError struct {
	Reason  SafetyReason
	Message string
}

func (e *SafetyError) Error() string { return e.Message }

// ExecutionError indicates the database rejected or failed the validated query.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string { return e.Message }

// NotFoundError indicates a requested record does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ErrInputTooLong creates an InputTooLongError for the given lengths.
func ErrInputTooLong(length, max int) *InputTooLongError {
	return &InputTooLongError{Length: length, Max: max}
}

// ErrRateLimited creates a RateLimitedError with the given retry-after delay.
func ErrRateLimited(retryAfter time.Duration) *RateLimitedError {
	return &RateLimitedError{RetryAfter: retryAfter}
}

// ErrGeneration creates a GenerationError with a formatted message.
func ErrGeneration(provider, format string, args ...any) *GenerationError {
	return &GenerationError{Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// ErrSafety creates a SafetyError with a formatted message.
func ErrSafety(reason SafetyReason, format string, args ...any) *SafetyError {
	return &SafetyError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ErrExecution creates an ExecutionError with a formatted message.
func ErrExecution(format string, args ...any) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...)}
}
