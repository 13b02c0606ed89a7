package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes pipeline errors by where they occur and how they are
// recovered.
type ErrorType int

const (
	// ErrorTypeConfig - missing or invalid configuration
	ErrorTypeConfig ErrorType = iota
	// ErrorTypeStrategy - unrecoverable strategy generation failure; fatal
	// to that claim only
	ErrorTypeStrategy
	// ErrorTypeProvider - single search or extraction failure; recovered by
	// dropping the one candidate
	ErrorTypeProvider
	// ErrorTypeEvaluatorParse - structured-output parse failure; recovered
	// by single-item retry, then the keyword-overlap fallback scorer
	ErrorTypeEvaluatorParse
	// ErrorTypeDeadline - stage deadline hit; stage returns partial results
	ErrorTypeDeadline
	// ErrorTypeEmptyPool - consensus produced no evidence; claim gets
	// trust 0 / grade F, never an exception to the caller
	ErrorTypeEmptyPool
	// ErrorTypeInternal - unexpected internal state
	ErrorTypeInternal
)

// Severity represents how critical an error is.
type Severity int

const (
	// SeverityLow - recovered locally, degraded output at most
	SeverityLow Severity = iota
	// SeverityMedium - should surface as a warning on the claim
	SeverityMedium
	// SeverityHigh - aborts the enclosing claim
	SeverityHigh
	// SeverityCritical - aborts the whole request
	SeverityCritical
)

// Error is a structured pipeline error with context.
type Error struct {
	Type     ErrorType
	Severity Severity
	Message  string
	Cause    error
	Context  map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Is matches on error type so callers can use errors.Is against sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal reports whether this error should stop the whole request.
func (e *Error) IsFatal() bool { return e.Severity == SeverityCritical }

// DetailedString returns the error with its context for diagnostics.
func (e *Error) DetailedString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] [%s] %s", severityString(e.Severity), typeString(e.Type), e.Message))
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(" (caused by: %v)", e.Cause))
	}
	for k, v := range e.Context {
		sb.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}
	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeStrategy:
		return "STRATEGY"
	case ErrorTypeProvider:
		return "PROVIDER"
	case ErrorTypeEvaluatorParse:
		return "EVALUATOR_PARSE"
	case ErrorTypeDeadline:
		return "DEADLINE"
	case ErrorTypeEmptyPool:
		return "EMPTY_POOL"
	case ErrorTypeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// New creates a new error with the given type, severity, and message.
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:     errType,
		Severity: severity,
		Message:  message,
		Context:  make(map[string]any),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:     errType,
		Severity: severity,
		Message:  message,
		Cause:    err,
		Context:  make(map[string]any),
	}
}

// Convenience constructors for the pipeline error kinds

// StrategyError creates an unrecoverable strategy generation error.
func StrategyError(message string) *Error {
	return New(ErrorTypeStrategy, SeverityHigh, message)
}

// StrategyErrorf creates a strategy generation error with formatting.
func StrategyErrorf(format string, args ...any) *Error {
	return New(ErrorTypeStrategy, SeverityHigh, fmt.Sprintf(format, args...))
}

// ProviderError wraps a single search/extraction failure.
func ProviderError(err error, message string) *Error {
	return Wrap(err, ErrorTypeProvider, SeverityLow, message)
}

// ProviderErrorf wraps a provider failure with formatting.
func ProviderErrorf(err error, format string, args ...any) *Error {
	return Wrap(err, ErrorTypeProvider, SeverityLow, fmt.Sprintf(format, args...))
}

// ParseError wraps an evaluator structured-output parse failure.
func ParseError(err error, message string) *Error {
	return Wrap(err, ErrorTypeEvaluatorParse, SeverityLow, message)
}

// DeadlineError creates a stage deadline error.
func DeadlineError(stage string) *Error {
	return New(ErrorTypeDeadline, SeverityMedium, "stage deadline exceeded").WithContext("stage", stage)
}

// EmptyPoolError creates an empty evidence pool marker.
func EmptyPoolError(claimID string) *Error {
	return New(ErrorTypeEmptyPool, SeverityMedium, "consensus produced no evidence").WithContext("claim_id", claimID)
}

// ConfigError creates a configuration error.
func ConfigError(message string) *Error {
	return New(ErrorTypeConfig, SeverityCritical, message)
}

// ConfigErrorf creates a configuration error with formatting.
func ConfigErrorf(format string, args ...any) *Error {
	return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}
