package codegen

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyInput         = errors.New("no values to generate")
	ErrAllRejected        = errors.New("every value was rejected by input validation")
	ErrBatchTooLarge      = errors.New("batch too large")
	ErrInvalidDimension   = errors.New("invalid dimension")
	ErrInvalidColor       = errors.New("invalid color")
	ErrBackendUnavailable = errors.New("no linear barcode backend could render the value")
	ErrVectorUnsupported  = errors.New("vector output is only available for matrix codes")

	// errBackendMissing marks a backend that is not part of the running build or config.
	errBackendMissing = errors.New("backend not available")
)

// BatchTooLargeError reports a batch above the configured item limit.
type BatchTooLargeError struct {
	Count int
	Limit int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch too large: %d values (limit %d)", e.Count, e.Limit)
}

func (e *BatchTooLargeError) Unwrap() error { return ErrBatchTooLarge }

// InvalidDimensionError reports a size that is not positive or above its ceiling.
type InvalidDimensionError struct {
	Field string
	Value float64
	Max   float64
}

func (e *InvalidDimensionError) Error() string {
	if e.Value <= 0 {
		return fmt.Sprintf("invalid dimension: %s must be greater than zero (got %g cm)", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid dimension: %s must be at most %g cm (got %g cm)", e.Field, e.Max, e.Value)
}

func (e *InvalidDimensionError) Unwrap() error { return ErrInvalidDimension }

// FailureReason classifies why a linear backend did not produce a code.
type FailureReason string

const (
	ReasonUnavailable  FailureReason = "unavailable"
	ReasonEncodeFailed FailureReason = "encode-failed"
)

// BackendFailure is one attempt in the linear fallback chain.
type BackendFailure struct {
	Backend string
	Reason  FailureReason
	Err     error
}

// BackendUnavailableError is returned when every linear backend was skipped or failed.
type BackendUnavailableError struct {
	Attempts []BackendFailure
	Hint     string
}

func (e *BackendUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s (%s): %v", a.Backend, a.Reason, a.Err))
	}
	msg := ErrBackendUnavailable.Error()
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	}
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *BackendUnavailableError) Unwrap() error { return ErrBackendUnavailable }
