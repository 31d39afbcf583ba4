package contracts

import (
	"context"
	"errors"
)

// ErrorKind classifies per-ticker failures in skip records
type ErrorKind string

const (
	KindFetchFailed          ErrorKind = "FETCH_FAILED"
	KindInsufficientHistory  ErrorKind = "INSUFFICIENT_HISTORY"
	KindIndicatorComputation ErrorKind = "INDICATOR_COMPUTATION_ERROR"
	KindCancelled            ErrorKind = "CANCELLED"
)

// Sentinel errors. Producers wrap them with fmt.Errorf("...: %w", ErrX).
var (
	ErrFetchFailed          = errors.New("fetch failed")
	ErrInsufficientHistory  = errors.New("insufficient history")
	ErrIndicatorComputation = errors.New("indicator computation error")
	ErrNotFound             = errors.New("not found")
)

// KindOf classifies err. Anything unrecognised is treated as a fetch failure
// because it originated outside the engine.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		return KindInsufficientHistory
	case errors.Is(err, ErrIndicatorComputation):
		return KindIndicatorComputation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindFetchFailed
	}
}
