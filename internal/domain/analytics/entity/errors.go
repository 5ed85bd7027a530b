package entity

import (
	"errors"
	"fmt"
)

// Domain errors for analytics
var (
	// ErrInvalidMetrics is matched by every *InvalidMetricsError
	ErrInvalidMetrics = errors.New("invalid post metrics")

	// ErrComputation is matched by every *ComputationError
	ErrComputation = errors.New("analytics computation failed")

	// Repository errors
	ErrPostNotFound  = errors.New("post not found")
	ErrDuplicatePost = errors.New("post with this ID already exists")
)

// InvalidMetricsError names the post and field that violated the contract
type InvalidMetricsError struct {
	PostID string
	Field  string
	Reason string
}

func (e *InvalidMetricsError) Error() string {
	if e.PostID == "" {
		return fmt.Sprintf("invalid post metrics: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid post metrics for %q: %s %s", e.PostID, e.Field, e.Reason)
}

func (e *InvalidMetricsError) Is(target error) bool {
	return target == ErrInvalidMetrics
}

// ComputationError wraps an unexpected failure inside the engine
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("analytics computation failed in %s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}
