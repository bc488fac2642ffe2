package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDivisionByZero is returned by relative comparisons against a zero baseline.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrReverted marks a transaction that was mined with a failed status.
	ErrReverted = errors.New("transaction reverted")
)

// DeploymentError reports a variant that could not be located or deployed.
type DeploymentError struct {
	Variant string
	Err     error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deploy %s: %v", e.Variant, e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }

// TrialExecutionError reports a mint that was rejected or reverted mid-run.
type TrialExecutionError struct {
	Variant    string
	TrialIndex uint64
	Err        error
}

func (e *TrialExecutionError) Error() string {
	return fmt.Sprintf("trial %d on %s: %v", e.TrialIndex, e.Variant, e.Err)
}

func (e *TrialExecutionError) Unwrap() error { return e.Err }

// InvalidMetricError reports malformed gas or pricing input.
type InvalidMetricError struct {
	Field string
	Value string
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("invalid metric %s: %s", e.Field, e.Value)
}

// ConfirmationTimeoutError reports a transaction that was not mined in time.
type ConfirmationTimeoutError struct {
	TxHash  string
	Timeout time.Duration
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed within %s", e.TxHash, e.Timeout)
}
