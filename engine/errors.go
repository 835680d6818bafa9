/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify with errors.Is / the helpers at the bottom.

ERROR CATEGORIES:
  1. Configuration errors - policy missing/disabled/malformed; the
     affected evaluation is skipped, never fatal to a batch run.
  2. Validation errors - policy update violates invariants; rejected
     synchronously and surfaced to the caller.
  3. Apply errors - a record mutation failed (already cancelled by a
     concurrent actor, not found); logged, the employee's remaining
     evaluation continues, the record is left for the next run to retry.

  Notification failures are not represented here: they are swallowed
  after logging at the call site and never affect a penalty decision.

SEE ALSO:
  - applicator.go: Produces ApplyError
  - policy.go: Produces ValidationError
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPolicyNotConfigured is returned when the policy singleton does
	// not exist or is malformed.
	ErrPolicyNotConfigured = errors.New("attendance policy not configured")

	// ErrPolicyDisabled is returned when an operation requires the late
	// penalty to be enabled.
	ErrPolicyDisabled = errors.New("late penalty is disabled")

	// ErrRecordNotFound is returned when a referenced attendance record
	// doesn't exist.
	ErrRecordNotFound = errors.New("attendance record not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRecordCancelled is returned when mutating a record that is no
	// longer the current version. Expected under concurrent modification;
	// the next batch run retries.
	ErrRecordCancelled = errors.New("record version already cancelled")

	// ErrRecordNotSubmitted is returned when a versioned mutation targets
	// a record that was never submitted.
	ErrRecordNotSubmitted = errors.New("record is not submitted")

	// ErrInvalidWindow is returned when a window is malformed (end before start).
	ErrInvalidWindow = errors.New("invalid window: end before start")

	// ErrDuplicateActive is returned when submitting a record would leave
	// two active versions for the same employee and day.
	ErrDuplicateActive = errors.New("an active record already exists for this day")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a policy configuration update that violates
// the settings invariants. Always surfaced loudly to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid policy settings: %s %s", e.Field, e.Reason)
}

// ApplyError reports a failed penalty mutation on a specific record.
type ApplyError struct {
	RecordID RecordID
	Op       string // "apply" or "reverse"
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("penalty %s failed for record %s: %v", e.Op, e.RecordID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfiguration returns true for policy-configuration failures that
// skip evaluation without aborting a batch.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrPolicyNotConfigured) || errors.Is(err, ErrPolicyDisabled)
}

// IsValidation returns true if the error is a synchronous settings rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrEmployeeNotFound)
}

// IsRetryable returns true if the mutation might succeed on a later run.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRecordCancelled)
}
