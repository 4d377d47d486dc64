/*
errors.go - Centralized error types for the worktime engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify failures with errors.Is/errors.As; the helpers at the
  bottom encode the retry policy.

ERROR CATEGORIES:
  1. Validation errors - malformed contract/shift input; surfaced to the
     caller, never retried
  2. Ledger errors - a report expected by the recompute walk is missing;
     fatal to the current recompute call
  3. Concurrency errors - lock contention on a contract's recompute;
     retried by the caller with backoff, never by the engine itself
  4. Not-found errors - store lookups for absent rows

USAGE:
  if errors.Is(err, worktime.ErrConcurrentMutation) {
      // back off and retry the mutation
  }
  var verr *worktime.ValidationError
  if errors.As(err, &verr) {
      // verr.Field / verr.Code for a structured 400 response
  }
*/
package worktime

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrMissingReport is returned when the recompute walk hits a month
	// whose report does not exist. This means the ledger's creation
	// invariant was violated; the walk must fail rather than skip.
	ErrMissingReport = errors.New("report missing for month")

	// ErrConcurrentMutation is returned when a contract's recompute could
	// not acquire the per-contract lock. Callers retry with backoff.
	ErrConcurrentMutation = errors.New("concurrent recompute on contract")

	// ErrMonthExported is returned when a shift mutation targets a month
	// that was already exported and is therefore frozen.
	ErrMonthExported = errors.New("month already exported")

	ErrContractNotFound = errors.New("contract not found")
	ErrShiftNotFound    = errors.New("shift not found")
	ErrReportNotFound   = errors.New("report not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string // e.g. "start_date", "stopped"
	Code    string // stable machine-readable code, e.g. "not_aligned"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MissingReportError identifies the month the recompute walk expected.
type MissingReportError struct {
	ContractID ContractID
	Month      Month
}

func (e *MissingReportError) Error() string {
	return fmt.Sprintf("contract %s: no report for %s", e.ContractID, e.Month)
}

func (e *MissingReportError) Unwrap() error { return ErrMissingReport }

// ConcurrentMutationError identifies the contract whose lock was contended.
type ConcurrentMutationError struct {
	ContractID ContractID
}

func (e *ConcurrentMutationError) Error() string {
	return fmt.Sprintf("contract %s: recompute already in progress", e.ContractID)
}

func (e *ConcurrentMutationError) Unwrap() error { return ErrConcurrentMutation }

// ExportedMonthError identifies the frozen month a mutation targeted.
type ExportedMonthError struct {
	ContractID ContractID
	Month      Month
}

func (e *ExportedMonthError) Error() string {
	return fmt.Sprintf("contract %s: month %s is exported and frozen", e.ContractID, e.Month)
}

func (e *ExportedMonthError) Unwrap() error { return ErrMonthExported }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentMutation)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrMonthExported)
}

// IsNotFound returns true if the error indicates a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrReportNotFound)
}
