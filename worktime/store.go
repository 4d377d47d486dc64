/*
store.go - Persistence interfaces for contracts, shifts and reports

PURPOSE:
  Defines the interface between the engine and the database. The engine
  only ever reads and writes through these interfaces; concrete
  transport/ORM details live in the implementations.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - worktime/store: in-memory store for tests and development

OWNERSHIP:
  A Contract owns its Shifts and Reports: DeleteContract cascades both.
  Reports are mutated only by the monthly calculator / recompute
  orchestrator, never directly by a user action.
*/
package worktime

import (
	"context"
	"time"
)

// =============================================================================
// SHIFT STORE
// =============================================================================

// ShiftStore persists shifts. ReviewedShiftsForMonth is the aggregation
// hot path: only reviewed shifts whose start falls in the month.
type ShiftStore interface {
	CreateShift(ctx context.Context, s Shift) error
	UpdateShift(ctx context.Context, s Shift) error
	DeleteShift(ctx context.Context, id ShiftID) error

	// GetShift returns ErrShiftNotFound for absent rows.
	GetShift(ctx context.Context, id ShiftID) (Shift, error)

	// ReviewedShiftsForMonth returns the contract's reviewed shifts whose
	// start falls in the given month, ordered by start ascending.
	ReviewedShiftsForMonth(ctx context.Context, contractID ContractID, month Month) ([]Shift, error)

	// ShiftsForContract returns every shift of the contract, ordered by
	// start ascending. Used for contract boundary validation.
	ShiftsForContract(ctx context.Context, contractID ContractID) ([]Shift, error)

	// MonthExported reports whether any shift of the contract in the
	// month carries the exported flag; such a month is frozen.
	MonthExported(ctx context.Context, contractID ContractID, month Month) (bool, error)

	// MarkMonthExported sets the exported flag on every shift of the
	// contract in the month.
	MarkMonthExported(ctx context.Context, contractID ContractID, month Month) error
}

// =============================================================================
// REPORT STORE
// =============================================================================

// ReportStore persists reports, uniquely keyed by (contract, month) with
// the month normalized to day 1.
type ReportStore interface {
	// GetReport returns ErrReportNotFound for absent rows.
	GetReport(ctx context.Context, contractID ContractID, month Month) (Report, error)

	// UpsertReport inserts or replaces the report for its (contract, month).
	UpsertReport(ctx context.Context, r Report) error

	// ReportsFrom returns the contract's reports with month >= from,
	// ordered by month ascending.
	ReportsFrom(ctx context.Context, contractID ContractID, from Month) ([]Report, error)
}

// =============================================================================
// CONTRACT STORE
// =============================================================================

type ContractStore interface {
	CreateContract(ctx context.Context, c Contract) error
	UpdateContract(ctx context.Context, c Contract) error

	// DeleteContract cascades the contract's shifts and reports.
	DeleteContract(ctx context.Context, id ContractID) error

	// GetContract returns ErrContractNotFound for absent rows.
	GetContract(ctx context.Context, id ContractID) (Contract, error)

	// ActiveContracts returns contracts whose [StartDate, EndDate]
	// interval includes the given day. Used by the month rollover.
	ActiveContracts(ctx context.Context, today time.Time) ([]Contract, error)

	// ListContracts returns all contracts, ordered by creation time.
	ListContracts(ctx context.Context) ([]Contract, error)

	// TouchContract bumps the contract's LastUsed timestamp.
	TouchContract(ctx context.Context, id ContractID, at time.Time) error
}

// Store bundles all three interfaces; both concrete stores implement it.
type Store interface {
	ShiftStore
	ReportStore
	ContractStore
}
