/*
service.go - User-facing mutation surface for contracts and shifts

PURPOSE:
  Bundles validation, persistence and the recompute trigger hooks behind
  the operations the surrounding system (HTTP handlers, schedulers)
  calls. Every shift-mutating operation here explicitly invokes the
  orchestrator - there is no implicit event bus.

FLOW (shift mutation):
  1. Load the owning contract
  2. Reject mutations of exported (frozen) months
  3. Validate the shift against the contract
  4. Persist
  5. Bump the contract's last-used timestamp and recompute from the
     affected month (reviewed shifts only; planned shifts do not enter
     aggregation)

SEE ALSO:
  - validate.go:  the rules applied in step 3
  - recompute.go: the hooks driven in step 5
*/
package worktime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the entry point for user actions on contracts and shifts.
type Service struct {
	store Store
	orch  *Orchestrator
}

// NewService wires a service and its orchestrator over the given store.
func NewService(store Store) *Service {
	return &Service{store: store, orch: NewOrchestrator(store)}
}

// Orchestrator exposes the recompute orchestrator, mainly for callers
// that need to retry a contended recompute themselves.
func (s *Service) Orchestrator() *Orchestrator { return s.orch }

// SetClock injects a deterministic clock (tests).
func (s *Service) SetClock(now func() time.Time) { s.orch.Now = now }

func (s *Service) now() time.Time { return s.orch.now() }

// =============================================================================
// CONTRACT OPERATIONS
// =============================================================================

// CreateContract validates and persists a new contract, then backfills
// and recomputes its report ledger from the start month.
func (s *Service) CreateContract(ctx context.Context, c Contract) (Contract, error) {
	now := s.now()
	if err := ValidateContract(c, now); err != nil {
		return Contract{}, err
	}

	if c.ID == "" {
		c.ID = ContractID(uuid.NewString())
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	c.LastUsed = now

	if err := s.store.CreateContract(ctx, c); err != nil {
		return Contract{}, err
	}
	if err := s.orch.OnContractCreated(ctx, c); err != nil {
		return Contract{}, err
	}
	return c, nil
}

// UpdateContract validates and persists contract changes. Boundary
// changes are rejected if shifts would fall outside the new interval; a
// changed start date or initial carry-over recomputes the whole chain.
func (s *Service) UpdateContract(ctx context.Context, c Contract) (Contract, error) {
	old, err := s.store.GetContract(ctx, c.ID)
	if err != nil {
		return Contract{}, err
	}

	now := s.now()
	if err := ValidateContract(c, old.CreatedAt); err != nil {
		return Contract{}, err
	}

	if !c.StartDate.Equal(old.StartDate) || !c.EndDate.Equal(old.EndDate) {
		shifts, err := s.store.ShiftsForContract(ctx, c.ID)
		if err != nil {
			return Contract{}, err
		}
		if err := ValidateContractBoundaries(c, shifts); err != nil {
			return Contract{}, err
		}
	}

	c.CreatedAt = old.CreatedAt
	c.LastUsed = old.LastUsed
	c.UpdatedAt = now

	if err := s.store.UpdateContract(ctx, c); err != nil {
		return Contract{}, err
	}

	if !c.StartDate.Equal(old.StartDate) || c.InitialCarryover != old.InitialCarryover {
		if err := s.orch.OnContractChanged(ctx, c); err != nil {
			return Contract{}, err
		}
	}
	return c, nil
}

// DeleteContract removes the contract and cascades its shifts and reports.
func (s *Service) DeleteContract(ctx context.Context, id ContractID) error {
	return s.store.DeleteContract(ctx, id)
}

func (s *Service) GetContract(ctx context.Context, id ContractID) (Contract, error) {
	return s.store.GetContract(ctx, id)
}

func (s *Service) ListContracts(ctx context.Context) ([]Contract, error) {
	return s.store.ListContracts(ctx)
}

// =============================================================================
// SHIFT OPERATIONS
// =============================================================================

// CreateShift validates and persists a new shift and recomputes the
// affected months when the shift is reviewed.
func (s *Service) CreateShift(ctx context.Context, sh Shift) (Shift, error) {
	contract, err := s.store.GetContract(ctx, sh.ContractID)
	if err != nil {
		return Shift{}, err
	}

	now := s.now()
	if err := s.rejectExported(ctx, contract.ID, sh.Month()); err != nil {
		return Shift{}, err
	}
	if err := ValidateShift(sh, contract, now); err != nil {
		return Shift{}, err
	}

	if sh.ID == "" {
		sh.ID = ShiftID(uuid.NewString())
	}
	sh.UserID = contract.UserID
	sh.CreatedAt = now
	sh.UpdatedAt = now

	if err := s.store.CreateShift(ctx, sh); err != nil {
		return Shift{}, err
	}

	if sh.Reviewed {
		if err := s.orch.OnShiftChanged(ctx, sh); err != nil {
			return Shift{}, err
		}
	} else if err := s.store.TouchContract(ctx, contract.ID, now); err != nil {
		return Shift{}, err
	}
	return sh, nil
}

// UpdateShift validates and persists shift changes. Both the old and the
// new month are frozen checks; the recompute starts at the earlier of
// the two so a shift moved across a month boundary updates both chains.
func (s *Service) UpdateShift(ctx context.Context, sh Shift) (Shift, error) {
	old, err := s.store.GetShift(ctx, sh.ID)
	if err != nil {
		return Shift{}, err
	}
	contract, err := s.store.GetContract(ctx, old.ContractID)
	if err != nil {
		return Shift{}, err
	}

	now := s.now()
	sh.ContractID = old.ContractID
	sh.UserID = old.UserID

	if err := s.rejectExported(ctx, contract.ID, old.Month()); err != nil {
		return Shift{}, err
	}
	if !old.Month().Equal(sh.Month()) {
		if err := s.rejectExported(ctx, contract.ID, sh.Month()); err != nil {
			return Shift{}, err
		}
	}
	if err := ValidateShift(sh, contract, now); err != nil {
		return Shift{}, err
	}

	sh.CreatedAt = old.CreatedAt
	sh.UpdatedAt = now

	if err := s.store.UpdateShift(ctx, sh); err != nil {
		return Shift{}, err
	}

	if old.Reviewed || sh.Reviewed {
		from := sh.Month()
		if old.Month().Before(from) {
			from = old.Month()
		}
		if err := s.store.TouchContract(ctx, contract.ID, now); err != nil {
			return Shift{}, err
		}
		if err := s.orch.Recompute(ctx, contract.ID, from); err != nil {
			return Shift{}, err
		}
	} else if err := s.store.TouchContract(ctx, contract.ID, now); err != nil {
		return Shift{}, err
	}
	return sh, nil
}

// DeleteShift removes a shift and recomputes from its month when it was
// reviewed.
func (s *Service) DeleteShift(ctx context.Context, id ShiftID) error {
	old, err := s.store.GetShift(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rejectExported(ctx, old.ContractID, old.Month()); err != nil {
		return err
	}
	if err := s.store.DeleteShift(ctx, id); err != nil {
		return err
	}

	if old.Reviewed {
		return s.orch.OnShiftChanged(ctx, old)
	}
	return s.store.TouchContract(ctx, old.ContractID, s.now())
}

func (s *Service) GetShift(ctx context.Context, id ShiftID) (Shift, error) {
	return s.store.GetShift(ctx, id)
}

func (s *Service) rejectExported(ctx context.Context, contractID ContractID, month Month) error {
	exported, err := s.store.MonthExported(ctx, contractID, month)
	if err != nil {
		return err
	}
	if exported {
		return &ExportedMonthError{ContractID: contractID, Month: month}
	}
	return nil
}

// Reports returns the contract's full report sequence in month order.
func (s *Service) Reports(ctx context.Context, contractID ContractID) ([]Report, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return s.store.ReportsFrom(ctx, contractID, contract.StartMonth())
}

// =============================================================================
// TIMESHEET AND EXPORT OPERATIONS
// =============================================================================

// Timesheet is the presentation view of one contract month. This is the
// layer where the debit comparison happens - the ledger itself never
// subtracts debit minutes.
type Timesheet struct {
	Contract Contract
	Month    Month
	Days     []DaySummary

	CarryIn  Minutes // capped balance carried in from the previous month
	MonthNet Minutes // net worked minutes of this month
	Worktime Minutes // stored closing balance (CarryIn + MonthNet)

	Debit      Minutes // the contract's monthly debit worktime
	DebitDelta Minutes // Worktime - Debit, shown to the user
}

// Timesheet assembles the monthly view from the ledger and the month's
// reviewed shifts.
func (s *Service) Timesheet(ctx context.Context, contractID ContractID, month Month) (Timesheet, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return Timesheet{}, err
	}
	report, err := s.store.GetReport(ctx, contractID, month)
	if err != nil {
		return Timesheet{}, err
	}
	shifts, err := s.store.ReviewedShiftsForMonth(ctx, contractID, month)
	if err != nil {
		return Timesheet{}, err
	}
	previous, err := s.orch.previousClosing(ctx, contract, month)
	if err != nil {
		return Timesheet{}, err
	}

	days := AggregateDays(shifts)
	ts := Timesheet{
		Contract: contract,
		Month:    month,
		Days:     days,
		CarryIn:  CarryIn(previous),
		MonthNet: MonthNet(days),
		Worktime: report.Worktime,
		Debit:    contract.DebitMinutes,
	}
	ts.DebitDelta = ts.Worktime - ts.Debit
	return ts, nil
}

// ExportMonth freezes the month: every shift of the contract in the
// month gets the exported flag, after which no shift in that month may
// be created, edited or deleted.
func (s *Service) ExportMonth(ctx context.Context, contractID ContractID, month Month) (Timesheet, error) {
	ts, err := s.Timesheet(ctx, contractID, month)
	if err != nil {
		return Timesheet{}, err
	}
	if err := s.store.MarkMonthExported(ctx, contractID, month); err != nil {
		return Timesheet{}, err
	}
	return ts, nil
}

// RolloverMonth extends every active contract's ledger; invoked by the
// periodic scheduler at the start of each calendar month.
func (s *Service) RolloverMonth(ctx context.Context, today time.Time) error {
	return s.orch.OnMonthRollover(ctx, today)
}
