/*
recompute.go - Forward recompute orchestration

PURPOSE:
  Walks a contract's reports forward from a given month, re-running the
  monthly calculator for every month whose closing balance could have
  changed. Each month's result is persisted before the walk advances, so
  later months observe the already-updated earlier balances within the
  same pass.

TRIGGERS (explicit call sites, no event bus):
  OnShiftChanged     - a shift was created, updated or deleted; recompute
                       from the shift's month
  OnContractCreated  - backfill the ledger, then recompute from the
                       contract's start month
  OnContractChanged  - initial carry-over or start date changed;
                       recompute from the start month
  OnMonthRollover    - the periodic job extending the ledger by one
                       report per active contract

CONCURRENCY:
  A single contract's recompute pass is strictly sequential by month.
  Passes for the same contract are mutually exclusive: the per-contract
  lock is acquired non-blocking, and contention surfaces as
  ConcurrentMutationError for the caller to retry with backoff. Distinct
  contracts recompute in parallel without coordination.

FAILURE SEMANTICS:
  A month expected by the walk without a report is a ledger invariant
  violation: the pass fails with MissingReportError and must not
  silently skip months.
*/
package worktime

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Orchestrator drives forward re-evaluation of a contract's reports.
type Orchestrator struct {
	Contracts ContractStore
	Shifts    ShiftStore
	Reports   ReportStore

	// Now is the clock; defaults to time.Now. Injected in tests.
	Now func() time.Time

	mu    sync.Mutex
	locks map[ContractID]*sync.Mutex
}

// NewOrchestrator wires an orchestrator over a combined store.
func NewOrchestrator(store Store) *Orchestrator {
	return &Orchestrator{
		Contracts: store,
		Shifts:    store,
		Reports:   store,
		Now:       time.Now,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// lockContract acquires the contract's recompute lock without blocking.
// The returned release func must be called exactly once.
func (o *Orchestrator) lockContract(id ContractID) (func(), error) {
	o.mu.Lock()
	if o.locks == nil {
		o.locks = make(map[ContractID]*sync.Mutex)
	}
	lock, ok := o.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[id] = lock
	}
	o.mu.Unlock()

	if !lock.TryLock() {
		return nil, &ConcurrentMutationError{ContractID: id}
	}
	return lock.Unlock, nil
}

// Recompute re-runs the monthly calculator for every report of the
// contract with month >= from, in ascending order. The previous month's
// stored balance feeds each step; the contract's initial carry-over
// feeds the start month.
func (o *Orchestrator) Recompute(ctx context.Context, contractID ContractID, from Month) error {
	release, err := o.lockContract(contractID)
	if err != nil {
		return err
	}
	defer release()

	return o.recomputeLocked(ctx, contractID, from)
}

func (o *Orchestrator) recomputeLocked(ctx context.Context, contractID ContractID, from Month) error {
	contract, err := o.Contracts.GetContract(ctx, contractID)
	if err != nil {
		return err
	}

	if from.Before(contract.StartMonth()) {
		from = contract.StartMonth()
	}
	last := MonthOf(o.now())
	if contract.EndMonth().Before(last) {
		last = contract.EndMonth()
	}

	calc := &MonthlyCalculator{Shifts: o.Shifts, Reports: o.Reports}

	for month := from; !month.After(last); month = month.Next() {
		previous, err := o.previousClosing(ctx, contract, month)
		if err != nil {
			return err
		}
		if _, err := calc.ComputeMonth(ctx, contract, month, previous); err != nil {
			return err
		}
	}
	return nil
}

// previousClosing fetches the immediately preceding report's stored
// balance, or the contract's initial carry-over if there is none.
func (o *Orchestrator) previousClosing(ctx context.Context, contract Contract, month Month) (Minutes, error) {
	if month.Equal(contract.StartMonth()) {
		return contract.InitialCarryover, nil
	}
	prev, err := o.Reports.GetReport(ctx, contract.ID, month.Prev())
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return 0, &MissingReportError{ContractID: contract.ID, Month: month.Prev()}
		}
		return 0, err
	}
	return prev.Worktime, nil
}

// =============================================================================
// TRIGGER HOOKS
// =============================================================================

// OnShiftChanged is invoked after a shift was created, updated or
// deleted. It bumps the contract's last-used timestamp and recomputes
// from the shift's month.
func (o *Orchestrator) OnShiftChanged(ctx context.Context, shift Shift) error {
	if err := o.Contracts.TouchContract(ctx, shift.ContractID, o.now()); err != nil {
		return err
	}
	return o.Recompute(ctx, shift.ContractID, shift.Month())
}

// OnContractCreated backfills the contract's ledger from its start month
// through today and recomputes the whole chain.
func (o *Orchestrator) OnContractCreated(ctx context.Context, contract Contract) error {
	release, err := o.lockContract(contract.ID)
	if err != nil {
		return err
	}
	defer release()

	ledger := &ReportLedger{Reports: o.Reports}
	if err := ledger.Backfill(ctx, contract, o.now()); err != nil {
		return err
	}
	return o.recomputeLocked(ctx, contract.ID, contract.StartMonth())
}

// OnContractChanged is invoked when a contract's initial carry-over or
// start date changed. The ledger is re-backfilled (a moved start date
// may open earlier months) and the chain recomputed from the start.
func (o *Orchestrator) OnContractChanged(ctx context.Context, contract Contract) error {
	release, err := o.lockContract(contract.ID)
	if err != nil {
		return err
	}
	defer release()

	ledger := &ReportLedger{Reports: o.Reports}
	if err := ledger.Backfill(ctx, contract, o.now()); err != nil {
		return err
	}
	return o.recomputeLocked(ctx, contract.ID, contract.StartMonth())
}

// OnMonthRollover extends the ledger of every contract active today by
// the new month's report. Contracts whose lock is contended are
// reported; the remaining contracts are still processed.
func (o *Orchestrator) OnMonthRollover(ctx context.Context, today time.Time) error {
	contracts, err := o.Contracts.ActiveContracts(ctx, today)
	if err != nil {
		return err
	}

	ledger := &ReportLedger{Reports: o.Reports}

	var firstErr error
	for _, contract := range contracts {
		release, err := o.lockContract(contract.ID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		err = ledger.Extend(ctx, contract, today)
		release()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
