/*
ledger.go - Report ledger creation and extension

PURPOSE:
  Owns the ledger's structural invariant: for every contract there is
  exactly one report per month, in strictly increasing month order with
  no gaps between the contract's start month and the current month, and
  none past the contract's end month.

TRANSITIONS:
  Backfill - on contract creation, synthesize one report per month from
             the start month through today. The first is seeded with the
             contract's initial carry-over, the rest with zero. The
             caller (OnContractCreated) immediately recomputes from the
             start month, replacing the seeds with real balances.
  Extend   - at the start of each calendar month, create exactly one new
             report for every contract active today, seeded with
             previousReport.Worktime - DebitMinutes. The seed stands
             until the first recompute of that month.

Reports stop being created once the month is past the contract's end date.
*/
package worktime

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReportLedger maintains the per-contract report sequence.
type ReportLedger struct {
	Reports ReportStore
}

// Backfill creates the contract's reports from its start month through
// the month of today (clipped at the contract's end month). Existing
// reports are left untouched, so Backfill is safe to re-run.
func (l *ReportLedger) Backfill(ctx context.Context, contract Contract, today time.Time) error {
	last := MonthOf(today)
	if contract.EndMonth().Before(last) {
		last = contract.EndMonth()
	}

	for month := contract.StartMonth(); !month.After(last); month = month.Next() {
		_, err := l.Reports.GetReport(ctx, contract.ID, month)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrReportNotFound) {
			return err
		}

		seed := Minutes(0)
		if month.Equal(contract.StartMonth()) {
			seed = contract.InitialCarryover
		}
		if err := l.Reports.UpsertReport(ctx, newReport(contract, month, seed, today)); err != nil {
			return err
		}
	}
	return nil
}

// Extend creates the report for the month of today if the contract is
// active and the report does not exist yet. The new report is seeded
// with the previous report's balance minus the contract's debit minutes;
// the seed is replaced by the first recompute touching that month.
func (l *ReportLedger) Extend(ctx context.Context, contract Contract, today time.Time) error {
	month := MonthOf(today)
	if month.After(contract.EndMonth()) || month.Before(contract.StartMonth()) {
		return nil
	}

	if _, err := l.Reports.GetReport(ctx, contract.ID, month); err == nil {
		return nil
	} else if !errors.Is(err, ErrReportNotFound) {
		return err
	}

	var seed Minutes
	if month.Equal(contract.StartMonth()) {
		seed = contract.InitialCarryover
	} else {
		prev, err := l.Reports.GetReport(ctx, contract.ID, month.Prev())
		if err != nil {
			if errors.Is(err, ErrReportNotFound) {
				return &MissingReportError{ContractID: contract.ID, Month: month.Prev()}
			}
			return err
		}
		seed = prev.Worktime - contract.DebitMinutes
	}

	return l.Reports.UpsertReport(ctx, newReport(contract, month, seed, today))
}

func newReport(contract Contract, month Month, worktime Minutes, now time.Time) Report {
	return Report{
		ID:         ReportID(uuid.NewString()),
		ContractID: contract.ID,
		UserID:     contract.UserID,
		Month:      month,
		Worktime:   worktime,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
