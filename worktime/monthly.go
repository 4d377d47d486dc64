/*
monthly.go - Monthly worktime calculation with capped carry-over

PURPOSE:
  Combines a month's aggregated net minutes with the carry-over from the
  previous month into the report's stored balance.

THE MODEL:
  carryIn  = min(previousClosingBalance, 200h)
  worktime = carryIn + monthNet

  The stored worktime never subtracts debit minutes - the debit
  comparison happens at presentation time, not in the ledger. The 200h
  cap applies to the INCOMING balance each month, not the outgoing one;
  a report may store more than 200h, the excess only vanishes when that
  balance is carried into the next month.

IDEMPOTENCE:
  ComputeMonth reads only the month's reviewed shifts and the given
  carry-over; re-running it with unchanged inputs yields the same stored
  balance bit-for-bit (all arithmetic is integral).
*/
package worktime

import "context"

// CarryIn caps the previous month's closing balance before it is applied.
func CarryIn(previousClosing Minutes) Minutes {
	return MinMinutes(previousClosing, CarryoverCap)
}

// MonthlyCalculator computes and persists the stored balance of one
// contract month.
type MonthlyCalculator struct {
	Shifts  ShiftStore
	Reports ReportStore
}

// ComputeMonth recomputes the report's balance from the month's reviewed
// shifts and the previous month's closing balance, persists it, and
// returns the updated report. The report must already exist in the
// ledger (MissingReportError otherwise).
func (mc *MonthlyCalculator) ComputeMonth(ctx context.Context, contract Contract, month Month, previousClosing Minutes) (Report, error) {
	report, err := mc.Reports.GetReport(ctx, contract.ID, month)
	if err != nil {
		if IsNotFound(err) {
			return Report{}, &MissingReportError{ContractID: contract.ID, Month: month}
		}
		return Report{}, err
	}

	shifts, err := mc.Shifts.ReviewedShiftsForMonth(ctx, contract.ID, month)
	if err != nil {
		return Report{}, err
	}

	net := MonthNet(AggregateDays(shifts))
	report.Worktime = CarryIn(previousClosing) + net

	if err := mc.Reports.UpsertReport(ctx, report); err != nil {
		return Report{}, err
	}
	return report, nil
}
