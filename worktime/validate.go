/*
validate.go - Contract and shift input validation

PURPOSE:
  All business validation of user-supplied contracts and shifts. Every
  rejection is a *ValidationError with a stable code, surfaced to the
  caller and never retried.

CONTRACT RULES:
  - debit minutes strictly positive
  - start date on the 1st or the 15th of a month
  - end date on the 14th or the last day of a month
  - end not before start
  - non-zero initial carry-over only if the contract started in the past
  - boundary changes rejected when existing shifts would fall outside

SHIFT RULES:
  - known type, stop strictly after start, both on the same calendar day
  - both timestamps inside the owning contract's [start, end] interval
  - reviewed shifts must not start in the future, unreviewed shifts must
*/
package worktime

import "time"

// ValidateContract checks a new or updated contract against the
// alignment and carry-over rules. now anchors the "already started" check.
func ValidateContract(c Contract, now time.Time) error {
	if c.DebitMinutes <= 0 {
		return &ValidationError{Field: "debit_minutes", Code: "not_positive",
			Message: "debit worktime must be positive"}
	}

	if d := c.StartDate.Day(); d != 1 && d != 15 {
		return &ValidationError{Field: "start_date", Code: "not_aligned",
			Message: "start date must fall on the 1st or the 15th"}
	}
	if d := c.EndDate.Day(); d != 14 && d != lastDayOfMonth(c.EndDate) {
		return &ValidationError{Field: "end_date", Code: "not_aligned",
			Message: "end date must fall on the 14th or the last day of a month"}
	}
	if c.EndDate.Before(c.StartDate) {
		return &ValidationError{Field: "end_date", Code: "before_start",
			Message: "end date must not precede start date"}
	}

	if c.InitialCarryover != 0 && !c.StartDate.Before(dayOf(now)) {
		return &ValidationError{Field: "initial_carryover", Code: "contract_not_started",
			Message: "initial carry-over requires a contract that already started"}
	}
	return nil
}

// ValidateContractBoundaries rejects a start/end date change when any of
// the contract's existing shifts would fall outside the new interval.
func ValidateContractBoundaries(c Contract, shifts []Shift) error {
	for _, s := range shifts {
		if s.Started.Before(c.StartDate) || s.Stopped.After(endOfDay(c.EndDate)) {
			return &ValidationError{Field: "start_date", Code: "shifts_outside_interval",
				Message: "existing shifts would fall outside the new contract interval"}
		}
	}
	return nil
}

// ValidateShift checks a new or updated shift against its owning contract.
func ValidateShift(s Shift, contract Contract, now time.Time) error {
	if !ValidShiftType(s.Type) {
		return &ValidationError{Field: "type", Code: "unknown_type",
			Message: "unknown shift type"}
	}
	if !s.Stopped.After(s.Started) {
		return &ValidationError{Field: "stopped", Code: "not_after_start",
			Message: "shift must stop after it starts"}
	}
	if !sameDay(s.Started, s.Stopped) {
		return &ValidationError{Field: "stopped", Code: "crosses_midnight",
			Message: "shift must start and stop on the same calendar day"}
	}

	if s.Started.Before(contract.StartDate) || s.Stopped.After(endOfDay(contract.EndDate)) {
		return &ValidationError{Field: "started", Code: "outside_contract",
			Message: "shift must lie within the contract interval"}
	}

	if s.Reviewed && s.Started.After(now) {
		return &ValidationError{Field: "started", Code: "reviewed_in_future",
			Message: "a reviewed shift must not start in the future"}
	}
	if !s.Reviewed && !s.Started.After(now) {
		return &ValidationError{Field: "started", Code: "planned_in_past",
			Message: "a planned shift must start in the future"}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return dayOf(t).AddDate(0, 0, 1)
}

func lastDayOfMonth(t time.Time) int {
	return MonthOf(t).End().Day()
}
