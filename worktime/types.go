/*
Package worktime provides the core worktime aggregation and carry-over
ledger engine.

PURPOSE:
  This package tracks employee work shifts against contracts and computes
  monthly timesheet reports: per-day net worked minutes (after statutory
  break deductions) and a running balance carried forward month to month.

KEY CONCEPTS IN THIS FILE (types.go):
  - Minutes:  Exact integer minute count (all arithmetic is integral)
  - Month:    A (year, month) pair, the ledger's ordering key
  - Contract: One employment agreement with a monthly debit worktime
  - Shift:    One block of worked time (or absence) on a single day
  - Report:   The stored closing balance for one (contract, month)

DESIGN PRINCIPLES:
  1. Exactness: Minutes are int64 - no floating point anywhere in the
     balance chain, so long recompute chains never drift.
  2. Sequencing: Reports are totally ordered by Month; month N's balance
     depends only on month N-1's stored balance.
  3. Purity: Calculation types in breaks.go/daily.go/monthly.go have no
     side effects; persistence goes through the store interfaces.

SEE ALSO:
  - breaks.go:    Statutory break rule evaluator
  - daily.go:     Per-day aggregation of a month's shifts
  - monthly.go:   Carry-over and monthly balance calculation
  - ledger.go:    Report creation and extension invariants
  - recompute.go: Forward recompute orchestration
*/
package worktime

import (
	"fmt"
	"time"
)

// =============================================================================
// MINUTES - Exact integer worktime amounts
// =============================================================================

// Minutes is a signed duration in whole minutes.
// Positive values are overtime/credit, negative values are undertime/debt.
type Minutes int64

// CarryoverCap is the policy ceiling on accumulated overtime: carry-over
// from any prior month is capped at 200 hours before being applied.
const CarryoverCap Minutes = 200 * 60

func (m Minutes) Duration() time.Duration { return time.Duration(m) * time.Minute }

func (m Minutes) Abs() Minutes {
	if m < 0 {
		return -m
	}
	return m
}

func MinMinutes(a, b Minutes) Minutes {
	if a < b {
		return a
	}
	return b
}

func MaxMinutes(a, b Minutes) Minutes {
	if a > b {
		return a
	}
	return b
}

// MinutesBetween returns the whole minutes from start to stop.
func MinutesBetween(start, stop time.Time) Minutes {
	return Minutes(stop.Sub(start) / time.Minute)
}

// String renders a signed hh:mm value, e.g. "-12:30" or "41:00".
func (m Minutes) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
	}
	v := m.Abs()
	return fmt.Sprintf("%s%02d:%02d", sign, v/60, v%60)
}

// =============================================================================
// MONTH - Ledger ordering key, normalized to day 1
// =============================================================================

// Month identifies one calendar month. It is the unique key of a Report
// together with the contract ID, and the unit the recompute walk advances in.
type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year int, month time.Month) Month { return Month{Year: year, Month: month} }

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month { return Month{Year: t.Year(), Month: t.Month()} }

// Start returns the first instant of the month (day 1, 00:00 UTC).
// This is the normalized form reports are persisted under.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month at 00:00 UTC.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

func (m Month) Next() Month { return MonthOf(m.Start().AddDate(0, 1, 0)) }
func (m Month) Prev() Month { return MonthOf(m.Start().AddDate(0, -1, 0)) }

func (m Month) Before(o Month) bool {
	return m.Year < o.Year || (m.Year == o.Year && m.Month < o.Month)
}

func (m Month) After(o Month) bool { return o.Before(m) }
func (m Month) Equal(o Month) bool { return m.Year == o.Year && m.Month == o.Month }

// Compare returns -1, 0 or +1 ordering m against o.
func (m Month) Compare(o Month) int {
	switch {
	case m.Before(o):
		return -1
	case m.After(o):
		return 1
	default:
		return 0
	}
}

// Contains reports whether t falls inside this calendar month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m Month) String() string { return m.Start().Format("2006-01") }

// ParseMonth parses "2006-01" into a Month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ContractID string
type ShiftID string
type ReportID string
type UserID string

// =============================================================================
// CONTRACT - One employment agreement
// =============================================================================

// Contract represents one employment agreement. StartDate must align to the
// 1st or 15th of a month, EndDate to the 14th or the last day; both are
// inclusive day-granularity dates in UTC.
type Contract struct {
	ID     ContractID
	UserID UserID
	Name   string

	// DebitMinutes is the contractually required worktime per month.
	DebitMinutes Minutes

	StartDate time.Time
	EndDate   time.Time

	// InitialCarryover seeds the first report. It may be non-zero only when
	// the contract already started before it was created.
	InitialCarryover Minutes

	// LastUsed is bumped whenever one of the contract's shifts changes.
	LastUsed  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartMonth returns the month of the contract's start date.
func (c Contract) StartMonth() Month { return MonthOf(c.StartDate) }

// EndMonth returns the month of the contract's end date.
func (c Contract) EndMonth() Month { return MonthOf(c.EndDate) }

// ActiveAt reports whether the day of t lies within [StartDate, EndDate].
func (c Contract) ActiveAt(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(c.StartDate) && !day.After(c.EndDate)
}

// =============================================================================
// SHIFT - One block of worked time or absence on a single calendar day
// =============================================================================

type ShiftType string

const (
	ShiftWorked      ShiftType = "st"  // standard worked shift
	ShiftSick        ShiftType = "sk"  // sick leave
	ShiftVacation    ShiftType = "vn"  // vacation
	ShiftBankHoliday ShiftType = "bh"  // bank holiday
)

// ValidShiftType reports whether t is one of the known shift types.
func ValidShiftType(t ShiftType) bool {
	switch t {
	case ShiftWorked, ShiftSick, ShiftVacation, ShiftBankHoliday:
		return true
	}
	return false
}

// Shift represents one block of time on exactly one calendar day.
// Started and Stopped must share a date; Stopped > Started.
type Shift struct {
	ID         ShiftID
	ContractID ContractID
	UserID     UserID

	Started time.Time
	Stopped time.Time

	Type ShiftType
	Note string

	// Tags is an unordered set of free-text labels.
	Tags []string

	// Reviewed marks the shift as actually worked and locked into
	// aggregation. Unreviewed shifts are planned (future) and ignored
	// by the daily aggregator.
	Reviewed bool

	// Exported freezes the shift: once a month was exported, no shift in
	// that month may be created, edited or deleted.
	Exported bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Duration returns the shift's raw length in whole minutes.
func (s Shift) Duration() Minutes { return MinutesBetween(s.Started, s.Stopped) }

// Date returns the shift's calendar day at 00:00 UTC.
func (s Shift) Date() time.Time {
	return time.Date(s.Started.Year(), s.Started.Month(), s.Started.Day(), 0, 0, 0, 0, time.UTC)
}

// Month returns the month the shift's start falls in.
func (s Shift) Month() Month { return MonthOf(s.Started) }

// =============================================================================
// REPORT - Stored closing balance for one (contract, month)
// =============================================================================

// Report holds the closing net-worktime balance of one contract month.
// Worktime already embeds the carry-over from the preceding report; the
// debit comparison happens at presentation time, never in the ledger.
type Report struct {
	ID         ReportID
	ContractID ContractID
	UserID     UserID

	Month    Month
	Worktime Minutes

	CreatedAt time.Time
	UpdatedAt time.Time
}
