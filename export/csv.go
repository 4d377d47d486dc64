/*
Package export renders monthly timesheets as CSV.

PURPOSE:
  Produces the externally delivered timesheet for one contract month:
  one row per worked day (span, raw worked time, credited and deducted
  break minutes, net time) followed by the month's ledger summary. This
  is presentation territory - the debit comparison the ledger never
  performs happens here.

PRECISION:
  Durations are rendered both as exact minute counts and as decimal
  hours. Decimal hours use shopspring/decimal so 450 minutes is "7.5"
  and stays "7.5" - no binary floating point on the way out.
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/timeclerk/worktime-engine/worktime"
)

var sixty = decimal.NewFromInt(60)

// DecimalHours converts whole minutes to exact decimal hours.
func DecimalHours(m worktime.Minutes) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(sixty).Round(2)
}

// WriteTimesheet writes the CSV timesheet for one contract month.
func WriteTimesheet(w io.Writer, ts worktime.Timesheet) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "first_start", "last_stop", "worked_minutes",
		"break_deducted_minutes", "net_minutes", "net_hours"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, day := range ts.Days {
		row := []string{
			day.Date.Format("2006-01-02"),
			day.FirstStart.Format("15:04"),
			day.LastStop.Format("15:04"),
			fmt.Sprintf("%d", int64(day.RawWorked)),
			fmt.Sprintf("%d", int64(day.MissingBreak)),
			fmt.Sprintf("%d", int64(day.Net)),
			DecimalHours(day.Net).String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	summary := [][]string{
		{"", "", "", "", "", "", ""},
		{"month", ts.Month.String(), "", "", "", "", ""},
		{"carry_in", "", "", "", "", fmt.Sprintf("%d", int64(ts.CarryIn)), DecimalHours(ts.CarryIn).String()},
		{"month_net", "", "", "", "", fmt.Sprintf("%d", int64(ts.MonthNet)), DecimalHours(ts.MonthNet).String()},
		{"balance", "", "", "", "", fmt.Sprintf("%d", int64(ts.Worktime)), DecimalHours(ts.Worktime).String()},
		{"debit", "", "", "", "", fmt.Sprintf("%d", int64(ts.Debit)), DecimalHours(ts.Debit).String()},
		{"balance_vs_debit", "", "", "", "", fmt.Sprintf("%d", int64(ts.DebitDelta)), DecimalHours(ts.DebitDelta).String()},
	}
	for _, row := range summary {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns the canonical attachment name for a timesheet.
func Filename(contract worktime.Contract, month worktime.Month) string {
	return fmt.Sprintf("timesheet_%s_%s.csv", contract.ID, month)
}
