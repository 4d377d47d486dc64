/*
daily.go - Per-day aggregation of a month's shifts

PURPOSE:
  Folds a month's reviewed shifts into one summary per calendar day:
  raw worked minutes, first-start/last-stop span, the break shortfall
  from breaks.go, and the resulting net minutes.

NOTE ON GROUPING:
  The grouping + reduction happens in memory over the month's shift
  list. Shifts are not assumed contiguous or non-overlapping; shifts
  that overlap on the same day sum their raw durations without
  deduplication.

This file is pure: callers load the shifts (ShiftStore) and pass them in.
*/
package worktime

import (
	"sort"
	"time"
)

// DaySummary is the aggregation result for one calendar day with at
// least one reviewed shift.
type DaySummary struct {
	Date time.Time // day at 00:00 UTC

	RawWorked  Minutes
	FirstStart time.Time
	LastStop   time.Time

	// Elapsed is LastStop - FirstStart, the day's span.
	Elapsed Minutes

	// MissingBreak is the statutory break shortfall deducted from RawWorked.
	MissingBreak Minutes

	// Net = RawWorked - MissingBreak.
	Net Minutes
}

// AggregateDays groups reviewed shifts by calendar date and computes one
// DaySummary per distinct day, sorted ascending by date. Unreviewed
// shifts are planned and excluded from aggregation.
func AggregateDays(shifts []Shift) []DaySummary {
	byDay := make(map[time.Time][]Shift)
	for _, s := range shifts {
		if !s.Reviewed {
			continue
		}
		day := s.Date()
		byDay[day] = append(byDay[day], s)
	}

	summaries := make([]DaySummary, 0, len(byDay))
	for day, dayShifts := range byDay {
		summaries = append(summaries, summarizeDay(day, dayShifts))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.Before(summaries[j].Date)
	})
	return summaries
}

// MonthNet sums the net minutes of every day's summary.
func MonthNet(days []DaySummary) Minutes {
	var total Minutes
	for _, d := range days {
		total += d.Net
	}
	return total
}

func summarizeDay(day time.Time, shifts []Shift) DaySummary {
	sum := DaySummary{
		Date:       day,
		FirstStart: shifts[0].Started,
		LastStop:   shifts[0].Stopped,
	}

	for _, s := range shifts {
		sum.RawWorked += s.Duration()
		if s.Started.Before(sum.FirstStart) {
			sum.FirstStart = s.Started
		}
		if s.Stopped.After(sum.LastStop) {
			sum.LastStop = s.Stopped
		}
	}

	sum.Elapsed = MinutesBetween(sum.FirstStart, sum.LastStop)
	sum.MissingBreak = MissingBreak(sum.RawWorked, sum.Elapsed)
	sum.Net = sum.RawWorked - sum.MissingBreak
	return sum
}
