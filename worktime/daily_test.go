package worktime_test

import (
	"testing"
	"time"

	"github.com/timeclerk/worktime-engine/worktime"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// shiftAt builds a reviewed worked shift on the given UTC day.
func shiftAt(day time.Time, startHour, startMin, stopHour, stopMin int) worktime.Shift {
	return worktime.Shift{
		ID:         worktime.ShiftID("sh-" + day.Format("02") + "-" + time.Date(0, 1, 1, startHour, startMin, 0, 0, time.UTC).Format("1504")),
		ContractID: "c-1",
		Started:    time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, time.UTC),
		Stopped:    time.Date(day.Year(), day.Month(), day.Day(), stopHour, stopMin, 0, 0, time.UTC),
		Type:       worktime.ShiftWorked,
		Reviewed:   true,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// DAILY AGGREGATION
// =============================================================================

func TestAggregateDays_GroupsByCalendarDay(t *testing.T) {
	// GIVEN: Shifts on two distinct days, out of order
	// WHEN: Aggregating
	// THEN: One summary per day, sorted ascending by date

	d1 := day(2025, time.March, 3)
	d2 := day(2025, time.March, 4)
	shifts := []worktime.Shift{
		shiftAt(d2, 9, 0, 12, 0),
		shiftAt(d1, 8, 0, 12, 0),
		shiftAt(d1, 13, 0, 17, 0),
	}

	days := worktime.AggregateDays(shifts)

	if len(days) != 2 {
		t.Fatalf("expected 2 day summaries, got %d", len(days))
	}
	if !days[0].Date.Equal(d1) || !days[1].Date.Equal(d2) {
		t.Errorf("summaries not sorted by date: %v, %v", days[0].Date, days[1].Date)
	}
	if days[0].RawWorked != 480 {
		t.Errorf("day 1 raw worked = %d, want 480", days[0].RawWorked)
	}
	if days[1].RawWorked != 180 {
		t.Errorf("day 2 raw worked = %d, want 180", days[1].RawWorked)
	}
}

func TestAggregateDays_SpanAndBreakDeduction(t *testing.T) {
	// GIVEN: 8h-12h and 13h-17h shifts on one day (8h worked, 9h span)
	// WHEN: Aggregating
	// THEN: The 60min midday gap covers the required 30min, net stays 480

	d := day(2025, time.March, 3)
	days := worktime.AggregateDays([]worktime.Shift{
		shiftAt(d, 8, 0, 12, 0),
		shiftAt(d, 13, 0, 17, 0),
	})

	if len(days) != 1 {
		t.Fatalf("expected 1 day summary, got %d", len(days))
	}
	sum := days[0]
	if sum.Elapsed != 540 {
		t.Errorf("elapsed = %d, want 540", sum.Elapsed)
	}
	if sum.MissingBreak != 0 {
		t.Errorf("missing break = %d, want 0", sum.MissingBreak)
	}
	if sum.Net != 480 {
		t.Errorf("net = %d, want 480", sum.Net)
	}
}

func TestAggregateDays_ContinuousDayDeductsBreak(t *testing.T) {
	// GIVEN: One continuous 8h shift
	// WHEN: Aggregating
	// THEN: The full 30min statutory break is deducted from the net

	d := day(2025, time.March, 3)
	days := worktime.AggregateDays([]worktime.Shift{shiftAt(d, 9, 0, 17, 0)})

	if len(days) != 1 {
		t.Fatalf("expected 1 day summary, got %d", len(days))
	}
	if days[0].MissingBreak != 30 {
		t.Errorf("missing break = %d, want 30", days[0].MissingBreak)
	}
	if days[0].Net != 450 {
		t.Errorf("net = %d, want 450", days[0].Net)
	}
}

func TestAggregateDays_OverlappingShiftsSumWithoutDeduplication(t *testing.T) {
	// GIVEN: Two overlapping shifts 9h-13h and 12h-16h on the same day
	// WHEN: Aggregating
	// THEN: Raw worked is the plain sum of durations, not the merged span

	d := day(2025, time.March, 3)
	days := worktime.AggregateDays([]worktime.Shift{
		shiftAt(d, 9, 0, 13, 0),
		shiftAt(d, 12, 0, 16, 0),
	})

	if len(days) != 1 {
		t.Fatalf("expected 1 day summary, got %d", len(days))
	}
	if days[0].RawWorked != 480 {
		t.Errorf("raw worked = %d, want 480 (sum of both shifts)", days[0].RawWorked)
	}
	if days[0].Elapsed != 420 {
		t.Errorf("elapsed = %d, want 420 (merged span)", days[0].Elapsed)
	}
	// Worked exceeds the span by 60, so the shortfall is 30 + 60.
	if days[0].MissingBreak != 90 {
		t.Errorf("missing break = %d, want 90", days[0].MissingBreak)
	}
	if days[0].Net != 390 {
		t.Errorf("net = %d, want 390", days[0].Net)
	}
}

func TestAggregateDays_IgnoresUnreviewedShifts(t *testing.T) {
	// GIVEN: A reviewed and an unreviewed (planned) shift on the same day
	// WHEN: Aggregating
	// THEN: Only the reviewed shift contributes

	d := day(2025, time.March, 3)
	planned := shiftAt(d, 13, 0, 17, 0)
	planned.Reviewed = false

	days := worktime.AggregateDays([]worktime.Shift{
		shiftAt(d, 8, 0, 12, 0),
		planned,
	})

	if len(days) != 1 {
		t.Fatalf("expected 1 day summary, got %d", len(days))
	}
	if days[0].RawWorked != 240 {
		t.Errorf("raw worked = %d, want 240", days[0].RawWorked)
	}
}

func TestAggregateDays_Empty(t *testing.T) {
	// GIVEN: No shifts at all
	// WHEN: Aggregating
	// THEN: No day summaries and a zero month net

	days := worktime.AggregateDays(nil)
	if len(days) != 0 {
		t.Errorf("expected no day summaries, got %d", len(days))
	}
	if net := worktime.MonthNet(days); net != 0 {
		t.Errorf("month net = %d, want 0", net)
	}
}

func TestMonthNet_SumsDays(t *testing.T) {
	// GIVEN: Summaries for several days of one month
	// WHEN: Summing the month net
	// THEN: The total is the sum of per-day nets

	d1 := day(2025, time.March, 3)
	d2 := day(2025, time.March, 4)
	days := worktime.AggregateDays([]worktime.Shift{
		shiftAt(d1, 8, 0, 12, 0), // 240, no break required
		shiftAt(d2, 9, 0, 17, 0), // 480 - 30 break
	})

	if net := worktime.MonthNet(days); net != 690 {
		t.Errorf("month net = %d, want 690", net)
	}
}
