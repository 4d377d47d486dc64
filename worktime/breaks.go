/*
breaks.go - Statutory break-time rule evaluator

PURPOSE:
  Computes the legally mandated unpaid break minutes for one calendar day
  and the shortfall that must be deducted from that day's worked time.

THE RULE (step function):
  worked <= 6h           -> no break required
  6h < worked <= 9h      -> 30 minutes
  worked > 9h            -> 45 minutes

CREDITING TAKEN BREAKS:
  Break time the employee already took shows up as the gap between the
  day's elapsed span (last stop - first start) and its raw worked
  minutes. Only the shortfall is deducted:

      missing = max(0, required - (elapsed - worked))

  Example: two 5h shifts with a 1h gap -> worked 600, elapsed 660,
  required 45, gap 60 covers it, missing 0.

  On a day with overlapping shifts the summed worked minutes exceed the
  elapsed span, the gap term goes negative, and the shortfall grows past
  the bare requirement. Overlaps are never deduplicated (see daily.go),
  and the formula is applied as-is.

Both functions are pure - no clock, no store, no side effects.
*/
package worktime

// Break rule breakpoints, in minutes.
const (
	breakFreeLimit  Minutes = 6 * 60 // up to here no break is required
	shortBreakLimit Minutes = 9 * 60 // up to here 30 minutes suffice

	shortBreak Minutes = 30
	longBreak  Minutes = 45
)

// RequiredBreak returns the mandatory unpaid break for a day with the
// given total worked minutes. Monotonic non-decreasing, with breakpoints
// exactly at 360 and 540 minutes.
func RequiredBreak(worked Minutes) Minutes {
	switch {
	case worked <= breakFreeLimit:
		return 0
	case worked <= shortBreakLimit:
		return shortBreak
	default:
		return longBreak
	}
}

// MissingBreak returns the break shortfall to deduct from a day's worked
// minutes: max(0, required - (elapsed - worked)). Gaps between shifts
// count as break already taken; a negative gap (overlapping shifts)
// increases the shortfall.
func MissingBreak(worked, elapsed Minutes) Minutes {
	return MaxMinutes(0, RequiredBreak(worked)-(elapsed-worked))
}
