package worktime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/timeclerk/worktime-engine/worktime"
)

// =============================================================================
// CONTRACT VALIDATION
// =============================================================================

func TestValidateContract_Alignment(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		valid bool
	}{
		{"first to last day", day(2025, time.January, 1), day(2025, time.December, 31), true},
		{"fifteenth to fourteenth", day(2025, time.January, 15), day(2025, time.June, 14), true},
		{"first to fourteenth", day(2025, time.March, 1), day(2025, time.September, 14), true},
		{"february last day", day(2025, time.January, 1), day(2025, time.February, 28), true},
		{"leap february last day", day(2024, time.January, 1), day(2024, time.February, 29), true},
		{"start mid-month", day(2025, time.January, 10), day(2025, time.December, 31), false},
		{"end mid-month", day(2025, time.January, 1), day(2025, time.June, 20), false},
		{"end on 30th of a 31-day month", day(2025, time.January, 1), day(2025, time.March, 30), false},
		{"end before start", day(2025, time.June, 1), day(2025, time.January, 14), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testContract()
			c.StartDate = tc.start
			c.EndDate = tc.end
			err := worktime.ValidateContract(c, now)
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && !errors.Is(err, worktime.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestValidateContract_DebitMustBePositive(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	c := testContract()
	c.DebitMinutes = 0
	if err := worktime.ValidateContract(c, now); !errors.Is(err, worktime.ErrValidation) {
		t.Errorf("expected validation error for zero debit, got %v", err)
	}
	c.DebitMinutes = -60
	if err := worktime.ValidateContract(c, now); !errors.Is(err, worktime.ErrValidation) {
		t.Errorf("expected validation error for negative debit, got %v", err)
	}
}

func TestValidateContract_CarryoverRequiresPastStart(t *testing.T) {
	// GIVEN: A non-zero initial carry-over
	// WHEN: The contract starts today or later
	// THEN: The carry-over is rejected; an already-started contract passes

	c := testContract()
	c.InitialCarryover = 600

	notStarted := time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC)
	if err := worktime.ValidateContract(c, notStarted); !errors.Is(err, worktime.ErrValidation) {
		t.Errorf("expected validation error for future-start carry-over, got %v", err)
	}

	sameDay := time.Date(2025, time.January, 1, 15, 0, 0, 0, time.UTC)
	if err := worktime.ValidateContract(c, sameDay); !errors.Is(err, worktime.ErrValidation) {
		t.Errorf("expected validation error when starting today, got %v", err)
	}

	started := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	if err := worktime.ValidateContract(c, started); err != nil {
		t.Errorf("expected valid for already-started contract, got %v", err)
	}
}

func TestValidateContractBoundaries_RejectsStrandedShifts(t *testing.T) {
	// GIVEN: An existing shift in January
	// WHEN: The start date moves past the shift
	// THEN: The boundary change is rejected

	c := testContract()
	shifts := []worktime.Shift{shiftAt(day(2025, time.January, 20), 9, 0, 17, 0)}

	c.StartDate = day(2025, time.February, 1)
	if err := worktime.ValidateContractBoundaries(c, shifts); !errors.Is(err, worktime.ErrValidation) {
		t.Errorf("expected validation error for stranded shift, got %v", err)
	}

	c.StartDate = day(2025, time.January, 1)
	if err := worktime.ValidateContractBoundaries(c, shifts); err != nil {
		t.Errorf("expected boundaries to hold, got %v", err)
	}
}

func TestValidateContractBoundaries_ShiftOnEndDateIsInside(t *testing.T) {
	// GIVEN: A shift on the contract's last day
	// WHEN: Validating the boundaries
	// THEN: The end date is inclusive, the shift is inside

	c := testContract()
	c.EndDate = day(2025, time.June, 14)
	shifts := []worktime.Shift{shiftAt(day(2025, time.June, 14), 9, 0, 17, 0)}

	if err := worktime.ValidateContractBoundaries(c, shifts); err != nil {
		t.Errorf("shift on inclusive end date rejected: %v", err)
	}
}

// =============================================================================
// SHIFT VALIDATION
// =============================================================================

func TestValidateShift_Rules(t *testing.T) {
	contract := testContract()
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	valid := shiftAt(day(2025, time.June, 5), 9, 0, 17, 0)
	if err := worktime.ValidateShift(valid, contract, now); err != nil {
		t.Fatalf("baseline shift rejected: %v", err)
	}

	t.Run("unknown type", func(t *testing.T) {
		s := valid
		s.Type = "xx"
		if err := worktime.ValidateShift(s, contract, now); !errors.Is(err, worktime.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("stop not after start", func(t *testing.T) {
		s := valid
		s.Stopped = s.Started
		if err := worktime.ValidateShift(s, contract, now); !errors.Is(err, worktime.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("crosses midnight", func(t *testing.T) {
		s := valid
		s.Started = time.Date(2025, time.June, 5, 22, 0, 0, 0, time.UTC)
		s.Stopped = time.Date(2025, time.June, 6, 6, 0, 0, 0, time.UTC)
		if err := worktime.ValidateShift(s, contract, now); !errors.Is(err, worktime.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("before contract start", func(t *testing.T) {
		s := shiftAt(day(2024, time.December, 20), 9, 0, 17, 0)
		if err := worktime.ValidateShift(s, contract, now); !errors.Is(err, worktime.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("after contract end", func(t *testing.T) {
		s := shiftAt(day(2026, time.January, 5), 9, 0, 17, 0)
		s.Reviewed = false
		future := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
		if err := worktime.ValidateShift(s, contract, future); !errors.Is(err, worktime.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("reviewed shift in the future", func(t *testing.T) {
		s := shiftAt(day(2025, time.June, 20), 9, 0, 17, 0)
		if err := worktime.ValidateShift(s, contract, now); !errors.Is(err, worktime.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("planned shift in the past", func(t *testing.T) {
		s := shiftAt(day(2025, time.June, 5), 9, 0, 17, 0)
		s.Reviewed = false
		if err := worktime.ValidateShift(s, contract, now); !errors.Is(err, worktime.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("planned shift in the future", func(t *testing.T) {
		s := shiftAt(day(2025, time.June, 20), 9, 0, 17, 0)
		s.Reviewed = false
		if err := worktime.ValidateShift(s, contract, now); err != nil {
			t.Errorf("expected valid planned shift, got %v", err)
		}
	})

	t.Run("absence types accepted", func(t *testing.T) {
		for _, typ := range []worktime.ShiftType{worktime.ShiftSick, worktime.ShiftVacation, worktime.ShiftBankHoliday} {
			s := valid
			s.Type = typ
			if err := worktime.ValidateShift(s, contract, now); err != nil {
				t.Errorf("type %q rejected: %v", typ, err)
			}
		}
	})
}
