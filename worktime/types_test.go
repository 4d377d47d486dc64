package worktime_test

import (
	"testing"
	"time"

	"github.com/timeclerk/worktime-engine/worktime"
)

func TestMinutesString(t *testing.T) {
	cases := []struct {
		minutes worktime.Minutes
		want    string
	}{
		{0, "00:00"},
		{450, "07:30"},
		{2460, "41:00"},
		{-750, "-12:30"},
	}

	for _, tc := range cases {
		if got := tc.minutes.String(); got != tc.want {
			t.Errorf("Minutes(%d).String() = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestMonthEnd(t *testing.T) {
	cases := []struct {
		month worktime.Month
		want  int
	}{
		{worktime.NewMonth(2025, time.January), 31},
		{worktime.NewMonth(2025, time.February), 28},
		{worktime.NewMonth(2024, time.February), 29},
		{worktime.NewMonth(2025, time.April), 30},
	}

	for _, tc := range cases {
		if got := tc.month.End().Day(); got != tc.want {
			t.Errorf("%v.End().Day() = %d, want %d", tc.month, got, tc.want)
		}
	}
}

func TestMonthCompare(t *testing.T) {
	jan := worktime.NewMonth(2025, time.January)
	feb := worktime.NewMonth(2025, time.February)

	if got := jan.Compare(feb); got != -1 {
		t.Errorf("jan.Compare(feb) = %d, want -1", got)
	}
	if got := feb.Compare(jan); got != 1 {
		t.Errorf("feb.Compare(jan) = %d, want 1", got)
	}
	if got := jan.Compare(jan); got != 0 {
		t.Errorf("jan.Compare(jan) = %d, want 0", got)
	}
}
