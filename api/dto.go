/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

FORMATS:
  Dates are "2006-01-02", timestamps RFC3339, months "2006-01". All
  durations cross the wire as integer minutes; decimal-hour strings are
  derived, never parsed back.

VALIDATION:
  Shape validation (parseable dates, required fields) happens in the
  handlers; business validation is the engine's job and its
  ValidationError codes are passed through to the client.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/timeclerk/worktime-engine/export"
	"github.com/timeclerk/worktime-engine/worktime"
)

// =============================================================================
// CONTRACT TYPES
// =============================================================================

type ContractDTO struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	DebitMinutes     int64  `json:"debit_minutes"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	InitialCarryover int64  `json:"initial_carryover"`
	LastUsed         string `json:"last_used,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

type ContractRequest struct {
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	DebitMinutes     int64  `json:"debit_minutes"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	InitialCarryover int64  `json:"initial_carryover"`
}

func contractDTO(c worktime.Contract) ContractDTO {
	return ContractDTO{
		ID:               string(c.ID),
		UserID:           string(c.UserID),
		Name:             c.Name,
		DebitMinutes:     int64(c.DebitMinutes),
		StartDate:        c.StartDate.Format("2006-01-02"),
		EndDate:          c.EndDate.Format("2006-01-02"),
		InitialCarryover: int64(c.InitialCarryover),
		LastUsed:         c.LastUsed.Format(time.RFC3339),
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SHIFT TYPES
// =============================================================================

type ShiftDTO struct {
	ID         string   `json:"id"`
	ContractID string   `json:"contract_id"`
	Started    string   `json:"started"`
	Stopped    string   `json:"stopped"`
	Type       string   `json:"type"`
	Note       string   `json:"note,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Reviewed   bool     `json:"reviewed"`
	Exported   bool     `json:"exported"`
}

type ShiftRequest struct {
	Started  string   `json:"started"`
	Stopped  string   `json:"stopped"`
	Type     string   `json:"type"`
	Note     string   `json:"note"`
	Tags     []string `json:"tags"`
	Reviewed bool     `json:"reviewed"`
}

func shiftDTO(s worktime.Shift) ShiftDTO {
	return ShiftDTO{
		ID:         string(s.ID),
		ContractID: string(s.ContractID),
		Started:    s.Started.Format(time.RFC3339),
		Stopped:    s.Stopped.Format(time.RFC3339),
		Type:       string(s.Type),
		Note:       s.Note,
		Tags:       s.Tags,
		Reviewed:   s.Reviewed,
		Exported:   s.Exported,
	}
}

// =============================================================================
// REPORT AND TIMESHEET TYPES
// =============================================================================

type ReportDTO struct {
	ContractID      string `json:"contract_id"`
	Month           string `json:"month"`
	WorktimeMinutes int64  `json:"worktime_minutes"`
	WorktimeHours   string `json:"worktime_hours"`
}

func reportDTO(r worktime.Report) ReportDTO {
	return ReportDTO{
		ContractID:      string(r.ContractID),
		Month:           r.Month.String(),
		WorktimeMinutes: int64(r.Worktime),
		WorktimeHours:   export.DecimalHours(r.Worktime).String(),
	}
}

type TimesheetDayDTO struct {
	Date                 string `json:"date"`
	FirstStart           string `json:"first_start"`
	LastStop             string `json:"last_stop"`
	WorkedMinutes        int64  `json:"worked_minutes"`
	BreakDeductedMinutes int64  `json:"break_deducted_minutes"`
	NetMinutes           int64  `json:"net_minutes"`
}

type TimesheetDTO struct {
	ContractID      string            `json:"contract_id"`
	Month           string            `json:"month"`
	Days            []TimesheetDayDTO `json:"days"`
	CarryInMinutes  int64             `json:"carry_in_minutes"`
	MonthNetMinutes int64             `json:"month_net_minutes"`
	BalanceMinutes  int64             `json:"balance_minutes"`
	DebitMinutes    int64             `json:"debit_minutes"`
	DebitDelta      int64             `json:"balance_vs_debit_minutes"`
	BalanceHours    string            `json:"balance_hours"`
}

func timesheetDTO(ts worktime.Timesheet) TimesheetDTO {
	days := make([]TimesheetDayDTO, 0, len(ts.Days))
	for _, d := range ts.Days {
		days = append(days, TimesheetDayDTO{
			Date:                 d.Date.Format("2006-01-02"),
			FirstStart:           d.FirstStart.Format(time.RFC3339),
			LastStop:             d.LastStop.Format(time.RFC3339),
			WorkedMinutes:        int64(d.RawWorked),
			BreakDeductedMinutes: int64(d.MissingBreak),
			NetMinutes:           int64(d.Net),
		})
	}
	return TimesheetDTO{
		ContractID:      string(ts.Contract.ID),
		Month:           ts.Month.String(),
		Days:            days,
		CarryInMinutes:  int64(ts.CarryIn),
		MonthNetMinutes: int64(ts.MonthNet),
		BalanceMinutes:  int64(ts.Worktime),
		DebitMinutes:    int64(ts.Debit),
		DebitDelta:      int64(ts.DebitDelta),
		BalanceHours:    export.DecimalHours(ts.Worktime).String(),
	}
}

// ErrorDTO is the uniform error envelope.
type ErrorDTO struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
