/*
handlers.go - HTTP handlers for the worktime engine

PURPOSE:
  Exposes contracts, shifts, reports and timesheets over REST. Handlers
  parse and shape-check the request, delegate to the worktime service
  (which validates, persists and drives the recompute orchestrator), and
  serialize the result.

ENDPOINTS:
  Contracts:
    GET    /api/contracts                 List contracts
    POST   /api/contracts                 Create contract (backfills ledger)
    GET    /api/contracts/{id}            Get contract
    PUT    /api/contracts/{id}            Update contract
    DELETE /api/contracts/{id}            Delete contract (cascades)

  Shifts:
    POST   /api/contracts/{id}/shifts     Create shift
    GET    /api/shifts/{id}               Get shift
    PUT    /api/shifts/{id}               Update shift
    DELETE /api/shifts/{id}               Delete shift

  Reports:
    GET    /api/contracts/{id}/reports               Report sequence
    GET    /api/contracts/{id}/timesheets/{month}    Monthly timesheet (JSON)
    POST   /api/contracts/{id}/timesheets/{month}/export
                                                     CSV download, freezes month

  Admin:
    POST   /api/admin/rollover            Trigger the month rollover

ERROR HANDLING:
  - 400: validation errors (stable code from the engine)
  - 404: unknown contract/shift/report
  - 409: exported (frozen) month, concurrent recompute (retryable)
  - 500: everything else, logged

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/timeclerk/worktime-engine/export"
	"github.com/timeclerk/worktime-engine/worktime"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *worktime.Service
	Log     *zap.Logger
}

// NewHandler creates a handler over the given service.
func NewHandler(svc *worktime.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Service: svc, Log: log}
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Service.ListContracts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]ContractDTO, 0, len(contracts))
	for _, c := range contracts {
		dtos = append(dtos, contractDTO(c))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	contract, ok := h.contractFromRequest(w, req)
	if !ok {
		return
	}

	created, err := h.Service.CreateContract(r.Context(), contract)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, contractDTO(created))
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Service.GetContract(r.Context(), contractID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, contractDTO(contract))
}

func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	contract, ok := h.contractFromRequest(w, req)
	if !ok {
		return
	}
	contract.ID = contractID(r)

	updated, err := h.Service.UpdateContract(r.Context(), contract)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, contractDTO(updated))
}

func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteContract(r.Context(), contractID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) contractFromRequest(w http.ResponseWriter, req ContractRequest) (worktime.Contract, bool) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.badRequest(w, "start_date must be YYYY-MM-DD")
		return worktime.Contract{}, false
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.badRequest(w, "end_date must be YYYY-MM-DD")
		return worktime.Contract{}, false
	}
	return worktime.Contract{
		UserID:           worktime.UserID(req.UserID),
		Name:             req.Name,
		DebitMinutes:     worktime.Minutes(req.DebitMinutes),
		StartDate:        start,
		EndDate:          end,
		InitialCarryover: worktime.Minutes(req.InitialCarryover),
	}, true
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	shift, ok := h.shiftFromRequest(w, req)
	if !ok {
		return
	}
	shift.ContractID = contractID(r)

	created, err := h.Service.CreateShift(r.Context(), shift)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, shiftDTO(created))
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Service.GetShift(r.Context(), shiftID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, shiftDTO(shift))
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	shift, ok := h.shiftFromRequest(w, req)
	if !ok {
		return
	}
	shift.ID = shiftID(r)

	updated, err := h.Service.UpdateShift(r.Context(), shift)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, shiftDTO(updated))
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteShift(r.Context(), shiftID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) shiftFromRequest(w http.ResponseWriter, req ShiftRequest) (worktime.Shift, bool) {
	started, err := time.Parse(time.RFC3339, req.Started)
	if err != nil {
		h.badRequest(w, "started must be RFC3339")
		return worktime.Shift{}, false
	}
	stopped, err := time.Parse(time.RFC3339, req.Stopped)
	if err != nil {
		h.badRequest(w, "stopped must be RFC3339")
		return worktime.Shift{}, false
	}
	return worktime.Shift{
		Started:  started,
		Stopped:  stopped,
		Type:     worktime.ShiftType(req.Type),
		Note:     req.Note,
		Tags:     req.Tags,
		Reviewed: req.Reviewed,
	}, true
}

// =============================================================================
// REPORT AND TIMESHEET HANDLERS
// =============================================================================

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Service.Reports(r.Context(), contractID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]ReportDTO, 0, len(reports))
	for _, rep := range reports {
		dtos = append(dtos, reportDTO(rep))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	month, err := worktime.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		h.badRequest(w, "month must be YYYY-MM")
		return
	}
	ts, err := h.Service.Timesheet(r.Context(), contractID(r), month)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, timesheetDTO(ts))
}

// ExportTimesheet streams the month's CSV timesheet and freezes the
// month's shifts against further edits.
func (h *Handler) ExportTimesheet(w http.ResponseWriter, r *http.Request) {
	month, err := worktime.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		h.badRequest(w, "month must be YYYY-MM")
		return
	}
	ts, err := h.Service.ExportMonth(r.Context(), contractID(r), month)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", export.Filename(ts.Contract, month)))
	if err := export.WriteTimesheet(w, ts); err != nil {
		h.Log.Error("timesheet export failed", zap.Error(err))
	}
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerRollover runs the month rollover immediately; normally the
// scheduler does this at the start of each month.
func (h *Handler) TriggerRollover(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RolloverMonth(r.Context(), time.Now()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func contractID(r *http.Request) worktime.ContractID {
	return worktime.ContractID(chi.URLParam(r, "id"))
}

func shiftID(r *http.Request) worktime.ShiftID {
	return worktime.ShiftID(chi.URLParam(r, "id"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("response encoding failed", zap.Error(err))
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: msg})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *worktime.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: verr.Message, Code: verr.Code})
	case worktime.IsNotFound(err):
		h.writeJSON(w, http.StatusNotFound, ErrorDTO{Error: err.Error()})
	case errors.Is(err, worktime.ErrMonthExported):
		h.writeJSON(w, http.StatusConflict, ErrorDTO{Error: err.Error(), Code: "month_exported"})
	case worktime.IsRetryable(err):
		h.writeJSON(w, http.StatusConflict, ErrorDTO{Error: err.Error(), Code: "retry"})
	default:
		h.Log.Error("internal error", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: "internal error"})
	}
}
