/*
handlers.go - HTTP API handlers for the attendance penalty system

PURPOSE:
  Exposes the attendance penalty engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Policy:
    GET    /api/policy                   Current penalty settings
    PUT    /api/policy                   Replace penalty settings

  Employees:
    GET    /api/employees                List active employees
    POST   /api/employees                Create employee
    GET    /api/employees/{id}           Get employee details
    GET    /api/employees/{id}/late-status  Standing under the policy
    GET    /api/employees/{id}/late-count   Late count for a range
    GET    /api/employees/{id}/attendance   Attendance records for a range

  Attendance:
    POST   /api/attendance               Record a day's attendance

  Admin:
    POST   /api/admin/run                Run the batch pass now
    POST   /api/admin/reprocess          Reverse and re-derive from a date
    GET    /api/admin/runs               Scheduler audit history

  Reports:
    GET    /api/reports/late             Monthly late arrival report

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (validator tags, then engine semantics)
  3. Call domain logic (orchestrator, applicator, hook)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate active record for a day)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Nightly batch trigger
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence surface the handlers need. Satisfied by both
// the SQLite store and the in-memory store used in tests.
type Store interface {
	engine.RecordStore
	engine.EmployeeStore
	engine.PolicyStore
	SaveEmployee(ctx context.Context, emp engine.Employee) error
}

// RunHistory lists past batch runs. Only the SQLite store keeps the
// audit trail; the handler tolerates a nil history.
type RunHistory interface {
	ListBatchRuns(ctx context.Context, limit int) ([]sqlite.BatchRun, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        Store
	Policies     engine.PolicyStore
	Orchestrator *engine.Orchestrator
	Hook         *engine.ValidationHook
	Runs         RunHistory

	validate *validator.Validate
}

// NewHandler creates a new handler around the given store. The policy
// store is usually the cached wrapper, not the raw store.
func NewHandler(store Store, policies engine.PolicyStore, orch *engine.Orchestrator) *Handler {
	return &Handler{
		Store:        store,
		Policies:     policies,
		Orchestrator: orch,
		Hook:         engine.NewValidationHook(policies, store),
		validate:     validator.New(),
	}
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// GetPolicy returns the current penalty settings. An unconfigured
// installation reports the defaults rather than an error.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.Policies.GetPolicy(r.Context())
	if err != nil {
		if engine.IsConfiguration(err) {
			writeJSON(w, http.StatusOK, toPolicyDTO(engine.DefaultPolicySettings()))
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load policy", err)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(policy))
}

// UpdatePolicy replaces the penalty settings.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy settings", err)
		return
	}

	settings := engine.PolicySettings{
		Enabled:         req.Enabled,
		CountingMode:    engine.CountingMode(req.CountingMode),
		StrikeThreshold: req.StrikeThreshold,
		PenaltyAction:   engine.PenaltyAction(req.PenaltyAction),
	}
	if req.ApplyFromDate != "" {
		d, err := engine.ParseDate(req.ApplyFromDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid apply_from_date (use YYYY-MM-DD)", err)
			return
		}
		settings.ApplyFromDate = &d
	}

	// SavePolicy validates semantics (mode, action, threshold).
	if err := h.Policies.SavePolicy(r.Context(), settings); err != nil {
		if engine.IsValidation(err) {
			writeError(w, http.StatusBadRequest, "Invalid policy settings", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save policy", err)
		return
	}

	writeJSON(w, http.StatusOK, toPolicyDTO(settings))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all active employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListActiveEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = EmployeeDTO{
			ID:     string(e.ID),
			Name:   e.Name,
			Email:  e.Email,
			Active: e.Active,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		if engine.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}

	writeJSON(w, http.StatusOK, EmployeeDTO{
		ID:     string(emp.ID),
		Name:   emp.Name,
		Email:  emp.Email,
		Active: emp.Active,
	})
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}

	emp := engine.Employee{
		ID:     engine.EmployeeID(req.ID),
		Name:   req.Name,
		Email:  req.Email,
		Active: true,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, EmployeeDTO{
		ID:     string(emp.ID),
		Name:   emp.Name,
		Email:  emp.Email,
		Active: emp.Active,
	})
}

// =============================================================================
// STATUS HANDLERS
// =============================================================================

// GetLateStatus returns an employee's standing for a month. The month
// defaults to the current one; the counting window ends yesterday, same
// as the batch pass. Counts here are non-authoritative previews.
// GET /api/employees/{id}/late-status?month=YYYY-MM
func (h *Handler) GetLateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		if engine.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}

	monthStart, err := parseMonthParam(r.URL.Query().Get("month"), h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	window := statusWindow(monthStart, h.today())
	dto := LateStatusDTO{
		EmployeeID: string(id),
		Month:      monthStart.MonthYear(),
	}

	policy, err := h.Policies.GetPolicy(ctx)
	if err != nil && !engine.IsConfiguration(err) {
		writeError(w, http.StatusInternalServerError, "Failed to load policy", err)
		return
	}
	dto.PolicyEnabled = err == nil && policy.Enabled
	if dto.PolicyEnabled {
		dto.CountingMode = string(policy.CountingMode)
		dto.Threshold = policy.StrikeThreshold
	}

	if !window.IsValid() {
		writeJSON(w, http.StatusOK, dto)
		return
	}

	facts, err := h.Orchestrator.Reader.ListFacts(ctx, id, window.Start, window.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}

	// The displayed count includes penalized days; the trigger preview
	// works off the tolerated ones only.
	unpenalized := 0
	for _, f := range facts {
		if !f.IsLate {
			continue
		}
		dto.LateCount++
		if !f.PenaltyApplied {
			unpenalized++
		}
	}
	dto.ConsecutiveRun = engine.TrailingConsecutiveCount(facts)

	if dto.PolicyEnabled {
		// One more strike crosses the tolerated threshold.
		switch policy.CountingMode {
		case engine.ModeStrictlyConsecutive:
			dto.NextWillTrigger = dto.ConsecutiveRun == policy.StrikeThreshold
		default:
			dto.NextWillTrigger = unpenalized == policy.StrikeThreshold
		}
	}

	writeJSON(w, http.StatusOK, dto)
}

// GetLateCount returns the raw non-cancelled late count for a range.
// GET /api/employees/{id}/late-count?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetLateCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	from, to, err := parseRangeParams(r, h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", err)
		return
	}

	count, err := h.Store.CountLate(ctx, id, from, to, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count late entries", err)
		return
	}

	writeJSON(w, http.StatusOK, LateCountDTO{
		EmployeeID: string(id),
		From:       from.String(),
		To:         to.String(),
		LateCount:  count,
	})
}

// ListAttendance returns submitted records for a range.
// GET /api/employees/{id}/attendance?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	from, to, err := parseRangeParams(r, h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", err)
		return
	}

	recs, err := h.Store.QueryRange(ctx, id, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(recs))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// CreateAttendance records a day's attendance. The pre-save hook runs
// here to stamp the inline running late count.
func (h *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attendance record", err)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	if _, err := h.Store.GetEmployee(ctx, engine.EmployeeID(req.EmployeeID)); err != nil {
		if engine.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}

	rec := &engine.AttendanceRecord{
		EmployeeID:   engine.EmployeeID(req.EmployeeID),
		Date:         date,
		Status:       engine.Status(req.Status),
		LateEntry:    req.LateEntry,
		WorkingHours: decimal.NewFromFloat(req.WorkingHours),
		LeaveType:    req.LeaveType,
		HalfDayType:  engine.HalfDayType(req.HalfDayType),
	}

	h.Hook.BeforeSave(ctx, rec)

	if err := h.Store.Insert(ctx, rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save attendance", err)
		return
	}
	if req.Submit {
		if err := h.Store.Submit(ctx, rec.ID); err != nil {
			if errors.Is(err, engine.ErrDuplicateActive) {
				writeError(w, http.StatusConflict, "An active record already exists for this day", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to submit attendance", err)
			return
		}
		rec.DocStatus = engine.DocSubmitted
	}

	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// RunNow triggers the batch pass immediately.
// POST /api/admin/run
func (h *Handler) RunNow(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Orchestrator.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Batch run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunSummaryDTO(summary))
}

// Reprocess reverses penalties from a date and re-derives them.
// POST /api/admin/reprocess
func (h *Handler) Reprocess(w http.ResponseWriter, r *http.Request) {
	var req ReprocessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reprocess request", err)
		return
	}

	from, err := engine.ParseDate(req.FromDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from_date (use YYYY-MM-DD)", err)
		return
	}

	summary, err := h.Orchestrator.ReprocessFrom(r.Context(), from)
	if err != nil {
		if engine.IsConfiguration(err) {
			writeError(w, http.StatusBadRequest, "Policy is not configured", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Reprocess failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ReprocessSummaryDTO{
		FromDate:          summary.From.String(),
		PenaltiesReversed: summary.PenaltiesReversed,
		Rerun:             toRunSummaryDTO(summary.Run),
		Message:           summary.String(),
	})
}

// ListRuns returns the scheduler's audit history, newest first.
// GET /api/admin/runs?limit=N
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeJSON(w, http.StatusOK, []BatchRunDTO{})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		fmt.Sscanf(raw, "%d", &limit)
	}

	runs, err := h.Runs.ListBatchRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]BatchRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = BatchRunDTO{
			ID:                 run.ID,
			Kind:               run.Kind,
			WindowStart:        run.WindowStart,
			WindowEnd:          run.WindowEnd,
			EmployeesProcessed: run.EmployeesProcessed,
			EmployeesFailed:    run.EmployeesFailed,
			StrikesAnnotated:   run.StrikesAnnotated,
			PenaltiesApplied:   run.PenaltiesApplied,
			PenaltiesSkipped:   run.PenaltiesSkipped,
			Error:              run.Error,
			StartedAt:          run.StartedAt.Format(time.RFC3339),
		}
		if run.CompletedAt != nil {
			dtos[i].CompletedAt = run.CompletedAt.Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// LateReport builds the monthly late report for employees at or over
// the threshold.
// GET /api/reports/late?month=YYYY-MM
func (h *Handler) LateReport(w http.ResponseWriter, r *http.Request) {
	monthStart, err := parseMonthParam(r.URL.Query().Get("month"), h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	rows, err := h.Orchestrator.MonthlyLateReport(r.Context(), monthStart.Year(), monthStart.Month())
	if err != nil {
		if engine.IsConfiguration(err) {
			writeError(w, http.StatusBadRequest, "Policy is not configured", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	dtos := make([]LateReportRowDTO, len(rows))
	for i, row := range rows {
		hours, _ := row.WorkingHours.Float64()
		dates := make([]string, len(row.LateDates))
		for j, d := range row.LateDates {
			dates[j] = d.String()
		}
		dtos[i] = LateReportRowDTO{
			EmployeeID:   string(row.EmployeeID),
			EmployeeName: row.EmployeeName,
			LateCount:    row.LateCount,
			LateDates:    dates,
			WorkingHours: hours,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) today() engine.Date {
	if h.Orchestrator != nil && h.Orchestrator.Clock != nil {
		return h.Orchestrator.Clock()
	}
	return engine.Today()
}

// parseMonthParam resolves an optional YYYY-MM parameter to the first
// day of that month, defaulting to today's month.
func parseMonthParam(raw string, today engine.Date) (engine.Date, error) {
	if raw == "" {
		return today.StartOfMonth(), nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return engine.Date{}, err
	}
	return engine.DateOf(t), nil
}

// parseRangeParams resolves optional from/to parameters, defaulting to
// the current month up to today.
func parseRangeParams(r *http.Request, today engine.Date) (engine.Date, engine.Date, error) {
	from := today.StartOfMonth()
	to := today

	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := engine.ParseDate(raw)
		if err != nil {
			return engine.Date{}, engine.Date{}, err
		}
		from = d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := engine.ParseDate(raw)
		if err != nil {
			return engine.Date{}, engine.Date{}, err
		}
		to = d
	}
	if to.Before(from) {
		return engine.Date{}, engine.Date{}, engine.ErrInvalidWindow
	}
	return from, to, nil
}

// statusWindow clips the month of monthStart to end yesterday, matching
// the batch pass's counting window.
func statusWindow(monthStart, today engine.Date) engine.Window {
	end := monthStart.EndOfMonth()
	yesterday := today.AddDays(-1)
	if yesterday.Before(end) {
		end = yesterday
	}
	return engine.Window{Start: monthStart, End: end}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
