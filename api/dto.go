/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Policy:
    PolicyDTO, UpdatePolicyRequest

  Attendance:
    AttendanceRecordDTO, CreateAttendanceRequest

  Status:
    LateStatusDTO, LateCountDTO

  Employee:
    EmployeeDTO, CreateEmployeeRequest

  Admin:
    ReprocessRequest, RunSummaryDTO, ReprocessSummaryDTO

  Reports:
    LateReportRowDTO

VALIDATION:
  Request types carry go-playground/validator struct tags for shape
  validation. Semantic validation (mode and action values, enabled
  implies complete settings) stays in the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/policy.go: PolicySettings semantics
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// POLICY TYPES
// =============================================================================

// PolicyDTO represents the penalty settings in API responses.
type PolicyDTO struct {
	Enabled         bool   `json:"enabled"`
	CountingMode    string `json:"counting_mode"`
	StrikeThreshold int    `json:"strike_threshold"`
	PenaltyAction   string `json:"penalty_action"`
	ApplyFromDate   string `json:"apply_from_date,omitempty"`
}

// UpdatePolicyRequest is the request to replace the penalty settings.
type UpdatePolicyRequest struct {
	Enabled         bool   `json:"enabled"`
	CountingMode    string `json:"counting_mode" validate:"required_with=Enabled"`
	StrikeThreshold int    `json:"strike_threshold" validate:"min=0"`
	PenaltyAction   string `json:"penalty_action" validate:"required_with=Enabled"`
	ApplyFromDate   string `json:"apply_from_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// =============================================================================
// ATTENDANCE TYPES
// =============================================================================

// AttendanceRecordDTO represents an attendance record in API responses.
type AttendanceRecordDTO struct {
	ID                   string  `json:"id"`
	EmployeeID           string  `json:"employee_id"`
	Date                 string  `json:"date"`
	Status               string  `json:"status"`
	LateEntry            bool    `json:"late_entry"`
	WorkingHours         float64 `json:"working_hours"`
	LeaveType            string  `json:"leave_type,omitempty"`
	HalfDayType          string  `json:"half_day_type,omitempty"`
	LateStrikeCount      int     `json:"late_strike_count"`
	LateIncidentRemark   string  `json:"late_incident_remark,omitempty"`
	StrikeProcessed      bool    `json:"strike_processed"`
	PenaltyApplied       bool    `json:"penalty_applied"`
	OriginalStatus       string  `json:"original_status,omitempty"`
	CumulativeResetCount int     `json:"cumulative_reset_count,omitempty"`
	DocStatus            int     `json:"doc_status"`
	AmendedFrom          string  `json:"amended_from,omitempty"`
	CreatedAt            string  `json:"created_at,omitempty"`
}

// CreateAttendanceRequest is the request to record a day's attendance.
type CreateAttendanceRequest struct {
	EmployeeID   string  `json:"employee_id" validate:"required"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status       string  `json:"status" validate:"required"`
	LateEntry    bool    `json:"late_entry"`
	WorkingHours float64 `json:"working_hours" validate:"min=0,max=24"`
	LeaveType    string  `json:"leave_type,omitempty"`
	HalfDayType  string  `json:"half_day_type,omitempty"`
	Submit       bool    `json:"submit"`
}

// =============================================================================
// STATUS TYPES
// =============================================================================

// LateStatusDTO summarizes an employee's standing under the policy.
type LateStatusDTO struct {
	EmployeeID      string `json:"employee_id"`
	Month           string `json:"month"`
	PolicyEnabled   bool   `json:"policy_enabled"`
	CountingMode    string `json:"counting_mode,omitempty"`
	Threshold       int    `json:"threshold,omitempty"`
	LateCount       int    `json:"late_count"`
	ConsecutiveRun  int    `json:"consecutive_run"`
	NextWillTrigger bool   `json:"next_will_trigger"`
}

// LateCountDTO is the response for the bare count endpoint.
type LateCountDTO struct {
	EmployeeID string `json:"employee_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	LateCount  int    `json:"late_count"`
}

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

// =============================================================================
// ADMIN TYPES
// =============================================================================

// ReprocessRequest asks for penalties to be reversed and re-derived
// from a given date forward.
type ReprocessRequest struct {
	FromDate string `json:"from_date" validate:"required,datetime=2006-01-02"`
}

// RunSummaryDTO reports what a batch pass did.
type RunSummaryDTO struct {
	WindowStart        string   `json:"window_start,omitempty"`
	WindowEnd          string   `json:"window_end,omitempty"`
	EmployeesProcessed int      `json:"employees_processed"`
	EmployeesFailed    int      `json:"employees_failed"`
	StrikesAnnotated   int      `json:"strikes_annotated"`
	PenaltiesApplied   int      `json:"penalties_applied"`
	PenaltiesSkipped   int      `json:"penalties_skipped"`
	Errors             []string `json:"errors,omitempty"`
	Message            string   `json:"message"`
}

// ReprocessSummaryDTO reports a reverse-and-rerun pass.
type ReprocessSummaryDTO struct {
	FromDate           string        `json:"from_date"`
	PenaltiesReversed  int           `json:"penalties_reversed"`
	Rerun              RunSummaryDTO `json:"rerun"`
	Message            string        `json:"message"`
}

// BatchRunDTO is one audit row of the scheduler history.
type BatchRunDTO struct {
	ID                 string `json:"id"`
	Kind               string `json:"kind"`
	WindowStart        string `json:"window_start,omitempty"`
	WindowEnd          string `json:"window_end,omitempty"`
	EmployeesProcessed int    `json:"employees_processed"`
	EmployeesFailed    int    `json:"employees_failed"`
	StrikesAnnotated   int    `json:"strikes_annotated"`
	PenaltiesApplied   int    `json:"penalties_applied"`
	PenaltiesSkipped   int    `json:"penalties_skipped"`
	Error              string `json:"error,omitempty"`
	StartedAt          string `json:"started_at"`
	CompletedAt        string `json:"completed_at,omitempty"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// LateReportRowDTO is one employee's line in the monthly late report.
type LateReportRowDTO struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	LateCount    int      `json:"late_count"`
	LateDates    []string `json:"late_dates"`
	WorkingHours float64  `json:"working_hours"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPolicyDTO(p engine.PolicySettings) PolicyDTO {
	dto := PolicyDTO{
		Enabled:         p.Enabled,
		CountingMode:    string(p.CountingMode),
		StrikeThreshold: p.StrikeThreshold,
		PenaltyAction:   string(p.PenaltyAction),
	}
	if p.ApplyFromDate != nil {
		dto.ApplyFromDate = p.ApplyFromDate.String()
	}
	return dto
}

func toRecordDTO(rec *engine.AttendanceRecord) AttendanceRecordDTO {
	hours, _ := rec.WorkingHours.Float64()
	return AttendanceRecordDTO{
		ID:                   string(rec.ID),
		EmployeeID:           string(rec.EmployeeID),
		Date:                 rec.Date.String(),
		Status:               string(rec.Status),
		LateEntry:            rec.LateEntry,
		WorkingHours:         hours,
		LeaveType:            rec.LeaveType,
		HalfDayType:          string(rec.HalfDayType),
		LateStrikeCount:      rec.LateStrikeCount,
		LateIncidentRemark:   rec.LateIncidentRemark,
		StrikeProcessed:      rec.StrikeProcessed,
		PenaltyApplied:       rec.PenaltyApplied,
		OriginalStatus:       string(rec.OriginalStatus),
		CumulativeResetCount: rec.CumulativeResetCount,
		DocStatus:            int(rec.DocStatus),
		AmendedFrom:          string(rec.AmendedFrom),
		CreatedAt:            rec.CreatedAt.Format(time.RFC3339),
	}
}

func toRecordDTOs(recs []*engine.AttendanceRecord) []AttendanceRecordDTO {
	dtos := make([]AttendanceRecordDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toRecordDTO(rec)
	}
	return dtos
}

func toRunSummaryDTO(s engine.RunSummary) RunSummaryDTO {
	dto := RunSummaryDTO{
		EmployeesProcessed: s.EmployeesProcessed,
		EmployeesFailed:    s.EmployeesFailed,
		StrikesAnnotated:   s.StrikesAnnotated,
		PenaltiesApplied:   s.PenaltiesApplied,
		PenaltiesSkipped:   s.PenaltiesSkipped,
		Errors:             s.Errors,
		Message:            s.String(),
	}
	if s.Window.IsValid() {
		dto.WindowStart = s.Window.Start.String()
		dto.WindowEnd = s.Window.End.String()
	}
	return dto
}
