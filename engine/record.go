/*
record.go - Versioned attendance records and the collaborator interfaces

PURPOSE:
  Defines the attendance record as the external document store owns it,
  plus the narrow interfaces the engine uses to read and mutate it.
  Records are submit/cancel versioned: an active record is Submitted;
  applying a penalty cancels it and inserts a new Submitted version that
  carries the penalty and points back via AmendedFrom.

KEY INVARIANTS:
  1. At most one non-cancelled record exists per (employee, date).
     Supersession preserves this by cancelling the old version before
     inserting the new one.
  2. A record with PenaltyApplied=true is terminal: no function may
     re-penalize it. Reversal replaces it with a restored version.
  3. Stores never mutate a Submitted record in place except through the
     SetFields escape hatch for display-only annotation fields.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - engine/store: in-memory store for tests/dev

SEE ALSO:
  - applicator.go: The only writer of penalty versions
  - reader.go: Projects records into AttendanceFacts
*/
package engine

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DOC STATUS - Submit/cancel versioning state
// =============================================================================

type DocStatus int

const (
	DocDraft     DocStatus = 0
	DocSubmitted DocStatus = 1
	DocCancelled DocStatus = 2
)

func (d DocStatus) String() string {
	switch d {
	case DocDraft:
		return "draft"
	case DocSubmitted:
		return "submitted"
	case DocCancelled:
		return "cancelled"
	}
	return "unknown"
}

// =============================================================================
// ATTENDANCE RECORD - External document, mutated only via supersession
// =============================================================================

type AttendanceRecord struct {
	ID         RecordID
	EmployeeID EmployeeID
	Date       Date
	Status     Status
	LateEntry  bool

	// WorkingHours recorded for the day; used to distinguish genuine
	// shortage half-days from penalty half-days.
	WorkingHours decimal.Decimal

	// LeaveType is set when the day is linked to an approved leave.
	LeaveType   string
	HalfDayType HalfDayType

	// Strike bookkeeping (display/annotation fields)
	LateStrikeCount    int
	LateIncidentRemark string
	StrikeProcessed    bool

	// Penalty state
	PenaltyApplied       bool
	OriginalStatus       Status
	CumulativeResetCount int

	// Versioning
	DocStatus   DocStatus
	AmendedFrom RecordID
	CreatedAt   time.Time
}

// IsCurrent reports whether this version is the active one for its day.
func (r *AttendanceRecord) IsCurrent() bool { return r.DocStatus == DocSubmitted }

// IsGenuineHalfDay reports whether a half-day was caused by approved
// leave or a genuine hours shortage rather than by a late penalty.
// Genuine half-days do not break a consecutive late streak.
func (r *AttendanceRecord) IsGenuineHalfDay() bool {
	if r.Status != StatusHalfDay {
		return false
	}
	if r.PenaltyApplied || r.HalfDayType == HalfDayLatePenalty {
		return false
	}
	return r.LeaveType != "" || r.HalfDayType == HalfDayGenuineShortage
}

// Fact projects the record into an immutable evaluation snapshot.
func (r *AttendanceRecord) Fact() AttendanceFact {
	return AttendanceFact{
		RecordID:        r.ID,
		EmployeeID:      r.EmployeeID,
		Date:            r.Date,
		Status:          r.Status,
		IsLate:          r.LateEntry,
		PenaltyApplied:  r.PenaltyApplied,
		StrikeProcessed: r.StrikeProcessed,
		LeaveType:       r.LeaveType,
		GenuineHalfDay:  r.IsGenuineHalfDay(),
		WorkingHours:    r.WorkingHours,
	}
}

// =============================================================================
// RECORD STORE - Versioned mutation primitives
// =============================================================================

// FieldValues carries display-only annotation updates for SetFields.
type FieldValues struct {
	LateStrikeCount      *int
	LateIncidentRemark   *string
	StrikeProcessed      *bool
	CumulativeResetCount *int
}

// RecordStore is the engine's contract with the document store.
//
// The versioned mutation primitives mirror the document platform's
// cancel/copy/insert/submit cycle. The store enforces the one-active-
// record-per-(employee, date) invariant on Submit.
type RecordStore interface {
	// Get returns a record version by ID, whatever its DocStatus.
	Get(ctx context.Context, id RecordID) (*AttendanceRecord, error)

	// Current returns the active (Submitted) version for a day, or
	// ErrRecordNotFound if none exists.
	Current(ctx context.Context, employee EmployeeID, date Date) (*AttendanceRecord, error)

	// QueryRange returns the active versions for an employee in
	// [from, to], ascending by date. Restartable: each call recomputes
	// from the store; no implicit state.
	QueryRange(ctx context.Context, employee EmployeeID, from, to Date) ([]*AttendanceRecord, error)

	// CountLate counts active late-entry records for an employee in
	// [from, to], optionally excluding one record ID. Supports the
	// inline validation hook's running display count.
	CountLate(ctx context.Context, employee EmployeeID, from, to Date, exclude RecordID) (int, error)

	// Cancel marks a Submitted version Cancelled.
	// Returns ErrRecordCancelled if it is no longer current.
	Cancel(ctx context.Context, id RecordID) error

	// CopyAsNew returns an unsaved Draft copy of a record with a fresh
	// ID and AmendedFrom pointing at the source.
	CopyAsNew(ctx context.Context, id RecordID) (*AttendanceRecord, error)

	// Insert persists a Draft version.
	Insert(ctx context.Context, rec *AttendanceRecord) error

	// Submit transitions Draft -> Submitted, enforcing the single-active-
	// version invariant for (employee, date).
	Submit(ctx context.Context, id RecordID) error

	// SetFields updates annotation fields on a version in place without
	// supersession. Never touches status or penalty state.
	SetFields(ctx context.Context, id RecordID, fields FieldValues) error
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type Employee struct {
	ID     EmployeeID
	Name   string
	Email  string
	Active bool
}

type EmployeeStore interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	// ListActiveEmployees returns employees eligible for the daily pass.
	ListActiveEmployees(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// NOTIFIER - Fire-and-forget notification collaborator
// =============================================================================

// Notifier delivers penalty and threshold notifications. Failures are
// logged by callers and never propagated: notification is best-effort
// and must not affect the correctness of a penalty decision.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, subject, body string) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, recipients []string, subject, body string) error {
	return nil
}

// LogNotifier writes notifications to the process log. Stands in for a
// mail gateway in development and demos.
type LogNotifier struct{}

func NewLogNotifier() LogNotifier { return LogNotifier{} }

func (LogNotifier) Notify(ctx context.Context, recipients []string, subject, body string) error {
	log.Printf("[Notify] to=%v subject=%q\n%s", recipients, subject, body)
	return nil
}
