/*
Package engine provides the core attendance-policy engine.

PURPOSE:
  This package contains the domain types and algorithms for late-arrival
  strike counting and penalty application. Given a stream of per-day
  attendance facts for an employee, it decides which days count as a
  "late strike" under the active counting mode, when a threshold crossing
  triggers a penalty, and how to apply that penalty exactly once to a
  versioned attendance record.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status: Attendance status for a day (Present, Half Day, Absent, ...)
  - AttendanceFact: Immutable per-day snapshot used for evaluation
  - StrikeEvent: One countable late-arrival occurrence, with ordinal
  - CountingMode / PenaltyAction: The configurable policy dimensions

DESIGN PRINCIPLES:
  1. Purity: The evaluator never mutates input; same facts in, same
     strike events out. Required for idempotent reprocessing.
  2. Explicit configuration: PolicySettings is passed into every call.
     There is no global settings container.
  3. Type Safety: Strong typing for employee/record IDs.
  4. Auditability: Every penalty carries a remark, the original status,
     and a version lineage on the record itself.

SEE ALSO:
  - evaluator.go: Strike counting under the three modes
  - applicator.go: Penalty application via record supersession
  - orchestrator.go: The daily batch driver
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RecordID string

// =============================================================================
// STATUS - Attendance status for a single day
// =============================================================================

type Status string

const (
	StatusPresent      Status = "Present"
	StatusAbsent       Status = "Absent"
	StatusHalfDay      Status = "Half Day"
	StatusOnLeave      Status = "On Leave"
	StatusWorkFromHome Status = "Work From Home"
)

// WorkingStatuses are the statuses that participate in strike counting.
// Absences are excluded from late counting entirely, even if flagged late.
var WorkingStatuses = []Status{StatusPresent, StatusHalfDay, StatusWorkFromHome}

// IsWorking reports whether the status counts as a working day
// for strike-evaluation purposes.
func (s Status) IsWorking() bool {
	for _, ws := range WorkingStatuses {
		if s == ws {
			return true
		}
	}
	return false
}

// =============================================================================
// HALF DAY TYPE - Why a day is a half day
// =============================================================================

// HalfDayType distinguishes penalty half-days from genuine ones.
// A genuine half-day (approved leave, hours shortage) must not break a
// consecutive late streak; a penalty half-day is terminal state.
type HalfDayType string

const (
	HalfDayNone               HalfDayType = ""
	HalfDayGenuineShortage    HalfDayType = "Genuine Shortage"
	HalfDayLatePenalty        HalfDayType = "Late Penalty"
	HalfDayPersonalPermission HalfDayType = "Personal Permission"
	HalfDayOther              HalfDayType = "Other"
)

// =============================================================================
// COUNTING MODE / PENALTY ACTION - Policy dimensions
// =============================================================================

type CountingMode string

const (
	// ModeCumulative counts all late days in the window regardless of gaps.
	ModeCumulative CountingMode = "Cumulative"

	// ModeStrictlyConsecutive counts only unbroken runs of late days.
	// A non-late working day resets the counter, unless it is a genuine
	// half-day (caused by approved leave rather than by penalty).
	ModeStrictlyConsecutive CountingMode = "Strictly Consecutive"

	// ModeCumulativeWithReset is Cumulative, but the counter restarts at 0
	// immediately after a strike triggers a penalty.
	ModeCumulativeWithReset CountingMode = "Cumulative with Reset"
)

func (m CountingMode) Valid() bool {
	switch m {
	case ModeCumulative, ModeStrictlyConsecutive, ModeCumulativeWithReset:
		return true
	}
	return false
}

type PenaltyAction string

const (
	ActionHalfDay PenaltyAction = "Half-day"
	ActionFullDay PenaltyAction = "Full-day"
)

func (a PenaltyAction) Valid() bool {
	return a == ActionHalfDay || a == ActionFullDay
}

// PenalizedStatus returns the attendance status a penalty converts to.
func (a PenaltyAction) PenalizedStatus() Status {
	if a == ActionFullDay {
		return StatusAbsent
	}
	return StatusHalfDay
}

// =============================================================================
// ATTENDANCE FACT - Read-only projection for evaluation
// =============================================================================

// AttendanceFact is an immutable snapshot of one attendance day, as the
// evaluator sees it. Produced by the FactReader; never written back.
type AttendanceFact struct {
	RecordID       RecordID
	EmployeeID     EmployeeID
	Date           Date
	Status         Status
	IsLate         bool
	PenaltyApplied bool
	// StrikeProcessed mirrors the record's annotation flag; the batch
	// uses it to tell fresh strikes from re-evaluated ones.
	StrikeProcessed bool
	LeaveType       string
	GenuineHalfDay  bool
	WorkingHours    decimal.Decimal
}

// =============================================================================
// STRIKE EVENT - One countable late-arrival occurrence
// =============================================================================

// StrikeEvent is produced transiently by the evaluator. It is never
// persisted directly; it is persisted only as side effects on the
// attendance record it annotates.
type StrikeEvent struct {
	RecordID RecordID
	Date     Date
	Mode     CountingMode

	// Ordinal is the 1-based strike number within its counting window.
	Ordinal int

	// TriggersPenalty is true when Ordinal exceeds the strike threshold.
	// The threshold itself is tolerated; crossing it punishes every
	// subsequent late day in the window.
	TriggersPenalty bool

	// ResetOrdinal is the 0-based reset cycle this strike belongs to.
	// Only advances in Cumulative with Reset mode.
	ResetOrdinal int
}

// AppliedPenalty describes the outcome of a successful penalty application.
type AppliedPenalty struct {
	OldRecordID    RecordID
	NewRecordID    RecordID
	EmployeeID     EmployeeID
	Date           Date
	OriginalStatus Status
	NewStatus      Status
	Ordinal        int
	Remark         string

	// Skipped is true when the record was already penalized and the
	// apply was an idempotent no-op.
	Skipped bool
}
