/*
hook.go - Inline pre-save validation hook

PURPOSE:
  Runs synchronously before an attendance record is saved. Computes a
  best-effort running late count for the record's month - including the
  in-progress record itself if it isn't saved yet - and stamps it on the
  display-only LateStrikeCount field so the user sees their tally before
  the authoritative nightly pass runs.

  The hook NEVER triggers a penalty mutation. Penalty application is
  reserved for the batch orchestrator to avoid racing with in-flight
  edits; this count is purely informational and is overwritten by the
  nightly annotation pass.
*/
package engine

import (
	"context"
	"log"
)

// ValidationHook computes the informational running late count.
type ValidationHook struct {
	Policies PolicyStore
	Records  RecordStore
}

func NewValidationHook(policies PolicyStore, records RecordStore) *ValidationHook {
	return &ValidationHook{Policies: policies, Records: records}
}

// BeforeSave sets rec.LateStrikeCount to the month-to-date late count.
// A disabled or unconfigured policy, or a non-late record, yields 0.
// Errors are logged and degrade to a zero count: the hook must never
// block a save.
func (h *ValidationHook) BeforeSave(ctx context.Context, rec *AttendanceRecord) {
	rec.LateStrikeCount = 0

	policy, err := h.Policies.GetPolicy(ctx)
	if err != nil {
		if !IsConfiguration(err) {
			log.Printf("[Hook] error loading policy: %v", err)
		}
		return
	}
	if !policy.Enabled || !rec.LateEntry {
		return
	}

	count, err := h.RunningLateCount(ctx, rec.EmployeeID, rec.Date, rec.ID)
	if err != nil {
		log.Printf("[Hook] error counting late entries for %s: %v", rec.EmployeeID, err)
		return
	}

	// The in-progress record is late but not persisted yet, so it is
	// not part of the stored count.
	rec.LateStrikeCount = count + 1
}

// RunningLateCount returns the stored late count for the month of asOf,
// up to and including asOf, excluding the given record ID (so an edit
// in flight doesn't count itself twice).
func (h *ValidationHook) RunningLateCount(ctx context.Context, employee EmployeeID, asOf Date, exclude RecordID) (int, error) {
	return h.Records.CountLate(ctx, employee, asOf.StartOfMonth(), asOf, exclude)
}
