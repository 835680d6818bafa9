/*
applicator.go - Penalty application and reversal via record supersession

PURPOSE:
  The only writer of penalty state. Given a strike event that triggers a
  penalty, Apply performs the versioned mutation exactly once:

    capture original status
      -> cancel the current active version
      -> copy as new version with penalized status + provenance fields
      -> insert + submit the new version
      -> notify (best-effort)

  Reverse undoes it for reprocessing: cancel the penalized version and
  submit a restored copy with the original status and penalty fields
  cleared.

RE-ENTRANCY GUARD:
  Apply re-reads the record and re-checks PenaltyApplied at apply time,
  not just at evaluation time. Evaluation and application may be
  separated in time (manual reprocessing triggers a fresh read), so a
  stale strike event against an already-penalized record is an
  idempotent no-op success, never a double penalty.

NOTIFICATIONS:
  Delivered through the Notifier collaborator after the mutation
  commits. A notification failure is logged and swallowed; it never
  rolls back the penalty.
*/
package engine

import (
	"context"
	"fmt"
	"log"
)

// Applicator performs penalty mutations on attendance records.
type Applicator struct {
	Records  RecordStore
	Notifier Notifier

	// HRRecipients receive penalty notifications alongside the employee.
	HRRecipients []string
}

func NewApplicator(records RecordStore, notifier Notifier) *Applicator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Applicator{Records: records, Notifier: notifier}
}

// Apply penalizes the record referenced by the strike event under the
// given policy. Already-penalized records yield a no-op success with
// Skipped=true.
func (a *Applicator) Apply(ctx context.Context, ref RecordID, policy PolicySettings, ev StrikeEvent) (AppliedPenalty, error) {
	// Fresh read; the evaluation result may be stale.
	current, err := a.Records.Get(ctx, ref)
	if err != nil {
		return AppliedPenalty{}, &ApplyError{RecordID: ref, Op: "apply", Err: err}
	}

	// Idempotent skip: penalty is terminal state.
	if current.PenaltyApplied {
		return AppliedPenalty{OldRecordID: ref, EmployeeID: current.EmployeeID, Date: current.Date, Skipped: true}, nil
	}
	if !current.IsCurrent() {
		return AppliedPenalty{}, &ApplyError{RecordID: ref, Op: "apply", Err: ErrRecordCancelled}
	}
	// The record must still actually be late: the flag may have been
	// corrected since evaluation.
	if !current.LateEntry {
		return AppliedPenalty{OldRecordID: ref, EmployeeID: current.EmployeeID, Date: current.Date, Skipped: true}, nil
	}

	originalStatus := current.Status
	newStatus := policy.PenaltyAction.PenalizedStatus()
	remark := PenaltyRemark(ev.Ordinal, current.Date, policy)

	if err := a.Records.Cancel(ctx, ref); err != nil {
		return AppliedPenalty{}, &ApplyError{RecordID: ref, Op: "apply", Err: err}
	}

	next, err := a.Records.CopyAsNew(ctx, ref)
	if err != nil {
		return AppliedPenalty{}, &ApplyError{RecordID: ref, Op: "apply", Err: err}
	}
	next.Status = newStatus
	next.PenaltyApplied = true
	next.OriginalStatus = originalStatus
	next.LateIncidentRemark = remark
	next.LateStrikeCount = ev.Ordinal
	next.StrikeProcessed = true
	next.CumulativeResetCount = ev.ResetOrdinal
	if newStatus == StatusHalfDay {
		next.HalfDayType = HalfDayLatePenalty
	}

	if err := a.Records.Insert(ctx, next); err != nil {
		return AppliedPenalty{}, &ApplyError{RecordID: ref, Op: "apply", Err: err}
	}
	if err := a.Records.Submit(ctx, next.ID); err != nil {
		return AppliedPenalty{}, &ApplyError{RecordID: next.ID, Op: "apply", Err: err}
	}

	applied := AppliedPenalty{
		OldRecordID:    ref,
		NewRecordID:    next.ID,
		EmployeeID:     next.EmployeeID,
		Date:           next.Date,
		OriginalStatus: originalStatus,
		NewStatus:      newStatus,
		Ordinal:        ev.Ordinal,
		Remark:         remark,
	}

	a.notifyPenalty(ctx, applied, policy)
	return applied, nil
}

// Reverse cancels a penalized version and restores the original status.
// Reversing an unpenalized record is a no-op, which is what makes
// reprocessing safe to call repeatedly.
func (a *Applicator) Reverse(ctx context.Context, ref RecordID) error {
	current, err := a.Records.Get(ctx, ref)
	if err != nil {
		return &ApplyError{RecordID: ref, Op: "reverse", Err: err}
	}
	if !current.PenaltyApplied {
		return nil
	}
	if !current.IsCurrent() {
		// Superseded already; nothing to restore here.
		return nil
	}

	if err := a.Records.Cancel(ctx, ref); err != nil {
		return &ApplyError{RecordID: ref, Op: "reverse", Err: err}
	}

	restored, err := a.Records.CopyAsNew(ctx, ref)
	if err != nil {
		return &ApplyError{RecordID: ref, Op: "reverse", Err: err}
	}
	if current.OriginalStatus != "" {
		restored.Status = current.OriginalStatus
	}
	restored.PenaltyApplied = false
	restored.OriginalStatus = ""
	restored.LateIncidentRemark = ""
	restored.LateStrikeCount = 0
	restored.StrikeProcessed = false
	restored.CumulativeResetCount = 0
	if restored.HalfDayType == HalfDayLatePenalty {
		restored.HalfDayType = HalfDayNone
	}

	if err := a.Records.Insert(ctx, restored); err != nil {
		return &ApplyError{RecordID: ref, Op: "reverse", Err: err}
	}
	if err := a.Records.Submit(ctx, restored.ID); err != nil {
		return &ApplyError{RecordID: restored.ID, Op: "reverse", Err: err}
	}
	return nil
}

func (a *Applicator) notifyPenalty(ctx context.Context, applied AppliedPenalty, policy PolicySettings) {
	recipients := append([]string{string(applied.EmployeeID)}, a.HRRecipients...)
	subject := fmt.Sprintf("Late Penalty Applied: %s", applied.EmployeeID)
	body := fmt.Sprintf(
		"Late arrival penalty has been automatically applied.\n\n"+
			"Employee: %s\nDate: %s\nStrike Count: %d\nPenalty Type: %s\nStatus changed from %s to %s\n\n%s",
		applied.EmployeeID, applied.Date, applied.Ordinal, policy.PenaltyAction,
		applied.OriginalStatus, applied.NewStatus, applied.Remark,
	)
	if err := a.Notifier.Notify(ctx, recipients, subject, body); err != nil {
		// Best-effort: the penalty stands regardless.
		log.Printf("[Notify] failed to send penalty notification for %s on %s: %v",
			applied.EmployeeID, applied.Date, err)
	}
}

// =============================================================================
// REMARKS
// =============================================================================

// PenaltyRemark builds the human-readable audit remark, e.g.
// "4th late arrival in March 2025 - Cumulative penalty applied (Threshold: 3)".
func PenaltyRemark(ordinal int, date Date, policy PolicySettings) string {
	return fmt.Sprintf("%s late arrival in %s - %s penalty applied (Threshold: %d)",
		Ordinal(ordinal), date.MonthYear(), modeRemarkWord(policy.CountingMode), policy.StrikeThreshold)
}

// StrikeRemark builds the annotation remark for counted-but-not-penalized
// late days, e.g. "2nd late arrival in March 2025".
func StrikeRemark(ordinal int, date Date, policy PolicySettings) string {
	remark := fmt.Sprintf("%s late arrival in %s", Ordinal(ordinal), date.MonthYear())
	if ordinal >= policy.StrikeThreshold {
		remark += " - WARNING: Exceeded monthly late arrival limit!"
	}
	return remark
}

func modeRemarkWord(mode CountingMode) string {
	if mode == ModeStrictlyConsecutive {
		return "Consecutive"
	}
	return "Cumulative"
}

// Ordinal renders n with its English suffix: 1st, 2nd, 3rd, 4th...
// The 11-13 band is always "th" (11th, 112th, 113th).
func Ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
