/*
orchestrator.go - Daily batch driver and administrative reprocessing

PURPOSE:
  Drives the nightly pass:

    Start -> LoadPolicy -> (disabled: Stop) -> EnumerateEmployees
      -> [per employee: ComputeWindows -> ReadFacts -> Evaluate -> ApplyEach]
      -> Stop

  Windows run from the policy's apply-from date (or the start of the
  current month) through yesterday, split per calendar month so strike
  counters reset at month boundaries by construction. A window whose
  start is today is a no-op: the day isn't complete yet, so same-day
  entries are never punished.

FAILURE ISOLATION:
  Per-employee failures are caught, logged, and recorded on the run
  summary; one employee's error never blocks the others. A partial run
  that crashes midway leaves already-applied penalties in place - safe,
  because application is idempotent and the next run no-ops on them.

REPROCESSING:
  ReprocessFrom(date) first reverses every penalty dated >= date,
  persists the new apply-from date, then re-runs the evaluation pass.
  Safe to call repeatedly: reversing an unpenalized record is a no-op.
*/
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Orchestrator wires the policy store, fact reader and applicator into
// the batch state machine.
type Orchestrator struct {
	Policies   PolicyStore
	Records    RecordStore
	Employees  EmployeeStore
	Reader     *FactReader
	Applicator *Applicator
	Notifier   Notifier

	// HRRecipients receive threshold and report notifications.
	HRRecipients []string

	// Clock returns "today" for window computation. Defaults to the
	// real clock; injected in tests.
	Clock func() Date
}

func NewOrchestrator(policies PolicyStore, records RecordStore, employees EmployeeStore, notifier Notifier) *Orchestrator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Orchestrator{
		Policies:   policies,
		Records:    records,
		Employees:  employees,
		Reader:     NewFactReader(records),
		Applicator: NewApplicator(records, notifier),
		Notifier:   notifier,
		Clock:      Today,
	}
}

// RunSummary reports what a batch pass did.
type RunSummary struct {
	StartedAt          time.Time
	Window             Window
	EmployeesProcessed int
	EmployeesFailed    int
	StrikesAnnotated   int
	PenaltiesApplied   int
	PenaltiesSkipped   int
	Errors             []string
}

func (s RunSummary) String() string {
	return fmt.Sprintf("processed %d employees (%d failed): %d strikes annotated, %d penalties applied, %d skipped",
		s.EmployeesProcessed, s.EmployeesFailed, s.StrikesAnnotated, s.PenaltiesApplied, s.PenaltiesSkipped)
}

// Run executes one batch pass over all active employees.
// A missing or disabled policy stops the run without error: evaluation
// is simply not due.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{StartedAt: time.Now()}

	policy, err := o.Policies.GetPolicy(ctx)
	if err != nil {
		if IsConfiguration(err) {
			log.Printf("[Batch] skipping run: %v", err)
			return summary, nil
		}
		return summary, fmt.Errorf("loading policy: %w", err)
	}
	if !policy.Enabled {
		log.Printf("[Batch] late penalty disabled, nothing to do")
		return summary, nil
	}

	windows := o.computeWindows(policy)
	if len(windows) == 0 {
		log.Printf("[Batch] no completed days to process yet")
		return summary, nil
	}
	summary.Window = Window{Start: windows[0].Start, End: windows[len(windows)-1].End}

	employees, err := o.Employees.ListActiveEmployees(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing employees: %w", err)
	}

	for _, emp := range employees {
		if err := o.processEmployee(ctx, emp, policy, windows, &summary); err != nil {
			// Failure isolation: log and continue with the next employee.
			summary.EmployeesFailed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", emp.ID, err))
			log.Printf("[Batch] error processing employee %s: %v", emp.ID, err)
			continue
		}
		summary.EmployeesProcessed++
	}

	log.Printf("[Batch] completed: %s", summary)
	return summary, nil
}

// computeWindows builds the per-month processing windows ending yesterday.
func (o *Orchestrator) computeWindows(policy PolicySettings) []Window {
	today := o.Clock()
	yesterday := today.AddDays(-1)

	start := today.StartOfMonth()
	if policy.ApplyFromDate != nil {
		start = *policy.ApplyFromDate
	}
	return MonthWindows(start, yesterday)
}

func (o *Orchestrator) processEmployee(ctx context.Context, emp Employee, policy PolicySettings, windows []Window, summary *RunSummary) error {
	for _, w := range windows {
		facts, err := o.Reader.ListFacts(ctx, emp.ID, w.Start, w.End)
		if err != nil {
			return err
		}
		if len(facts) == 0 {
			continue
		}

		factByRecord := make(map[RecordID]AttendanceFact, len(facts))
		for _, f := range facts {
			factByRecord[f.RecordID] = f
		}

		events := Evaluate(facts, policy)
		newlyHandled := 0

		for _, ev := range events {
			if ev.TriggersPenalty {
				applied, err := o.Applicator.Apply(ctx, ev.RecordID, policy, ev)
				if err != nil {
					// Leave the record unpenalized; the next run retries.
					log.Printf("[Batch] %v", err)
					summary.Errors = append(summary.Errors, err.Error())
					continue
				}
				if applied.Skipped {
					summary.PenaltiesSkipped++
				} else {
					summary.PenaltiesApplied++
					newlyHandled++
				}
				continue
			}

			// Counted but tolerated: stamp the running ordinal and remark
			// on the record so the tally is visible without supersession.
			if o.annotateStrike(ctx, ev, policy) {
				summary.StrikesAnnotated++
			}
			if f, ok := factByRecord[ev.RecordID]; ok && !f.StrikeProcessed {
				newlyHandled++
			}
		}

		if newlyHandled > 0 {
			o.notifyThreshold(ctx, emp, policy, w, facts)
		}
	}
	return nil
}

// annotateStrike writes the display fields for a tolerated strike.
func (o *Orchestrator) annotateStrike(ctx context.Context, ev StrikeEvent, policy PolicySettings) bool {
	remark := StrikeRemark(ev.Ordinal, ev.Date, policy)
	processed := true
	fields := FieldValues{
		LateStrikeCount:      &ev.Ordinal,
		LateIncidentRemark:   &remark,
		StrikeProcessed:      &processed,
		CumulativeResetCount: &ev.ResetOrdinal,
	}
	if err := o.Records.SetFields(ctx, ev.RecordID, fields); err != nil {
		log.Printf("[Batch] failed to annotate strike on %s: %v", ev.RecordID, err)
		return false
	}
	return true
}

// notifyThreshold sends the limit-reached / limit-exceeded alerts from
// the original policy: at exactly the threshold the employee and HR are
// told; beyond it HR gets an urgent alert. Best-effort.
func (o *Orchestrator) notifyThreshold(ctx context.Context, emp Employee, policy PolicySettings, w Window, facts []AttendanceFact) {
	lateDays := 0
	for _, f := range facts {
		if f.IsLate {
			lateDays++
		}
	}

	monthYear := w.Start.MonthYear()
	switch {
	case lateDays == policy.StrikeThreshold:
		subject := fmt.Sprintf("Late Arrival Limit Reached - %s", emp.Name)
		body := fmt.Sprintf(
			"Dear %s,\n\nYou have reached the maximum allowed late arrivals (%d) for %s.\n"+
				"Any additional late arrivals may result in disciplinary action.\n"+
				"Please ensure timely attendance going forward.",
			emp.Name, lateDays, monthYear)
		recipients := append([]string{emp.Email}, o.HRRecipients...)
		if err := o.Notifier.Notify(ctx, recipients, subject, body); err != nil {
			log.Printf("[Notify] threshold alert failed for %s: %v", emp.ID, err)
		}
	case lateDays > policy.StrikeThreshold:
		subject := fmt.Sprintf("URGENT: Excessive Late Arrivals - %s", emp.Name)
		body := fmt.Sprintf(
			"HR Alert: Employee %s (%s) has exceeded the late arrival limit.\n"+
				"Late arrivals in %s: %d\nImmediate action required as per company policy.",
			emp.Name, emp.ID, monthYear, lateDays)
		if err := o.Notifier.Notify(ctx, o.HRRecipients, subject, body); err != nil {
			log.Printf("[Notify] excessive-late alert failed for %s: %v", emp.ID, err)
		}
	}
}

// =============================================================================
// REPROCESSING
// =============================================================================

// ReprocessSummary reports an administrative reprocess-from-date run.
type ReprocessSummary struct {
	From              Date
	PenaltiesReversed int
	Run               RunSummary
}

func (s ReprocessSummary) String() string {
	return fmt.Sprintf("Reprocessed attendance from %s: %d penalties reversed, %d penalties applied (%d employees, %d errors)",
		s.From, s.PenaltiesReversed, s.Run.PenaltiesApplied, s.Run.EmployeesProcessed, len(s.Run.Errors))
}

// ReprocessFrom reverses all penalties dated on or after from, persists
// the new apply-from date, then re-runs the full evaluation pass.
// Idempotent: a second call with the same date reverses nothing and the
// re-run only re-applies what the policy still demands.
func (o *Orchestrator) ReprocessFrom(ctx context.Context, from Date) (ReprocessSummary, error) {
	summary := ReprocessSummary{From: from}

	// Reversal is meaningful even while the penalty is disabled, but a
	// never-configured policy has nothing to reprocess against.
	policy, err := o.Policies.GetPolicy(ctx)
	if err != nil {
		return summary, fmt.Errorf("loading policy: %w", err)
	}

	employees, err := o.Employees.ListActiveEmployees(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing employees: %w", err)
	}

	today := o.Clock()
	for _, emp := range employees {
		records, err := o.Records.QueryRange(ctx, emp.ID, from, today)
		if err != nil {
			log.Printf("[Reprocess] error reading records for %s: %v", emp.ID, err)
			continue
		}
		for _, rec := range records {
			if !rec.PenaltyApplied {
				continue
			}
			if err := o.Applicator.Reverse(ctx, rec.ID); err != nil {
				log.Printf("[Reprocess] %v", err)
				continue
			}
			summary.PenaltiesReversed++
		}
	}

	// Persist the new window start so subsequent nightly runs cover it.
	policy.ApplyFromDate = &from
	if err := o.Policies.SavePolicy(ctx, policy); err != nil {
		return summary, fmt.Errorf("updating apply-from date: %w", err)
	}

	run, err := o.Run(ctx)
	if err != nil {
		return summary, err
	}
	summary.Run = run

	log.Printf("[Reprocess] %s", summary)
	return summary, nil
}

// =============================================================================
// MONTHLY LATE REPORT
// =============================================================================

// LateReportRow summarizes one employee's late arrivals for a month.
type LateReportRow struct {
	EmployeeID   EmployeeID
	EmployeeName string
	LateCount    int
	LateDates    []Date
	WorkingHours decimal.Decimal
}

// MonthlyLateReport builds the per-month summary of employees at or over
// the threshold and delivers it to HR through the notifier.
func (o *Orchestrator) MonthlyLateReport(ctx context.Context, year int, month time.Month) ([]LateReportRow, error) {
	policy, err := o.Policies.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}

	first := NewDate(year, month, 1)
	last := first.EndOfMonth()

	employees, err := o.Employees.ListActiveEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}

	var rows []LateReportRow
	for _, emp := range employees {
		facts, err := o.Reader.ListFacts(ctx, emp.ID, first, last)
		if err != nil {
			log.Printf("[Report] error reading facts for %s: %v", emp.ID, err)
			continue
		}

		row := LateReportRow{EmployeeID: emp.ID, EmployeeName: emp.Name, WorkingHours: decimal.Zero}
		for _, f := range facts {
			if !f.IsLate {
				continue
			}
			row.LateCount++
			row.LateDates = append(row.LateDates, f.Date)
			row.WorkingHours = row.WorkingHours.Add(f.WorkingHours)
		}
		if row.LateCount >= policy.StrikeThreshold {
			rows = append(rows, row)
		}
	}

	if len(rows) > 0 && len(o.HRRecipients) > 0 {
		subject := fmt.Sprintf("Monthly Late Arrival Report - %s", first.MonthYear())
		if err := o.Notifier.Notify(ctx, o.HRRecipients, subject, formatLateReport(first, rows)); err != nil {
			log.Printf("[Notify] monthly report failed: %v", err)
		}
	}
	return rows, nil
}

func formatLateReport(month Date, rows []LateReportRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly Late Arrival Report - %s\n\n", month.MonthYear())
	for _, row := range rows {
		dates := make([]string, len(row.LateDates))
		for i, d := range row.LateDates {
			dates[i] = d.String()
		}
		fmt.Fprintf(&b, "%s (%s): %d late arrivals on %s (worked %s hours)\n",
			row.EmployeeName, row.EmployeeID, row.LateCount, strings.Join(dates, ", "), row.WorkingHours)
	}
	return b.String()
}
