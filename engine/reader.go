/*
reader.go - Attendance fact reader

PURPOSE:
  Projects attendance records from the document store into the ordered,
  immutable AttendanceFact sequence the evaluator consumes. Only
  working-day statuses (Present, Half Day, Work From Home) are included;
  absences are excluded from late counting entirely, even when their
  record carries a late flag.

  The reader is restartable: every call recomputes from the store, so an
  evaluation that is re-run after a penalty application sees the updated
  record versions.
*/
package engine

import (
	"context"
	"fmt"
)

// FactReader reads per-day attendance facts for evaluation.
type FactReader struct {
	Records RecordStore
}

func NewFactReader(records RecordStore) *FactReader {
	return &FactReader{Records: records}
}

// ListFacts returns the working-day facts for an employee in [from, to],
// ascending by date.
func (fr *FactReader) ListFacts(ctx context.Context, employee EmployeeID, from, to Date) ([]AttendanceFact, error) {
	if from.After(to) {
		return nil, ErrInvalidWindow
	}

	records, err := fr.Records.QueryRange(ctx, employee, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing facts for %s in %s..%s: %w", employee, from, to, err)
	}

	facts := make([]AttendanceFact, 0, len(records))
	for _, rec := range records {
		if !rec.Status.IsWorking() {
			continue
		}
		facts = append(facts, rec.Fact())
	}
	return facts, nil
}

// CountLateDays returns the number of distinct active late days in the
// range. Used by the admin status surface; the authoritative count is
// always recomputed by the evaluator.
func (fr *FactReader) CountLateDays(ctx context.Context, employee EmployeeID, from, to Date) (int, error) {
	facts, err := fr.ListFacts(ctx, employee, from, to)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, f := range facts {
		if f.IsLate {
			count++
		}
	}
	return count, nil
}
