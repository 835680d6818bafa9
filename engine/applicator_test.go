package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newSubmittedRecord(t *testing.T, mem *store.Memory, emp string, date engine.Date, late bool) *engine.AttendanceRecord {
	t.Helper()
	ctx := context.Background()
	rec := &engine.AttendanceRecord{
		EmployeeID: engine.EmployeeID(emp),
		Date:       date,
		Status:     engine.StatusPresent,
		LateEntry:  late,
	}
	require.NoError(t, mem.Insert(ctx, rec))
	require.NoError(t, mem.Submit(ctx, rec.ID))
	return rec
}

type recordingNotifier struct {
	subjects []string
	fail     bool
}

func (n *recordingNotifier) Notify(_ context.Context, _ []string, subject, _ string) error {
	if n.fail {
		return errors.New("smtp unreachable")
	}
	n.subjects = append(n.subjects, subject)
	return nil
}

func strikeEvent(rec *engine.AttendanceRecord, ordinal int) engine.StrikeEvent {
	return engine.StrikeEvent{
		RecordID:        rec.ID,
		Date:            rec.Date,
		Mode:            engine.ModeCumulative,
		Ordinal:         ordinal,
		TriggersPenalty: true,
	}
}

// =============================================================================
// APPLY - PENALTY APPLICATION
// =============================================================================

func TestApplicator_Apply_SupersedesRecord(t *testing.T) {
	// GIVEN: A submitted late record and a triggering strike event
	// WHEN: Applying the penalty
	// THEN: The old version is cancelled and a penalized copy is submitted

	mem := store.NewMemory()
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)
	rec := newSubmittedRecord(t, mem, "emp-1", date, true)

	notifier := &recordingNotifier{}
	app := engine.NewApplicator(mem, notifier)

	applied, err := app.Apply(ctx, rec.ID, cumulativePolicy(3), strikeEvent(rec, 4))
	require.NoError(t, err)
	assert.False(t, applied.Skipped)
	assert.Equal(t, engine.StatusPresent, applied.OriginalStatus)
	assert.Equal(t, engine.StatusHalfDay, applied.NewStatus)

	// Old version cancelled
	old, err := mem.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.DocCancelled, old.DocStatus)

	// New version is the active one, with full provenance
	current, err := mem.Current(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.True(t, current.PenaltyApplied)
	assert.Equal(t, engine.StatusHalfDay, current.Status)
	assert.Equal(t, engine.StatusPresent, current.OriginalStatus)
	assert.Equal(t, engine.HalfDayLatePenalty, current.HalfDayType)
	assert.Equal(t, rec.ID, current.AmendedFrom)
	assert.Equal(t, 4, current.LateStrikeCount)
	assert.True(t, current.StrikeProcessed)
	assert.Contains(t, current.LateIncidentRemark, "4th late arrival in March 2025")

	assert.Len(t, notifier.subjects, 1)
}

func TestApplicator_Apply_FullDayAction(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)
	rec := newSubmittedRecord(t, mem, "emp-1", date, true)

	policy := cumulativePolicy(3)
	policy.PenaltyAction = engine.ActionFullDay

	app := engine.NewApplicator(mem, nil)
	applied, err := app.Apply(ctx, rec.ID, policy, strikeEvent(rec, 4))
	require.NoError(t, err)
	assert.Equal(t, engine.StatusAbsent, applied.NewStatus)

	current, err := mem.Current(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusAbsent, current.Status)
	assert.Equal(t, engine.HalfDayNone, current.HalfDayType)
}

func TestApplicator_Apply_AlreadyPenalized_SkippedNoOp(t *testing.T) {
	// Applying twice must not produce a second supersession.
	mem := store.NewMemory()
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)
	rec := newSubmittedRecord(t, mem, "emp-1", date, true)

	app := engine.NewApplicator(mem, nil)
	applied, err := app.Apply(ctx, rec.ID, cumulativePolicy(3), strikeEvent(rec, 4))
	require.NoError(t, err)

	again, err := app.Apply(ctx, applied.NewRecordID, cumulativePolicy(3), strikeEvent(rec, 4))
	require.NoError(t, err)
	assert.True(t, again.Skipped)

	// Still exactly one active version
	current, err := mem.Current(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, applied.NewRecordID, current.ID)
}

func TestApplicator_Apply_CancelledRecord_Fails(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	rec := newSubmittedRecord(t, mem, "emp-1", engine.NewDate(2025, time.March, 14), true)
	require.NoError(t, mem.Cancel(ctx, rec.ID))

	app := engine.NewApplicator(mem, nil)
	_, err := app.Apply(ctx, rec.ID, cumulativePolicy(3), strikeEvent(rec, 4))

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrRecordCancelled)
	var applyErr *engine.ApplyError
	assert.ErrorAs(t, err, &applyErr)
}

func TestApplicator_Apply_NoLongerLate_SkippedNoOp(t *testing.T) {
	// The late flag was corrected between evaluation and application.
	mem := store.NewMemory()
	ctx := context.Background()
	rec := newSubmittedRecord(t, mem, "emp-1", engine.NewDate(2025, time.March, 14), false)

	app := engine.NewApplicator(mem, nil)
	applied, err := app.Apply(ctx, rec.ID, cumulativePolicy(3), strikeEvent(rec, 4))

	require.NoError(t, err)
	assert.True(t, applied.Skipped)
}

func TestApplicator_Apply_NotificationFailureDoesNotRollBack(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)
	rec := newSubmittedRecord(t, mem, "emp-1", date, true)

	app := engine.NewApplicator(mem, &recordingNotifier{fail: true})
	applied, err := app.Apply(ctx, rec.ID, cumulativePolicy(3), strikeEvent(rec, 4))

	require.NoError(t, err)
	assert.False(t, applied.Skipped)

	current, err := mem.Current(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.True(t, current.PenaltyApplied)
}

// =============================================================================
// REVERSE - PENALTY REVERSAL
// =============================================================================

func TestApplicator_Reverse_RestoresOriginalStatus(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)
	rec := newSubmittedRecord(t, mem, "emp-1", date, true)

	app := engine.NewApplicator(mem, nil)
	applied, err := app.Apply(ctx, rec.ID, cumulativePolicy(3), strikeEvent(rec, 4))
	require.NoError(t, err)

	require.NoError(t, app.Reverse(ctx, applied.NewRecordID))

	current, err := mem.Current(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusPresent, current.Status)
	assert.False(t, current.PenaltyApplied)
	assert.Empty(t, current.LateIncidentRemark)
	assert.Equal(t, engine.HalfDayNone, current.HalfDayType)
	assert.True(t, current.LateEntry, "the day was still factually late")
}

func TestApplicator_Reverse_UnpenalizedRecord_NoOp(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)
	rec := newSubmittedRecord(t, mem, "emp-1", date, true)

	app := engine.NewApplicator(mem, nil)
	require.NoError(t, app.Reverse(ctx, rec.ID))

	current, err := mem.Current(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, current.ID, "record untouched")
}

// =============================================================================
// REMARKS AND ORDINALS
// =============================================================================

func TestOrdinal_Suffixes(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd",
		101: "101st", 111: "111th", 112: "112th", 113: "113th",
	}
	for n, want := range cases {
		assert.Equal(t, want, engine.Ordinal(n))
	}
}

func TestPenaltyRemark_Format(t *testing.T) {
	date := engine.NewDate(2025, time.March, 14)
	remark := engine.PenaltyRemark(4, date, cumulativePolicy(3))
	assert.Equal(t, "4th late arrival in March 2025 - Cumulative penalty applied (Threshold: 3)", remark)

	remark = engine.PenaltyRemark(4, date, consecutivePolicy(3))
	assert.Equal(t, "4th late arrival in March 2025 - Consecutive penalty applied (Threshold: 3)", remark)
}

func TestStrikeRemark_WarnsAtThreshold(t *testing.T) {
	date := engine.NewDate(2025, time.March, 9)
	policy := cumulativePolicy(3)

	assert.Equal(t, "2nd late arrival in March 2025", engine.StrikeRemark(2, date, policy))
	assert.Equal(t, "3rd late arrival in March 2025 - WARNING: Exceeded monthly late arrival limit!",
		engine.StrikeRemark(3, date, policy))
}
