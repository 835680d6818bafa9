package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func submitRecord(t *testing.T, store *sqlite.Store, emp string, date engine.Date, late bool) *engine.AttendanceRecord {
	t.Helper()
	ctx := context.Background()
	rec := &engine.AttendanceRecord{
		EmployeeID: engine.EmployeeID(emp),
		Date:       date,
		Status:     engine.StatusPresent,
		LateEntry:  late,
	}
	require.NoError(t, store.Insert(ctx, rec))
	require.NoError(t, store.Submit(ctx, rec.ID))
	return rec
}

// =============================================================================
// RECORD VERSIONING
// =============================================================================

func TestStore_RecordRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)

	rec := submitRecord(t, store, "emp-1", date, true)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, engine.StatusPresent, got.Status)
	assert.True(t, got.LateEntry)
	assert.Equal(t, engine.DocSubmitted, got.DocStatus)

	current, err := store.Current(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, current.ID)
}

func TestStore_Get_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, engine.ErrRecordNotFound)
}

func TestStore_SingleActiveVersionPerDay(t *testing.T) {
	// The partial unique index rejects a second submitted version.
	store := newTestStore(t)
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)
	submitRecord(t, store, "emp-1", date, false)

	second := &engine.AttendanceRecord{
		EmployeeID: "emp-1",
		Date:       date,
		Status:     engine.StatusPresent,
	}
	require.NoError(t, store.Insert(ctx, second))

	err := store.Submit(ctx, second.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrDuplicateActive)
}

func TestStore_CancelCopySubmit_Lineage(t *testing.T) {
	// The supersession sequence the applicator performs.
	store := newTestStore(t)
	ctx := context.Background()
	date := engine.NewDate(2025, time.March, 14)
	rec := submitRecord(t, store, "emp-1", date, true)

	require.NoError(t, store.Cancel(ctx, rec.ID))

	next, err := store.CopyAsNew(ctx, rec.ID)
	require.NoError(t, err)
	next.Status = engine.StatusHalfDay
	next.PenaltyApplied = true
	require.NoError(t, store.Insert(ctx, next))
	require.NoError(t, store.Submit(ctx, next.ID))

	current, err := store.Current(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, next.ID, current.ID)
	assert.Equal(t, rec.ID, current.AmendedFrom)
	assert.True(t, current.PenaltyApplied)
}

func TestStore_Cancel_AlreadyCancelled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := submitRecord(t, store, "emp-1", engine.NewDate(2025, time.March, 14), false)

	require.NoError(t, store.Cancel(ctx, rec.ID))
	err := store.Cancel(ctx, rec.ID)
	assert.ErrorIs(t, err, engine.ErrRecordCancelled)
}

func TestStore_CountLate_ExcludesCancelledAndSelf(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	from := engine.NewDate(2025, time.March, 1)
	to := engine.NewDate(2025, time.March, 31)

	kept := submitRecord(t, store, "emp-1", engine.NewDate(2025, time.March, 3), true)
	submitRecord(t, store, "emp-1", engine.NewDate(2025, time.March, 5), true)
	cancelled := submitRecord(t, store, "emp-1", engine.NewDate(2025, time.March, 7), true)
	require.NoError(t, store.Cancel(ctx, cancelled.ID))

	count, err := store.CountLate(ctx, "emp-1", from, to, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountLate(ctx, "emp-1", from, to, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_SetFields_PartialUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := submitRecord(t, store, "emp-1", engine.NewDate(2025, time.March, 14), true)

	count := 2
	remark := "2nd late arrival in March 2025"
	processed := true
	require.NoError(t, store.SetFields(ctx, rec.ID, engine.FieldValues{
		LateStrikeCount:    &count,
		LateIncidentRemark: &remark,
		StrikeProcessed:    &processed,
	}))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LateStrikeCount)
	assert.Equal(t, remark, got.LateIncidentRemark)
	assert.True(t, got.StrikeProcessed)
	assert.Zero(t, got.CumulativeResetCount, "untouched field stays")
}

// =============================================================================
// POLICY SINGLETON
// =============================================================================

func TestStore_PolicySeededWithDefaults(t *testing.T) {
	store := newTestStore(t)

	policy, err := store.GetPolicy(context.Background())
	require.NoError(t, err)
	assert.False(t, policy.Enabled)
	assert.Equal(t, engine.ModeCumulative, policy.CountingMode)
	assert.Equal(t, 3, policy.StrikeThreshold)
}

func TestStore_PolicyRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	from := engine.NewDate(2025, time.March, 1)
	saved := engine.PolicySettings{
		Enabled:         true,
		CountingMode:    engine.ModeStrictlyConsecutive,
		StrikeThreshold: 4,
		PenaltyAction:   engine.ActionFullDay,
		ApplyFromDate:   &from,
	}
	require.NoError(t, store.SavePolicy(ctx, saved))

	got, err := store.GetPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.CountingMode, got.CountingMode)
	assert.Equal(t, 4, got.StrikeThreshold)
	require.NotNil(t, got.ApplyFromDate)
	assert.True(t, got.ApplyFromDate.Equal(from))
}

// =============================================================================
// EMPLOYEES AND BATCH RUNS
// =============================================================================

func TestStore_Employees(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, engine.Employee{
		ID: "emp-1", Name: "Asha Rao", Email: "asha@example.com", Active: true,
	}))
	require.NoError(t, store.SaveEmployee(ctx, engine.Employee{
		ID: "emp-2", Name: "Former Employee", Active: false,
	}))

	active, err := store.ListActiveEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, engine.EmployeeID("emp-1"), active[0].ID)

	_, err = store.GetEmployee(ctx, "ghost")
	assert.ErrorIs(t, err, engine.ErrEmployeeNotFound)
}

func TestStore_BatchRuns_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := time.Date(2025, time.March, 14, 2, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	require.NoError(t, store.SaveBatchRun(ctx, sqlite.BatchRun{
		ID: "run-1", Kind: "scheduled", StartedAt: older, PenaltiesApplied: 1,
	}))
	require.NoError(t, store.SaveBatchRun(ctx, sqlite.BatchRun{
		ID: "run-2", Kind: "manual", StartedAt: newer,
	}))

	runs, err := store.ListBatchRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 1, runs[1].PenaltiesApplied)
}
