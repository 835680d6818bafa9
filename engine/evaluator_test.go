package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func march(day int) engine.Date {
	return engine.NewDate(2025, time.March, day)
}

func lateFact(day int) engine.AttendanceFact {
	return engine.AttendanceFact{
		RecordID:   engine.RecordID("rec-" + march(day).String()),
		EmployeeID: "emp-1",
		Date:       march(day),
		Status:     engine.StatusPresent,
		IsLate:     true,
	}
}

func onTimeFact(day int) engine.AttendanceFact {
	f := lateFact(day)
	f.IsLate = false
	return f
}

func penalizedFact(day int) engine.AttendanceFact {
	f := lateFact(day)
	f.Status = engine.StatusHalfDay
	f.PenaltyApplied = true
	return f
}

func genuineHalfDayFact(day int) engine.AttendanceFact {
	f := onTimeFact(day)
	f.Status = engine.StatusHalfDay
	f.GenuineHalfDay = true
	return f
}

func cumulativePolicy(threshold int) engine.PolicySettings {
	return engine.PolicySettings{
		Enabled:         true,
		CountingMode:    engine.ModeCumulative,
		StrikeThreshold: threshold,
		PenaltyAction:   engine.ActionHalfDay,
	}
}

func consecutivePolicy(threshold int) engine.PolicySettings {
	p := cumulativePolicy(threshold)
	p.CountingMode = engine.ModeStrictlyConsecutive
	return p
}

func resetPolicy(threshold int) engine.PolicySettings {
	p := cumulativePolicy(threshold)
	p.CountingMode = engine.ModeCumulativeWithReset
	return p
}

func triggers(events []engine.StrikeEvent) []int {
	var days []int
	for _, ev := range events {
		if ev.TriggersPenalty {
			days = append(days, ev.Date.Day())
		}
	}
	return days
}

// =============================================================================
// CUMULATIVE MODE
// =============================================================================

func TestEvaluate_Cumulative_ToleratesThreshold(t *testing.T) {
	// GIVEN: Late on March 1, 5, 9, 14 with gaps, threshold 3
	// WHEN: Counting cumulatively
	// THEN: Only the 4th late day triggers a penalty

	facts := []engine.AttendanceFact{
		lateFact(1), onTimeFact(2), lateFact(5), lateFact(9),
		onTimeFact(10), lateFact(14),
	}

	events := engine.Evaluate(facts, cumulativePolicy(3))

	require.Len(t, events, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, []int{events[0].Ordinal, events[1].Ordinal, events[2].Ordinal, events[3].Ordinal})
	assert.Equal(t, []int{14}, triggers(events))
}

func TestEvaluate_Cumulative_EveryDayPastThresholdTriggers(t *testing.T) {
	facts := []engine.AttendanceFact{
		lateFact(1), lateFact(2), lateFact(3), lateFact(4), lateFact(5),
	}

	events := engine.Evaluate(facts, cumulativePolicy(3))

	assert.Equal(t, []int{4, 5}, triggers(events))
}

func TestEvaluate_Cumulative_PenalizedFactsKeepTrueOrdinal(t *testing.T) {
	// GIVEN: March 4 already carries a penalty from an earlier run
	// WHEN: Re-evaluating the same window
	// THEN: The penalized day emits no event but still advances the
	//       count, so March 5 is reported as the 5th late arrival

	facts := []engine.AttendanceFact{
		lateFact(1), lateFact(2), lateFact(3), penalizedFact(4), lateFact(5),
	}

	events := engine.Evaluate(facts, cumulativePolicy(3))

	require.Len(t, events, 4)
	assert.Equal(t, []int{5}, triggers(events))
	assert.Equal(t, 5, events[3].Ordinal, "ordinal counts every late day, penalized or not")
}

func TestEvaluate_Cumulative_DuplicatePunchesCountOnce(t *testing.T) {
	// Two records for the same day count as one strike.
	facts := []engine.AttendanceFact{lateFact(3), lateFact(3), lateFact(7)}

	events := engine.Evaluate(facts, cumulativePolicy(3))

	require.Len(t, events, 2)
	assert.Equal(t, 2, events[1].Ordinal)
}

func TestEvaluate_Disabled_NoEvents(t *testing.T) {
	policy := cumulativePolicy(3)
	policy.Enabled = false

	events := engine.Evaluate([]engine.AttendanceFact{lateFact(1), lateFact(2)}, policy)

	assert.Empty(t, events)
}

// =============================================================================
// STRICTLY CONSECUTIVE MODE
// =============================================================================

func TestEvaluate_Consecutive_RunPastThresholdTriggers(t *testing.T) {
	// GIVEN: Four late days in a row, threshold 3
	// THEN: The streak is tolerated through day 3 and triggers on day 4

	facts := []engine.AttendanceFact{
		lateFact(1), lateFact(2), lateFact(3), lateFact(4),
	}

	events := engine.Evaluate(facts, consecutivePolicy(3))

	require.Len(t, events, 4)
	assert.Equal(t, []int{4}, triggers(events))
}

func TestEvaluate_Consecutive_OnTimeDayBreaksStreak(t *testing.T) {
	facts := []engine.AttendanceFact{
		lateFact(1), lateFact(2), lateFact(3),
		onTimeFact(4),
		lateFact(5), lateFact(6),
	}

	events := engine.Evaluate(facts, consecutivePolicy(3))

	require.Len(t, events, 5)
	assert.Empty(t, triggers(events), "no streak reached past the threshold")
	assert.Equal(t, 1, events[3].Ordinal, "streak restarts after the on-time day")
}

func TestEvaluate_Consecutive_GenuineHalfDayPreservesStreak(t *testing.T) {
	// GIVEN: A leave-approved half-day in the middle of a late run
	// THEN: The streak continues across it

	facts := []engine.AttendanceFact{
		lateFact(1), lateFact(2),
		genuineHalfDayFact(3),
		lateFact(4), lateFact(5),
	}

	events := engine.Evaluate(facts, consecutivePolicy(3))

	require.Len(t, events, 4)
	assert.Equal(t, 4, events[3].Ordinal)
	assert.Equal(t, []int{5}, triggers(events))
}

func TestEvaluate_Consecutive_PenalizedFactsNeitherCountNorReset(t *testing.T) {
	// A penalized day was a late day before conversion, so it must not
	// break the streak; it must also not count again.
	facts := []engine.AttendanceFact{
		lateFact(1), lateFact(2),
		penalizedFact(3),
		lateFact(4),
	}

	events := engine.Evaluate(facts, consecutivePolicy(3))

	require.Len(t, events, 3)
	assert.Equal(t, 3, events[2].Ordinal)
}

// =============================================================================
// CUMULATIVE WITH RESET MODE
// =============================================================================

func TestEvaluate_CumulativeWithReset_CounterRestartsAfterTrigger(t *testing.T) {
	// GIVEN: Threshold 1, late on March 1, 2, 3
	// THEN: Day 2 triggers and resets; day 3 is tolerated again

	facts := []engine.AttendanceFact{lateFact(1), lateFact(2), lateFact(3)}

	events := engine.Evaluate(facts, resetPolicy(1))

	require.Len(t, events, 3)
	assert.Equal(t, []int{2}, triggers(events))
	assert.Equal(t, 1, events[2].Ordinal, "counter restarted after the trigger")
	assert.Equal(t, 1, events[2].ResetOrdinal)
}

func TestEvaluate_CumulativeWithReset_PenalizedFactsResetTheCycle(t *testing.T) {
	// GIVEN: March 2 was penalized on an earlier run, threshold 1
	// WHEN: Re-evaluating the window
	// THEN: The penalized day resets the counter as its trigger did, so
	//       March 3 stays tolerated and March 4 triggers in cycle 1

	facts := []engine.AttendanceFact{
		lateFact(1), penalizedFact(2), lateFact(3), lateFact(4),
	}

	events := engine.Evaluate(facts, resetPolicy(1))

	require.Len(t, events, 3)
	assert.Equal(t, []int{4}, triggers(events))
	assert.Equal(t, 1, events[1].Ordinal, "counter restarted at the penalized day")
	assert.Equal(t, 1, events[1].ResetOrdinal)
}

func TestEvaluate_CumulativeWithReset_MultipleCycles(t *testing.T) {
	facts := []engine.AttendanceFact{
		lateFact(1), lateFact(2), lateFact(3),
		lateFact(4), lateFact(5), lateFact(6),
		lateFact(7), lateFact(8),
	}

	events := engine.Evaluate(facts, resetPolicy(1))

	assert.Equal(t, []int{2, 4, 6, 8}, triggers(events))
}

// =============================================================================
// TRAILING STREAK
// =============================================================================

func TestTrailingConsecutiveCount(t *testing.T) {
	facts := []engine.AttendanceFact{
		lateFact(1), onTimeFact(2), lateFact(3), lateFact(4),
	}
	assert.Equal(t, 2, engine.TrailingConsecutiveCount(facts))
}

func TestTrailingConsecutiveCount_SkipsGenuineHalfDayAndPenalized(t *testing.T) {
	facts := []engine.AttendanceFact{
		lateFact(1),
		penalizedFact(2),
		genuineHalfDayFact(3),
		lateFact(4),
	}
	assert.Equal(t, 2, engine.TrailingConsecutiveCount(facts))
}

func TestTrailingConsecutiveCount_BrokenByOnTimeDay(t *testing.T) {
	facts := []engine.AttendanceFact{
		lateFact(1), lateFact(2), onTimeFact(3),
	}
	assert.Equal(t, 0, engine.TrailingConsecutiveCount(facts))
}
