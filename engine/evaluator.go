/*
evaluator.go - Strike counting under the three policy modes

PURPOSE:
  The algorithmic heart of the engine. Evaluate is a pure function over
  an ordered sequence of daily facts and the policy settings, producing
  the ordered StrikeEvents for that window. It never mutates input and
  is deterministic: identical input yields identical output, which is
  what makes reprocessing idempotent.

COUNTING MODES:
  Cumulative:
    Every not-yet-penalized late day counts, regardless of gaps. The
    n-th late day has ordinal n; penalty begins once the ordinal
    exceeds the threshold (the threshold itself is tolerated).

  Strictly Consecutive:
    A running counter increments on late days and resets to 0 on any
    non-late working day - unless that day is a genuine half-day
    (approved leave rather than penalty), which does not break the
    streak.

  Cumulative with Reset:
    Cumulative, but the counter restarts at 0 immediately after a
    strike triggers a penalty, so the tolerance applies anew.

ALREADY-PENALIZED FACTS:
  Facts with PenaltyApplied=true never emit events again, but they are
  not invisible: in cumulative counting they still advance the ordinal
  (a remark on a later day reports the true late-arrival count), and in
  reset mode they were the triggers of their cycles, so they reset the
  counter exactly as they did on the run that penalized them. In
  consecutive mode they neither count nor break the streak. This is
  what keeps a re-run over an already-penalized window a no-op.
*/
package engine

// Evaluate computes the ordered strike events for one counting window.
// The facts must be in ascending date order, all within a single window
// (the orchestrator builds one window per calendar month).
//
// A disabled policy yields no events for any input.
func Evaluate(facts []AttendanceFact, policy PolicySettings) []StrikeEvent {
	if !policy.Enabled {
		return nil
	}

	switch policy.CountingMode {
	case ModeStrictlyConsecutive:
		return evaluateConsecutive(facts, policy)
	case ModeCumulativeWithReset:
		return evaluateCumulative(facts, policy, true)
	default:
		return evaluateCumulative(facts, policy, false)
	}
}

// evaluateCumulative counts late days regardless of gaps. With
// resetOnTrigger, the counter restarts after each triggering strike and
// the reset cycle is recorded on the event.
func evaluateCumulative(facts []AttendanceFact, policy PolicySettings, resetOnTrigger bool) []StrikeEvent {
	var events []StrikeEvent

	counter := 0
	resets := 0
	seen := map[Date]bool{}

	for _, fact := range facts {
		if !fact.IsLate {
			continue
		}
		// Multiple late punches on the same day count as one strike.
		if seen[fact.Date] {
			continue
		}
		seen[fact.Date] = true

		// A penalized day emits no new event, but it is not invisible:
		// it was the trigger of its cycle, so in reset mode it resets
		// the counter just as it did on the run that penalized it, and
		// otherwise it still advances the ordinal so later remarks
		// carry the true late-arrival count.
		if fact.PenaltyApplied {
			if resetOnTrigger {
				counter = 0
				resets++
			} else {
				counter++
			}
			continue
		}

		counter++
		ev := StrikeEvent{
			RecordID:        fact.RecordID,
			Date:            fact.Date,
			Mode:            policy.CountingMode,
			Ordinal:         counter,
			TriggersPenalty: counter > policy.StrikeThreshold,
			ResetOrdinal:    resets,
		}
		events = append(events, ev)

		if resetOnTrigger && ev.TriggersPenalty {
			counter = 0
			resets++
		}
	}
	return events
}

// evaluateConsecutive counts only unbroken runs of late days.
func evaluateConsecutive(facts []AttendanceFact, policy PolicySettings) []StrikeEvent {
	var events []StrikeEvent

	counter := 0
	for _, fact := range facts {
		// Penalized facts neither count nor break the streak.
		if fact.PenaltyApplied {
			continue
		}

		if fact.IsLate {
			counter++
			events = append(events, StrikeEvent{
				RecordID:        fact.RecordID,
				Date:            fact.Date,
				Mode:            ModeStrictlyConsecutive,
				Ordinal:         counter,
				TriggersPenalty: counter > policy.StrikeThreshold,
			})
			continue
		}

		// A genuine half-day (approved leave, not penalty) does not
		// break the streak; any other on-time working day does.
		if !fact.GenuineHalfDay {
			counter = 0
		}
	}
	return events
}

// TrailingConsecutiveCount returns the length of the late streak ending
// at the last fact. Used by the admin status surface for consecutive
// mode; mirrors the evaluator's streak rules.
func TrailingConsecutiveCount(facts []AttendanceFact) int {
	count := 0
	for i := len(facts) - 1; i >= 0; i-- {
		f := facts[i]
		if f.PenaltyApplied {
			continue
		}
		if f.IsLate {
			count++
			continue
		}
		if f.GenuineHalfDay {
			continue
		}
		break
	}
	return count
}
