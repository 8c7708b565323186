package srs

import (
	"math"
	"time"
)

// Transition records a status change produced by Advance, for profile
// bookkeeping and event logging.
type Transition struct {
	ChunkID string
	From    Status
	To      Status
}

// Advance applies one outcome to the state machine:
//
//	new → learning → acquired ⇄ fragile
//
// and reschedules the next review. The ease factor stays within
// [MinEase, MaxEase] on every path. Returns the transition taken
// (From == To when the status did not change).
func Advance(st *ChunkState, o Outcome, now time.Time) Transition {
	from := st.Status

	firstEncounter := st.TotalEncounters == 0
	st.TotalEncounters++
	if o.UsedHelp {
		st.HelpUsedCount++
	}
	if o.Correct && !o.UsedHelp && firstEncounter {
		st.CorrectFirstTry++
	}

	switch from {
	case StatusNew:
		advanceNew(st, o)
	case StatusLearning:
		advanceLearning(st, o)
	case StatusAcquired, StatusFragile:
		advanceAcquired(st, o)
	}

	if o.Correct {
		st.RepetitionCount++
	} else {
		st.RepetitionCount = 0
	}

	st.NextReviewAt = now.Add(time.Duration(st.IntervalDays * 24 * float64(time.Hour)))
	st.UpdatedAt = now

	return Transition{ChunkID: st.ChunkID, From: from, To: st.Status}
}

func advanceNew(st *ChunkState, o Outcome) {
	st.Status = StatusLearning
	if o.Correct && !o.UsedHelp {
		st.IntervalDays = 1
		st.EaseFactor = 2.5
	} else {
		st.IntervalDays = 0.5
		st.EaseFactor = 2.3
	}
}

func advanceLearning(st *ChunkState, o Outcome) {
	switch {
	case o.Correct && !o.UsedHelp:
		// First graduation keeps the ease factor unchanged.
		st.Status = StatusAcquired
		st.IntervalDays = math.Round(st.IntervalDays * 2.5)
	case o.Correct:
		st.IntervalDays = 1.5
		st.EaseFactor = clampEase(st.EaseFactor - 0.2)
	default:
		st.IntervalDays = 0.5
		st.EaseFactor = clampEase(st.EaseFactor - 0.2)
	}
}

func advanceAcquired(st *ChunkState, o Outcome) {
	switch {
	case o.Correct && !o.UsedHelp:
		st.Status = StatusAcquired
		st.EaseFactor = clampEase(st.EaseFactor + 0.1)
		st.IntervalDays = math.Round(st.IntervalDays * st.EaseFactor)
		if st.IntervalDays > MaxIntervalDays {
			st.IntervalDays = MaxIntervalDays
		}
	case o.Correct:
		st.Status = StatusAcquired
		st.EaseFactor = clampEase(st.EaseFactor - 0.1)
		st.IntervalDays = math.Round(st.IntervalDays * st.EaseFactor)
		if st.IntervalDays < HelpFloorDays {
			st.IntervalDays = HelpFloorDays
		}
	default:
		// A retrieval failure always drops to fragile with a 1-day
		// interval, regardless of how long the interval had grown.
		st.Status = StatusFragile
		st.EaseFactor = clampEase(st.EaseFactor - 0.3)
		st.IntervalDays = 1
	}
}
