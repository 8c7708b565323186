package srs

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestAdvanceNewChunk(t *testing.T) {
	tests := []struct {
		name         string
		outcome      Outcome
		wantInterval float64
		wantEase     float64
	}{
		{"correct without help", Outcome{Correct: true}, 1, 2.5},
		{"correct with help", Outcome{Correct: true, UsedHelp: true}, 0.5, 2.3},
		{"wrong", Outcome{Correct: false}, 0.5, 2.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewChunkState("kid-1", "chunk-1")
			tr := Advance(st, tt.outcome, testNow)

			if tr.From != StatusNew || tr.To != StatusLearning {
				t.Errorf("transition = %s→%s, want new→learning", tr.From, tr.To)
			}
			if st.IntervalDays != tt.wantInterval {
				t.Errorf("IntervalDays = %v, want %v", st.IntervalDays, tt.wantInterval)
			}
			if st.EaseFactor != tt.wantEase {
				t.Errorf("EaseFactor = %v, want %v", st.EaseFactor, tt.wantEase)
			}
		})
	}
}

func TestAdvanceLearningGraduation(t *testing.T) {
	st := NewChunkState("kid-1", "chunk-1")
	Advance(st, Outcome{Correct: true}, testNow)

	// Second clean success graduates to acquired at 1 * 2.5 rounded.
	tr := Advance(st, Outcome{Correct: true}, testNow)
	if tr.To != StatusAcquired {
		t.Fatalf("status = %s, want acquired", tr.To)
	}
	if st.IntervalDays != 3 {
		t.Errorf("IntervalDays = %v, want 3", st.IntervalDays)
	}
	// Graduation itself leaves the ease factor alone.
	if st.EaseFactor != 2.5 {
		t.Errorf("EaseFactor = %v, want 2.5", st.EaseFactor)
	}
}

func TestAdvanceLearningSetbacks(t *testing.T) {
	tests := []struct {
		name         string
		outcome      Outcome
		wantInterval float64
		wantEase     float64
	}{
		{"correct with help stays learning", Outcome{Correct: true, UsedHelp: true}, 1.5, 2.3},
		{"wrong stays learning", Outcome{Correct: false}, 0.5, 2.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewChunkState("kid-1", "chunk-1")
			Advance(st, Outcome{Correct: true}, testNow) // new → learning, EF 2.5

			tr := Advance(st, tt.outcome, testNow)
			if tr.To != StatusLearning {
				t.Fatalf("status = %s, want learning", tr.To)
			}
			if st.IntervalDays != tt.wantInterval {
				t.Errorf("IntervalDays = %v, want %v", st.IntervalDays, tt.wantInterval)
			}
			if math.Abs(st.EaseFactor-tt.wantEase) > 1e-9 {
				t.Errorf("EaseFactor = %v, want %v", st.EaseFactor, tt.wantEase)
			}
		})
	}
}

func TestAdvanceAcquiredSuccessGrowsInterval(t *testing.T) {
	st := &ChunkState{
		LearnerID:    "kid-1",
		ChunkID:      "chunk-1",
		Status:       StatusAcquired,
		EaseFactor:   2.5,
		IntervalDays: 3,
	}

	tr := Advance(st, Outcome{Correct: true}, testNow)
	if tr.From != StatusAcquired || tr.To != StatusAcquired {
		t.Fatalf("transition = %s→%s, want acquired→acquired", tr.From, tr.To)
	}
	// EF bumps to 2.6 first, then interval = round(3 * 2.6) = 8.
	if st.EaseFactor != 2.6 {
		t.Errorf("EaseFactor = %v, want 2.6", st.EaseFactor)
	}
	if st.IntervalDays != 8 {
		t.Errorf("IntervalDays = %v, want 8", st.IntervalDays)
	}
}

func TestAdvanceIntervalNeverExceedsCap(t *testing.T) {
	st := &ChunkState{
		Status:       StatusAcquired,
		EaseFactor:   3.0,
		IntervalDays: 150,
	}
	Advance(st, Outcome{Correct: true}, testNow)
	if st.IntervalDays != MaxIntervalDays {
		t.Errorf("IntervalDays = %v, want capped at %v", st.IntervalDays, MaxIntervalDays)
	}
}

func TestAdvanceAcquiredWithHelpFloorsInterval(t *testing.T) {
	st := &ChunkState{
		Status:       StatusAcquired,
		EaseFactor:   1.4,
		IntervalDays: 2,
	}
	Advance(st, Outcome{Correct: true, UsedHelp: true}, testNow)
	if st.Status != StatusAcquired {
		t.Fatalf("status = %s, want acquired", st.Status)
	}
	// round(2 * 1.3) = 3 is below the floor.
	if st.IntervalDays != HelpFloorDays {
		t.Errorf("IntervalDays = %v, want floored at %v", st.IntervalDays, HelpFloorDays)
	}
	if st.EaseFactor != MinEase {
		t.Errorf("EaseFactor = %v, want clamped at %v", st.EaseFactor, MinEase)
	}
}

func TestAdvanceWrongResetsToFragile(t *testing.T) {
	st := &ChunkState{
		Status:          StatusAcquired,
		EaseFactor:      2.8,
		IntervalDays:    120,
		RepetitionCount: 7,
	}
	tr := Advance(st, Outcome{Correct: false}, testNow)

	if tr.To != StatusFragile {
		t.Fatalf("status = %s, want fragile", tr.To)
	}
	if st.IntervalDays != 1 {
		t.Errorf("IntervalDays = %v, want 1 regardless of prior growth", st.IntervalDays)
	}
	if st.EaseFactor != 2.5 {
		t.Errorf("EaseFactor = %v, want 2.5", st.EaseFactor)
	}
	if st.RepetitionCount != 0 {
		t.Errorf("RepetitionCount = %d, want streak reset to 0", st.RepetitionCount)
	}
}

func TestAdvanceFragileRecovery(t *testing.T) {
	st := &ChunkState{
		Status:       StatusFragile,
		EaseFactor:   2.2,
		IntervalDays: 1,
	}
	tr := Advance(st, Outcome{Correct: true}, testNow)
	if tr.From != StatusFragile || tr.To != StatusAcquired {
		t.Fatalf("transition = %s→%s, want fragile→acquired", tr.From, tr.To)
	}
}

func TestAdvanceEaseStaysInBounds(t *testing.T) {
	st := &ChunkState{Status: StatusAcquired, EaseFactor: MinEase, IntervalDays: 5}
	for i := 0; i < 10; i++ {
		Advance(st, Outcome{Correct: false}, testNow)
		if st.EaseFactor < MinEase {
			t.Fatalf("EaseFactor = %v dropped below %v", st.EaseFactor, MinEase)
		}
		st.Status = StatusAcquired
	}

	st = &ChunkState{Status: StatusAcquired, EaseFactor: MaxEase, IntervalDays: 1}
	for i := 0; i < 10; i++ {
		Advance(st, Outcome{Correct: true}, testNow)
		if st.EaseFactor > MaxEase {
			t.Fatalf("EaseFactor = %v rose above %v", st.EaseFactor, MaxEase)
		}
	}
}

func TestAdvanceSchedulesNextReview(t *testing.T) {
	st := NewChunkState("kid-1", "chunk-1")
	Advance(st, Outcome{Correct: true}, testNow)

	want := testNow.Add(24 * time.Hour)
	if !st.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", st.NextReviewAt, want)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		st   ChunkState
		want float64
	}{
		{"no encounters defaults to neutral", ChunkState{}, 0.5},
		{"perfect record", ChunkState{TotalEncounters: 4, CorrectFirstTry: 4}, 1.0},
		{"help discounts", ChunkState{TotalEncounters: 4, CorrectFirstTry: 4, HelpUsedCount: 2}, 0.9},
		{"never right", ChunkState{TotalEncounters: 3}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.st.Confidence(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}
