package srs

import "time"

// Status is a chunk's position in the acquisition lifecycle for one learner.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusAcquired Status = "acquired"
	StatusFragile  Status = "fragile"
)

// Ease factor and interval bounds.
const (
	MinEase = 1.3
	MaxEase = 3.0

	// MaxIntervalDays caps interval growth on repeated success.
	MaxIntervalDays = 180.0

	// HelpFloorDays floors the interval when an acquired chunk was
	// answered correctly but with help.
	HelpFloorDays = 7.0
)

// ChunkState is the spaced-repetition record for one (learner, chunk) pair.
// Created on first encounter; mutated only through Advance; never deleted
// while the learner exists.
type ChunkState struct {
	LearnerID    string    `db:"learner_id"`
	ChunkID      string    `db:"chunk_id"`
	Status       Status    `db:"status"`
	EaseFactor   float64   `db:"ease_factor"`
	IntervalDays float64   `db:"interval_days"`
	NextReviewAt time.Time `db:"next_review_at"`

	// RepetitionCount is the consecutive-correct streak.
	RepetitionCount int `db:"repetition_count"`
	TotalEncounters int `db:"total_encounters"`
	CorrectFirstTry int `db:"correct_first_try"`
	HelpUsedCount   int `db:"help_used_count"`

	UpdatedAt time.Time `db:"updated_at"`
}

// Outcome describes one answered activity.
type Outcome struct {
	Correct   bool
	UsedHelp  bool
	LatencyMs int
}

// NewChunkState creates the initial record for a first encounter.
func NewChunkState(learnerID, chunkID string) *ChunkState {
	return &ChunkState{
		LearnerID: learnerID,
		ChunkID:   chunkID,
		Status:    StatusNew,
	}
}

// IsDue reports whether the chunk should be reviewed now. Fragile chunks
// are always due.
func (st *ChunkState) IsDue(now time.Time) bool {
	if st.Status == StatusFragile {
		return true
	}
	return !now.Before(st.NextReviewAt)
}

// Confidence derives a 0–1 retention confidence from the encounter history.
// First-try accuracy dominates; leaning on help discounts it.
func (st *ChunkState) Confidence() float64 {
	if st.TotalEncounters == 0 {
		return 0.5
	}
	firstTry := float64(st.CorrectFirstTry) / float64(st.TotalEncounters)
	helpRatio := float64(st.HelpUsedCount) / float64(st.TotalEncounters)
	return clamp01(firstTry - 0.2*helpRatio)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampEase(ef float64) float64 {
	if ef < MinEase {
		return MinEase
	}
	if ef > MaxEase {
		return MaxEase
	}
	return ef
}
