package profile

import (
	"time"
)

// Rolling-average decay rates. Confidence moves faster than the
// engagement rates so one good session is visible immediately.
const (
	confidenceAlpha = 0.2
	rateAlpha       = 0.1
	interestStep    = 0.1
)

// DefaultConfidence is the neutral starting confidence for a new learner.
const DefaultConfidence = 0.5

// LevelPoint is one entry in the append-only level history.
type LevelPoint struct {
	Level float64   `json:"level"`
	At    time.Time `json:"at"`
}

// ConfidencePoint is one entry in the confidence history.
type ConfidencePoint struct {
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"at"`
}

// Interest is a detected interest tag with a bounded strength.
type Interest struct {
	Strength  float64   `json:"strength"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChunkCounts aggregates the learner's chunk states by status.
type ChunkCounts struct {
	Acquired int `json:"acquired"`
	Learning int `json:"learning"`
	Fragile  int `json:"fragile"`
	Total    int `json:"total"`
}

// Profile is the single aggregate record per learner and target language.
// CurrentLevel is derived from the acquired-chunk count by the calibrator;
// callers never set it directly. Mutated only through the orchestrator's
// update path.
type Profile struct {
	LearnerID string `json:"learner_id"`
	Language  string `json:"language"`

	// CurrentLevel is the calibrated band (1–5 scale); 0 means the
	// learner has not been calibrated yet.
	CurrentLevel float64      `json:"current_level"`
	LevelHistory []LevelPoint `json:"level_history"`

	AvgConfidence     float64           `json:"avg_confidence"`
	ConfidenceHistory []ConfidencePoint `json:"confidence_history"`

	ChunkCounts ChunkCounts `json:"chunk_counts"`

	ExplicitInterests []string            `json:"explicit_interests"`
	DetectedInterests map[string]Interest `json:"detected_interests"`

	TotalSessions   int     `json:"total_sessions"`
	TotalMinutes    int     `json:"total_minutes"`
	HelpRequestRate float64 `json:"help_request_rate"`
	WrongAnswerRate float64 `json:"wrong_answer_rate"`

	// RiskScore is the affective-filter risk in [0, 1].
	RiskScore      float64    `json:"risk_score"`
	LastStruggleAt *time.Time `json:"last_struggle_at,omitempty"`
	LastSessionAt  *time.Time `json:"last_session_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a profile with documented defaults: level 0, neutral
// confidence, all counters zero.
func New(learnerID, language string, now time.Time) *Profile {
	return &Profile{
		LearnerID:         learnerID,
		Language:          language,
		CurrentLevel:      0,
		AvgConfidence:     DefaultConfidence,
		DetectedInterests: make(map[string]Interest),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// RecordLevel appends to the level history and updates the current level.
// Called by the orchestrator with the calibrator's output only.
func (p *Profile) RecordLevel(level float64, at time.Time) {
	if len(p.LevelHistory) > 0 && p.LevelHistory[len(p.LevelHistory)-1].Level == level {
		return
	}
	p.CurrentLevel = level
	p.LevelHistory = append(p.LevelHistory, LevelPoint{Level: level, At: at})
	p.UpdatedAt = at
}

// RecordConfidence folds a confidence sample into the decaying average
// and appends to the history.
func (p *Profile) RecordConfidence(sample float64, at time.Time) {
	sample = clamp01(sample)
	p.AvgConfidence = clamp01((1-confidenceAlpha)*p.AvgConfidence + confidenceAlpha*sample)
	p.ConfidenceHistory = append(p.ConfidenceHistory, ConfidencePoint{Confidence: p.AvgConfidence, At: at})
	p.UpdatedAt = at
}

// RecordOutcome folds one answered activity into the rolling engagement
// rates.
func (p *Profile) RecordOutcome(correct, usedHelp bool, at time.Time) {
	wrong := 0.0
	if !correct {
		wrong = 1.0
	}
	help := 0.0
	if usedHelp {
		help = 1.0
	}
	p.WrongAnswerRate = clamp01((1-rateAlpha)*p.WrongAnswerRate + rateAlpha*wrong)
	p.HelpRequestRate = clamp01((1-rateAlpha)*p.HelpRequestRate + rateAlpha*help)
	p.UpdatedAt = at
}

// BumpInterest strengthens a detected interest tag. Strength is bounded
// to [0, 1].
func (p *Profile) BumpInterest(topic string, at time.Time) {
	if topic == "" {
		return
	}
	if p.DetectedInterests == nil {
		p.DetectedInterests = make(map[string]Interest)
	}
	cur := p.DetectedInterests[topic]
	p.DetectedInterests[topic] = Interest{
		Strength:  clamp01(cur.Strength + interestStep),
		UpdatedAt: at,
	}
	p.UpdatedAt = at
}

// SetRisk updates the affective-filter risk score, clamped to [0, 1].
func (p *Profile) SetRisk(score float64, at time.Time) {
	p.RiskScore = clamp01(score)
	p.UpdatedAt = at
}

// MarkStruggle records that the learner showed struggle signals.
func (p *Profile) MarkStruggle(at time.Time) {
	t := at
	p.LastStruggleAt = &t
	p.UpdatedAt = at
}

// SessionStats is the aggregate written at session end.
type SessionStats struct {
	SessionID       string
	DurationMinutes int
	ChunksTouched   int
}

// ApplySessionStats adds session aggregates to the engagement counters.
// Additive, never replacing, so a lost call only under-counts.
func (p *Profile) ApplySessionStats(stats SessionStats, at time.Time) {
	p.TotalSessions++
	p.TotalMinutes += stats.DurationMinutes
	t := at
	p.LastSessionAt = &t
	p.UpdatedAt = at
}

// DaysSinceLastSession returns the gap since the last completed session,
// or 0 for a learner with no session history.
func (p *Profile) DaysSinceLastSession(now time.Time) float64 {
	if p.LastSessionAt == nil {
		return 0
	}
	return now.Sub(*p.LastSessionAt).Hours() / 24.0
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
