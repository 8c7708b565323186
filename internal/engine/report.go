package engine

import (
	"context"

	"github.com/chatterling/engine/internal/calibrate"
	"github.com/chatterling/engine/internal/profile"
)

// ProgressReport is the learner-facing progress snapshot.
type ProgressReport struct {
	LearnerID string
	Language  string

	CurrentLevel float64
	CEFRLabel    string
	CEFRScore    float64

	ChunkCounts profile.ChunkCounts
	DueCount    int

	TotalSessions int
	TotalMinutes  int
	RiskScore     float64

	Interests []string
}

// Progress assembles a progress snapshot for a learner.
func (e *Engine) Progress(ctx context.Context, learnerID string) (*ProgressReport, error) {
	ls := e.learner(learnerID)
	ls.mu.Lock()
	defer ls.mu.Unlock()

	p, err := e.profiles.LoadOrCreate(ctx, learnerID, ls.language)
	if err != nil && !recoverable(err) {
		return nil, err
	}

	if err := e.refreshCounts(ctx, p); err != nil {
		return nil, err
	}

	due, err := e.scheduler.DueCount(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	level := e.calibrator.CurrentLevel(p)
	return &ProgressReport{
		LearnerID:     p.LearnerID,
		Language:      p.Language,
		CurrentLevel:  level,
		CEFRLabel:     calibrate.CEFRLabel(level),
		CEFRScore:     calibrate.CEFRScore(level),
		ChunkCounts:   p.ChunkCounts,
		DueCount:      due,
		TotalSessions: p.TotalSessions,
		TotalMinutes:  p.TotalMinutes,
		RiskScore:     p.RiskScore,
		Interests:     topInterests(p, 5),
	}, nil
}
