package engine

import (
	"time"

	"github.com/chatterling/engine/internal/content"
	"github.com/chatterling/engine/internal/struggle"
)

// SessionPlan is what the conversation layer gets for one session: review
// material first, then new content in the target band, then familiar
// chunks to scaffold with.
type SessionPlan struct {
	SessionID string
	LearnerID string
	Language  string
	Topic     string

	// CurrentLevel and TargetLevel are bands on the 1-5 scale.
	// TargetLevel starts one band above current and moves during the
	// session as outcomes come in.
	CurrentLevel float64
	TargetLevel  float64

	// ReviewChunks are due for review, fragile material first.
	ReviewChunks []content.Chunk

	// NewChunks are unseen chunks in the target band.
	NewChunks []content.Chunk

	// ContextChunks are familiar chunks at or below the current level,
	// woven in so the session is not wall-to-wall novelty.
	ContextChunks []content.Chunk

	// DueCount is the total number of chunks due, which may exceed what
	// fits in this plan.
	DueCount int

	CreatedAt time.Time
}

// OutcomeResult is returned for every reported outcome.
type OutcomeResult struct {
	// Status is the chunk's lifecycle status after the outcome.
	Status string

	// StatusChanged reports whether the outcome moved the chunk between
	// statuses.
	StatusChanged bool

	// Directive is the struggle monitor's advisory for the conversation
	// layer. The engine has already applied any difficulty change it
	// implies; the caller only needs to phrase it.
	Directive struggle.Directive

	// TargetLevel is the session target after in-session adaptation.
	TargetLevel float64

	// Risk is the current affective-filter risk score in [0, 1].
	Risk float64

	// NextReviewAt is when the chunk comes due again.
	NextReviewAt time.Time
}
