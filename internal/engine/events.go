package engine

import (
	"context"
	"time"

	"github.com/chatterling/engine/internal/srs"
	"github.com/chatterling/engine/internal/struggle"
)

// AnswerEvent records one reported outcome for the event log.
type AnswerEvent struct {
	SessionID string
	LearnerID string
	ChunkID   string
	Correct   bool
	UsedHelp  bool
	LatencyMs int
	Status    srs.Status
	Directive struggle.Directive
	Risk      float64
	At        time.Time
}

// SessionEvent records a session boundary for the event log.
type SessionEvent struct {
	SessionID       string
	LearnerID       string
	Kind            string // "start" or "end"
	DurationMinutes int
	ChunksTouched   int
	At              time.Time
}

// EventSink receives engine events. Implemented by the event store.
// Sink failures never fail the operation that produced the event.
type EventSink interface {
	LogAnswer(ctx context.Context, ev AnswerEvent) error
	LogSession(ctx context.Context, ev SessionEvent) error
}

// discardSink is used when no sink is configured.
type discardSink struct{}

func (discardSink) LogAnswer(context.Context, AnswerEvent) error   { return nil }
func (discardSink) LogSession(context.Context, SessionEvent) error { return nil }
