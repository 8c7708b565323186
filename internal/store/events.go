package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/chatterling/engine/internal/engine"
	"github.com/chatterling/engine/internal/llm"
)

// Event kinds in the append-only log.
const (
	EventAnswer     = "answer"
	EventSession    = "session"
	EventLLMRequest = "llm_request"
)

// EventStore is the append-only event log. It implements both
// engine.EventSink and llm.RequestLogger.
type EventStore struct {
	db *sqlx.DB
}

func (s *EventStore) append(ctx context.Context, kind, learnerID, sessionID string, payload any, at time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", kind, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (kind, learner_id, session_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		kind, learnerID, sessionID, string(data), at)
	if err != nil {
		return fmt.Errorf("append %s event: %w", kind, err)
	}
	return nil
}

// LogAnswer appends an answer event.
func (s *EventStore) LogAnswer(ctx context.Context, ev engine.AnswerEvent) error {
	return s.append(ctx, EventAnswer, ev.LearnerID, ev.SessionID, ev, ev.At)
}

// LogSession appends a session boundary event.
func (s *EventStore) LogSession(ctx context.Context, ev engine.SessionEvent) error {
	return s.append(ctx, EventSession, ev.LearnerID, ev.SessionID, ev, ev.At)
}

// LogLLMRequest appends an LLM request event.
func (s *EventStore) LogLLMRequest(ctx context.Context, log llm.RequestLog) error {
	return s.append(ctx, EventLLMRequest, "", "", log, time.Now())
}

// CountByKind returns event counts per kind, optionally scoped to one
// learner. Feeds the stats command.
func (s *EventStore) CountByKind(ctx context.Context, learnerID string) (map[string]int, error) {
	query := "SELECT kind, COUNT(*) FROM events GROUP BY kind"
	args := []any{}
	if learnerID != "" {
		query = "SELECT kind, COUNT(*) FROM events WHERE learner_id = ? GROUP BY kind"
		args = append(args, learnerID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}

// RecentAnswers returns the payloads of the learner's most recent answer
// events, newest first.
func (s *EventStore) RecentAnswers(ctx context.Context, learnerID string, limit int) ([]engine.AnswerEvent, error) {
	var payloads []string
	err := s.db.SelectContext(ctx, &payloads, `
		SELECT payload FROM events
		WHERE kind = ? AND learner_id = ?
		ORDER BY id DESC LIMIT ?`,
		EventAnswer, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("select answer events: %w", err)
	}

	out := make([]engine.AnswerEvent, 0, len(payloads))
	for _, p := range payloads {
		var ev engine.AnswerEvent
		if err := json.Unmarshal([]byte(p), &ev); err != nil {
			return nil, fmt.Errorf("decode answer event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// ResetLearner deletes all state, profile, and event rows for a learner.
// Chunks are shared content and are left alone.
func (s *Store) ResetLearner(ctx context.Context, learnerID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM chunk_states WHERE learner_id = ?",
		"DELETE FROM profiles WHERE learner_id = ?",
		"DELETE FROM events WHERE learner_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, learnerID); err != nil {
			return fmt.Errorf("reset learner: %w", err)
		}
	}
	return tx.Commit()
}
