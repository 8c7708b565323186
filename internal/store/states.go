package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chatterling/engine/internal/srs"
)

// StateStore implements srs.StateStore on SQLite.
type StateStore struct {
	db *sqlx.DB
}

// Get returns the state for (learner, chunk), or nil if the pair has
// never been encountered.
func (s *StateStore) Get(ctx context.Context, learnerID, chunkID string) (*srs.ChunkState, error) {
	var st srs.ChunkState
	err := s.db.GetContext(ctx, &st,
		"SELECT * FROM chunk_states WHERE learner_id = ? AND chunk_id = ?", learnerID, chunkID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chunk state: %w", err)
	}
	return &st, nil
}

// Put inserts or replaces a state record.
func (s *StateStore) Put(ctx context.Context, st *srs.ChunkState) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO chunk_states (
			learner_id, chunk_id, status, ease_factor, interval_days,
			next_review_at, repetition_count, total_encounters,
			correct_first_try, help_used_count, updated_at
		) VALUES (
			:learner_id, :chunk_id, :status, :ease_factor, :interval_days,
			:next_review_at, :repetition_count, :total_encounters,
			:correct_first_try, :help_used_count, :updated_at
		)
		ON CONFLICT (learner_id, chunk_id) DO UPDATE SET
			status = excluded.status,
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			next_review_at = excluded.next_review_at,
			repetition_count = excluded.repetition_count,
			total_encounters = excluded.total_encounters,
			correct_first_try = excluded.correct_first_try,
			help_used_count = excluded.help_used_count,
			updated_at = excluded.updated_at`, st)
	if err != nil {
		return fmt.Errorf("put chunk state: %w", err)
	}
	return nil
}

// ForLearner returns all state records for a learner, ordered by chunk ID.
func (s *StateStore) ForLearner(ctx context.Context, learnerID string) ([]srs.ChunkState, error) {
	var states []srs.ChunkState
	err := s.db.SelectContext(ctx, &states,
		"SELECT * FROM chunk_states WHERE learner_id = ? ORDER BY chunk_id ASC", learnerID)
	if err != nil {
		return nil, fmt.Errorf("select chunk states: %w", err)
	}
	return states, nil
}
