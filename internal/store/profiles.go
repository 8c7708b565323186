package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chatterling/engine/internal/profile"
)

// ProfileStore implements profile.Store on SQLite. The profile aggregate
// is stored as one JSON document per learner; individual histories never
// need relational queries.
type ProfileStore struct {
	db *sqlx.DB
}

// Load returns the learner's profile or profile.ErrNotFound.
func (s *ProfileStore) Load(ctx context.Context, learnerID string) (*profile.Profile, error) {
	var data string
	err := s.db.GetContext(ctx, &data,
		"SELECT data FROM profiles WHERE learner_id = ?", learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var p profile.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", learnerID, err)
	}
	return &p, nil
}

// Save inserts or replaces the learner's profile.
func (s *ProfileStore) Save(ctx context.Context, p *profile.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (learner_id, language, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET
			language = excluded.language,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		p.LearnerID, p.Language, string(data), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// LearnerIDs returns every learner with a stored profile, sorted.
func (s *ProfileStore) LearnerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		"SELECT learner_id FROM profiles ORDER BY learner_id ASC")
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	return ids, nil
}
