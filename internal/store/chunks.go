package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/chatterling/engine/internal/content"
)

// ChunkStore implements content.ChunkStore on SQLite.
type ChunkStore struct {
	db *sqlx.DB
}

// chunkRow is the flat database representation of a chunk. The slice
// fields are stored as JSON text columns.
type chunkRow struct {
	ID             string    `db:"id"`
	Text           string    `db:"text"`
	NormalizedText string    `db:"normalized_text"`
	Translation    string    `db:"translation"`
	Language       string    `db:"language"`
	Kind           string    `db:"kind"`
	Slots          string    `db:"slots"`
	Difficulty     int       `db:"difficulty"`
	Topics         string    `db:"topics"`
	AgeBands       string    `db:"age_bands"`
	FrequencyRank  int       `db:"frequency_rank"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r chunkRow) toChunk() (content.Chunk, error) {
	c := content.Chunk{
		ID:            r.ID,
		Text:          r.Text,
		Translation:   r.Translation,
		Language:      r.Language,
		Kind:          content.Kind(r.Kind),
		Difficulty:    r.Difficulty,
		FrequencyRank: r.FrequencyRank,
		CreatedAt:     r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.Slots), &c.Slots); err != nil {
		return c, fmt.Errorf("decode slots for chunk %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Topics), &c.Topics); err != nil {
		return c, fmt.Errorf("decode topics for chunk %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.AgeBands), &c.AgeBands); err != nil {
		return c, fmt.Errorf("decode age bands for chunk %s: %w", r.ID, err)
	}
	return c, nil
}

func toChunkRow(c content.Chunk) (chunkRow, error) {
	slots, err := json.Marshal(orEmptySlots(c.Slots))
	if err != nil {
		return chunkRow{}, fmt.Errorf("encode slots: %w", err)
	}
	topics, err := json.Marshal(orEmpty(c.Topics))
	if err != nil {
		return chunkRow{}, fmt.Errorf("encode topics: %w", err)
	}
	ageBands, err := json.Marshal(orEmpty(c.AgeBands))
	if err != nil {
		return chunkRow{}, fmt.Errorf("encode age bands: %w", err)
	}
	return chunkRow{
		ID:             c.ID,
		Text:           c.Text,
		NormalizedText: content.NormalizeText(c.Text),
		Translation:    c.Translation,
		Language:       c.Language,
		Kind:           string(c.Kind),
		Slots:          string(slots),
		Difficulty:     c.Difficulty,
		Topics:         string(topics),
		AgeBands:       string(ageBands),
		FrequencyRank:  c.FrequencyRank,
		CreatedAt:      c.CreatedAt,
	}, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptySlots(s []content.Slot) []content.Slot {
	if s == nil {
		return []content.Slot{}
	}
	return s
}

// FindChunks returns chunks matching the criteria, ordered by ascending
// frequency rank, then chunk ID, so the same criteria always select the
// same chunks.
func (s *ChunkStore) FindChunks(ctx context.Context, cr content.Criteria) ([]content.Chunk, error) {
	var conds []string
	var args []any

	if cr.Language != "" {
		conds = append(conds, "language = ?")
		args = append(args, cr.Language)
	}
	if cr.MinDifficulty > 0 {
		conds = append(conds, "difficulty >= ?")
		args = append(args, cr.MinDifficulty)
	}
	if cr.MaxDifficulty > 0 {
		conds = append(conds, "difficulty <= ?")
		args = append(args, cr.MaxDifficulty)
	}
	if len(cr.Topics) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(cr.Topics)), ",")
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM json_each(chunks.topics) WHERE json_each.value IN (%s))",
			placeholders))
		for _, t := range cr.Topics {
			args = append(args, t)
		}
	}
	if len(cr.ExcludeIDs) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(cr.ExcludeIDs)), ",")
		conds = append(conds, fmt.Sprintf("id NOT IN (%s)", placeholders))
		for _, id := range cr.ExcludeIDs {
			args = append(args, id)
		}
	}

	query := "SELECT * FROM chunks"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY frequency_rank ASC, id ASC"
	if cr.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, cr.Limit)
	}

	var rows []chunkRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}
	return rowsToChunks(rows)
}

// GetByNormalizedText returns the chunk with the given normalized text
// and language, or nil if none exists.
func (s *ChunkStore) GetByNormalizedText(ctx context.Context, norm, language string) (*content.Chunk, error) {
	var row chunkRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM chunks WHERE normalized_text = ? AND language = ?", norm, language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup chunk by text: %w", err)
	}
	c, err := row.toChunk()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDs returns the chunks with the given IDs, ordered by frequency
// rank then ID. Missing IDs are silently skipped.
func (s *ChunkStore) GetByIDs(ctx context.Context, ids []string) ([]content.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		"SELECT * FROM chunks WHERE id IN (?) ORDER BY frequency_rank ASC, id ASC", ids)
	if err != nil {
		return nil, fmt.Errorf("build chunk query: %w", err)
	}
	var rows []chunkRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select chunks by id: %w", err)
	}
	return rowsToChunks(rows)
}

// Insert persists a new chunk.
func (s *ChunkStore) Insert(ctx context.Context, c content.Chunk) error {
	row, err := toChunkRow(c)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO chunks (
			id, text, normalized_text, translation, language, kind,
			slots, difficulty, topics, age_bands, frequency_rank, created_at
		) VALUES (
			:id, :text, :normalized_text, :translation, :language, :kind,
			:slots, :difficulty, :topics, :age_bands, :frequency_rank, :created_at
		)`, row)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// BumpTopicCount increments the denormalized per-topic chunk count.
func (s *ChunkStore) BumpTopicCount(ctx context.Context, language, topic string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topic_counts (language, topic, chunk_count)
		VALUES (?, ?, 1)
		ON CONFLICT (language, topic) DO UPDATE SET chunk_count = chunk_count + 1`,
		language, topic)
	if err != nil {
		return fmt.Errorf("bump topic count: %w", err)
	}
	return nil
}

// TopicCounts returns the per-topic chunk counts for a language, largest
// first. Feeds the topic picker UI.
func (s *ChunkStore) TopicCounts(ctx context.Context, language string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT topic, chunk_count FROM topic_counts WHERE language = ?", language)
	if err != nil {
		return nil, fmt.Errorf("select topic counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var topic string
		var count int
		if err := rows.Scan(&topic, &count); err != nil {
			return nil, err
		}
		counts[topic] = count
	}
	return counts, rows.Err()
}

func rowsToChunks(rows []chunkRow) ([]content.Chunk, error) {
	out := make([]content.Chunk, 0, len(rows))
	for _, r := range rows {
		c, err := r.toChunk()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
