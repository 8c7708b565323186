package content

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/chatterling/engine/internal/retry"
)

// Criteria filters a chunk search.
type Criteria struct {
	Language      string
	Topics        []string
	MinDifficulty float64
	MaxDifficulty float64
	ExcludeIDs    []string
	Limit         int
}

// ChunkStore is the persistence interface the repository runs on.
// The sqlite implementation lives in internal/store; tests supply fakes.
type ChunkStore interface {
	// FindChunks returns chunks matching the criteria, ordered by
	// ascending frequency rank, then chunk ID.
	FindChunks(ctx context.Context, c Criteria) ([]Chunk, error)

	// GetByNormalizedText returns the chunk with the given normalized
	// text and language, or nil if none exists.
	GetByNormalizedText(ctx context.Context, norm, language string) (*Chunk, error)

	// GetByIDs returns the chunks with the given IDs. Missing IDs are
	// silently skipped.
	GetByIDs(ctx context.Context, ids []string) ([]Chunk, error)

	// Insert persists a new chunk.
	Insert(ctx context.Context, c Chunk) error

	// BumpTopicCount increments the denormalized per-topic chunk count.
	BumpTopicCount(ctx context.Context, language, topic string) error
}

// ErrSaveFailed wraps a persistence failure that survived the retry.
// The caller falls back to whatever is already cached; the session
// continues.
type ErrSaveFailed struct {
	Err error
}

func (e *ErrSaveFailed) Error() string {
	return fmt.Sprintf("chunk save failed: %v", e.Err)
}

func (e *ErrSaveFailed) Unwrap() error { return e.Err }

// Repository stores and retrieves content chunks, deduplicating by
// normalized text + language.
type Repository struct {
	store ChunkStore
	now   func() time.Time
}

// NewRepository creates a Repository over the given store.
func NewRepository(store ChunkStore) *Repository {
	return &Repository{store: store, now: time.Now}
}

// WithClock overrides the repository clock. Used by tests.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Find returns chunks matching the criteria.
func (r *Repository) Find(ctx context.Context, c Criteria) ([]Chunk, error) {
	chunks, err := r.store.FindChunks(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("find chunks: %w", err)
	}
	return chunks, nil
}

// GetByIDs resolves chunk records by ID.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	chunks, err := r.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	return chunks, nil
}

// Upsert persists a candidate chunk, deduplicating on (normalized text,
// language). If a matching record exists it is returned unchanged; a
// repeated generation never creates a duplicate. Difficulty is clamped
// to the valid range at ingestion. Persistence failures are retried once;
// a second failure surfaces as *ErrSaveFailed.
func (r *Repository) Upsert(ctx context.Context, candidate Chunk) (Chunk, error) {
	norm := NormalizeText(candidate.Text)
	if norm == "" {
		return Chunk{}, fmt.Errorf("candidate text is empty after normalization")
	}

	existing, err := r.store.GetByNormalizedText(ctx, norm, candidate.Language)
	if err != nil {
		return Chunk{}, fmt.Errorf("dedupe lookup: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	candidate.Difficulty = ClampDifficulty(candidate.Difficulty)
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	candidate.CreatedAt = r.now()
	if err := candidate.Validate(); err != nil {
		return Chunk{}, fmt.Errorf("invalid chunk: %w", err)
	}

	err = retry.Once(ctx, retry.DefaultBackoff, func() error {
		return r.store.Insert(ctx, candidate)
	})
	if err != nil {
		return Chunk{}, &ErrSaveFailed{Err: err}
	}

	// The per-topic counter only feeds UI hints; failing to bump it is
	// non-fatal.
	for _, topic := range candidate.Topics {
		if err := r.store.BumpTopicCount(ctx, candidate.Language, topic); err != nil {
			fmt.Fprintf(os.Stderr, "warning: topic count update failed for %q: %v\n", topic, err)
		}
	}

	return candidate, nil
}
