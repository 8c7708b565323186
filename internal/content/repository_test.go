package content

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeChunkStore is an in-memory ChunkStore with optional insert failures.
type fakeChunkStore struct {
	chunks      map[string]Chunk // keyed by normalized text + "/" + language
	insertFails int
	insertCalls int
	topicBumps  map[string]int
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{
		chunks:     make(map[string]Chunk),
		topicBumps: make(map[string]int),
	}
}

func (f *fakeChunkStore) FindChunks(_ context.Context, cr Criteria) ([]Chunk, error) {
	var out []Chunk
	for _, c := range f.chunks {
		if cr.Language != "" && c.Language != cr.Language {
			continue
		}
		if cr.MinDifficulty > 0 && float64(c.Difficulty) < cr.MinDifficulty {
			continue
		}
		if cr.MaxDifficulty > 0 && float64(c.Difficulty) > cr.MaxDifficulty {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeChunkStore) GetByNormalizedText(_ context.Context, norm, language string) (*Chunk, error) {
	if c, ok := f.chunks[norm+"/"+language]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeChunkStore) GetByIDs(_ context.Context, ids []string) ([]Chunk, error) {
	var out []Chunk
	for _, c := range f.chunks {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeChunkStore) Insert(_ context.Context, c Chunk) error {
	f.insertCalls++
	if f.insertFails > 0 {
		f.insertFails--
		return fmt.Errorf("disk full")
	}
	f.chunks[NormalizeText(c.Text)+"/"+c.Language] = c
	return nil
}

func (f *fakeChunkStore) BumpTopicCount(_ context.Context, language, topic string) error {
	f.topicBumps[language+"/"+topic]++
	return nil
}

func repoNow() time.Time {
	return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func TestUpsertAssignsIDAndPersists(t *testing.T) {
	store := newFakeChunkStore()
	repo := NewRepository(store).WithClock(repoNow)

	got, err := repo.Upsert(context.Background(), Chunk{
		Text:     "Bonjour !",
		Language: "fr",
		Kind:     KindFixedPhrase,
		Topics:   []string{"greetings"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got.ID == "" {
		t.Error("expected a generated ID")
	}
	if !got.CreatedAt.Equal(repoNow()) {
		t.Errorf("CreatedAt = %v, want clock time", got.CreatedAt)
	}
	if store.topicBumps["fr/greetings"] != 1 {
		t.Errorf("topic bump count = %d, want 1", store.topicBumps["fr/greetings"])
	}
}

func TestUpsertDeduplicatesOnNormalizedText(t *testing.T) {
	store := newFakeChunkStore()
	repo := NewRepository(store).WithClock(repoNow)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, Chunk{Text: "Hello, world!", Language: "en", Kind: KindUtterance})
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	// Different surface form, same normalized text.
	second, err := repo.Upsert(ctx, Chunk{Text: "hello world", Language: "en", Kind: KindUtterance})
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("duplicate created: IDs %s and %s", first.ID, second.ID)
	}
	if store.insertCalls != 1 {
		t.Errorf("insertCalls = %d, want 1", store.insertCalls)
	}
}

func TestUpsertSameTextDifferentLanguageIsDistinct(t *testing.T) {
	store := newFakeChunkStore()
	repo := NewRepository(store).WithClock(repoNow)
	ctx := context.Background()

	fr, _ := repo.Upsert(ctx, Chunk{Text: "pain", Language: "fr", Kind: KindFixedPhrase})
	en, err := repo.Upsert(ctx, Chunk{Text: "pain", Language: "en", Kind: KindFixedPhrase})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if fr.ID == en.ID {
		t.Error("same text in different languages must be separate chunks")
	}
}

func TestUpsertClampsDifficulty(t *testing.T) {
	store := newFakeChunkStore()
	repo := NewRepository(store).WithClock(repoNow)

	got, err := repo.Upsert(context.Background(), Chunk{
		Text: "bonjour", Language: "fr", Kind: KindFixedPhrase, Difficulty: 11,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got.Difficulty != MaxDifficulty {
		t.Errorf("Difficulty = %d, want clamped to %d", got.Difficulty, MaxDifficulty)
	}
}

func TestUpsertRetriesOnce(t *testing.T) {
	store := newFakeChunkStore()
	store.insertFails = 1
	repo := NewRepository(store).WithClock(repoNow)

	_, err := repo.Upsert(context.Background(), Chunk{Text: "bonjour", Language: "fr", Kind: KindFixedPhrase})
	if err != nil {
		t.Fatalf("Upsert after one transient failure: %v", err)
	}
	if store.insertCalls != 2 {
		t.Errorf("insertCalls = %d, want 2", store.insertCalls)
	}
}

func TestUpsertSurfacesSaveFailure(t *testing.T) {
	store := newFakeChunkStore()
	store.insertFails = 2
	repo := NewRepository(store).WithClock(repoNow)

	_, err := repo.Upsert(context.Background(), Chunk{Text: "bonjour", Language: "fr", Kind: KindFixedPhrase})

	var saveErr *ErrSaveFailed
	if !errors.As(err, &saveErr) {
		t.Fatalf("err = %v, want *ErrSaveFailed", err)
	}
}

func TestUpsertRejectsEmptyText(t *testing.T) {
	repo := NewRepository(newFakeChunkStore()).WithClock(repoNow)
	if _, err := repo.Upsert(context.Background(), Chunk{Text: "?!", Language: "fr", Kind: KindFixedPhrase}); err == nil {
		t.Error("expected error for text that normalizes to empty")
	}
}
