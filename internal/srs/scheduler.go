package srs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chatterling/engine/internal/retry"
)

// StateStore is the persistence interface for chunk states.
// The sqlite implementation lives in internal/store; tests supply fakes.
type StateStore interface {
	// Get returns the state for (learner, chunk), or nil if the pair has
	// never been encountered.
	Get(ctx context.Context, learnerID, chunkID string) (*ChunkState, error)

	// Put inserts or replaces a state record.
	Put(ctx context.Context, st *ChunkState) error

	// ForLearner returns all state records for a learner.
	ForLearner(ctx context.Context, learnerID string) ([]ChunkState, error)
}

// ErrSaveFailed wraps a state write that survived the retry. The advanced
// in-memory state is still returned to the caller so the session can
// continue; the next successful write reconciles.
type ErrSaveFailed struct {
	Err error
}

func (e *ErrSaveFailed) Error() string {
	return fmt.Sprintf("chunk state save failed: %v", e.Err)
}

func (e *ErrSaveFailed) Unwrap() error { return e.Err }

// Scheduler manages per-(learner, chunk) spaced-repetition state.
type Scheduler struct {
	store StateStore
	now   func() time.Time
}

// NewScheduler creates a scheduler over the given store.
func NewScheduler(store StateStore) *Scheduler {
	return &Scheduler{store: store, now: time.Now}
}

// WithClock overrides the scheduler clock. Used by tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Record applies an outcome to the chunk's state, creating the record on
// first encounter. The write is retried once; on repeated failure the
// advanced state and transition are still returned alongside *ErrSaveFailed.
func (s *Scheduler) Record(ctx context.Context, learnerID, chunkID string, o Outcome) (*ChunkState, Transition, error) {
	st, err := s.store.Get(ctx, learnerID, chunkID)
	if err != nil {
		return nil, Transition{}, fmt.Errorf("load chunk state: %w", err)
	}
	if st == nil {
		st = NewChunkState(learnerID, chunkID)
	}

	tr := Advance(st, o, s.now())

	err = retry.Once(ctx, retry.DefaultBackoff, func() error {
		return s.store.Put(ctx, st)
	})
	if err != nil {
		return st, tr, &ErrSaveFailed{Err: err}
	}
	return st, tr, nil
}

// Due returns every record that is due now (nextReviewAt passed) or
// fragile, ordered fragile first, then soonest due, with the chunk ID as
// the final tiebreak so plans are deterministic.
func (s *Scheduler) Due(ctx context.Context, learnerID string) ([]ChunkState, error) {
	states, err := s.store.ForLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load chunk states: %w", err)
	}

	now := s.now()
	var due []ChunkState
	for _, st := range states {
		if st.IsDue(now) {
			due = append(due, st)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		fi, fj := due[i].Status == StatusFragile, due[j].Status == StatusFragile
		if fi != fj {
			return fi
		}
		if !due[i].NextReviewAt.Equal(due[j].NextReviewAt) {
			return due[i].NextReviewAt.Before(due[j].NextReviewAt)
		}
		return due[i].ChunkID < due[j].ChunkID
	})

	return due, nil
}

// DueCount returns how many chunks need review now. Feeds the "N items
// need review today" UI hint.
func (s *Scheduler) DueCount(ctx context.Context, learnerID string) (int, error) {
	due, err := s.Due(ctx, learnerID)
	if err != nil {
		return 0, err
	}
	return len(due), nil
}

// Decay re-marks acquired records whose review date has passed as fragile,
// without touching ease factor or interval. Passive decay is independent
// of active review. Idempotent: a second run for the same instant finds
// no remaining overdue acquired records and changes nothing.
func (s *Scheduler) Decay(ctx context.Context, learnerID string, now time.Time) ([]Transition, error) {
	states, err := s.store.ForLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load chunk states: %w", err)
	}

	var transitions []Transition
	for i := range states {
		st := &states[i]
		if st.Status != StatusAcquired || now.Before(st.NextReviewAt) {
			continue
		}
		st.Status = StatusFragile
		st.UpdatedAt = now
		if err := s.store.Put(ctx, st); err != nil {
			return transitions, fmt.Errorf("mark fragile %s: %w", st.ChunkID, err)
		}
		transitions = append(transitions, Transition{
			ChunkID: st.ChunkID,
			From:    StatusAcquired,
			To:      StatusFragile,
		})
	}
	return transitions, nil
}

// KnownChunkIDs returns every chunk ID the learner has any state for.
// Used to exclude already-seen chunks from new-content selection.
func (s *Scheduler) KnownChunkIDs(ctx context.Context, learnerID string) (map[string]bool, error) {
	states, err := s.store.ForLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load chunk states: %w", err)
	}
	known := make(map[string]bool, len(states))
	for _, st := range states {
		known[st.ChunkID] = true
	}
	return known, nil
}

// ChunkIDsByStatus returns the learner's chunk IDs in any of the given
// statuses, sorted for determinism.
func (s *Scheduler) ChunkIDsByStatus(ctx context.Context, learnerID string, statuses ...Status) ([]string, error) {
	states, err := s.store.ForLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load chunk states: %w", err)
	}
	want := make(map[Status]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var ids []string
	for _, st := range states {
		if want[st.Status] {
			ids = append(ids, st.ChunkID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
