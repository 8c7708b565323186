package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatterling/engine/internal/retry"
)

// ErrNotFound is returned by a Store when no profile exists for a learner.
var ErrNotFound = errors.New("profile not found")

// Store is the persistence interface for learner profiles.
// Reads must observe the store's own prior writes for the same learner.
type Store interface {
	Load(ctx context.Context, learnerID string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}

// ErrSaveFailed wraps a profile write that survived the retry. The caller
// keeps the in-memory profile so the session can continue; the next
// successful write reconciles.
type ErrSaveFailed struct {
	Err error
}

func (e *ErrSaveFailed) Error() string {
	return fmt.Sprintf("profile save failed: %v", e.Err)
}

func (e *ErrSaveFailed) Unwrap() error { return e.Err }

// Service wraps a Store with load-or-create semantics and the
// retry-once write policy.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a profile service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// LoadOrCreate returns the learner's profile, creating it with defaults
// on first contact. A missing profile is never surfaced as an error.
func (s *Service) LoadOrCreate(ctx context.Context, learnerID, language string) (*Profile, error) {
	p, err := s.store.Load(ctx, learnerID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	p = New(learnerID, language, s.now())
	if err := s.Save(ctx, p); err != nil {
		// First save failing is still recoverable: hand back the
		// in-memory profile and reconcile on the next write.
		return p, err
	}
	return p, nil
}

// Save persists the profile, retrying once on failure. A repeated failure
// surfaces as *ErrSaveFailed.
func (s *Service) Save(ctx context.Context, p *Profile) error {
	err := retry.Once(ctx, retry.DefaultBackoff, func() error {
		return s.store.Save(ctx, p)
	})
	if err != nil {
		return &ErrSaveFailed{Err: err}
	}
	return nil
}
