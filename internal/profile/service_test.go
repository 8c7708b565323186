package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeStore is an in-memory Store with optional write failures.
type fakeStore struct {
	profiles  map[string]*Profile
	saveFails int
	saveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]*Profile)}
}

func (f *fakeStore) Load(_ context.Context, learnerID string) (*Profile, error) {
	p, ok := f.profiles[learnerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Save(_ context.Context, p *Profile) error {
	f.saveCalls++
	if f.saveFails > 0 {
		f.saveFails--
		return fmt.Errorf("disk full")
	}
	cp := *p
	f.profiles[p.LearnerID] = &cp
	return nil
}

func TestLoadOrCreateNewLearner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store).WithClock(func() time.Time { return testNow })

	p, err := svc.LoadOrCreate(context.Background(), "kid-1", "fr")
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if p.LearnerID != "kid-1" || p.Language != "fr" {
		t.Errorf("profile = %s/%s, want kid-1/fr", p.LearnerID, p.Language)
	}
	if _, ok := store.profiles["kid-1"]; !ok {
		t.Error("new profile was not persisted")
	}
}

func TestLoadOrCreateExisting(t *testing.T) {
	store := newFakeStore()
	existing := New("kid-1", "fr", testNow)
	existing.TotalSessions = 4
	store.profiles["kid-1"] = existing

	svc := NewService(store)
	p, err := svc.LoadOrCreate(context.Background(), "kid-1", "fr")
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if p.TotalSessions != 4 {
		t.Errorf("TotalSessions = %d, want the stored profile", p.TotalSessions)
	}
}

func TestLoadOrCreateReturnsProfileDespiteSaveFailure(t *testing.T) {
	store := newFakeStore()
	store.saveFails = 2
	svc := NewService(store).WithClock(func() time.Time { return testNow })

	p, err := svc.LoadOrCreate(context.Background(), "kid-1", "fr")

	var saveErr *ErrSaveFailed
	if !errors.As(err, &saveErr) {
		t.Fatalf("err = %v, want *ErrSaveFailed", err)
	}
	if p == nil || p.LearnerID != "kid-1" {
		t.Error("in-memory profile should be returned even when the first save fails")
	}
}

func TestSaveRetriesOnce(t *testing.T) {
	store := newFakeStore()
	store.saveFails = 1
	svc := NewService(store)

	if err := svc.Save(context.Background(), New("kid-1", "fr", testNow)); err != nil {
		t.Fatalf("Save after one transient failure: %v", err)
	}
	if store.saveCalls != 2 {
		t.Errorf("saveCalls = %d, want 2", store.saveCalls)
	}
}
