package launch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finsights/internal/core"
)

type fakeStore struct {
	count    int64
	inserted int
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) { return f.count, nil }

func (f *fakeStore) InsertBatch(ctx context.Context, txs []core.Transaction) error {
	f.inserted += len(txs)
	return nil
}

func TestSequencer_FullSequence(t *testing.T) {
	ctx := context.Background()
	s := NewSequencer(nil)

	if s.State() != StateUnseeded {
		t.Fatalf("initial state = %s, want %s", s.State(), StateUnseeded)
	}

	if err := s.MarkSeeded(ctx); err != nil {
		t.Fatalf("MarkSeeded: %v", err)
	}
	if err := s.MarkAPIUp(ctx); err != nil {
		t.Fatalf("MarkAPIUp: %v", err)
	}
	if err := s.MarkUIUp(ctx); err != nil {
		t.Fatalf("MarkUIUp: %v", err)
	}
	if s.State() != StateUIUp {
		t.Fatalf("final state = %s, want %s", s.State(), StateUIUp)
	}
}

func TestSequencer_IdempotentTransitions(t *testing.T) {
	ctx := context.Background()
	s := NewSequencer(nil)

	if err := s.MarkSeeded(ctx); err != nil {
		t.Fatalf("MarkSeeded: %v", err)
	}
	if err := s.MarkSeeded(ctx); err != nil {
		t.Fatalf("repeated MarkSeeded should no-op: %v", err)
	}
	if s.State() != StateSeeded {
		t.Fatalf("state = %s, want %s", s.State(), StateSeeded)
	}
}

func TestSequencer_RejectsSkippedStates(t *testing.T) {
	ctx := context.Background()

	t.Run("api before seed", func(t *testing.T) {
		s := NewSequencer(nil)
		if err := s.MarkAPIUp(ctx); !errors.Is(err, core.ErrInvalidArgument) {
			t.Fatalf("MarkAPIUp from unseeded = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("ui before api", func(t *testing.T) {
		s := NewSequencer(nil)
		if err := s.MarkSeeded(ctx); err != nil {
			t.Fatalf("MarkSeeded: %v", err)
		}
		if err := s.MarkUIUp(ctx); !errors.Is(err, core.ErrInvalidArgument) {
			t.Fatalf("MarkUIUp from seeded = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("no going back", func(t *testing.T) {
		s := NewSequencer(nil)
		_ = s.MarkSeeded(ctx)
		_ = s.MarkAPIUp(ctx)
		if err := s.MarkSeeded(ctx); !errors.Is(err, core.ErrInvalidArgument) {
			t.Fatalf("MarkSeeded from api_up = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestSequencer_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("generates dataset and loads empty store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.csv")
		store := &fakeStore{}
		s := NewSequencer(nil)

		if err := s.Seed(ctx, store, path, 20, 42); err != nil {
			t.Fatalf("Seed: %v", err)
		}
		if s.State() != StateSeeded {
			t.Fatalf("state = %s, want %s", s.State(), StateSeeded)
		}
		if store.inserted != 20 {
			t.Fatalf("inserted %d rows, want 20", store.inserted)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("dataset file should exist: %v", err)
		}
	})

	t.Run("skips load when store already holds rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.csv")
		store := &fakeStore{count: 500}
		s := NewSequencer(nil)

		if err := s.Seed(ctx, store, path, 20, 42); err != nil {
			t.Fatalf("Seed: %v", err)
		}
		if store.inserted != 0 {
			t.Fatalf("inserted %d rows into seeded store, want 0", store.inserted)
		}
		if s.State() != StateSeeded {
			t.Fatalf("state = %s, want %s", s.State(), StateSeeded)
		}
	})

	t.Run("second call is a no-op", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.csv")
		store := &fakeStore{}
		s := NewSequencer(nil)

		if err := s.Seed(ctx, store, path, 10, 42); err != nil {
			t.Fatalf("first Seed: %v", err)
		}
		if err := s.Seed(ctx, store, path, 10, 42); err != nil {
			t.Fatalf("second Seed: %v", err)
		}
		if store.inserted != 10 {
			t.Fatalf("inserted %d rows, want 10", store.inserted)
		}
	})
}
