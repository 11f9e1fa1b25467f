// Package launch models service startup as an explicit state machine:
// Unseeded -> Seeded -> ApiUp -> UiUp. Transitions are idempotent
// (re-entering the current state is a no-op) and skipping ahead is an
// error, which replaces ad hoc sequential process launching with a
// startup sequence external observers can inspect.
package launch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"finsights/internal/core"
	"finsights/internal/events"
	"finsights/internal/generate"
	"finsights/internal/seed"
)

// nowFunc is the dataset generator's reference time; overridable in tests.
var nowFunc = time.Now

// State is one startup phase.
type State string

const (
	StateUnseeded State = "unseeded"
	StateSeeded   State = "seeded"
	StateAPIUp    State = "api_up"
	StateUIUp     State = "ui_up"
)

// Sequencer tracks the startup state and drives the seeding step.
// It is safe for concurrent use.
type Sequencer struct {
	mu  sync.Mutex
	st  State
	pub *events.Publisher // optional; nil publishes nothing
}

// NewSequencer starts in StateUnseeded.
func NewSequencer(pub *events.Publisher) *Sequencer {
	return &Sequencer{st: StateUnseeded, pub: pub}
}

// State returns the current startup state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Seed makes sure the dataset file exists (generating it when absent)
// and the store holds rows, then enters StateSeeded. Calling it again
// once seeded is a no-op.
func (s *Sequencer) Seed(ctx context.Context, store seed.Store, datasetPath string, size int, datasetSeed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st != StateUnseeded {
		slog.InfoContext(ctx, "Seeding skipped, already past unseeded", "state", string(s.st))
		return nil
	}

	if err := ensureDataset(ctx, datasetPath, size, datasetSeed); err != nil {
		return err
	}
	if err := seed.Run(ctx, store, datasetPath); err != nil {
		return err
	}

	return s.advanceLocked(ctx, StateSeeded)
}

// MarkSeeded enters StateSeeded without loading anything, for callers
// that seed the store out of band.
func (s *Sequencer) MarkSeeded(ctx context.Context) error {
	return s.advance(ctx, StateSeeded)
}

// MarkAPIUp enters StateAPIUp. Valid only from StateSeeded.
func (s *Sequencer) MarkAPIUp(ctx context.Context) error {
	return s.advance(ctx, StateAPIUp)
}

// MarkUIUp enters StateUIUp. Valid only from StateAPIUp; the dashboard
// reports this transition once it is serving.
func (s *Sequencer) MarkUIUp(ctx context.Context) error {
	return s.advance(ctx, StateUIUp)
}

// prior maps each state to the one it may be entered from.
var prior = map[State]State{
	StateSeeded: StateUnseeded,
	StateAPIUp:  StateSeeded,
	StateUIUp:   StateAPIUp,
}

func (s *Sequencer) advance(ctx context.Context, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(ctx, to)
}

func (s *Sequencer) advanceLocked(ctx context.Context, to State) error {
	if s.st == to {
		return nil
	}
	if s.st != prior[to] {
		return fmt.Errorf("cannot enter %s from %s: %w", to, s.st, core.ErrInvalidArgument)
	}

	from := s.st
	s.st = to
	slog.InfoContext(ctx, "Launch state transition", "from", string(from), "to", string(to))

	if err := s.pub.PublishLaunchTransition(ctx, string(from), string(to)); err != nil {
		// Event delivery is best effort; the transition stands.
		slog.ErrorContext(ctx, "Failed to publish launch transition",
			"error", err, "from", string(from), "to", string(to))
	}
	return nil
}

// ensureDataset generates the synthetic CSV when the file is absent.
func ensureDataset(ctx context.Context, path string, size int, datasetSeed int64) error {
	if _, err := os.Stat(path); err == nil {
		slog.InfoContext(ctx, "Dataset already exists", "path", path)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat dataset %s: %w", path, err)
	}

	if size <= 0 {
		size = generate.DefaultSize
	}
	gen := generate.New(datasetSeed, nowFunc())
	if err := generate.WriteCSV(path, gen.Dataset(size)); err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}
	slog.InfoContext(ctx, "Generated synthetic dataset", "path", path, "rows", size)
	return nil
}
