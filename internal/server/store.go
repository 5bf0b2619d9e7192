package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kastman/sbml-diff/pkg/pipeline"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded comparison.
type Run struct {
	ID             string           `json:"id" bson:"_id"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at"`
	ModelNames     []string         `json:"model_names" bson:"model_names"`
	Options        pipeline.Options `json:"options" bson:"options"`
	HasDifferences bool             `json:"has_differences" bson:"has_differences"`
	Renamed        int              `json:"renamed" bson:"renamed"`
}

// Store persists run history.
type Store interface {
	// Insert records a run.
	Insert(ctx context.Context, run Run) error

	// Get retrieves one run, or ErrRunNotFound.
	Get(ctx context.Context, id string) (Run, error)

	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]Run, error)

	Close(ctx context.Context) error
}

// MemoryStore is an in-process Store for tests and single-instance
// deployments without Mongo.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: map[string]Run{}}
}

func (s *MemoryStore) Insert(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return run, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
