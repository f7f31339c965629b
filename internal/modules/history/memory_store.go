package history

import (
	"context"
	"sync"

	"github.com/aristath/varcalc/internal/modules/risk"
)

// MemoryStore keeps runs in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	results []risk.Result
}

// NewMemoryStore creates an empty in-memory history
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records a run
func (s *MemoryStore) Append(ctx context.Context, result risk.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, copyResult(result))
	return nil
}

// Recent returns up to limit runs, newest first
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]risk.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.results)
	if limit < n {
		n = limit
	}
	out := make([]risk.Result, 0, n)
	for i := len(s.results) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, copyResult(s.results[i]))
	}
	return out, nil
}

// Len reports how many runs are stored
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
