package sagalog

import (
	"context"
	"sync"
)

// MemoryRepository keeps the log in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]SagaLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string][]SagaLog)}
}

func (r *MemoryRepository) Save(_ context.Context, entry *SagaLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.SagaID] = append(r.entries[entry.SagaID], *entry)
	return nil
}

func (r *MemoryRepository) History(_ context.Context, sagaID string) ([]SagaLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries, ok := r.entries[sagaID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]SagaLog, len(entries))
	copy(out, entries)
	return out, nil
}
