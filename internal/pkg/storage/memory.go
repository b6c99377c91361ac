package storage

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"go.uber.org/atomic"
)

var _ Backend = (*MemoryStore)(nil)

// MemoryStore is a thread-safe map store. Values are copied on the way in and
// out so callers never share a buffer with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(value)
	return nil
}

func (s *MemoryStore) Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error {
	s.mu.RLock()
	keys := slices.Sorted(maps.Keys(s.data))
	snapshot := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			snapshot[k] = slices.Clone(s.data[k])
		}
	}
	s.mu.RUnlock()

	for _, k := range keys {
		v, ok := snapshot[k]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Sequence(_ string, first int64) (Sequence, error) {
	return NewAtomicSequence(first), nil
}

// AtomicSequence is an in-process counter.
type AtomicSequence struct {
	last *atomic.Int64
}

// NewAtomicSequence returns a sequence whose first value is first.
func NewAtomicSequence(first int64) *AtomicSequence {
	return &AtomicSequence{last: atomic.NewInt64(first - 1)}
}

func (s *AtomicSequence) Next(context.Context) (int64, error) {
	return s.last.Inc(), nil
}
