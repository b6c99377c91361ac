package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cockroachdb/pebble"
)

var _ Backend = (*PebbleStore)(nil)

// PebbleStore persists registry records in a local PebbleDB directory.
type PebbleStore struct {
	db *pebble.DB
	// seqMu serializes read-increment-write on sequence keys.
	seqMu sync.Mutex
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open %q: %w", dir, err)
	}
	return &PebbleStore{db: db}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

func (p *PebbleStore) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get %q: %w", key, err)
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

func (p *PebbleStore) Put(_ context.Context, key string, value []byte) error {
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %q: %w", key, err)
	}
	return nil
}

func (p *PebbleStore) Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error {
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixUpperBound([]byte(prefix)),
	})
	if err != nil {
		return fmt.Errorf("pebble iter %q: %w", prefix, err)
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		k := string(it.Key())
		v := append([]byte(nil), it.Value()...)
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return it.Error()
}

func (p *PebbleStore) Sequence(name string, first int64) (Sequence, error) {
	return &pebbleSequence{store: p, key: "seq/" + name, first: first}, nil
}

type pebbleSequence struct {
	store *PebbleStore
	key   string
	first int64
}

func (s *pebbleSequence) Next(ctx context.Context) (int64, error) {
	s.store.seqMu.Lock()
	defer s.store.seqMu.Unlock()

	next := s.first
	raw, err := s.store.Get(ctx, s.key)
	switch {
	case err == nil:
		last, perr := strconv.ParseInt(string(raw), 10, 64)
		if perr != nil {
			return 0, fmt.Errorf("pebble sequence %q: %w", s.key, perr)
		}
		next = last + 1
	case !errors.Is(err, ErrNotFound):
		return 0, err
	}

	if err := s.store.Put(ctx, s.key, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, err
	}
	return next, nil
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
