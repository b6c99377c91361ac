// Package storage is the keyed store behind every registry.
//
// A Store exposes Get, Put and Scan over opaque byte values; identifiers are
// handed out by a Sequence, which is the single allocation path for a
// registry and never hands out the same value twice.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("storage: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Scan calls fn for every key starting with prefix, in ascending key order.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error
	Close() error
}

// Sequence allocates monotonically increasing identifiers.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// Sequencer is implemented by stores that can host sequences next to the data.
type Sequencer interface {
	Sequence(name string, first int64) (Sequence, error)
}

// Backend is a store that also hosts its sequences.
type Backend interface {
	Store
	Sequencer
}

// Key builds a zero-padded key so that lexical order matches numeric order.
func Key(prefix string, id int64) string {
	return fmt.Sprintf("%s/%020d", prefix, id)
}

func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return v, nil
}

func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// ScanJSON decodes every value under prefix. The result is never nil.
func ScanJSON[T any](ctx context.Context, s Store, prefix string) ([]T, error) {
	out := []T{}
	err := s.Scan(ctx, prefix, func(key string, value []byte) error {
		var v T
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("storage: decode %q: %w", key, err)
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
