package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	pebbleStore, err := NewPebbleStore(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)

	out := map[string]Backend{
		BackendMemory: NewMemoryStore(),
		BackendPebble: pebbleStore,
		BackendRedis:  NewRedisStore(mr.Addr(), "test"),
	}
	t.Cleanup(func() {
		for _, b := range out {
			_ = b.Close()
		}
	})
	return out
}

func TestStore_GetPutScan(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, Key("order", 1000))
			require.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, PutJSON(ctx, s, Key("order", 1001), record{ID: 1001, Name: "b"}))
			require.NoError(t, PutJSON(ctx, s, Key("order", 1000), record{ID: 1000, Name: "a"}))
			require.NoError(t, PutJSON(ctx, s, Key("other", 1), record{ID: 1, Name: "x"}))

			got, err := GetJSON[record](ctx, s, Key("order", 1000))
			require.NoError(t, err)
			assert.Equal(t, "a", got.Name)

			all, err := ScanJSON[record](ctx, s, "order/")
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, int64(1000), all[0].ID)
			assert.Equal(t, int64(1001), all[1].ID)

			none, err := ScanJSON[record](ctx, s, "missing/")
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)
		})
	}
}

func TestSequence_StartsAtFirstAndIncreases(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seq, err := s.Sequence("order", 1000)
			require.NoError(t, err)

			for want := int64(1000); want < 1005; want++ {
				got, err := seq.Next(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestSequence_ConcurrentAllocationIsUnique(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seq, err := s.Sequence("tx", 5000)
			require.NoError(t, err)

			const workers, perWorker = 8, 50
			var (
				mu   sync.Mutex
				seen = make(map[int64]struct{}, workers*perWorker)
				wg   sync.WaitGroup
			)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						id, err := seq.Next(ctx)
						if err != nil {
							t.Errorf("next: %v", err)
							return
						}
						mu.Lock()
						seen[id] = struct{}{}
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Len(t, seen, workers*perWorker)
			for id := range seen {
				assert.GreaterOrEqual(t, id, int64(5000))
				assert.Less(t, id, int64(5000+workers*perWorker))
			}
		})
	}
}

func TestOpen(t *testing.T) {
	b, err := Open(Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, b)

	_, err = Open(Options{Backend: "etcd"})
	assert.Error(t, err)
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("order0"), prefixUpperBound([]byte("order/")))
	assert.Equal(t, []byte("b"), prefixUpperBound([]byte{'a', 0xff}))
	assert.Nil(t, prefixUpperBound([]byte{0xff, 0xff}))
}
