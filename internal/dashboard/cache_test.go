package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
}

func TestFetchJSONPopulatesOnMiss(t *testing.T) {
	cache := testCache(t)
	calls := 0
	loader := func(ctx context.Context) (any, error) {
		calls++
		return map[string]int{"totalComponents": 42}, nil
	}

	var first map[string]int
	require.NoError(t, cache.FetchJSON(context.Background(), "snap", &first, loader))
	require.Equal(t, 42, first["totalComponents"])
	require.Equal(t, 1, calls)

	// Second read is served from the cache.
	var second map[string]int
	require.NoError(t, cache.FetchJSON(context.Background(), "snap", &second, loader))
	require.Equal(t, 42, second["totalComponents"])
	require.Equal(t, 1, calls)
}

func TestFetchJSONWithoutClientCallsLoader(t *testing.T) {
	var cache *Cache
	calls := 0
	loader := func(ctx context.Context) (any, error) {
		calls++
		return map[string]int{"n": calls}, nil
	}

	var out map[string]int
	require.NoError(t, cache.FetchJSON(context.Background(), "snap", &out, loader))
	require.NoError(t, cache.FetchJSON(context.Background(), "snap", &out, loader))
	require.Equal(t, 2, calls)
	require.Equal(t, 2, out["n"])
}

func TestInvalidateForcesReload(t *testing.T) {
	cache := testCache(t)
	calls := 0
	loader := func(ctx context.Context) (any, error) {
		calls++
		return map[string]int{"n": calls}, nil
	}

	var out map[string]int
	require.NoError(t, cache.FetchJSON(context.Background(), "snap", &out, loader))
	cache.Invalidate(context.Background(), "snap")
	require.NoError(t, cache.FetchJSON(context.Background(), "snap", &out, loader))
	require.Equal(t, 2, calls)
}

func TestStoreJSONOverwrites(t *testing.T) {
	cache := testCache(t)
	cache.StoreJSON(context.Background(), "snap", map[string]int{"n": 1})
	cache.StoreJSON(context.Background(), "snap", map[string]int{"n": 2})

	var out map[string]int
	require.NoError(t, cache.FetchJSON(context.Background(), "snap", &out, func(ctx context.Context) (any, error) {
		t.Fatal("loader should not run on a warm cache")
		return nil, nil
	}))
	require.Equal(t, 2, out["n"])
}
