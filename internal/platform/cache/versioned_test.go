package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Versioned, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, time.Minute), mr
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return map[string]int{"calls": calls}, nil
	}

	key, err := c.BuildKey(ctx, "widget", "new-patients")
	require.NoError(t, err)
	assert.Equal(t, "claimsight:widget:new-patients:v1", key)

	var out map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	assert.Equal(t, 1, out["calls"])

	ver, err := c.Bump(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)

	key, err = c.BuildKey(ctx, "widget", "new-patients")
	require.NoError(t, err)
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	assert.Equal(t, 2, out["calls"])
}

func TestFetchBytesHonoursTTLAndErrors(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	raw, err := c.FetchBytes(ctx, "k", func(context.Context) ([]byte, error) { return []byte("png"), nil })
	require.NoError(t, err)
	assert.Equal(t, "png", string(raw))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	_, err = c.FetchBytes(ctx, "other", func(context.Context) ([]byte, error) { return nil, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	assert.False(t, mr.Exists("other"))
}

func TestSyncDatasetBumpsOnChange(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	_, err := c.Version(ctx)
	require.NoError(t, err)

	bumped, err := c.SyncDataset(ctx, "aaa")
	require.NoError(t, err)
	assert.True(t, bumped)

	bumped, err = c.SyncDataset(ctx, "aaa")
	require.NoError(t, err)
	assert.False(t, bumped)

	bumped, err = c.SyncDataset(ctx, "bbb")
	require.NoError(t, err)
	assert.True(t, bumped)

	ver, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ver)
}

func TestListenForInvalidation(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int64, 1)
	require.NoError(t, c.ListenForInvalidation(ctx, "", func(v int64) { got <- v }))
	_, err := c.Bump(ctx)
	require.NoError(t, err)

	select {
	case v := <-got:
		assert.Equal(t, int64(1), v)
	case <-time.After(2 * time.Second):
		t.Fatal("no invalidation received")
	}
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Versioned
	ctx := context.Background()
	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "claimsight:a:b", key)

	var out []int
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) { return []int{1, 2}, nil }))
	assert.Equal(t, []int{1, 2}, out)
	bumped, err := c.SyncDataset(ctx, "x")
	require.NoError(t, err)
	assert.False(t, bumped)
}
