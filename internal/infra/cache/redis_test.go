package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/enrich-api/internal/entity"
)

// fakeRedis implements the handful of Cmdable methods the cache uses.
type fakeRedis struct {
	redis.Cmdable
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestKeyTrimsButKeepsCase(t *testing.T) {
	assert.Equal(t, "enrich:contact:Jane@ACME.com", Key("  Jane@ACME.com "))
	assert.NotEqual(t, Key("JANE@acme.com"), Key("jane@acme.com"))
}

func TestProfileCacheRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	c := NewProfileCacheWithClient(fake, time.Hour, nil)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.False(t, found)

	profile := &entity.EnrichmentProfile{FirstName: "Jane", CompanyName: "Acme"}
	require.NoError(t, c.Set(ctx, "jane@acme.com", profile))
	assert.Equal(t, time.Hour, fake.ttls["enrich:contact:jane@acme.com"])

	got, found, err := c.Get(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, profile, got)

	_, found, err = c.Get(ctx, "Jane@acme.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProfileCacheCorruptEntryIsMiss(t *testing.T) {
	fake := newFakeRedis()
	fake.data["enrich:contact:jane@acme.com"] = "{broken"
	c := NewProfileCacheWithClient(fake, time.Hour, nil)

	_, found, err := c.Get(context.Background(), "jane@acme.com")

	require.NoError(t, err)
	assert.False(t, found)
	assert.NotContains(t, fake.data, "enrich:contact:jane@acme.com")
}

func TestProfileCacheGetError(t *testing.T) {
	fake := newFakeRedis()
	fake.failGet = errors.New("connection refused")
	c := NewProfileCacheWithClient(fake, time.Hour, nil)

	_, found, err := c.Get(context.Background(), "jane@acme.com")

	assert.Error(t, err)
	assert.False(t, found)
}
