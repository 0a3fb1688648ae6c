package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	err := c.Set(ctx, "k1", []byte("v1"), time.Minute)
	assert.NoError(t, err)

	got, err := c.Get(ctx, "k1")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
}

func TestMemoryCache_GetMissing(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k1", []byte("v1"), 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k1", []byte("v1"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k1"))

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "produce:recent", []byte("a"), time.Minute))
	assert.NoError(t, c.Set(ctx, "produce:search:apple", []byte("b"), time.Minute))
	assert.NoError(t, c.Set(ctx, "session:tok", []byte("c"), time.Minute))

	assert.NoError(t, c.DeletePrefix(ctx, "produce:"))

	// produce entries swept
	_, err := c.Get(ctx, "produce:recent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "produce:search:apple")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// session entry untouched
	got, err := c.Get(ctx, "session:tok")
	assert.NoError(t, err)
	assert.Equal(t, []byte("c"), got)
}

func TestMemoryCache_Exists(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	ok, err := c.Exists(ctx, "k1")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Set(ctx, "k1", []byte("v1"), time.Minute))

	ok, err = c.Exists(ctx, "k1")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_GetOrSet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte("fresh"), nil
	}

	got, err := c.GetOrSet(ctx, "k1", time.Minute, fetch)
	assert.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)
	assert.Equal(t, 1, calls)

	// second call served from cache
	got, err = c.GetOrSet(ctx, "k1", time.Minute, fetch)
	assert.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)
	assert.Equal(t, 1, calls)
}
