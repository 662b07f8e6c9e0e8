package repository

import (
	"context"
	"testing"
	"time"

	"product-template-service/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCache_UnreachableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	cache := NewTemplateCache(client, 0)
	assert.Equal(t, DefaultTemplateCacheTTL, cache.ttl)

	ctx := context.Background()
	got, gen, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, noGeneration, gen)
	cache.Set(ctx, &models.ProductTemplate{ID: 1, Name: "n"}, gen)
	cache.Invalidate(ctx, 1)
}

func TestTemplateKey(t *testing.T) {
	assert.Equal(t, "product_template:42", templateKey(42))
}

func newMiniredisCache(t *testing.T) (*TemplateCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTemplateCache(client, time.Minute), mr
}

func TestTemplateCache_FillAndHit(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	_, gen, ok := cache.Get(ctx, 7)
	require.False(t, ok)
	assert.Zero(t, gen)

	cache.Set(ctx, &models.ProductTemplate{ID: 7, Name: "crop", Version: 1}, gen)
	got, _, ok := cache.Get(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, "crop", got.Name)
	assert.Equal(t, time.Minute, mr.TTL(templateKey(7)))
}

func TestTemplateCache_FillAfterInvalidateIsDropped(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	_, gen, ok := cache.Get(ctx, 7)
	require.False(t, ok)

	// a write commits between the reader's miss and its fill
	cache.Invalidate(ctx, 7)
	cache.Set(ctx, &models.ProductTemplate{ID: 7, Version: 1}, gen)

	assert.False(t, mr.Exists(templateKey(7)))
	_, gen, ok = cache.Get(ctx, 7)
	require.False(t, ok)
	assert.Equal(t, uint64(1), gen)

	cache.Set(ctx, &models.ProductTemplate{ID: 7, Version: 2}, gen)
	got, _, ok := cache.Get(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, uint32(2), got.Version)

	cache.Invalidate(ctx, 7)
	assert.False(t, mr.Exists(templateKey(7)))
}

func TestTemplateCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	require.NoError(t, mr.Set(templateKey(3), "{not json"))

	got, gen, ok := cache.Get(context.Background(), 3)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Zero(t, gen)
}
