package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T) (*RedisEventCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisEventCache(rdb, 30*time.Second), mr
}

func TestRedisEventCache_GetSet(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "category=music"); ok {
		t.Fatal("cache vide: Get ne doit rien trouver")
	}

	cache.Set(ctx, "category=music", []byte(`{"events":[]}`))
	got, ok := cache.Get(ctx, "category=music")
	if !ok || string(got) != `{"events":[]}` {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	// Une autre query string est une autre entrée
	if _, ok := cache.Get(ctx, "category=sport"); ok {
		t.Error("les variantes de query ne doivent pas se mélanger")
	}

	// Expiration
	mr.FastForward(31 * time.Second)
	if _, ok := cache.Get(ctx, "category=music"); ok {
		t.Error("l'entrée doit expirer après le TTL")
	}
}

func TestRedisEventCache_Purge(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	cache.Set(ctx, "", []byte("a"))
	cache.Set(ctx, "status=active", []byte("b"))
	_ = mr.Set("session:abc", "garde")

	cache.Purge(ctx)

	keys := mr.Keys()
	if len(keys) != 1 || keys[0] != "session:abc" {
		t.Fatalf("seules les clés de liste doivent être purgées, reste: %v", keys)
	}
}

func TestNoopEventCache(t *testing.T) {
	var cache EventCache = NoopEventCache{}
	ctx := context.Background()
	cache.Set(ctx, "q", []byte("x"))
	if _, ok := cache.Get(ctx, "q"); ok {
		t.Error("NoopEventCache ne doit jamais retourner de valeur")
	}
	cache.Purge(ctx)
}
