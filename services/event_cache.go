package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Préfixe des réponses de liste mises en cache
const eventsListPrefix = "cache:events:list:"

// EventCache met en cache la liste publique des événements
type EventCache interface {
	Get(ctx context.Context, query string) ([]byte, bool)
	Set(ctx context.Context, query string, body []byte)
	Purge(ctx context.Context)
}

// NoopEventCache est utilisé quand Redis n'est pas configuré
type NoopEventCache struct{}

func (NoopEventCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NoopEventCache) Set(context.Context, string, []byte)        {}
func (NoopEventCache) Purge(context.Context)                      {}

// RedisEventCache stocke chaque variante de la liste (query string) sous sa propre clé
type RedisEventCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisEventCache crée une nouvelle instance de RedisEventCache
func NewRedisEventCache(rdb *redis.Client, ttl time.Duration) *RedisEventCache {
	return &RedisEventCache{rdb: rdb, ttl: ttl}
}

// ConnectRedis ouvre et vérifie une connexion Redis depuis son URL
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Println("✓ Connexion à Redis réussie")
	return rdb, nil
}

// ListKey retourne la clé Redis d'une query string de liste
func ListKey(query string) string {
	sum := sha1.Sum([]byte("GET|/api/events|" + query))
	return eventsListPrefix + hex.EncodeToString(sum[:])
}

// Get retourne le corps mis en cache, si présent
func (c *RedisEventCache) Get(ctx context.Context, query string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, ListKey(query)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️  Lecture du cache impossible: %v", err)
		}
		return nil, false
	}
	return b, len(b) > 0
}

// Set enregistre un corps de réponse pour la durée configurée
func (c *RedisEventCache) Set(ctx context.Context, query string, body []byte) {
	if err := c.rdb.Set(ctx, ListKey(query), body, c.ttl).Err(); err != nil {
		log.Printf("⚠️  Écriture du cache impossible: %v", err)
	}
}

// Purge supprime toutes les variantes de la liste
func (c *RedisEventCache) Purge(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, eventsListPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.rdb.Del(ctx, iter.Val()).Err()
	}
	if err := iter.Err(); err != nil {
		log.Printf("⚠️  Invalidation du cache incomplète: %v", err)
	}
}
