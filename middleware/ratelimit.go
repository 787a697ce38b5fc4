package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"eventhub-backend/utils"

	"golang.org/x/time/rate"
)

// LimiterConfig paramètre le seau à jetons de chaque clé
type LimiterConfig struct {
	RPS     float64       // jetons ajoutés par seconde
	Burst   int           // capacité du seau
	IdleTTL time.Duration // une clé inactive est oubliée après ce délai
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limite les requêtes par clé (utilisateur ou IP), en mémoire
type RateLimiter struct {
	conf    LimiterConfig
	mu      sync.Mutex
	buckets map[string]*keyLimiter
}

// NewRateLimiter crée le limiteur et nettoie les clés inactives jusqu'à l'annulation de ctx
func NewRateLimiter(ctx context.Context, conf LimiterConfig) *RateLimiter {
	if conf.IdleTTL <= 0 {
		conf.IdleTTL = 10 * time.Minute
	}
	rl := &RateLimiter{
		conf:    conf,
		buckets: make(map[string]*keyLimiter),
	}

	go func() {
		ticker := time.NewTicker(conf.IdleTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.evictIdle(now)
			}
		}
	}()

	return rl
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, v := range rl.buckets {
		if now.Sub(v.lastSeen) > rl.conf.IdleTTL {
			delete(rl.buckets, k)
		}
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}

	lim := rate.NewLimiter(rate.Limit(rl.conf.RPS), rl.conf.Burst)
	rl.buckets[key] = &keyLimiter{limiter: lim, lastSeen: now}
	return lim
}

// clientKey identifie l'appelant: l'utilisateur authentifié, sinon l'IP
func clientKey(r *http.Request) string {
	if claims := GetUserFromContext(r.Context()); claims != nil {
		return "user:" + claims.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// Middleware refuse en 429 les requêtes au-delà du débit autorisé
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(clientKey(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			utils.RespondError(w, http.StatusTooManyRequests, "Trop de requêtes, réessayez dans un instant")
			return
		}
		next.ServeHTTP(w, r)
	})
}
