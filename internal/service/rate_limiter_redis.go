package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateDecision resume la evaluación del limitador para una petición.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter cuenta intercambios por cliente dentro de una ventana fija.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}

// Devuelve {hits, ms restantes de la ventana}.
const smsWindowScript = `
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("PTTL", KEYS[1])}
`

type scriptRunner interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisWindowLimiter struct {
	client scriptRunner
	window time.Duration
	limit  int
	prefix string
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration, limit int) RateLimiter {
	if client == nil {
		return nil
	}
	if window < time.Second {
		window = time.Minute
	}
	if limit <= 0 {
		limit = 1
	}
	return &redisWindowLimiter{
		client: client,
		window: window,
		limit:  limit,
		prefix: "sms:rl:",
	}
}

// Allow registra un hit para key. Ante un error de Redis devuelve Allowed=true junto al error;
// el llamador decide si falla abierto.
func (l *redisWindowLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	if key == "" {
		return RateDecision{}, errors.New("rate limit key is required")
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	vals, err := l.client.Eval(ctx, smsWindowScript, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return RateDecision{Allowed: true, Remaining: l.limit}, fmt.Errorf("rate limit eval: %w", err)
	}
	if len(vals) != 2 {
		return RateDecision{Allowed: true, Remaining: l.limit}, fmt.Errorf("rate limit eval: unexpected reply %v", vals)
	}

	hits, ttl := vals[0], vals[1]
	remaining := l.limit - int(hits)
	if remaining < 0 {
		remaining = 0
	}
	decision := RateDecision{Allowed: hits <= int64(l.limit), Remaining: remaining}
	if !decision.Allowed {
		decision.RetryAfter = l.window
		if ttl > 0 {
			decision.RetryAfter = time.Duration(ttl) * time.Millisecond
		}
	}
	return decision, nil
}
