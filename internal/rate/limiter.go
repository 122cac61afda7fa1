// Package rate limita intentos de login con ventanas fijas.
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// windowScript incrementa el contador de la ventana y fija su expiración
// en el primer hit, en una sola ida a Redis. Devuelve {hits, pttl_ms}.
var windowScript = rdb.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RedisLimiter es un fixed window compartido entre réplicas. Client acepta
// cualquier cliente de go-redis (single, ring o cluster).
type RedisLimiter struct {
	Client rdb.Scripter
	Prefix string
	Max    int64
	Window time.Duration

	now func() time.Time
}

func NewRedisLimiter(client rdb.Scripter, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

// windowKey arma la clave de la ventana vigente: prefix + key + inicio en unix.
func (l *RedisLimiter) windowKey(key string) string {
	winStart := l.now().UTC().Truncate(l.Window)
	return fmt.Sprintf("%s%s:%d", l.Prefix, redisKeyFor(key), winStart.Unix())
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	out, err := windowScript.Run(ctx, l.Client, []string{l.windowKey(key)}, l.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate window: %w", err)
	}
	if len(out) != 2 {
		return Result{}, fmt.Errorf("rate window: unexpected reply %v", out)
	}

	hits := out[0]
	ttl := time.Duration(out[1]) * time.Millisecond
	if ttl < 0 {
		// sin expiración visible (clave sin TTL); se asume la ventana completa
		ttl = l.Window
	}
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     hits <= l.Max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ceilSeconds(ttl)
	}
	return res, nil
}

func ceilSeconds(d time.Duration) time.Duration {
	return time.Duration(math.Ceil(d.Seconds())) * time.Second
}

// redisKeyFor normaliza la clave (sin espacios).
func redisKeyFor(key string) string { return strings.ReplaceAll(key, " ", "_") }
