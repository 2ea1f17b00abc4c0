// Package ratelimit implementa una ventana deslizante por clave sobre Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cada petición admitida es un miembro del ZSET con su instante (ms) como score.
const slidingWindowLua = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
if count < limit then
  redis.call("ZADD", key, now, member)
  redis.call("PEXPIRE", key, window)
  return {1, limit - count - 1, 0}
end

local retry = window
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
if oldest[2] then
  retry = tonumber(oldest[2]) + window - now
end
return {0, 0, retry}
`

// Decision resultado de una consulta al limitador.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter cuenta peticiones por clave dentro de una ventana deslizante.
type Limiter struct {
	rdb    redis.Scripter
	window time.Duration
	script *redis.Script
	now    func() time.Time
}

// NewLimiter construye el limitador. rdb puede ser *redis.Client o un cluster.
func NewLimiter(rdb redis.Scripter, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		window: window,
		script: redis.NewScript(slidingWindowLua),
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Window devuelve la duración de la ventana.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Key arma la clave Redis para un rol y una identidad (ID de usuario o IP).
func Key(role, identity string) string {
	return "ratelimit:" + role + ":" + identity
}

// Allow registra una petición para key y decide si entra en el límite.
// Un limit <= 0 desactiva el conteo para esa clave.
func (l *Limiter) Allow(ctx context.Context, key string, limit int) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true, Limit: limit}, nil
	}
	now := l.now().UnixMilli()
	res, err := l.script.Run(ctx, l.rdb, []string{key}, limit, l.window.Milliseconds(), now, uuid.NewString()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit eval: %w", err)
	}
	values, ok := res.([]interface{})
	if !ok || len(values) < 3 {
		return Decision{}, fmt.Errorf("ratelimit: resultado inválido %v", res)
	}
	return Decision{
		Allowed:    toInt64(values[0]) == 1,
		Limit:      limit,
		Remaining:  int(toInt64(values[1])),
		RetryAfter: time.Duration(toInt64(values[2])) * time.Millisecond,
	}, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if parsed, err := strconv.ParseInt(t, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
