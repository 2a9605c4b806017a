// Package ratelimit реализует ограничение частоты запросов скользящим окном в Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix: префикс ключей лимитера в Redis.
const DefaultKeyPrefix = "inventory:ratelimit:"

// slidingWindow атомарно чистит устаревшие отметки, считает текущие и добавляет новую.
// Уникальность члена ZSET обеспечивает счётчик INCR.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)

	if current < limit then
		local counter = redis.call('INCR', key .. ':counter')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		local expire_seconds = math.ceil(window_ms / 1000)
		redis.call('EXPIRE', key, expire_seconds)
		redis.call('EXPIRE', key .. ':counter', expire_seconds)
		return {1, limit - current - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local reset_at = 0
	if oldest and #oldest >= 2 then
		reset_at = tonumber(oldest[2]) + window_ms
	end
	return {0, 0, reset_at}
`)

// Result описывает итог проверки лимита для одного запроса.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

type Limiter struct {
	client    redis.Scripter
	keyPrefix string
	limit     int
	window    time.Duration
}

func NewLimiter(client redis.Scripter, keyPrefix string, limit int, window time.Duration) *Limiter {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	return &Limiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
	}
}

// Allow учитывает запрос клиента key и сообщает, укладывается ли он в лимит.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := time.Now()

	result, err := slidingWindow.Run(ctx, l.client, []string{l.redisKey(key)},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(result) != 3 {
		return nil, fmt.Errorf("%s: unexpected redis response length: %d", whereami.WhereAmI(), len(result))
	}

	resetAt := now.Add(l.window)
	if result[2] > 0 {
		resetAt = time.UnixMilli(result[2])
	}

	return &Result{
		Allowed:   result[0] == 1,
		Remaining: int(result[1]),
		ResetAt:   resetAt,
		Limit:     l.limit,
	}, nil
}

func (l *Limiter) redisKey(key string) string {
	return l.keyPrefix + key
}
