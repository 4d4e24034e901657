package serverutils

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	Enabled  bool
	Prefix   string
	Capacity int
	Refill   int
	Interval time.Duration
}

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// TokenBucket limits requests per session identity with a redis-side bucket.
// It fails open when redis is missing or erroring.
func TokenBucket(cfg RateLimitConfig, rdb *redis.Client) fiber.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(ctx *fiber.Ctx) error { return ctx.Next() }
	}

	ttl := int64(math.Ceil(cfg.Interval.Seconds()*float64(cfg.Capacity))) + 60

	return func(ctx *fiber.Ctx) error {
		key := fmt.Sprintf("%s:%s", cfg.Prefix, rateKey(ctx))

		vals, err := tokenBucketScript.Run(ctx.Context(), rdb, []string{key},
			time.Now().UnixMilli(), cfg.Capacity, cfg.Refill, cfg.Interval.Milliseconds(), ttl,
		).Int64Slice()
		if err != nil || len(vals) != 3 {
			log.Printf("[RateLimit] ⚠️ redis unavailable for %s: %v", key, err)
			return ctx.Next()
		}

		ctx.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		ctx.Set("X-RateLimit-Remaining", strconv.FormatInt(vals[1], 10))

		if vals[0] != 1 {
			secs := int(math.Ceil(float64(vals[2]) / 1000.0))
			ctx.Set("Retry-After", strconv.Itoa(secs))
			return apperror.New(apperror.KindRateLimited, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.")
		}
		return ctx.Next()
	}
}

func rateKey(ctx *fiber.Ctx) string {
	if s := session.FromCtx(ctx); s != nil {
		return "user:" + s.IdentityKey
	}
	return "ip:" + ctx.IP()
}
