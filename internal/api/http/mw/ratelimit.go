package mw

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
)

// Token buckets in redis: one per client IP, one per JWT subject when the
// request carries a verified token. Either bucket running dry rejects.
type RateBucket struct {
	RefillPerSec int
	Burst        int
	TTL          time.Duration // how long an idle key is kept
}

type RateLimitMiddleware struct {
	rdb  *redis.Client
	byIP RateBucket
	byID RateBucket
}

func NewRateLimit(rdb *redis.Client, cfg *config.RateLimitConfig) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		rdb:  rdb,
		byIP: RateBucket{RefillPerSec: cfg.ByIP.RefillPerSec, Burst: cfg.ByIP.Burst, TTL: 2 * time.Minute},
		byID: RateBucket{RefillPerSec: cfg.ByJWT.RefillPerSec, Burst: cfg.ByJWT.Burst, TTL: 2 * time.Minute},
	}
	return m
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now()

		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		okIP, _ := m.allow(ctx, "sms:rl:ip:"+ip, now, m.byIP)

		okSub := true
		if sub := subjectFromContext(r); sub != "" {
			okSub, _ = m.allow(ctx, "sms:rl:sub:"+sub, now, m.byID)
		}

		if !(okIP && okSub) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// --- redis token-bucket (Lua) for atomicity in one round trip ---
var luaTokenBucket = redis.NewScript(`
-- KEYS[1] = key
-- ARGV[1] = now_ms
-- ARGV[2] = refill_per_sec (integer)
-- ARGV[3] = burst (integer)
-- ARGV[4] = ttl_seconds
local key   = KEYS[1]
local now   = tonumber(ARGV[1])
local rate  = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local ttl   = tonumber(ARGV[4])

local last_ms = tonumber(redis.call('HGET', key, 'ts') or now)
local tokens  = tonumber(redis.call('HGET', key, 'tok') or burst)

if now > last_ms then
  local delta = (now - last_ms) / 1000.0
  tokens = math.min(burst, tokens + (delta * rate))
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tok', tokens, 'ts', now)
redis.call('EXPIRE', key, ttl)

return {allowed, tostring(tokens)}
`)

// allow fails open on a redis error: losing the limiter must not take the
// read API down with it.
func (m *RateLimitMiddleware) allow(ctx context.Context, key string, now time.Time, b RateBucket) (bool, error) {
	if b.RefillPerSec <= 0 || b.Burst <= 0 {
		return true, nil
	}

	res, err := luaTokenBucket.Run(ctx, m.rdb, []string{key},
		now.UnixMilli(), b.RefillPerSec, b.Burst, int(b.TTL.Seconds())).Slice()
	if err != nil {
		return true, err
	}
	if len(res) < 1 {
		return true, nil
	}

	allowed, _ := res[0].(int64)
	return allowed == 1, nil
}

func clientIP(r *http.Request) string {
	// prefer the user IP among proxy IPs
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
