package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key patterns. The database is always the source of truth; Redis only
// short-circuits idempotent checkout retries and hot status reads.
const (
	// idem:checkout:{token} -> order code
	keyIdemCheckout = "idem:checkout:"
	// order_status:{code} -> current status
	keyOrderStatus = "order_status:"
	// revoked:{jti} -> 1, set on admin logout
	keyRevoked = "revoked:"
)

var (
	ttlIdempotency = 24 * time.Hour
	ttlStatusCache = 5 * time.Minute
)

// Cache wraps an optional Redis client. A nil Cache (or nil client) turns
// every operation into a no-op miss so the service runs without Redis.
type Cache struct {
	R *redis.Client
}

func NewCache(addr string) *Cache {
	if addr == "" {
		return &Cache{}
	}
	return &Cache{R: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *Cache) enabled() bool { return c != nil && c.R != nil }

func (c *Cache) Close() {
	if c.enabled() {
		_ = c.R.Close()
	}
}

func (c *Cache) IdemCheckoutGet(ctx context.Context, token string) (string, bool) {
	if !c.enabled() {
		return "", false
	}
	v, err := c.R.Get(ctx, keyIdemCheckout+token).Result()
	return v, err == nil && v != ""
}

func (c *Cache) IdemCheckoutSet(ctx context.Context, token, orderCode string) {
	if c.enabled() {
		_ = c.R.Set(ctx, keyIdemCheckout+token, orderCode, ttlIdempotency).Err()
	}
}

func (c *Cache) OrderStatusSet(ctx context.Context, code, status string) {
	if c.enabled() {
		_ = c.R.Set(ctx, keyOrderStatus+code, status, ttlStatusCache).Err()
	}
}

func (c *Cache) OrderStatusInvalidate(ctx context.Context, code string) {
	if c.enabled() {
		_ = c.R.Del(ctx, keyOrderStatus+code).Err()
	}
}

// RevokeToken denylists a JWT ID until its natural expiry.
func (c *Cache) RevokeToken(ctx context.Context, jti string, ttl time.Duration) {
	if c.enabled() {
		_ = c.R.Set(ctx, keyRevoked+jti, 1, ttl).Err()
	}
}

func (c *Cache) TokenRevoked(ctx context.Context, jti string) bool {
	if !c.enabled() {
		return false
	}
	n, err := c.R.Exists(ctx, keyRevoked+jti).Result()
	return err == nil && n > 0
}
