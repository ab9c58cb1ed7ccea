package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/formflow-backend/internal/domain"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

// IdentityCache is the subset of the redis client the cache needs.
type IdentityCache interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

type cachedVerifier struct {
	log   *logger.Logger
	inner IdentityVerifier
	cache IdentityCache
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedVerifier memoizes successful verifications keyed by a hash of the
// credential. Entries never outlive the token itself. Cache errors fall back
// to the inner verifier.
func NewCachedVerifier(log *logger.Logger, inner IdentityVerifier, cache IdentityCache, ttl time.Duration) IdentityVerifier {
	if cache == nil || ttl <= 0 {
		return inner
	}
	return &cachedVerifier{
		log:   log.With("service", "IdentityCache"),
		inner: inner,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}
}

func identityCacheKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return "formflow:identity:" + hex.EncodeToString(sum[:])
}

func (c *cachedVerifier) Verify(ctx context.Context, credential string) (*types.Identity, error) {
	key := identityCacheKey(credential)

	raw, err := c.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		var id types.Identity
		if jerr := json.Unmarshal([]byte(raw), &id); jerr == nil {
			return &id, nil
		}
		c.log.Warn("Identity cache entry unreadable", "key", key)
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn("Identity cache get failed", "error", err.Error())
	}

	id, err := c.inner.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	ttl := c.entryTTL(credential)
	if ttl <= 0 {
		return id, nil
	}
	b, err := json.Marshal(id)
	if err != nil {
		return id, nil
	}
	if err := c.cache.Set(ctx, key, b, ttl).Err(); err != nil {
		c.log.Warn("Identity cache set failed", "error", err.Error())
	}
	return id, nil
}

// entryTTL is the configured TTL capped by the token's own expiry when the
// credential is a JWT carrying one.
func (c *cachedVerifier) entryTTL(credential string) time.Duration {
	ttl := c.ttl
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return ttl
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ttl
	}
	remaining := exp.Time.Sub(c.now())
	if remaining < ttl {
		return remaining
	}
	return ttl
}
