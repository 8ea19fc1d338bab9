// internal/adapters/out/cache/redis_section_cache.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	cartdom "luminaire/internal/domain/cart"
)

// DefaultSectionTTL keeps stale sections from outliving a browsing
// session by too much; every mutation refreshes them anyway.
const DefaultSectionTTL = 24 * time.Hour

// RedisSectionCache persists session-state sections in Redis, one
// namespace per storefront session. Engines of the same session share the
// namespace with no locking.
type RedisSectionCache struct {
	rdb     *redis.Client
	fetcher SectionFetcher
	ns      string
	ttl     time.Duration
}

func NewRedisSectionCache(rdb *redis.Client, fetcher SectionFetcher, namespace string, ttl time.Duration) (*RedisSectionCache, error) {
	ns := strings.TrimSpace(namespace)
	if rdb == nil || fetcher == nil || ns == "" {
		return nil, errors.New("redis_section_cache: invalid argument")
	}
	if ttl <= 0 {
		ttl = DefaultSectionTTL
	}
	return &RedisSectionCache{rdb: rdb, fetcher: fetcher, ns: ns, ttl: ttl}, nil
}

func (c *RedisSectionCache) sectionKey(name string) string {
	return c.ns + ":section:" + name
}

func (c *RedisSectionCache) flagKey(name string) string {
	return c.ns + ":flag:" + name
}

func (c *RedisSectionCache) ReadSection(ctx context.Context, name string) ([]byte, error) {
	raw, err := c.rdb.Get(ctx, c.sectionKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cartdom.ErrSectionMissing
	}
	if err != nil {
		return nil, fmt.Errorf("redis_section_cache: read %q: %w", name, err)
	}
	return raw, nil
}

// InvalidateAndRefetchSections fetches fresh payloads first and only then
// touches Redis, so a fetch failure leaves the previous contents intact.
func (c *RedisSectionCache) InvalidateAndRefetchSections(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	fresh, err := c.fetcher.FetchSections(ctx, names)
	if err != nil {
		return fmt.Errorf("redis_section_cache: refetch: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	for _, name := range names {
		if raw, ok := fresh[name]; ok {
			pipe.Set(ctx, c.sectionKey(name), []byte(raw), c.ttl)
		} else {
			pipe.Del(ctx, c.sectionKey(name))
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis_section_cache: persist sections: %w", err)
	}
	return nil
}

func (c *RedisSectionCache) ReadFlag(ctx context.Context, name string) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.flagKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis_section_cache: read flag %q: %w", name, err)
	}
	return raw == "1", nil
}

func (c *RedisSectionCache) WriteFlag(ctx context.Context, name string, value bool) error {
	val := "0"
	if value {
		val = "1"
	}
	if err := c.rdb.Set(ctx, c.flagKey(name), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis_section_cache: write flag %q: %w", name, err)
	}
	return nil
}

// Pristine reports whether the session namespace holds no keys at all.
func (c *RedisSectionCache) Pristine(ctx context.Context) bool {
	keys, _, err := c.rdb.Scan(ctx, 0, c.ns+":*", 1).Result()
	if err != nil {
		log.Printf("[redis_section_cache] pristine scan failed: %v", err)
		return false
	}
	return len(keys) == 0
}

var _ cartdom.SectionCache = (*RedisSectionCache)(nil)
