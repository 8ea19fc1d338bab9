// internal/adapters/out/cache/memory_section_cache.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cartdom "luminaire/internal/domain/cart"
)

// MemorySectionCache is the in-process fallback when Redis is not
// configured. Single engine only: nothing is shared across processes.
type MemorySectionCache struct {
	fetcher SectionFetcher

	mu       sync.RWMutex
	sections map[string][]byte
	flags    map[string]bool
}

func NewMemorySectionCache(fetcher SectionFetcher) (*MemorySectionCache, error) {
	if fetcher == nil {
		return nil, errors.New("memory_section_cache: nil fetcher")
	}
	return &MemorySectionCache{
		fetcher:  fetcher,
		sections: map[string][]byte{},
		flags:    map[string]bool{},
	}, nil
}

func (c *MemorySectionCache) ReadSection(_ context.Context, name string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.sections[name]
	if !ok {
		return nil, cartdom.ErrSectionMissing
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (c *MemorySectionCache) InvalidateAndRefetchSections(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	fresh, err := c.fetcher.FetchSections(ctx, names)
	if err != nil {
		return fmt.Errorf("memory_section_cache: refetch: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range names {
		if raw, ok := fresh[name]; ok {
			buf := make([]byte, len(raw))
			copy(buf, raw)
			c.sections[name] = buf
		} else {
			delete(c.sections, name)
		}
	}
	return nil
}

func (c *MemorySectionCache) ReadFlag(_ context.Context, name string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flags[name], nil
}

func (c *MemorySectionCache) WriteFlag(_ context.Context, name string, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[name] = value
	return nil
}

func (c *MemorySectionCache) Pristine(_ context.Context) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sections) == 0 && len(c.flags) == 0
}

var _ cartdom.SectionCache = (*MemorySectionCache)(nil)

// MemoryIdentityRepository is the in-process fallback for the durable
// cart-identity partition.
type MemoryIdentityRepository struct {
	mu      sync.RWMutex
	records map[string]identityRecord
	now     func() time.Time
}

type identityRecord struct {
	cartID    string
	expiresAt time.Time
}

func NewMemoryIdentityRepository() *MemoryIdentityRepository {
	return &MemoryIdentityRepository{
		records: map[string]identityRecord{},
		now:     time.Now,
	}
}

func (r *MemoryIdentityRepository) Get(_ context.Context, sessionID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[sessionID]
	if !ok || r.now().After(rec.expiresAt) {
		return "", nil
	}
	return rec.cartID, nil
}

func (r *MemoryIdentityRepository) Put(_ context.Context, sessionID, cartID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cartdom.DefaultIdentityTTL
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[sessionID] = identityRecord{cartID: cartID, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemoryIdentityRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sessionID)
	return nil
}

var _ cartdom.IdentityRepository = (*MemoryIdentityRepository)(nil)
