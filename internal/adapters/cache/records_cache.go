package cache

import (
	"fmt"
	"slices"
	"time"

	"fxconvert/internal/domain"

	"github.com/dgraph-io/ristretto"
)

const defaultTTL = 5 * time.Minute

// RistrettoRecordCache keeps recently fetched record batches keyed by request URL.
type RistrettoRecordCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewRecordCache(maxItems int64, ttl time.Duration) (*RistrettoRecordCache, error) {
	if maxItems <= 0 {
		maxItems = 16
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
		// cost is counted in batches, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create record cache failed: %w", err)
	}
	return &RistrettoRecordCache{cache: c, ttl: ttl}, nil
}

func (c *RistrettoRecordCache) Get(key string) ([]domain.RateRecord, bool) {
	if v, ok := c.cache.Get(key); ok {
		records, ok := v.([]domain.RateRecord)
		return slices.Clone(records), ok
	}
	return nil, false
}

// Set stores a copy of records; each batch costs 1.
func (c *RistrettoRecordCache) Set(key string, records []domain.RateRecord) {
	c.cache.SetWithTTL(key, slices.Clone(records), 1, c.ttl)
	c.cache.Wait()
}

func (c *RistrettoRecordCache) Invalidate(key string) {
	c.cache.Del(key)
}

func (c *RistrettoRecordCache) Close() { c.cache.Close() }
