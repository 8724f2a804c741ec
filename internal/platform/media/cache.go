package media

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
)

const DefaultCacheSize = 4096

type cacheEntry struct {
	rec   course.MediaRecord
	found bool
}

// CachingResolver keeps recent answers, including "not found", in an LRU in front of another
// resolver. Failures are not cached so a later run can retry the source.
type CachingResolver struct {
	next  Resolver
	cache *lru.Cache[string, cacheEntry]
}

func NewCachingResolver(next Resolver, size int) (*CachingResolver, error) {
	if next == nil {
		return nil, fmt.Errorf("media: caching resolver needs a backing resolver")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("media: init lru: %w", err)
	}
	return &CachingResolver{next: next, cache: cache}, nil
}

func (c *CachingResolver) Resolve(mediaID string) (course.MediaRecord, bool, error) {
	if e, ok := c.cache.Get(mediaID); ok {
		return e.rec, e.found, nil
	}
	rec, found, err := c.next.Resolve(mediaID)
	if err != nil {
		return course.MediaRecord{}, false, err
	}
	c.cache.Add(mediaID, cacheEntry{rec: rec, found: found})
	return rec, found, nil
}

func (c *CachingResolver) Purge() { c.cache.Purge() }

func (c *CachingResolver) Len() int { return c.cache.Len() }
