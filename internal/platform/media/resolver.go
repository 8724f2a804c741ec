package media

import (
	"fmt"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
)

// Resolver looks up media metadata. found=false means the id is unknown; a non-nil error means the
// backing source failed and the answer is unknown.
type Resolver interface {
	Resolve(mediaID string) (rec course.MediaRecord, found bool, err error)
}

type ResolverFunc func(mediaID string) (course.MediaRecord, bool, error)

func (f ResolverFunc) Resolve(mediaID string) (course.MediaRecord, bool, error) {
	return f(mediaID)
}

// Catalog is an immutable in-memory resolver. It is safe for concurrent use.
type Catalog struct {
	records  map[string]course.MediaRecord
	failures map[string]error
}

func NewCatalog(records ...course.MediaRecord) *Catalog {
	c := &Catalog{
		records:  make(map[string]course.MediaRecord, len(records)),
		failures: map[string]error{},
	}
	for _, r := range records {
		if r.MediaID == "" {
			continue
		}
		c.records[r.MediaID] = r
	}
	return c
}

func (c *Catalog) Resolve(mediaID string) (course.MediaRecord, bool, error) {
	if err, failed := c.failures[mediaID]; failed {
		return course.MediaRecord{}, false, fmt.Errorf("media %s: %w", mediaID, err)
	}
	rec, ok := c.records[mediaID]
	return rec, ok, nil
}

func (c *Catalog) Len() int { return len(c.records) }

// Chain asks each resolver in turn and returns the first hit. A failing source stops the chain.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(mediaID string) (course.MediaRecord, bool, error) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			rec, found, err := r.Resolve(mediaID)
			if err != nil || found {
				return rec, found, err
			}
		}
		return course.MediaRecord{}, false, nil
	})
}
