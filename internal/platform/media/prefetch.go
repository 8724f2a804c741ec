package media

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
)

const DefaultPrefetchConcurrency = 8

// Fetcher is an asynchronous media source (an HTTP API, a database). It is drained into a Catalog
// before collection starts so that collection itself never blocks on I/O.
type Fetcher interface {
	Fetch(ctx context.Context, mediaID string) (course.MediaRecord, bool, error)
}

type FetcherFunc func(ctx context.Context, mediaID string) (course.MediaRecord, bool, error)

func (f FetcherFunc) Fetch(ctx context.Context, mediaID string) (course.MediaRecord, bool, error) {
	return f(ctx, mediaID)
}

// Prefetch resolves ids with bounded concurrency. A failing id is remembered in the catalog and
// resolves to an error later; only context cancellation aborts the prefetch.
func Prefetch(ctx context.Context, log *logger.Logger, f Fetcher, ids []string, concurrency int) (*Catalog, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if concurrency <= 0 {
		concurrency = DefaultPrefetchConcurrency
	}

	var (
		mu       sync.Mutex
		records  = make([]course.MediaRecord, 0, len(ids))
		failures = map[string]error{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, found, err := f.Fetch(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn("media prefetch failed", "media_id", id, "error", err)
				failures[id] = err
			case found:
				if rec.MediaID == "" {
					rec.MediaID = id
				}
				records = append(records, rec)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("media: prefetch: %w", err)
	}

	c := NewCatalog(records...)
	for id, err := range failures {
		c.failures[id] = err
	}
	log.Debug("media prefetch finished", "requested", len(seen), "resolved", c.Len(), "failed", len(failures))
	return c, nil
}
