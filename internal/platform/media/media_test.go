package media

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
)

func uploaded(id string, seconds int) course.MediaRecord {
	return course.MediaRecord{MediaID: id, Status: course.MediaStatusUploaded, DurationSeconds: seconds}
}

func TestCatalogResolve(t *testing.T) {
	c := NewCatalog(uploaded("a", 30), course.MediaRecord{MediaID: "b", Status: "transcoding"}, course.MediaRecord{})
	if c.Len() != 2 {
		t.Fatalf("blank ids should be dropped, len=%d", c.Len())
	}
	rec, found, err := c.Resolve("a")
	if err != nil || !found || rec.DurationSeconds != 30 || !rec.Usable() {
		t.Fatalf("a: %+v %v %v", rec, found, err)
	}
	rec, found, _ = c.Resolve("b")
	if !found || rec.Usable() {
		t.Fatalf("b should resolve but be unusable: %+v", rec)
	}
	if _, found, err := c.Resolve("zzz"); found || err != nil {
		t.Fatalf("unknown id: found=%v err=%v", found, err)
	}
}

func TestCachingResolverCachesHitsAndMisses(t *testing.T) {
	var calls atomic.Int32
	backing := ResolverFunc(func(id string) (course.MediaRecord, bool, error) {
		calls.Add(1)
		if id == "a" {
			return uploaded("a", 10), true, nil
		}
		return course.MediaRecord{}, false, nil
	})
	c, err := NewCachingResolver(backing, 8)
	if err != nil {
		t.Fatalf("NewCachingResolver: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, found, _ := c.Resolve("a"); !found {
			t.Fatalf("a should be found")
		}
		if _, found, _ := c.Resolve("missing"); found {
			t.Fatalf("missing should not be found")
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("backing calls: want 2 got %d", got)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("purge should empty the cache")
	}
}

func TestCachingResolverDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	backing := ResolverFunc(func(id string) (course.MediaRecord, bool, error) {
		calls.Add(1)
		return course.MediaRecord{}, false, errors.New("backend down")
	})
	c, _ := NewCachingResolver(backing, 0)
	for i := 0; i < 2; i++ {
		if _, _, err := c.Resolve("a"); err == nil {
			t.Fatalf("expected error")
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("failures must not be cached")
	}
	if _, err := NewCachingResolver(nil, 1); err == nil {
		t.Fatalf("nil backing resolver should be rejected")
	}
}

func TestPrefetch(t *testing.T) {
	var calls atomic.Int32
	fetcher := FetcherFunc(func(ctx context.Context, id string) (course.MediaRecord, bool, error) {
		calls.Add(1)
		switch id {
		case "ok":
			return course.MediaRecord{Status: course.MediaStatusUploaded, DurationSeconds: 12}, true, nil
		case "boom":
			return course.MediaRecord{}, false, errors.New("upstream 500")
		default:
			return course.MediaRecord{}, false, nil
		}
	})
	c, err := Prefetch(context.Background(), logger.NewNop(), fetcher, []string{"ok", "boom", "gone", "ok", ""}, 2)
	if err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("duplicate and blank ids should be skipped, calls=%d", calls.Load())
	}
	if rec, found, err := c.Resolve("ok"); err != nil || !found || rec.MediaID != "ok" || rec.DurationSeconds != 12 {
		t.Fatalf("ok: %+v %v %v", rec, found, err)
	}
	if _, _, err := c.Resolve("boom"); err == nil {
		t.Fatalf("failed fetch should surface as a resolve error")
	}
	if _, found, err := c.Resolve("gone"); found || err != nil {
		t.Fatalf("gone: found=%v err=%v", found, err)
	}
}

func TestPrefetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := FetcherFunc(func(ctx context.Context, id string) (course.MediaRecord, bool, error) {
		return course.MediaRecord{}, false, ctx.Err()
	})
	if _, err := Prefetch(ctx, nil, fetcher, []string{"a", "b"}, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestChain(t *testing.T) {
	first := NewCatalog(uploaded("a", 10))
	second := NewCatalog(uploaded("a", 99), uploaded("b", 20))
	r := Chain(nil, first, second)
	if rec, found, _ := r.Resolve("a"); !found || rec.DurationSeconds != 10 {
		t.Fatalf("a should come from the first catalog: %+v", rec)
	}
	if rec, found, _ := r.Resolve("b"); !found || rec.DurationSeconds != 20 {
		t.Fatalf("b should fall through: %+v", rec)
	}
	if _, found, err := r.Resolve("c"); found || err != nil {
		t.Fatalf("c: found=%v err=%v", found, err)
	}

	broken := ResolverFunc(func(string) (course.MediaRecord, bool, error) {
		return course.MediaRecord{}, false, errors.New("down")
	})
	if _, _, err := Chain(broken, second).Resolve("b"); err == nil {
		t.Fatalf("a failing source should surface its error")
	}
}
