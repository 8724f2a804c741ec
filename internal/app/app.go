package app

import (
	"context"
	"fmt"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/effort"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/projection"
	"github.com/yungbote/neurobridge-coursegraph/internal/observability"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/media"
)

type App struct {
	Log *logger.Logger
	Cfg Config

	media           *media.CachingResolver
	shutdownTracing func(context.Context) error
}

// New builds the logger, configuration and tracing. configPath may be empty. The media source starts
// empty until SetMediaSource is called.
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := LoadConfig(nil).WithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg.LogLoaded(log)

	a, err := NewWithConfig(log, cfg, nil)
	if err != nil {
		log.Sync()
		return nil, err
	}
	a.shutdownTracing = observability.InitTracing(ctx, log, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})
	return a, nil
}

func NewWithConfig(log *logger.Logger, cfg Config, source media.Resolver) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	a := &App{Log: log, Cfg: cfg}
	if err := a.SetMediaSource(source); err != nil {
		return nil, err
	}
	return a, nil
}

// SetMediaSource puts a fresh LRU cache in front of source. A nil source resolves nothing.
func (a *App) SetMediaSource(source media.Resolver) error {
	if source == nil {
		source = media.NewCatalog()
	}
	cache, err := media.NewCachingResolver(source, a.Cfg.MediaCacheSize)
	if err != nil {
		return fmt.Errorf("init media cache: %w", err)
	}
	a.media = cache
	return nil
}

// Project prefetches the media the structure references, then runs the effort and graph projections.
func (a *App) Project(ctx context.Context, s *blockstructure.BlockStructure) (projection.Result, error) {
	fetch := media.FetcherFunc(func(_ context.Context, id string) (course.MediaRecord, bool, error) {
		return a.media.Resolve(id)
	})
	catalog, err := media.Prefetch(ctx, a.Log, fetch, effort.MediaIDs(s), a.Cfg.MediaPrefetchConcurrency)
	if err != nil {
		return projection.Result{}, err
	}
	runner := projection.NewRunner(a.Log, catalog, a.Cfg.Gate(), a.Cfg.Projection())
	return runner.Run(ctx, s)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
