package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/coursegraph"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/effort"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/featuregate"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/projection"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/envutil"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/media"
	nberrors "github.com/yungbote/neurobridge-coursegraph/internal/pkg/errors"
)

// DefaultDetachedTypes are the Open edX categories that live beside the course outline.
var DefaultDetachedTypes = []string{"static_tab", "about", "course_info"}

type Config struct {
	LogMode     string
	ServiceName string
	Environment string

	ReadingWordsPerMinute int
	ProblemSeconds        int
	RenderingContext      effort.RenderingContext
	DetachedTypes         []string

	DisabledTransformers []string

	MediaCacheSize           int
	MediaPrefetchConcurrency int
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode:                  envutil.String("LOG_MODE", "development"),
		ServiceName:              envutil.String("SERVICE_NAME", "coursegraph"),
		Environment:              envutil.String("ENVIRONMENT", "local"),
		ReadingWordsPerMinute:    envutil.Int("EFFORT_READING_WPM", effort.DefaultReadingWordsPerMinute),
		ProblemSeconds:           envutil.Int("EFFORT_PROBLEM_SECONDS", effort.DefaultProblemSeconds),
		RenderingContext:         effort.ParseRenderingContext(envutil.String("RENDERING_CONTEXT", string(effort.RenderingDefault))),
		DetachedTypes:            envutil.CSV("COURSEGRAPH_DETACHED_TYPES", DefaultDetachedTypes),
		DisabledTransformers:     envutil.CSV("BLOCK_TRANSFORMERS_DISABLED", nil),
		MediaCacheSize:           envutil.Int("MEDIA_CACHE_SIZE", media.DefaultCacheSize),
		MediaPrefetchConcurrency: envutil.Int("MEDIA_PREFETCH_CONCURRENCY", media.DefaultPrefetchConcurrency),
	}
	cfg.LogLoaded(log)
	return cfg
}

// LogLoaded reports the effective settings; a nil logger is a no-op.
func (c Config) LogLoaded(log *logger.Logger) {
	if log == nil {
		return
	}
	log.Debug("config loaded",
		"log_mode", c.LogMode,
		"rendering_context", c.RenderingContext,
		"reading_wpm", c.ReadingWordsPerMinute,
		"problem_seconds", c.ProblemSeconds,
		"disabled_transformers", c.DisabledTransformers,
	)
}

type fileConfig struct {
	LogMode                  *string   `yaml:"log_mode"`
	ReadingWordsPerMinute    *int      `yaml:"reading_words_per_minute"`
	ProblemSeconds           *int      `yaml:"problem_seconds"`
	RenderingContext         *string   `yaml:"rendering_context"`
	DetachedTypes            *[]string `yaml:"detached_types"`
	DisabledTransformers     *[]string `yaml:"disabled_transformers"`
	MediaCacheSize           *int      `yaml:"media_cache_size"`
	MediaPrefetchConcurrency *int      `yaml:"media_prefetch_concurrency"`
}

// WithFile overlays the keys present in a YAML file on top of c. An empty path returns c unchanged.
func (c Config) WithFile(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, fmt.Errorf("config file %s: %w", path, nberrors.ErrNotFound)
		}
		return c, fmt.Errorf("read config file %s: %w", path, err)
	}
	return c.withYAML(data)
}

func (c Config) withYAML(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return c, fmt.Errorf("decode config yaml: %w", err)
	}
	if fc.LogMode != nil {
		c.LogMode = *fc.LogMode
	}
	if fc.ReadingWordsPerMinute != nil {
		if *fc.ReadingWordsPerMinute <= 0 {
			return c, fmt.Errorf("reading_words_per_minute must be positive: %w", nberrors.ErrInvalidArgument)
		}
		c.ReadingWordsPerMinute = *fc.ReadingWordsPerMinute
	}
	if fc.ProblemSeconds != nil {
		if *fc.ProblemSeconds <= 0 {
			return c, fmt.Errorf("problem_seconds must be positive: %w", nberrors.ErrInvalidArgument)
		}
		c.ProblemSeconds = *fc.ProblemSeconds
	}
	if fc.RenderingContext != nil {
		c.RenderingContext = effort.ParseRenderingContext(*fc.RenderingContext)
	}
	if fc.DetachedTypes != nil {
		c.DetachedTypes = *fc.DetachedTypes
	}
	if fc.DisabledTransformers != nil {
		c.DisabledTransformers = *fc.DisabledTransformers
	}
	if fc.MediaCacheSize != nil {
		c.MediaCacheSize = *fc.MediaCacheSize
	}
	if fc.MediaPrefetchConcurrency != nil {
		c.MediaPrefetchConcurrency = *fc.MediaPrefetchConcurrency
	}
	return c, nil
}

func (c Config) Projection() projection.Config {
	return projection.Config{
		Effort: effort.Config{
			ReadingWordsPerMinute: c.ReadingWordsPerMinute,
			ProblemSeconds:        c.ProblemSeconds,
			RenderingContext:      c.RenderingContext,
		},
		Graph: coursegraph.Config{
			DetachedTypes: c.DetachedTypes,
			Clock:         coursegraph.UTCClock,
		},
	}
}

func (c Config) Gate() *featuregate.Gate {
	return featuregate.FromDisabled(c.DisabledTransformers)
}
