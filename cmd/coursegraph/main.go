package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yungbote/neurobridge-coursegraph/internal/app"
	"github.com/yungbote/neurobridge-coursegraph/internal/data/coursefile"
	"github.com/yungbote/neurobridge-coursegraph/internal/data/graphexport"
	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/effort"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/localmedia"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/media"
)

func main() {
	var (
		coursePath string
		mediaPath  string
		mediaDir   string
		outDir     string
		configPath string
	)
	flag.StringVar(&coursePath, "course", "", "course fixture (yaml)")
	flag.StringVar(&mediaPath, "media", "", "media catalog (yaml); without it every video is unresolved")
	flag.StringVar(&mediaDir, "media-dir", "", "directory of <media_id>.<ext> videos probed with ffprobe when the catalog has no entry")
	flag.StringVar(&outDir, "out", "out", "directory for nodes.csv and edges.csv")
	flag.StringVar(&configPath, "config", "", "optional yaml config overlay")
	flag.Parse()

	if coursePath == "" {
		fmt.Fprintln(os.Stderr, "usage: coursegraph -course course.yaml [-media media.yaml] [-media-dir dir] [-out dir] [-config cfg.yaml]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sources []media.Resolver
	if mediaPath != "" {
		catalog, err := coursefile.LoadMediaCatalog(mediaPath)
		if err != nil {
			fmt.Printf("load media catalog: %v\n", err)
			os.Exit(1)
		}
		sources = append(sources, catalog)
	}

	application, err := app.New(ctx, configPath)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()
	log := application.Log

	if mediaDir != "" {
		prober := localmedia.New(log, mediaDir)
		if err := prober.AssertReady(); err != nil {
			log.Warn("media probing unavailable", "error", err)
		} else {
			sources = append(sources, prober)
		}
	}
	if err := application.SetMediaSource(media.Chain(sources...)); err != nil {
		log.Error("media source", "error", err)
		return
	}

	s, err := coursefile.Load(coursePath)
	if err != nil {
		log.Error("load course", "path", coursePath, "error", err)
		return
	}
	if dangling := s.DanglingChildren(); len(dangling) > 0 {
		log.Warn("course references missing blocks", "count", len(dangling))
	}

	res, err := application.Project(ctx, s)
	if err != nil {
		log.Error("projection failed", "error", err)
		return
	}
	if err := graphexport.WriteDir(outDir, res.Graph); err != nil {
		log.Error("write graph", "dir", outDir, "error", err)
		return
	}
	for _, o := range res.Report.Outcomes {
		log.Info("transformer outcome",
			"transformer", o.TransformerID,
			"collected", o.Collected,
			"transformed", o.Transformed,
			"disabled_reason", o.DisabledReason,
			"gate_suppressed", o.GateSuppressed,
		)
	}
	logEffortSummary(log, s)
	log.Info("graph written", "dir", outDir, "nodes", len(res.Graph.Nodes), "edges", len(res.Graph.Edges))
}

// logEffortSummary logs the annotations of every chapter-or-higher container.
func logEffortSummary(log *logger.Logger, s *blockstructure.BlockStructure) {
	outline := func(k course.UsageKey) bool {
		bt, _ := s.BlockType(k)
		return bt == course.BlockTypeCourse || bt == course.BlockTypeChapter
	}
	aboveChapter := func(k course.UsageKey) bool {
		bt, _ := s.BlockType(k)
		return bt != course.BlockTypeChapter
	}
	for key := range s.TopologicalTraversal(blockstructure.TraversalOptions{Filter: outline, YieldDescendantsOf: aboveChapter}) {
		activities, seconds, ok := effort.Annotations(s, key)
		if !ok {
			continue
		}
		block, _ := s.Block(key)
		log.Info("effort",
			"usage_key", key.String(),
			"display_name", block.DisplayName,
			"effort_time", seconds,
			"effort_activities", activities,
		)
	}
}
