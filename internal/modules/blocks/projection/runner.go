package projection

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blocktransform"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/coursegraph"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/effort"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/media"
)

type Config struct {
	Effort effort.Config
	Graph  coursegraph.Config
}

type Result struct {
	Report blocktransform.Report
	Graph  coursegraph.Dataset
}

// EffortWritten reports whether effort annotations were written in this run.
func (r Result) EffortWritten() bool {
	o, ok := r.Report.Outcome(effort.TransformerID)
	return ok && o.Wrote()
}

// Runner drives both projections over one structure: effort collect+transform, then graph
// collect+project. A Runner holds no per-run state and may be shared across goroutines as long as
// each run gets its own structure.
type Runner struct {
	log      *logger.Logger
	pipeline *blocktransform.Pipeline
	effort   *effort.Transformer
	graph    *coursegraph.Projector
}

func NewRunner(baseLog *logger.Logger, resolver media.Resolver, gate blocktransform.Gate, cfg Config) *Runner {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &Runner{
		log:      baseLog.With("component", "projection"),
		pipeline: blocktransform.NewPipeline(baseLog, gate),
		effort:   effort.New(baseLog, resolver, cfg.Effort),
		graph:    coursegraph.New(baseLog, cfg.Graph),
	}
}

func (r *Runner) Run(ctx context.Context, s *blockstructure.BlockStructure) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctxutil.GetRunData(ctx) == nil {
		ctx = ctxutil.WithRunData(ctx, &ctxutil.RunData{RunID: uuid.NewString(), CourseKey: s.CourseKey().String()})
	}
	var res Result
	report, err := r.pipeline.Run(ctx, s, r.effort)
	res.Report = report
	if err != nil {
		return res, fmt.Errorf("projection: effort: %w", err)
	}
	collected, err := r.pipeline.Collect(ctx, s, r.graph)
	if err != nil {
		return res, fmt.Errorf("projection: graph: %w", err)
	}
	res.Graph, err = r.graph.Project(ctx, s)
	if err != nil {
		return res, fmt.Errorf("projection: graph: %w", err)
	}
	res.Report.Outcomes = append(res.Report.Outcomes, blocktransform.Outcome{
		TransformerID: r.graph.ID(),
		Collected:     collected,
		Transformed:   len(res.Graph.Nodes),
	})

	r.log.Info("projection finished",
		"run_id", res.Report.RunID,
		"course_key", s.CourseKey().String(),
		"blocks", s.Len(),
		"effort_written", res.EffortWritten(),
		"graph_nodes", len(res.Graph.Nodes),
		"graph_edges", len(res.Graph.Edges),
	)
	return res, nil
}
