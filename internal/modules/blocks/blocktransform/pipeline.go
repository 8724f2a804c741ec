package blocktransform

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/featuregate"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
)

const tracerName = "github.com/yungbote/neurobridge-coursegraph/blocktransform"

type Outcome struct {
	TransformerID  string
	Collected      int
	Transformed    int
	Disabled       bool
	DisabledReason string
	GateSuppressed bool
}

// Wrote reports whether the transform pass was allowed to write annotations.
func (o Outcome) Wrote() bool {
	return !o.Disabled && !o.GateSuppressed
}

type Report struct {
	RunID    string
	Outcomes []Outcome
}

func (r Report) Outcome(transformerID string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.TransformerID == transformerID {
			return o, true
		}
	}
	return Outcome{}, false
}

type Pipeline struct {
	log    *logger.Logger
	gate   Gate
	tracer trace.Tracer
}

// NewPipeline wires a pipeline; a nil gate falls back to the process-wide featuregate.Default.
func NewPipeline(baseLog *logger.Logger, gate Gate) *Pipeline {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	if gate == nil {
		gate = featuregate.Default
	}
	return &Pipeline{
		log:    baseLog.With("component", "blocktransform"),
		gate:   gate,
		tracer: otel.Tracer(tracerName),
	}
}

// Run collects then transforms each transformer in turn. Cancellation is honoured between passes;
// a cancelled run leaves s half-annotated and the caller must discard it.
func (p *Pipeline) Run(ctx context.Context, s *blockstructure.BlockStructure, transformers ...Transformer) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rd := ctxutil.GetRunData(ctx)
	if rd == nil {
		rd = &ctxutil.RunData{RunID: uuid.NewString(), CourseKey: s.CourseKey().String()}
		ctx = ctxutil.WithRunData(ctx, rd)
	}
	report := Report{RunID: rd.RunID}

	ctx, span := p.tracer.Start(ctx, "blocktransform.run", trace.WithAttributes(
		attribute.String("run_id", rd.RunID),
		attribute.String("course_key", rd.CourseKey),
		attribute.Int("blocks", s.Len()),
	))
	defer span.End()

	for _, t := range transformers {
		collected, err := p.Collect(ctx, s, t)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		outcome, err := p.Transform(ctx, s, t)
		outcome.Collected = collected
		report.Outcomes = append(report.Outcomes, outcome)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
	}
	return report, nil
}

// Collect clears the collector's scratch and runs CollectBlock over every block, parents first.
func (p *Pipeline) Collect(ctx context.Context, s *blockstructure.BlockStructure, c Collector) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("blocktransform: collect %s: %w", c.ID(), err)
	}
	_, span := p.tracer.Start(ctx, "blocktransform.collect", trace.WithAttributes(attribute.String("transformer", c.ID())))
	defer span.End()

	s.ClearTransformer(c.ID())
	n := 0
	for key := range s.TopologicalTraversal(blockstructure.TraversalOptions{Order: blockstructure.ParentsFirst}) {
		c.CollectBlock(s, key)
		n++
	}
	span.SetAttributes(attribute.Int("collected", n))
	p.runLog(ctx).Debug("collection finished", "transformer", c.ID(), "blocks", n)
	return n, nil
}

// Transform runs TransformBlock children first, unless the structure-level disable flag is set or
// the gate reports the transformer off. The gate is read once, before the walk.
func (p *Pipeline) Transform(ctx context.Context, s *blockstructure.BlockStructure, t Transformer) (Outcome, error) {
	outcome := Outcome{TransformerID: t.ID()}
	if err := ctx.Err(); err != nil {
		return outcome, fmt.Errorf("blocktransform: transform %s: %w", t.ID(), err)
	}
	_, span := p.tracer.Start(ctx, "blocktransform.transform", trace.WithAttributes(attribute.String("transformer", t.ID())))
	defer span.End()
	log := p.runLog(ctx).With("transformer", t.ID())

	// Owned fields are cleared even when the pass is skipped below.
	clearOwnedFields(s, t)

	if disabled, reason := IsDisabled(s, t.ID()); disabled {
		outcome.Disabled = true
		outcome.DisabledReason = reason
		span.SetAttributes(attribute.String("disabled_reason", reason))
		log.Info("transform skipped; inputs incomplete", "reason", reason)
		return outcome, nil
	}
	if !p.gate.IsEnabled(t.ID()) {
		outcome.GateSuppressed = true
		span.SetAttributes(attribute.Bool("gate_suppressed", true))
		log.Info("transform skipped; feature gate off")
		return outcome, nil
	}

	for key := range s.TopologicalTraversal(blockstructure.TraversalOptions{Order: blockstructure.ChildrenFirst}) {
		t.TransformBlock(s, key)
		outcome.Transformed++
	}
	span.SetAttributes(attribute.Int("transformed", outcome.Transformed))
	log.Debug("transform finished", "blocks", outcome.Transformed)
	return outcome, nil
}

func clearOwnedFields(s *blockstructure.BlockStructure, t Transformer) {
	owned := t.OwnedFields()
	if len(owned) == 0 {
		return
	}
	for _, key := range s.Keys() {
		for _, name := range owned {
			s.DeleteXBlockField(key, name)
		}
	}
}

func (p *Pipeline) runLog(ctx context.Context) *logger.Logger {
	if rd := ctxutil.GetRunData(ctx); rd != nil {
		return p.log.With("run_id", rd.RunID, "course_key", rd.CourseKey)
	}
	return p.log
}
