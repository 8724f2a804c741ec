package blocktransform

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/featuregate"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
)

var testCourse = course.CourseKey{Org: "Org", Course: "CS101", Run: "2026"}

func mustStructure(t *testing.T) *blockstructure.BlockStructure {
	t.Helper()
	k := testCourse.MakeUsageKey
	blocks := []course.Block{
		{Key: k("course", "course"), Content: course.ContainerContent{Kind: course.BlockTypeCourse}, Children: []course.UsageKey{k("chapter", "ch1")}},
		{Key: k("chapter", "ch1"), Content: course.ContainerContent{Kind: course.BlockTypeChapter}, Children: []course.UsageKey{k("vertical", "v1"), k("vertical", "v2")}},
		{Key: k("vertical", "v1"), Content: course.ContainerContent{Kind: course.BlockTypeVertical}, Children: []course.UsageKey{k("problem", "p1")}},
		{Key: k("vertical", "v2"), Content: course.ContainerContent{Kind: course.BlockTypeVertical}},
		{Key: k("problem", "p1"), Content: course.ProblemContent{}},
	}
	s, err := blockstructure.New(k("course", "course"), blocks)
	if err != nil {
		t.Fatalf("blockstructure.New: %v", err)
	}
	return s
}

// recorder counts descendants bottom-up so the test can see the ordering guarantee at work.
type recorder struct {
	id          string
	collected   []string
	transformed []string
	disableOn   string
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) CollectBlock(s *blockstructure.BlockStructure, key course.UsageKey) {
	r.collected = append(r.collected, key.BlockID)
	if prev, ok := blockstructure.TransformerBlockField[int](s, key, r.id, "seen"); ok {
		s.SetTransformerBlockField(key, r.id, "seen", prev+1)
	} else {
		s.SetTransformerBlockField(key, r.id, "seen", 1)
	}
	if key.BlockID == r.disableOn {
		Disable(s, r.id, "asked to disable at "+key.BlockID)
	}
}

func (r *recorder) OwnedFields() []string { return []string{"descendants"} }

func (r *recorder) TransformBlock(s *blockstructure.BlockStructure, key course.UsageKey) {
	r.transformed = append(r.transformed, key.BlockID)
	total := 0
	for _, child := range s.GetChildren(key) {
		n, ok := blockstructure.XBlockField[int](s, child, "descendants")
		if !ok {
			panic("child transformed after parent: " + child.String())
		}
		total += n + 1
	}
	s.SetXBlockField(key, "descendants", total)
}

func TestRunOrdersPasses(t *testing.T) {
	s := mustStructure(t)
	rec := &recorder{id: "recorder"}
	report, err := NewPipeline(logger.NewNop(), featuregate.New()).Run(context.Background(), s, rec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"course", "ch1", "v1", "p1", "v2"}; !slices.Equal(rec.collected, want) {
		t.Fatalf("collect order: want=%v got=%v", want, rec.collected)
	}
	if want := []string{"p1", "v1", "v2", "ch1", "course"}; !slices.Equal(rec.transformed, want) {
		t.Fatalf("transform order: want=%v got=%v", want, rec.transformed)
	}
	if n, _ := blockstructure.XBlockField[int](s, s.Root(), "descendants"); n != 4 {
		t.Fatalf("root descendants: want 4 got %d", n)
	}
	o, ok := report.Outcome("recorder")
	if !ok || o.Collected != 5 || o.Transformed != 5 || !o.Wrote() {
		t.Fatalf("outcome: %+v", o)
	}
	if report.RunID == "" {
		t.Fatalf("run id should be assigned")
	}
}

func TestCollectIsIdempotent(t *testing.T) {
	s := mustStructure(t)
	rec := &recorder{id: "recorder"}
	p := NewPipeline(nil, nil)
	for i := 0; i < 2; i++ {
		if _, err := p.Collect(context.Background(), s, rec); err != nil {
			t.Fatalf("Collect: %v", err)
		}
	}
	if n, _ := blockstructure.TransformerBlockField[int](s, s.Root(), "recorder", "seen"); n != 1 {
		t.Fatalf("scratch should be reset before collection, seen=%d", n)
	}
}

func TestDisableFlagSuppressesWrites(t *testing.T) {
	s := mustStructure(t)
	rec := &recorder{id: "recorder", disableOn: "p1"}
	report, err := NewPipeline(nil, nil).Run(context.Background(), s, rec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.transformed) != 0 {
		t.Fatalf("transform should not run, visited %v", rec.transformed)
	}
	for _, key := range s.Keys() {
		if _, ok := s.GetXBlockField(key, "descendants"); ok {
			t.Fatalf("%s carries an annotation", key)
		}
	}
	o, _ := report.Outcome("recorder")
	if !o.Disabled || o.DisabledReason != "asked to disable at p1" || o.Wrote() {
		t.Fatalf("outcome: %+v", o)
	}
}

func TestGateSuppressesWritesButNotCollection(t *testing.T) {
	s := mustStructure(t)
	rec := &recorder{id: "recorder"}
	gate := featuregate.FromDisabled([]string{"recorder"})
	report, err := NewPipeline(nil, gate).Run(context.Background(), s, rec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.collected) != 5 {
		t.Fatalf("collection should still run, got %v", rec.collected)
	}
	if len(rec.transformed) != 0 {
		t.Fatalf("transform should be suppressed")
	}
	if _, ok := blockstructure.TransformerBlockField[int](s, s.Root(), "recorder", "seen"); !ok {
		t.Fatalf("collected scratch should remain warm")
	}
	if o, _ := report.Outcome("recorder"); !o.GateSuppressed {
		t.Fatalf("outcome: %+v", o)
	}
}

func TestCancelledRun(t *testing.T) {
	s := mustStructure(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{id: "recorder"}
	_, err := NewPipeline(nil, nil).Run(ctx, s, rec)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if len(rec.collected) != 0 {
		t.Fatalf("no block work after cancellation")
	}
}

func TestRunKeepsCallerRunID(t *testing.T) {
	s := mustStructure(t)
	ctx := ctxutil.WithRunData(context.Background(), &ctxutil.RunData{RunID: "run-1", CourseKey: s.CourseKey().String()})
	report, err := NewPipeline(nil, nil).Run(ctx, s, &recorder{id: "recorder"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID != "run-1" {
		t.Fatalf("run id: %q", report.RunID)
	}
}

func TestDisableKeepsFirstReason(t *testing.T) {
	s := mustStructure(t)
	Disable(s, "x", "first")
	Disable(s, "x", "second")
	if disabled, reason := IsDisabled(s, "x"); !disabled || reason != "first" {
		t.Fatalf("disabled=%v reason=%q", disabled, reason)
	}
	if disabled, _ := IsDisabled(s, "y"); disabled {
		t.Fatalf("flag must be transformer scoped")
	}
}

func TestSkippedPassRemovesEarlierAnnotations(t *testing.T) {
	cases := []struct {
		name   string
		second *recorder
		gate   *featuregate.Gate
	}{
		{name: "disabled", second: &recorder{id: "recorder", disableOn: "p1"}, gate: featuregate.New()},
		{name: "gated off", second: &recorder{id: "recorder"}, gate: featuregate.FromDisabled([]string{"recorder"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := mustStructure(t)
			if _, err := NewPipeline(nil, featuregate.New()).Run(context.Background(), s, &recorder{id: "recorder"}); err != nil {
				t.Fatalf("first Run: %v", err)
			}
			if _, ok := s.GetXBlockField(s.Root(), "descendants"); !ok {
				t.Fatalf("first run should annotate the root")
			}
			s.SetXBlockField(s.Root(), "unrelated", "kept")

			report, err := NewPipeline(nil, tc.gate).Run(context.Background(), s, tc.second)
			if err != nil {
				t.Fatalf("second Run: %v", err)
			}
			if o, _ := report.Outcome("recorder"); o.Wrote() {
				t.Fatalf("second run should not write: %+v", o)
			}
			for _, key := range s.Keys() {
				if v, ok := s.GetXBlockField(key, "descendants"); ok {
					t.Fatalf("%s kept a stale annotation %v", key, v)
				}
			}
			if v, _ := blockstructure.XBlockField[string](s, s.Root(), "unrelated"); v != "kept" {
				t.Fatalf("fields owned by nobody must survive, got %q", v)
			}
		})
	}
}

func TestNilGateUsesProcessDefault(t *testing.T) {
	const id = "default-gated"
	featuregate.Default.Set(id, false)
	t.Cleanup(func() { featuregate.Default.Set(id, true) })

	s := mustStructure(t)
	rec := &recorder{id: id}
	report, err := NewPipeline(nil, nil).Run(context.Background(), s, rec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if o, _ := report.Outcome(id); !o.GateSuppressed || len(rec.transformed) != 0 {
		t.Fatalf("Default gate should suppress %s: %+v", id, o)
	}

	featuregate.Default.Set(id, true)
	rec = &recorder{id: id}
	if _, err := NewPipeline(nil, nil).Run(context.Background(), s, rec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.transformed) != 5 {
		t.Fatalf("re-enabled transformer should run, visited %v", rec.transformed)
	}
}
