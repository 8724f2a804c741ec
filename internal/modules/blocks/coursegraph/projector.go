package coursegraph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blocktransform"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
)

const CollectorID = "course_graph"

const nodeFieldsField = "node_fields"

type Clock func() string

// UTCClock is the default clock for time_last_dumped.
func UTCClock() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type Config struct {
	// DetachedTypes are block categories that sit outside the main hierarchy (static tabs, about pages).
	DetachedTypes []string
	Clock         Clock
}

type nodeFields struct {
	blockType   string
	displayName string
	detached    int
	editedOn    string
}

// Projector serialises a structure into nodes and parent→child edges.
type Projector struct {
	detached map[string]bool
	clock    Clock
	log      *logger.Logger
}

var _ blocktransform.Collector = (*Projector)(nil)

func New(baseLog *logger.Logger, cfg Config) *Projector {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	detached := make(map[string]bool, len(cfg.DetachedTypes))
	for _, t := range cfg.DetachedTypes {
		if t = strings.TrimSpace(t); t != "" {
			detached[t] = true
		}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = UTCClock
	}
	return &Projector{
		detached: detached,
		clock:    clock,
		log:      baseLog.With("collector", CollectorID),
	}
}

func (p *Projector) ID() string { return CollectorID }

func (p *Projector) CollectBlock(s *blockstructure.BlockStructure, key course.UsageKey) {
	if !s.HasBlock(key) {
		return
	}
	s.SetTransformerBlockField(key, CollectorID, nodeFieldsField, p.describe(s, key))
}

func (p *Projector) describe(s *blockstructure.BlockStructure, key course.UsageKey) nodeFields {
	blockType := key.BlockType
	if blockType == "" {
		bt, _ := s.BlockType(key)
		blockType = string(bt)
	}
	nf := nodeFields{blockType: blockType}
	nf.displayName, _ = blockstructure.XBlockField[string](s, key, course.FieldDisplayName)
	if p.detached[blockType] {
		nf.detached = 1
	}
	if editedOn, ok := blockstructure.XBlockField[time.Time](s, key, course.FieldEditedOn); ok {
		nf.editedOn = editedOn.UTC().Format(time.RFC3339Nano)
	}
	return nf
}

// Project walks the structure parents first. Blocks the collection pass did not see are described on
// the fly, so Project also works on an uncollected structure.
func (p *Projector) Project(ctx context.Context, s *blockstructure.BlockStructure) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, fmt.Errorf("coursegraph: project: %w", err)
	}
	courseKey := s.CourseKey()
	ck := courseKey.String()
	dumpedAt := p.clock()

	ds := Dataset{
		Nodes: make([]Node, 0, s.Len()),
		Edges: make([]Edge, 0, s.Len()),
	}
	for key := range s.TopologicalTraversal(blockstructure.TraversalOptions{Order: blockstructure.ParentsFirst}) {
		nf, ok := blockstructure.TransformerBlockField[nodeFields](s, key, CollectorID, nodeFieldsField)
		if !ok {
			nf = p.describe(s, key)
		}
		ds.Nodes = append(ds.Nodes, Node{
			CourseKey:      ck,
			UsageKey:       key.String(),
			Org:            courseKey.Org,
			Course:         courseKey.Course,
			Run:            courseKey.Run,
			DisplayName:    nf.displayName,
			BlockType:      nf.blockType,
			Detached:       nf.detached,
			EditedOn:       nf.editedOn,
			TimeLastDumped: dumpedAt,
			Order:          len(ds.Nodes) + 1,
		})
		for idx, child := range s.GetChildren(key) {
			ds.Edges = append(ds.Edges, Edge{
				CourseKey:      ck,
				ParentUsageKey: key.String(),
				ChildUsageKey:  child.String(),
				Order:          idx,
			})
		}
	}
	if dangling := s.DanglingChildren(); len(dangling) > 0 {
		p.log.Debug("skipped dangling child references", "course_key", ck, "count", len(dangling))
	}
	return ds, nil
}
