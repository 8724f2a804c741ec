package blocktransform

import (
	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
)

// Structure-level scratch names shared by every transformer.
const (
	DisabledField       = "disabled"
	DisabledReasonField = "disabled_reason"
)

// Collector populates per-block scratch during the parents-first collection pass. CollectBlock must
// tolerate missing fields and being called for every block, whatever flags were set before.
type Collector interface {
	ID() string
	CollectBlock(s *blockstructure.BlockStructure, key course.UsageKey)
}

// Transformer adds the children-first transform pass. TransformBlock may read scratch for the block
// and its direct children and write xblock fields on the block itself. OwnedFields names every xblock
// field TransformBlock writes; the pipeline removes them before each transform pass.
type Transformer interface {
	Collector
	OwnedFields() []string
	TransformBlock(s *blockstructure.BlockStructure, key course.UsageKey)
}

type Gate interface {
	IsEnabled(transformerID string) bool
}

// Disable marks the structure as unusable for transformerID. The first reason recorded wins.
func Disable(s *blockstructure.BlockStructure, transformerID, reason string) {
	if disabled, _ := IsDisabled(s, transformerID); disabled {
		return
	}
	s.SetTransformerData(transformerID, DisabledField, true)
	s.SetTransformerData(transformerID, DisabledReasonField, reason)
}

func IsDisabled(s *blockstructure.BlockStructure, transformerID string) (bool, string) {
	disabled, _ := blockstructure.TransformerData[bool](s, transformerID, DisabledField)
	if !disabled {
		return false, ""
	}
	reason, _ := blockstructure.TransformerData[string](s, transformerID, DisabledReasonField)
	return true, reason
}
