package course

import (
	"strings"
	"time"
)

type BlockType string

const (
	BlockTypeCourse     BlockType = "course"
	BlockTypeChapter    BlockType = "chapter"
	BlockTypeSequential BlockType = "sequential"
	BlockTypeVertical   BlockType = "vertical"
	BlockTypeVideo      BlockType = "video"
	BlockTypeHTML       BlockType = "html"
	BlockTypeProblem    BlockType = "problem"
	BlockTypeOther      BlockType = "other"
)

// ParseBlockType maps an authored category onto the known set; anything unrecognised is "other".
func ParseBlockType(category string) BlockType {
	switch BlockType(strings.ToLower(strings.TrimSpace(category))) {
	case BlockTypeCourse:
		return BlockTypeCourse
	case BlockTypeChapter:
		return BlockTypeChapter
	case BlockTypeSequential:
		return BlockTypeSequential
	case BlockTypeVertical:
		return BlockTypeVertical
	case BlockTypeVideo:
		return BlockTypeVideo
	case BlockTypeHTML:
		return BlockTypeHTML
	case BlockTypeProblem:
		return BlockTypeProblem
	default:
		return BlockTypeOther
	}
}

func (t BlockType) IsContainer() bool {
	switch t {
	case BlockTypeCourse, BlockTypeChapter, BlockTypeSequential, BlockTypeVertical:
		return true
	default:
		return false
	}
}

// Well-known xblock field names.
const (
	FieldDisplayName = "display_name"
	FieldEdxVideoID  = "edx_video_id"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldOnlyOnWeb   = "only_on_web"
	FieldData        = "data"
	FieldEditedOn    = "edited_on"
)

// Content is the per-type payload of a block. Each variant carries only the fields its type defines.
type Content interface {
	Type() BlockType
}

type ContainerContent struct {
	Kind BlockType
}

func (c ContainerContent) Type() BlockType { return c.Kind }

type VideoContent struct {
	EdxVideoID string
	StartTime  *time.Duration
	EndTime    *time.Duration
	OnlyOnWeb  bool
}

func (VideoContent) Type() BlockType { return BlockTypeVideo }

type HTMLContent struct {
	Data string
}

func (HTMLContent) Type() BlockType { return BlockTypeHTML }

type ProblemContent struct{}

func (ProblemContent) Type() BlockType { return BlockTypeProblem }

type OtherContent struct {
	Category string
}

func (OtherContent) Type() BlockType { return BlockTypeOther }

type Block struct {
	Key         UsageKey
	DisplayName string
	EditedOn    *time.Time
	Content     Content
	Children    []UsageKey
}

func (b Block) Type() BlockType {
	if b.Content == nil {
		return ParseBlockType(b.Key.BlockType)
	}
	return b.Content.Type()
}

// Field resolves a well-known field from the block's content variant.
func (b Block) Field(name string) (any, bool) {
	switch name {
	case FieldDisplayName:
		return b.DisplayName, true
	case FieldEditedOn:
		if b.EditedOn == nil {
			return nil, false
		}
		return *b.EditedOn, true
	}
	switch c := b.Content.(type) {
	case VideoContent:
		switch name {
		case FieldEdxVideoID:
			if c.EdxVideoID == "" {
				return nil, false
			}
			return c.EdxVideoID, true
		case FieldStartTime:
			if c.StartTime == nil {
				return nil, false
			}
			return *c.StartTime, true
		case FieldEndTime:
			if c.EndTime == nil {
				return nil, false
			}
			return *c.EndTime, true
		case FieldOnlyOnWeb:
			return c.OnlyOnWeb, true
		}
	case HTMLContent:
		if name == FieldData {
			if c.Data == "" {
				return nil, false
			}
			return c.Data, true
		}
	}
	return nil, false
}
