package coursefile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
	nberrors "github.com/yungbote/neurobridge-coursegraph/internal/pkg/errors"
)

// Document is the on-disk shape of a course fixture. Block references are either full block-v1 keys
// or the short "<type>/<id>" form relative to the document's course.
type Document struct {
	CourseKey string          `yaml:"course_key"`
	Root      string          `yaml:"root"`
	Blocks    []BlockDocument `yaml:"blocks"`
}

type BlockDocument struct {
	Ref         string     `yaml:"ref"`
	DisplayName string     `yaml:"display_name"`
	EditedOn    *time.Time `yaml:"edited_on"`
	Children    []string   `yaml:"children"`

	EdxVideoID string    `yaml:"edx_video_id"`
	StartTime  *Duration `yaml:"start_time"`
	EndTime    *Duration `yaml:"end_time"`
	OnlyOnWeb  bool      `yaml:"only_on_web"`
	Data       string    `yaml:"data"`
}

// Duration accepts "HH:MM:SS", Go duration strings ("1m30s") or a plain number of seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := parseDuration(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Duration = parsed
	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty duration: %w", nberrors.ErrInvalidArgument)
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	if parts := strings.Split(raw, ":"); len(parts) == 3 {
		var total time.Duration
		for i, unit := range []time.Duration{time.Hour, time.Minute, time.Second} {
			n, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return 0, fmt.Errorf("duration %q: %w", raw, nberrors.ErrInvalidArgument)
			}
			total += time.Duration(n * float64(unit))
		}
		return total, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", raw, nberrors.ErrInvalidArgument)
	}
	return d, nil
}

func Load(path string) (*blockstructure.BlockStructure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("coursefile: %s: %w", path, nberrors.ErrNotFound)
		}
		return nil, fmt.Errorf("coursefile: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("coursefile: %s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*blockstructure.BlockStructure, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	courseKey, err := course.ParseCourseKey(doc.CourseKey)
	if err != nil {
		return nil, err
	}

	blocks := make([]course.Block, 0, len(doc.Blocks))
	for i, bd := range doc.Blocks {
		b, err := bd.toBlock(courseKey)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}

	var root course.UsageKey
	if strings.TrimSpace(doc.Root) == "" {
		if len(blocks) == 0 {
			return nil, fmt.Errorf("no blocks: %w", nberrors.ErrInvalidArgument)
		}
		root = blocks[0].Key
	} else if root, err = resolveRef(courseKey, doc.Root); err != nil {
		return nil, err
	}
	return blockstructure.New(root, blocks)
}

func (bd BlockDocument) toBlock(courseKey course.CourseKey) (course.Block, error) {
	key, err := resolveRef(courseKey, bd.Ref)
	if err != nil {
		return course.Block{}, err
	}
	b := course.Block{
		Key:         key,
		DisplayName: bd.DisplayName,
		EditedOn:    bd.EditedOn,
	}
	for _, ref := range bd.Children {
		child, err := resolveRef(courseKey, ref)
		if err != nil {
			return course.Block{}, fmt.Errorf("%s child: %w", key, err)
		}
		b.Children = append(b.Children, child)
	}

	switch bt := course.ParseBlockType(key.BlockType); bt {
	case course.BlockTypeVideo:
		vc := course.VideoContent{EdxVideoID: strings.TrimSpace(bd.EdxVideoID), OnlyOnWeb: bd.OnlyOnWeb}
		if bd.StartTime != nil {
			vc.StartTime = &bd.StartTime.Duration
		}
		if bd.EndTime != nil {
			vc.EndTime = &bd.EndTime.Duration
		}
		b.Content = vc
	case course.BlockTypeHTML:
		b.Content = course.HTMLContent{Data: bd.Data}
	case course.BlockTypeProblem:
		b.Content = course.ProblemContent{}
	case course.BlockTypeOther:
		b.Content = course.OtherContent{Category: key.BlockType}
	default:
		b.Content = course.ContainerContent{Kind: bt}
	}
	return b, nil
}

func resolveRef(courseKey course.CourseKey, ref string) (course.UsageKey, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "block-v1:") {
		return course.ParseUsageKey(ref)
	}
	blockType, blockID, ok := strings.Cut(ref, "/")
	if !ok || blockType == "" || blockID == "" {
		return course.UsageKey{}, fmt.Errorf("block ref %q: %w", ref, nberrors.ErrInvalidArgument)
	}
	return courseKey.MakeUsageKey(blockType, blockID), nil
}
