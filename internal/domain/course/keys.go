package course

import (
	"fmt"
	"strings"

	nberrors "github.com/yungbote/neurobridge-coursegraph/internal/pkg/errors"
)

const (
	courseKeyPrefix = "course-v1:"
	usageKeyPrefix  = "block-v1:"
)

type CourseKey struct {
	Org    string
	Course string
	Run    string
}

func (k CourseKey) String() string {
	return courseKeyPrefix + k.Org + "+" + k.Course + "+" + k.Run
}

func (k CourseKey) IsZero() bool {
	return k.Org == "" && k.Course == "" && k.Run == ""
}

// MakeUsageKey builds the key of a block living in this course.
func (k CourseKey) MakeUsageKey(blockType, blockID string) UsageKey {
	return UsageKey{Course: k, BlockType: blockType, BlockID: blockID}
}

func ParseCourseKey(raw string) (CourseKey, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, courseKeyPrefix) {
		return CourseKey{}, fmt.Errorf("course key %q: %w", raw, nberrors.ErrInvalidArgument)
	}
	parts := strings.Split(strings.TrimPrefix(raw, courseKeyPrefix), "+")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return CourseKey{}, fmt.Errorf("course key %q: %w", raw, nberrors.ErrInvalidArgument)
	}
	return CourseKey{Org: parts[0], Course: parts[1], Run: parts[2]}, nil
}

// UsageKey identifies one block. BlockType is the authored category string, which may be a
// category outside the known BlockType set.
type UsageKey struct {
	Course    CourseKey
	BlockType string
	BlockID   string
}

func (k UsageKey) String() string {
	return usageKeyPrefix + k.Course.Org + "+" + k.Course.Course + "+" + k.Course.Run +
		"+type@" + k.BlockType + "+block@" + k.BlockID
}

func (k UsageKey) IsZero() bool {
	return k.Course.IsZero() && k.BlockType == "" && k.BlockID == ""
}

func ParseUsageKey(raw string) (UsageKey, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, usageKeyPrefix) {
		return UsageKey{}, fmt.Errorf("usage key %q: %w", raw, nberrors.ErrInvalidArgument)
	}
	parts := strings.Split(strings.TrimPrefix(raw, usageKeyPrefix), "+")
	if len(parts) != 5 {
		return UsageKey{}, fmt.Errorf("usage key %q: %w", raw, nberrors.ErrInvalidArgument)
	}
	blockType, okType := strings.CutPrefix(parts[3], "type@")
	blockID, okID := strings.CutPrefix(parts[4], "block@")
	if !okType || !okID || blockType == "" || blockID == "" || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return UsageKey{}, fmt.Errorf("usage key %q: %w", raw, nberrors.ErrInvalidArgument)
	}
	return UsageKey{
		Course:    CourseKey{Org: parts[0], Course: parts[1], Run: parts[2]},
		BlockType: blockType,
		BlockID:   blockID,
	}, nil
}
