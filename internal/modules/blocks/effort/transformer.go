package effort

import (
	"fmt"
	"time"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blockstructure"
	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/blocktransform"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/media"
)

const TransformerID = "effort_estimation"

// Annotations written onto container blocks.
const (
	FieldEffortActivities = "effort_activities"
	FieldEffortTime       = "effort_time"
)

// Scratch written during collection and transform.
const (
	videoDurationField     = "video_duration"
	videoClipDurationField = "video_clip_duration"
	videoWebOnlyField      = "video_web_only"
	htmlWordCountField     = "html_word_count"
	subtreeSecondsField    = "subtree_seconds"
	subtreeActivitiesField = "subtree_activities"
)

// Transformer estimates time-to-complete and activity counts for every container block. Estimation
// is all-or-nothing: one video without usable media metadata disables it for the whole structure.
type Transformer struct {
	cfg      Config
	resolver media.Resolver
	log      *logger.Logger
}

var _ blocktransform.Transformer = (*Transformer)(nil)

func New(baseLog *logger.Logger, resolver media.Resolver, cfg Config) *Transformer {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &Transformer{
		cfg:      cfg.withDefaults(),
		resolver: resolver,
		log:      baseLog.With("transformer", TransformerID),
	}
}

func (t *Transformer) ID() string { return TransformerID }

func (t *Transformer) Config() Config { return t.cfg }

func (t *Transformer) OwnedFields() []string {
	return []string{FieldEffortActivities, FieldEffortTime}
}

func (t *Transformer) CollectBlock(s *blockstructure.BlockStructure, key course.UsageKey) {
	blockType, ok := s.BlockType(key)
	if !ok {
		return
	}
	switch blockType {
	case course.BlockTypeVideo:
		t.collectVideo(s, key)
	case course.BlockTypeHTML:
		body, _ := blockstructure.XBlockField[string](s, key, course.FieldData)
		s.SetTransformerBlockField(key, TransformerID, htmlWordCountField, countWords(body))
	}
}

func (t *Transformer) collectVideo(s *blockstructure.BlockStructure, key course.UsageKey) {
	if webOnly, _ := blockstructure.XBlockField[bool](s, key, course.FieldOnlyOnWeb); webOnly {
		s.SetTransformerBlockField(key, TransformerID, videoWebOnlyField, true)
	}

	mediaID, _ := blockstructure.XBlockField[string](s, key, course.FieldEdxVideoID)
	if mediaID == "" {
		t.disable(s, key, "", fmt.Sprintf("video %s has no edx_video_id", key))
		return
	}
	if t.resolver == nil {
		t.disable(s, key, mediaID, "no media resolver configured")
		return
	}
	rec, found, err := t.resolver.Resolve(mediaID)
	switch {
	case err != nil:
		t.log.Warn("media resolver failed", "usage_key", key.String(), "media_id", mediaID, "error", err)
		t.disable(s, key, mediaID, fmt.Sprintf("media %s: resolver failed", mediaID))
		return
	case !found:
		t.disable(s, key, mediaID, fmt.Sprintf("media %s: not found", mediaID))
		return
	case !rec.Usable():
		t.disable(s, key, mediaID, fmt.Sprintf("media %s: status %q", mediaID, rec.Status))
		return
	}

	duration := rec.DurationSeconds
	s.SetTransformerBlockField(key, TransformerID, videoDurationField, duration)

	start, hasStart := blockstructure.XBlockField[time.Duration](s, key, course.FieldStartTime)
	end, hasEnd := blockstructure.XBlockField[time.Duration](s, key, course.FieldEndTime)
	if !hasStart || !hasEnd {
		return
	}
	if start < 0 || start >= end || end > time.Duration(duration)*time.Second {
		t.log.Debug("ignoring malformed clip", "usage_key", key.String(), "start", start, "end", end, "duration_seconds", duration)
		return
	}
	// Partial seconds round up so a sub-second clip still counts.
	clip := int((end - start + time.Second - 1) / time.Second)
	s.SetTransformerBlockField(key, TransformerID, videoClipDurationField, clip)
}

func (t *Transformer) disable(s *blockstructure.BlockStructure, key course.UsageKey, mediaID, reason string) {
	t.log.Warn("effort estimation disabled", "usage_key", key.String(), "media_id", mediaID, "reason", reason)
	blocktransform.Disable(s, TransformerID, reason)
}

func (t *Transformer) TransformBlock(s *blockstructure.BlockStructure, key course.UsageKey) {
	blockType, ok := s.BlockType(key)
	if !ok {
		return
	}
	seconds, activities := t.leafContribution(s, key, blockType)
	for _, child := range s.GetChildren(key) {
		childSeconds, _ := blockstructure.TransformerBlockField[int](s, child, TransformerID, subtreeSecondsField)
		childActivities, _ := blockstructure.TransformerBlockField[int](s, child, TransformerID, subtreeActivitiesField)
		seconds += childSeconds
		activities += childActivities
	}
	s.SetTransformerBlockField(key, TransformerID, subtreeSecondsField, seconds)
	s.SetTransformerBlockField(key, TransformerID, subtreeActivitiesField, activities)

	if blockType.IsContainer() {
		s.SetXBlockField(key, FieldEffortActivities, activities)
		s.SetXBlockField(key, FieldEffortTime, seconds)
	}
}

// leafContribution is the block's own share, before its children are added.
func (t *Transformer) leafContribution(s *blockstructure.BlockStructure, key course.UsageKey, blockType course.BlockType) (seconds, activities int) {
	switch blockType {
	case course.BlockTypeVideo:
		if t.cfg.RenderingContext == RenderingMobile {
			if webOnly, _ := blockstructure.TransformerBlockField[bool](s, key, TransformerID, videoWebOnlyField); webOnly {
				return 0, 0
			}
		}
		if clip, ok := blockstructure.TransformerBlockField[int](s, key, TransformerID, videoClipDurationField); ok {
			return clip, 0
		}
		duration, _ := blockstructure.TransformerBlockField[int](s, key, TransformerID, videoDurationField)
		return duration, 0
	case course.BlockTypeHTML:
		words, _ := blockstructure.TransformerBlockField[int](s, key, TransformerID, htmlWordCountField)
		return readingSeconds(words, t.cfg.ReadingWordsPerMinute), 0
	case course.BlockTypeProblem:
		return t.cfg.ProblemSeconds, 1
	default:
		return 0, 0
	}
}

// readingSeconds rounds up to whole minutes.
func readingSeconds(words, wordsPerMinute int) int {
	if words <= 0 {
		return 0
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return minutes * 60
}

// Annotations reads the effort annotations of a container, if the transform wrote them.
func Annotations(s *blockstructure.BlockStructure, key course.UsageKey) (activities, seconds int, ok bool) {
	activities, okActivities := blockstructure.XBlockField[int](s, key, FieldEffortActivities)
	seconds, okSeconds := blockstructure.XBlockField[int](s, key, FieldEffortTime)
	return activities, seconds, okActivities && okSeconds
}

// MediaIDs lists the distinct media ids referenced by video blocks, in traversal order. Callers with an
// asynchronous source prefetch these before collection.
func MediaIDs(s *blockstructure.BlockStructure) []string {
	seen := map[string]bool{}
	var out []string
	isVideo := func(k course.UsageKey) bool {
		bt, _ := s.BlockType(k)
		return bt == course.BlockTypeVideo
	}
	for key := range s.TopologicalTraversal(blockstructure.TraversalOptions{Filter: isVideo}) {
		id, _ := blockstructure.XBlockField[string](s, key, course.FieldEdxVideoID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
