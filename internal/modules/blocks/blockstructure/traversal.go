package blockstructure

import (
	"iter"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
)

type Order int

const (
	// ParentsFirst yields a block before any of its descendants (pre-order).
	ParentsFirst Order = iota
	// ChildrenFirst yields every descendant before the block itself (post-order).
	ChildrenFirst
)

func (o Order) String() string {
	if o == ChildrenFirst {
		return "children_first"
	}
	return "parents_first"
}

type TraversalOptions struct {
	Order Order
	// Filter decides which blocks are yielded; the walk still descends through filtered-out blocks.
	Filter func(course.UsageKey) bool
	// YieldDescendantsOf prunes the walk below a block when it returns false.
	YieldDescendantsOf func(course.UsageKey) bool
}

// TopologicalTraversal walks the root first, then any other parentless blocks in insertion order.
// Siblings are visited in authoring order, so the sequence is stable for an unchanged structure.
func (s *BlockStructure) TopologicalTraversal(opts TraversalOptions) iter.Seq[course.UsageKey] {
	return func(yield func(course.UsageKey) bool) {
		for _, root := range s.roots {
			if !s.walk(root, opts, yield) {
				return
			}
		}
	}
}

func (s *BlockStructure) walk(key course.UsageKey, opts TraversalOptions, yield func(course.UsageKey) bool) bool {
	emit := opts.Filter == nil || opts.Filter(key)
	if emit && opts.Order == ParentsFirst && !yield(key) {
		return false
	}
	if opts.YieldDescendantsOf == nil || opts.YieldDescendantsOf(key) {
		for _, child := range s.children[key] {
			if !s.walk(child, opts, yield) {
				return false
			}
		}
	}
	if emit && opts.Order == ChildrenFirst && !yield(key) {
		return false
	}
	return true
}

// Ancestors returns the parent chain of key, nearest first.
func (s *BlockStructure) Ancestors(key course.UsageKey) []course.UsageKey {
	var out []course.UsageKey
	cur := key
	for {
		parent, ok := s.parents[cur]
		if !ok {
			return out
		}
		out = append(out, parent)
		cur = parent
	}
}
