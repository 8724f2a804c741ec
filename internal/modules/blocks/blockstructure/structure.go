package blockstructure

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
)

var (
	ErrMissingRoot     = errors.New("blockstructure: root block missing")
	ErrDuplicateBlock  = errors.New("blockstructure: duplicate block")
	ErrMultipleParents = errors.New("blockstructure: block has more than one parent")
	ErrCycle           = errors.New("blockstructure: cycle in block graph")
)

// Reference is a parent→child link whose child is not present in the structure.
type Reference struct {
	Parent course.UsageKey
	Child  course.UsageKey
	Index  int
}

// BlockStructure holds one course tree for the duration of a single projection run.
// Topology is immutable after New; field maps are guarded so read-only consumers may share it.
type BlockStructure struct {
	root     course.UsageKey
	roots    []course.UsageKey
	order    []course.UsageKey
	blocks   map[course.UsageKey]*course.Block
	children map[course.UsageKey][]course.UsageKey
	parents  map[course.UsageKey]course.UsageKey
	dangling []Reference

	mu                     sync.RWMutex
	xblockFields           map[course.UsageKey]map[string]any
	transformerBlockFields map[string]map[course.UsageKey]map[string]any
	transformerData        map[string]map[string]any
}

// New builds a structure rooted at root. Blocks without a parent other than the root are kept as
// additional forest roots and are traversed after the root, in insertion order.
func New(root course.UsageKey, blocks []course.Block) (*BlockStructure, error) {
	s := &BlockStructure{
		root:                   root,
		order:                  make([]course.UsageKey, 0, len(blocks)),
		blocks:                 make(map[course.UsageKey]*course.Block, len(blocks)),
		children:               make(map[course.UsageKey][]course.UsageKey, len(blocks)),
		parents:                make(map[course.UsageKey]course.UsageKey, len(blocks)),
		xblockFields:           map[course.UsageKey]map[string]any{},
		transformerBlockFields: map[string]map[course.UsageKey]map[string]any{},
		transformerData:        map[string]map[string]any{},
	}

	for i := range blocks {
		b := blocks[i]
		if _, exists := s.blocks[b.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBlock, b.Key)
		}
		b.Children = append([]course.UsageKey(nil), b.Children...)
		s.blocks[b.Key] = &b
		s.order = append(s.order, b.Key)
	}
	if _, ok := s.blocks[root]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRoot, root)
	}

	for _, key := range s.order {
		b := s.blocks[key]
		resolved := make([]course.UsageKey, 0, len(b.Children))
		for idx, child := range b.Children {
			if _, ok := s.blocks[child]; !ok {
				s.dangling = append(s.dangling, Reference{Parent: key, Child: child, Index: idx})
				continue
			}
			if prev, ok := s.parents[child]; ok {
				if prev == key {
					return nil, fmt.Errorf("%w: %s listed twice under %s", ErrMultipleParents, child, key)
				}
				return nil, fmt.Errorf("%w: %s under %s and %s", ErrMultipleParents, child, prev, key)
			}
			s.parents[child] = key
			resolved = append(resolved, child)
		}
		s.children[key] = resolved
	}

	if parent, ok := s.parents[root]; ok {
		return nil, fmt.Errorf("%w: root %s is a child of %s", ErrCycle, root, parent)
	}
	if err := s.checkAcyclic(); err != nil {
		return nil, err
	}

	s.roots = append(s.roots, root)
	for _, key := range s.order {
		if key == root {
			continue
		}
		if _, hasParent := s.parents[key]; !hasParent {
			s.roots = append(s.roots, key)
		}
	}
	return s, nil
}

// checkAcyclic walks each block's parent chain. With at most one parent per block, a chain longer
// than the block count can only loop.
func (s *BlockStructure) checkAcyclic() error {
	settled := make(map[course.UsageKey]bool, len(s.blocks))
	for _, key := range s.order {
		seen := map[course.UsageKey]bool{}
		cur := key
		for !settled[cur] {
			if seen[cur] {
				return fmt.Errorf("%w: through %s", ErrCycle, cur)
			}
			seen[cur] = true
			parent, ok := s.parents[cur]
			if !ok {
				break
			}
			cur = parent
		}
		for k := range seen {
			settled[k] = true
		}
	}
	return nil
}

func (s *BlockStructure) Root() course.UsageKey { return s.root }

func (s *BlockStructure) CourseKey() course.CourseKey { return s.root.Course }

func (s *BlockStructure) Len() int { return len(s.order) }

// Keys returns every block key in insertion order.
func (s *BlockStructure) Keys() []course.UsageKey {
	return append([]course.UsageKey(nil), s.order...)
}

func (s *BlockStructure) HasBlock(key course.UsageKey) bool {
	_, ok := s.blocks[key]
	return ok
}

// Block returns a copy of the authored block.
func (s *BlockStructure) Block(key course.UsageKey) (course.Block, bool) {
	b, ok := s.blocks[key]
	if !ok {
		return course.Block{}, false
	}
	out := *b
	out.Children = append([]course.UsageKey(nil), b.Children...)
	return out, true
}

func (s *BlockStructure) BlockType(key course.UsageKey) (course.BlockType, bool) {
	b, ok := s.blocks[key]
	if !ok {
		return "", false
	}
	return b.Type(), true
}

func (s *BlockStructure) GetChildren(key course.UsageKey) []course.UsageKey {
	return append([]course.UsageKey(nil), s.children[key]...)
}

func (s *BlockStructure) GetParents(key course.UsageKey) []course.UsageKey {
	if parent, ok := s.parents[key]; ok {
		return []course.UsageKey{parent}
	}
	return nil
}

// DanglingChildren lists child references that point outside the structure.
func (s *BlockStructure) DanglingChildren() []Reference {
	return append([]Reference(nil), s.dangling...)
}
