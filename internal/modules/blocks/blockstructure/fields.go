package blockstructure

import (
	"maps"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
)

// GetXBlockField reads a field of the block itself. Values written with SetXBlockField shadow the
// authored content.
func (s *BlockStructure) GetXBlockField(key course.UsageKey, name string) (any, bool) {
	b, ok := s.blocks[key]
	if !ok {
		return nil, false
	}
	s.mu.RLock()
	v, written := s.xblockFields[key][name]
	s.mu.RUnlock()
	if written {
		return v, true
	}
	return b.Field(name)
}

func (s *BlockStructure) SetXBlockField(key course.UsageKey, name string, value any) {
	if _, ok := s.blocks[key]; !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.xblockFields[key]
	if fields == nil {
		fields = map[string]any{}
		s.xblockFields[key] = fields
	}
	fields[name] = value
}

// DeleteXBlockField removes a written value; the authored content, if any, shows through again.
func (s *BlockStructure) DeleteXBlockField(key course.UsageKey, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.xblockFields[key]
	delete(fields, name)
	if len(fields) == 0 {
		delete(s.xblockFields, key)
	}
}

// WrittenFields returns a copy of the fields written onto a block during this run.
func (s *BlockStructure) WrittenFields(key course.UsageKey) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.xblockFields[key])
}

func (s *BlockStructure) GetTransformerBlockField(key course.UsageKey, transformerID, name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.transformerBlockFields[transformerID][key][name]
	return v, ok
}

func (s *BlockStructure) SetTransformerBlockField(key course.UsageKey, transformerID, name string, value any) {
	if _, ok := s.blocks[key]; !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey := s.transformerBlockFields[transformerID]
	if byKey == nil {
		byKey = map[course.UsageKey]map[string]any{}
		s.transformerBlockFields[transformerID] = byKey
	}
	fields := byKey[key]
	if fields == nil {
		fields = map[string]any{}
		byKey[key] = fields
	}
	fields[name] = value
}

func (s *BlockStructure) GetTransformerData(transformerID, name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.transformerData[transformerID][name]
	return v, ok
}

func (s *BlockStructure) SetTransformerData(transformerID, name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.transformerData[transformerID]
	if data == nil {
		data = map[string]any{}
		s.transformerData[transformerID] = data
	}
	data[name] = value
}

// ClearTransformer drops every scratch value a transformer has stored, block-level and
// structure-level.
func (s *BlockStructure) ClearTransformer(transformerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transformerBlockFields, transformerID)
	delete(s.transformerData, transformerID)
}

func XBlockField[T any](s *BlockStructure, key course.UsageKey, name string) (T, bool) {
	return as[T](s.GetXBlockField(key, name))
}

func TransformerBlockField[T any](s *BlockStructure, key course.UsageKey, transformerID, name string) (T, bool) {
	return as[T](s.GetTransformerBlockField(key, transformerID, name))
}

func TransformerData[T any](s *BlockStructure, transformerID, name string) (T, bool) {
	return as[T](s.GetTransformerData(transformerID, name))
}

func as[T any](v any, ok bool) (T, bool) {
	var zero T
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
