package featuregate

import (
	"slices"
	"strings"
	"sync"
)

// Gate maps transformer ids to an enabled switch. Ids never set are enabled.
type Gate struct {
	mu       sync.RWMutex
	disabled map[string]bool
}

// Default is the process-wide gate used when a pipeline is built without one.
var Default = New()

func New() *Gate {
	return &Gate{disabled: map[string]bool{}}
}

// FromDisabled builds a gate with the listed transformer ids switched off.
func FromDisabled(ids []string) *Gate {
	g := New()
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			g.disabled[id] = true
		}
	}
	return g
}

func (g *Gate) IsEnabled(transformerID string) bool {
	if g == nil {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.disabled[transformerID]
}

func (g *Gate) Set(transformerID string, enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if enabled {
		delete(g.disabled, transformerID)
		return
	}
	g.disabled[transformerID] = true
}

// Disabled lists switched-off ids, sorted.
func (g *Gate) Disabled() []string {
	if g == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.disabled))
	for id := range g.disabled {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
