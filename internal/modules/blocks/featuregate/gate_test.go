package featuregate

import (
	"slices"
	"sync"
	"testing"
)

func TestDefaultsToEnabled(t *testing.T) {
	g := New()
	if !g.IsEnabled("effort_estimation") {
		t.Fatalf("unset id should be enabled")
	}
	var nilGate *Gate
	if !nilGate.IsEnabled("effort_estimation") {
		t.Fatalf("nil gate should report enabled")
	}
}

func TestSetToggles(t *testing.T) {
	g := New()
	g.Set("effort_estimation", false)
	if g.IsEnabled("effort_estimation") {
		t.Fatalf("should be disabled")
	}
	if !g.IsEnabled("course_graph") {
		t.Fatalf("other ids unaffected")
	}
	g.Set("effort_estimation", true)
	if g.IsEnabled("effort_estimation") {
		return
	}
	t.Fatalf("should be re-enabled")
}

func TestFromDisabled(t *testing.T) {
	g := FromDisabled([]string{" b ", "", "a"})
	if got := g.Disabled(); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("disabled: %v", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g.Set("x", i%2 == 0)
			_ = g.IsEnabled("x")
		}(i)
	}
	wg.Wait()
}
