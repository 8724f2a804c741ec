package graphexport

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/coursegraph"
)

func sampleDataset() coursegraph.Dataset {
	return coursegraph.Dataset{
		Nodes: []coursegraph.Node{
			{CourseKey: "course-v1:O+C+R", UsageKey: "block-v1:O+C+R+type@course+block@c", Org: "O", Course: "C", Run: "R", DisplayName: `Say "hi", world`, BlockType: "course", Order: 1},
			{CourseKey: "course-v1:O+C+R", UsageKey: "block-v1:O+C+R+type@static_tab+block@t", Org: "O", Course: "C", Run: "R", BlockType: "static_tab", Detached: 1, Order: 2},
		},
		Edges: []coursegraph.Edge{
			{CourseKey: "course-v1:O+C+R", ParentUsageKey: "block-v1:O+C+R+type@course+block@c", ChildUsageKey: "block-v1:O+C+R+type@static_tab+block@t", Order: 0},
		},
	}
}

func TestWriteNodesQuotesAndOrders(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNodes(&buf, sampleDataset().Nodes); err != nil {
		t.Fatalf("WriteNodes: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 || !slices.Equal(rows[0], NodeHeader) {
		t.Fatalf("rows: %v", rows)
	}
	if rows[1][5] != `Say "hi", world` {
		t.Fatalf("display name should survive quoting, got %q", rows[1][5])
	}
	if rows[2][7] != "1" || rows[2][10] != "2" {
		t.Fatalf("detached/order columns: %v", rows[2])
	}
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := WriteDir(dir, sampleDataset()); err != nil {
		t.Fatalf("WriteDir: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, EdgesFile))
	if err != nil {
		t.Fatalf("open edges: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read edges: %v", err)
	}
	if len(rows) != 2 || rows[1][3] != "0" || !slices.Equal(rows[0], EdgeHeader) {
		t.Fatalf("edges: %v", rows)
	}
	if _, err := os.Stat(filepath.Join(dir, NodesFile)); err != nil {
		t.Fatalf("nodes file: %v", err)
	}
}
