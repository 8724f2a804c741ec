package graphexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yungbote/neurobridge-coursegraph/internal/modules/blocks/coursegraph"
)

const (
	NodesFile = "nodes.csv"
	EdgesFile = "edges.csv"
)

var (
	NodeHeader = []string{"course_key", "usage_key", "org", "course", "run", "display_name", "block_type", "detached", "edited_on", "time_last_dumped", "order"}
	EdgeHeader = []string{"course_key", "parent_usage_key", "child_usage_key", "order"}
)

func WriteNodes(w io.Writer, nodes []coursegraph.Node) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(NodeHeader); err != nil {
		return err
	}
	for _, n := range nodes {
		row := []string{
			n.CourseKey, n.UsageKey, n.Org, n.Course, n.Run, n.DisplayName, n.BlockType,
			strconv.Itoa(n.Detached), n.EditedOn, n.TimeLastDumped, strconv.Itoa(n.Order),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteEdges(w io.Writer, edges []coursegraph.Edge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EdgeHeader); err != nil {
		return err
	}
	for _, e := range edges {
		if err := cw.Write([]string{e.CourseKey, e.ParentUsageKey, e.ChildUsageKey, strconv.Itoa(e.Order)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDir writes nodes.csv and edges.csv into dir, creating it if needed.
func WriteDir(dir string, d coursegraph.Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("graphexport: mkdir %s: %w", dir, err)
	}
	if err := writeFile(filepath.Join(dir, NodesFile), func(w io.Writer) error { return WriteNodes(w, d.Nodes) }); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, EdgesFile), func(w io.Writer) error { return WriteEdges(w, d.Edges) })
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("graphexport: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("graphexport: close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("graphexport: write %s: %w", path, err)
	}
	return nil
}
