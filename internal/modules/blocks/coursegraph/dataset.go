package coursegraph

import "sort"

type Node struct {
	CourseKey      string `json:"course_key"`
	UsageKey       string `json:"usage_key"`
	Org            string `json:"org"`
	Course         string `json:"course"`
	Run            string `json:"run"`
	DisplayName    string `json:"display_name"`
	BlockType      string `json:"block_type"`
	Detached       int    `json:"detached"`
	EditedOn       string `json:"edited_on"`
	TimeLastDumped string `json:"time_last_dumped"`
	Order          int    `json:"order"`
}

type Edge struct {
	CourseKey      string `json:"course_key"`
	ParentUsageKey string `json:"parent_usage_key"`
	ChildUsageKey  string `json:"child_usage_key"`
	Order          int    `json:"order"`
}

// Dataset is the node/edge pair handed to the analytics store writer.
type Dataset struct {
	Nodes []Node
	Edges []Edge
}

// Children rebuilds the parent → ordered children relation from the edges alone.
func (d Dataset) Children() map[string][]string {
	grouped := map[string][]Edge{}
	for _, e := range d.Edges {
		grouped[e.ParentUsageKey] = append(grouped[e.ParentUsageKey], e)
	}
	out := make(map[string][]string, len(grouped))
	for parent, edges := range grouped {
		sort.SliceStable(edges, func(i, j int) bool { return edges[i].Order < edges[j].Order })
		children := make([]string, 0, len(edges))
		for _, e := range edges {
			children = append(children, e.ChildUsageKey)
		}
		out[parent] = children
	}
	return out
}

// Roots lists nodes without an inbound edge, in node order.
func (d Dataset) Roots() []string {
	hasParent := make(map[string]bool, len(d.Edges))
	for _, e := range d.Edges {
		hasParent[e.ChildUsageKey] = true
	}
	var out []string
	for _, n := range d.Nodes {
		if !hasParent[n.UsageKey] {
			out = append(out, n.UsageKey)
		}
	}
	return out
}
