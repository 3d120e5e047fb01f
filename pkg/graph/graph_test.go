package graph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/depscope/depscope/pkg/deps"
)

func node(name, version string, depth, score int, level string, size int64, children ...*deps.PackageNode) *deps.PackageNode {
	if children == nil {
		children = []*deps.PackageNode{}
	}
	return &deps.PackageNode{
		Name: name, Version: version, Depth: depth,
		RiskScore: score, RiskLevel: level,
		Metadata:     deps.Metadata{UnpackedSize: size, License: "MIT"},
		Dependencies: children,
	}
}

// sampleTree: root → a → shared, root → b → shared.
// Five tree positions, four unique names.
func sampleTree() *deps.PackageNode {
	return node("root", "1.0.0", 0, 10, "low", 1000,
		node("a", "2.0.0", 1, 30, "medium", 2000,
			node("shared", "0.1.0", 2, 60, "high", 4000)),
		node("b", "3.0.0", 1, 80, "critical", 8000,
			node("shared", "0.1.0", 2, 60, "high", 4000)),
	)
}

func TestFromTreeDeduplicates(t *testing.T) {
	g := FromTree(sampleTree())

	if len(g.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4 unique names from 5 occurrences", len(g.Nodes))
	}
	if len(g.Edges) != 4 {
		t.Fatalf("edges = %d, want 4 unique pairs", len(g.Edges))
	}

	// shared appears once, metadata from first encounter.
	var shared *Node
	for i := range g.Nodes {
		if g.Nodes[i].Name == "shared" {
			shared = &g.Nodes[i]
		}
	}
	if shared == nil {
		t.Fatal("shared missing from nodes")
	}
	if shared.ID != "shared" {
		t.Errorf("ID = %q, want name-keyed identity", shared.ID)
	}
	if shared.Depth != 2 {
		t.Errorf("shared depth = %d, want 2", shared.Depth)
	}
	if shared.RiskScore != 60 || shared.Size != 4000 {
		t.Errorf("shared carries score %d size %d", shared.RiskScore, shared.Size)
	}
}

func TestFromTreeMinimumDepth(t *testing.T) {
	// shared is reachable at depth 2 via a, and at depth 1 directly.
	tree := node("root", "1.0.0", 0, 0, "low", 0,
		node("a", "1.0.0", 1, 0, "low", 0,
			node("shared", "1.0.0", 2, 0, "low", 0)),
		node("shared", "1.0.0", 1, 0, "low", 0),
	)

	g := FromTree(tree)
	for _, n := range g.Nodes {
		if n.Name == "shared" && n.Depth != 1 {
			t.Errorf("shared depth = %d, want minimum observed (1)", n.Depth)
		}
	}
	// Max depth observed across occurrences, not deduplicated nodes.
	if g.Stats.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", g.Stats.MaxDepth)
	}
}

func TestFromTreeEdgeTypes(t *testing.T) {
	g := FromTree(sampleTree())

	for _, e := range g.Edges {
		want := EdgeTransitive
		if e.Source == "root" {
			want = EdgeDirect
		}
		if e.Type != want {
			t.Errorf("edge %s→%s type = %q, want %q", e.Source, e.Target, e.Type, want)
		}
	}
	if g.Stats.DirectDeps != 2 || g.Stats.TransitiveDeps != 2 {
		t.Errorf("direct/transitive = %d/%d, want 2/2", g.Stats.DirectDeps, g.Stats.TransitiveDeps)
	}
}

func TestFromTreeStats(t *testing.T) {
	g := FromTree(sampleTree())

	if g.Stats.TotalPackages != 4 {
		t.Errorf("TotalPackages = %d, want 4 (deduplicated)", g.Stats.TotalPackages)
	}
	// 1000 + 2000 + 8000 + 4000 (shared counted once)
	if g.Stats.TotalSize != 15000 {
		t.Errorf("TotalSize = %d, want 15000", g.Stats.TotalSize)
	}
	if g.Stats.TotalSizeFormatted != "14.6 KB" {
		t.Errorf("TotalSizeFormatted = %q", g.Stats.TotalSizeFormatted)
	}
	// (10 + 30 + 80 + 60) / 4
	if g.Stats.AverageRisk != 45 {
		t.Errorf("AverageRisk = %v, want 45", g.Stats.AverageRisk)
	}
}

func TestFromTreeSingleNode(t *testing.T) {
	g := FromTree(node("only", "1.0.0", 0, 5, "low", 0))

	if len(g.Nodes) != 1 || len(g.Edges) != 0 {
		t.Fatalf("nodes/edges = %d/%d, want 1/0", len(g.Nodes), len(g.Edges))
	}
	if g.Stats.TotalPackages != 1 {
		t.Errorf("TotalPackages = %d, want 1", g.Stats.TotalPackages)
	}
}

func TestFromTreeErroredRoot(t *testing.T) {
	g := FromTree(&deps.PackageNode{Name: "broken", Error: "boom"})
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("errored root should yield an empty graph, got %d/%d", len(g.Nodes), len(g.Edges))
	}
	if FromTree(nil) == nil {
		t.Error("nil root should yield an empty graph, not nil")
	}
}

func TestFromTreeDoesNotMutateInput(t *testing.T) {
	tree := sampleTree()
	before, _ := json.Marshal(tree)
	FromTree(tree)
	after, _ := json.Marshal(tree)
	if string(before) != string(after) {
		t.Error("FromTree mutated its input tree")
	}
}

// The Graph JSON shape is a wire contract consumed by external renderers.
func TestGraphWireFormat(t *testing.T) {
	data, err := json.Marshal(FromTree(sampleTree()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{
		`"nodes"`, `"edges"`, `"stats"`,
		`"id"`, `"name"`, `"version"`, `"depth"`, `"riskScore"`, `"riskLevel"`, `"size"`,
		`"source"`, `"target"`, `"type"`,
		`"totalPackages"`, `"totalSize"`, `"totalSizeFormatted"`, `"maxDepth"`,
		`"directDeps"`, `"transitiveDeps"`, `"averageRisk"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("wire format missing field %s", field)
		}
	}
}
