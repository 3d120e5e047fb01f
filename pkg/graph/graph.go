// Package graph flattens a resolved dependency tree into a deduplicated
// node/edge structure suitable for path queries, comparison, and
// visualization. The JSON shape of Graph, Node, Edge, and Stats is a wire
// contract: it is serialized directly for downstream consumers.
package graph

import (
	"github.com/depscope/depscope/pkg/deps"
)

// Edge types.
const (
	EdgeDirect     = "direct"     // Originates from the root's own dependency list
	EdgeTransitive = "transitive" // Originates deeper in the tree
)

// Node is one unique package in the flattened graph, keyed by name.
// Depth is the minimum depth at which the package was observed; score and
// size come from the first tree occurrence encountered.
type Node struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Depth     int    `json:"depth"`
	RiskScore int    `json:"riskScore"`
	RiskLevel string `json:"riskLevel"`
	Size      int64  `json:"size"`
}

// Edge is one unique parent→child relationship.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Stats aggregates the flattened graph.
type Stats struct {
	TotalPackages      int     `json:"totalPackages"`
	TotalSize          int64   `json:"totalSize"`
	TotalSizeFormatted string  `json:"totalSizeFormatted"`
	MaxDepth           int     `json:"maxDepth"`
	DirectDeps         int     `json:"directDeps"`
	TransitiveDeps     int     `json:"transitiveDeps"`
	AverageRisk        float64 `json:"averageRisk"`
}

// Graph is the deduplicated node/edge structure.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}

// FromTree flattens a resolved tree into a Graph. The input is never
// mutated. Each unique package name becomes exactly one node and each
// unique parent→child pair exactly one edge, regardless of how many tree
// positions repeat them. Node order follows first encounter in a
// depth-first walk, so output is deterministic for a given tree.
//
// A nil or errored root yields an empty graph.
func FromTree(root *deps.PackageNode) *Graph {
	g := &Graph{Nodes: []Node{}, Edges: []Edge{}}
	if root == nil || root.Failed() {
		g.Stats.TotalSizeFormatted = FormatBytes(0)
		return g
	}

	index := make(map[string]int)
	edgeSeen := make(map[[2]string]bool)
	maxDepth := 0

	var walk func(n *deps.PackageNode)
	walk = func(n *deps.PackageNode) {
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
		if i, ok := index[n.Name]; ok {
			if n.Depth < g.Nodes[i].Depth {
				g.Nodes[i].Depth = n.Depth
			}
		} else {
			index[n.Name] = len(g.Nodes)
			g.Nodes = append(g.Nodes, Node{
				ID:        n.Name,
				Name:      n.Name,
				Version:   n.Version,
				Depth:     n.Depth,
				RiskScore: n.RiskScore,
				RiskLevel: n.RiskLevel,
				Size:      n.Metadata.UnpackedSize,
			})
		}

		for _, dep := range n.Dependencies {
			pair := [2]string{n.Name, dep.Name}
			if !edgeSeen[pair] {
				edgeSeen[pair] = true
				typ := EdgeTransitive
				if n == root {
					typ = EdgeDirect
				}
				g.Edges = append(g.Edges, Edge{Source: n.Name, Target: dep.Name, Type: typ})
			}
			walk(dep)
		}
	}
	walk(root)

	g.Stats = computeStats(g, maxDepth)
	return g
}

func computeStats(g *Graph, maxDepth int) Stats {
	stats := Stats{
		TotalPackages: len(g.Nodes),
		MaxDepth:      maxDepth,
	}

	var riskSum int
	for _, n := range g.Nodes {
		stats.TotalSize += n.Size
		riskSum += n.RiskScore
	}
	stats.TotalSizeFormatted = FormatBytes(stats.TotalSize)

	for _, e := range g.Edges {
		if e.Type == EdgeDirect {
			stats.DirectDeps++
		} else {
			stats.TransitiveDeps++
		}
	}

	if len(g.Nodes) > 0 {
		stats.AverageRisk = float64(riskSum) / float64(len(g.Nodes))
	}
	return stats
}
