package graph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// levelColors maps risk levels to node fill colors in DOT output.
var levelColors = map[string]string{
	"low":      "palegreen",
	"medium":   "khaki",
	"high":     "orange",
	"critical": "salmon",
}

// ToDOT converts a Graph to Graphviz DOT format. Nodes are filled by risk
// level and labeled with name, version, and score; transitive edges are
// drawn dashed to distinguish them from the root's direct dependencies.
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := n.Name
		if n.Version != "" {
			label += "\n" + n.Version
		}
		label += fmt.Sprintf("\nrisk: %d", n.RiskScore)

		attrs := fmt.Sprintf("label=%q", label)
		if color, ok := levelColors[n.RiskLevel]; ok {
			attrs += fmt.Sprintf(", fillcolor=%q", color)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if e.Type == EdgeTransitive {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.Source, e.Target)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
