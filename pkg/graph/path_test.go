package graph

import (
	"reflect"
	"testing"
)

func edges(pairs ...[2]string) []Edge {
	out := make([]Edge, len(pairs))
	for i, p := range pairs {
		out[i] = Edge{Source: p[0], Target: p[1], Type: EdgeTransitive}
	}
	return out
}

func TestFindPath(t *testing.T) {
	tests := []struct {
		name   string
		edges  []Edge
		source string
		target string
		want   []string
	}{
		{
			name:   "DirectShortcutBeatsLongerRoute",
			edges:  edges([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"A", "C"}),
			source: "A",
			target: "C",
			want:   []string{"A", "C"},
		},
		{
			name:   "MultiHop",
			edges:  edges([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "D"}),
			source: "A",
			target: "D",
			want:   []string{"A", "B", "C", "D"},
		},
		{
			name:   "SelfShortCircuits",
			edges:  nil,
			source: "X",
			target: "X",
			want:   []string{"X"},
		},
		{
			name:   "NoDirectedPath",
			edges:  edges([2]string{"B", "A"}),
			source: "A",
			target: "B",
			want:   nil,
		},
		{
			name:   "TargetAbsentFromEdges",
			edges:  edges([2]string{"A", "B"}),
			source: "A",
			target: "Z",
			want:   nil,
		},
		{
			name: "DisconnectedComponents",
			edges: edges(
				[2]string{"A", "B"},
				[2]string{"C", "D"},
			),
			source: "A",
			target: "D",
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPath(tt.edges, tt.source, tt.target)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindPath(%s, %s) = %v, want %v", tt.source, tt.target, got, tt.want)
			}
		})
	}
}

func TestFindPathMinimumHops(t *testing.T) {
	// Two routes from A to E: A→B→C→D→E and A→X→E. BFS must pick the short one.
	es := edges(
		[2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "D"}, [2]string{"D", "E"},
		[2]string{"A", "X"}, [2]string{"X", "E"},
	)
	got := FindPath(es, "A", "E")
	if len(got) != 3 {
		t.Errorf("path = %v, want 3 hops via X", got)
	}
}
