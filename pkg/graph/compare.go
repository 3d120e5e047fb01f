package graph

// Comparison summarizes the package-name overlap of two graphs, typically
// built from two alternative root packages.
type Comparison struct {
	Shared  int   `json:"shared"`
	OnlyInA int   `json:"onlyInA"`
	OnlyInB int   `json:"onlyInB"`
	StatsA  Stats `json:"statsA"`
	StatsB  Stats `json:"statsB"`
}

// CompareGraphs compares two independently-built graphs by package name.
// Shared is symmetric in the argument order; OnlyInA and OnlyInB swap.
func CompareGraphs(a, b *Graph) *Comparison {
	namesA := nameSet(a)
	namesB := nameSet(b)

	c := &Comparison{StatsA: a.Stats, StatsB: b.Stats}
	for name := range namesA {
		if namesB[name] {
			c.Shared++
		} else {
			c.OnlyInA++
		}
	}
	for name := range namesB {
		if !namesA[name] {
			c.OnlyInB++
		}
	}
	return c
}

func nameSet(g *Graph) map[string]bool {
	set := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		set[n.Name] = true
	}
	return set
}
