package graph

// FindPath returns the minimum-hop directed path from source to target as
// a sequence of node names, both endpoints included, or nil when no
// directed path exists. Searching for a node against itself
// short-circuits to a single-element path without consulting the edges.
func FindPath(edges []Edge, source, target string) []string {
	if source == target {
		return []string{source}
	}

	adjacency := make(map[string][]string, len(edges))
	for _, e := range edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	// Breadth-first search guarantees the first time we reach the target
	// is over a minimum-hop route.
	prev := map[string]string{}
	visited := map[string]bool{source: true}
	queue := []string{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = current
			if next == target {
				return reconstruct(prev, source, target)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func reconstruct(prev map[string]string, source, target string) []string {
	path := []string{target}
	for at := target; at != source; at = prev[at] {
		path = append(path, prev[at])
	}
	// Reverse in place: the walk above collected target → source.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
