package graph

// SimplePaths enumerates all simple (no repeated node) directed paths from
// source to target with at most maxLength edges, optionally restricted to
// following only edges of the given kinds (all kinds if none given).
// Returns paths as slices of node IDs, source first, target last.
func (g *Graph) SimplePaths(source, target string, maxLength int, kinds ...EdgeType) [][]string {
	if !g.HasNode(source) || !g.HasNode(target) || maxLength < 1 {
		return nil
	}
	var results [][]string
	visited := map[string]bool{source: true}
	path := []string{source}

	var dfs func(current string, depth int)
	dfs = func(current string, depth int) {
		if current == target && len(path) > 1 {
			cp := make([]string, len(path))
			copy(cp, path)
			results = append(results, cp)
			return
		}
		if depth >= maxLength {
			return
		}
		for _, next := range g.Successors(current, kinds...) {
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			dfs(next, depth+1)
			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	dfs(source, 0)
	return results
}

// ShortestPath returns the shortest simple path from source to target using
// breadth-first search over the given edge kinds (all kinds if none given),
// or nil if no such path exists.
func (g *Graph) ShortestPath(source, target string, kinds ...EdgeType) []string {
	if !g.HasNode(source) || !g.HasNode(target) {
		return nil
	}
	if source == target {
		return []string{source}
	}
	prev := map[string]string{}
	visited := map[string]bool{source: true}
	queue := []string{source}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(cur, kinds...) {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = cur
			if next == target {
				queue = nil
				break
			}
			queue = append(queue, next)
		}
	}

	if !visited[target] {
		return nil
	}
	var path []string
	for n := target; ; {
		path = append([]string{n}, path...)
		if n == source {
			break
		}
		n = prev[n]
	}
	return path
}

// Reachable reports whether target is reachable from source following
// edges of the given kinds (all kinds if none given).
func (g *Graph) Reachable(source, target string, kinds ...EdgeType) bool {
	return g.ShortestPath(source, target, kinds...) != nil
}
