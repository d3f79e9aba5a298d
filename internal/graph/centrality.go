package graph

// DegreeCentrality returns, for every node, its degree normalized by the
// maximum possible degree (n-1) in an undirected sense over both in- and
// out-edges, matching the convention used by the risk-scoring model.
func (g *Graph) DegreeCentrality() map[string]float64 {
	n := len(g.nodes)
	out := make(map[string]float64, n)
	if n <= 1 {
		for id := range g.nodes {
			out[id] = 0
		}
		return out
	}
	denom := float64(n - 1)
	for id := range g.nodes {
		out[id] = float64(g.Degree(id)) / denom
	}
	return out
}

// BetweennessCentrality computes normalized betweenness centrality over the
// directed graph using Brandes' algorithm, treating every edge kind as
// traversable. Approximate by construction in the sense that parallel edges
// between the same pair of nodes are collapsed to a single hop, which is an
// acceptable simplification for identifying structurally critical nodes.
func (g *Graph) BetweennessCentrality() map[string]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	betweenness := make(map[string]float64, n)
	for _, node := range nodes {
		betweenness[node.ID] = 0
	}
	if n < 3 {
		return betweenness
	}

	adj := make(map[string][]string, n)
	for _, node := range nodes {
		adj[node.ID] = g.Successors(node.ID)
	}

	for _, s := range nodes {
		stack := []string{}
		pred := map[string][]string{}
		sigma := map[string]float64{}
		dist := map[string]int{}
		for _, v := range nodes {
			sigma[v.ID] = 0
			dist[v.ID] = -1
		}
		sigma[s.ID] = 1
		dist[s.ID] = 0
		queue := []string{s.ID}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := map[string]float64{}
		for _, v := range nodes {
			delta[v.ID] = 0
		}
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				if sigma[w] > 0 {
					delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
				}
			}
			if w != s.ID {
				betweenness[w] += delta[w]
			}
		}
	}

	// Normalize for a directed graph: divide by (n-1)(n-2).
	scale := 1.0
	if n > 2 {
		scale = 1.0 / float64((n-1)*(n-2))
	}
	for id := range betweenness {
		betweenness[id] *= scale
	}
	return betweenness
}
