package prov

import (
	"sort"
)

// Path is an immutable walk through a provenance graph: its nodes in order
// and, for each consecutive pair, one edge joining them in either direction.
type Path struct {
	nodes []Node
	edges []Edge
}

// Nodes returns the path's nodes.
func (p *Path) Nodes() []Node { return append([]Node(nil), p.nodes...) }

// Edges returns the path's edges; len(Edges) == len(Nodes)-1.
func (p *Path) Edges() []Edge { return append([]Edge(nil), p.edges...) }

// Len returns the number of nodes.
func (p *Path) Len() int { return len(p.nodes) }

// ShortestPath finds a shortest path between two nodes of g ignoring edge
// direction. Neighbours are visited in id order so the result is
// deterministic. It returns nil when either node is absent or they are not
// connected.
func ShortestPath(g *Graph, from, to Node) *Path {
	if !g.HasNode(from) || !g.HasNode(to) {
		return nil
	}
	prev := map[Node]Node{from: from}
	queue := []Node{from}
	for len(queue) > 0 && !hasKey(prev, to) {
		n := queue[0]
		queue = queue[1:]
		for _, m := range undirectedNeighbours(g, n) {
			if _, ok := prev[m]; !ok {
				prev[m] = n
				queue = append(queue, m)
			}
		}
	}
	if !hasKey(prev, to) {
		return nil
	}

	nodes := []Node{to}
	for n := to; n != from; {
		n = prev[n]
		nodes = append(nodes, n)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	p := &Path{nodes: nodes}
	for i := 0; i+1 < len(nodes); i++ {
		p.edges = append(p.edges, joiningEdge(g, nodes[i], nodes[i+1]))
	}
	return p
}

func hasKey(m map[Node]Node, k Node) bool {
	_, ok := m[k]
	return ok
}

func undirectedNeighbours(g *Graph, n Node) []Node {
	seen := make(map[Node]bool)
	var out []Node
	for _, m := range append(g.Successors(n), g.Predecessors(n)...) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// joiningEdge returns the first edge between a and b, preferring a -> b.
func joiningEdge(g *Graph, a, b Node) Edge {
	for _, ei := range g.out[g.index[a]] {
		if e := g.edges[ei]; e.To == b {
			return e
		}
	}
	for _, ei := range g.in[g.index[a]] {
		if e := g.edges[ei]; e.From == b {
			return e
		}
	}
	return Edge{From: a, To: b}
}
