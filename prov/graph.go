package prov

import (
	"sort"

	"github.com/teranos/provgraph/attach"
)

// Attrs are descriptive properties attached to nodes and edges for pattern
// matching.
type Attrs map[string]interface{}

// Graph is a directed multigraph of artifact and step nodes. Nodes live in an
// arena addressed by index; edges are keyed by endpoints and label.
type Graph struct {
	nodes     []Node
	nodeAttrs []Attrs
	index     map[Node]int

	edges     []Edge
	edgeAttrs []Attrs
	edgeIndex map[edgeKey]int
	out       [][]int // edge indexes by source node
	in        [][]int // edge indexes by target node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index:     make(map[Node]int),
		edgeIndex: make(map[edgeKey]int),
	}
}

// AddNode inserts n and reports whether it was new. Attributes of an existing
// node are extended, never overwritten.
func (g *Graph) AddNode(n Node, attrs Attrs) bool {
	if i, ok := g.index[n]; ok {
		g.nodeAttrs[i] = extendAttrs(g.nodeAttrs[i], attrs)
		return false
	}
	g.index[n] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.nodeAttrs = append(g.nodeAttrs, extendAttrs(nil, attrs))
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return true
}

// AddEdge inserts an edge, adding missing endpoints. It reports whether the
// edge was new.
func (g *Graph) AddEdge(from, to Node, label attach.Node, attrs Attrs) bool {
	g.AddNode(from, nil)
	g.AddNode(to, nil)
	fi, ti := g.index[from], g.index[to]
	key := edgeKey{from: fi, to: ti, label: label.Key()}
	if i, ok := g.edgeIndex[key]; ok {
		g.edgeAttrs[i] = extendAttrs(g.edgeAttrs[i], attrs)
		return false
	}
	idx := len(g.edges)
	g.edgeIndex[key] = idx
	g.edges = append(g.edges, Edge{From: from, To: to, Label: label})
	g.edgeAttrs = append(g.edgeAttrs, extendAttrs(nil, attrs))
	g.out[fi] = append(g.out[fi], idx)
	g.in[ti] = append(g.in[ti], idx)
	return true
}

// HasNode reports whether n is in the graph.
func (g *Graph) HasNode(n Node) bool {
	_, ok := g.index[n]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges, parallel edges counted separately.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// ArtifactNodes returns the artifact nodes in insertion order.
func (g *Graph) ArtifactNodes() []Node {
	return g.filter(Node.IsArtifact)
}

// StepNodes returns the step nodes in insertion order.
func (g *Graph) StepNodes() []Node {
	return g.filter(Node.IsStep)
}

func (g *Graph) filter(keep func(Node) bool) []Node {
	var out []Node
	for _, n := range g.nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// NodeAttrs returns the attributes of n, or nil.
func (g *Graph) NodeAttrs(n Node) Attrs {
	if i, ok := g.index[n]; ok {
		return g.nodeAttrs[i]
	}
	return nil
}

// EdgeAttrs returns the attributes of an edge, or nil.
func (g *Graph) EdgeAttrs(e Edge) Attrs {
	fi, ok1 := g.index[e.From]
	ti, ok2 := g.index[e.To]
	if !ok1 || !ok2 {
		return nil
	}
	if i, ok := g.edgeIndex[edgeKey{from: fi, to: ti, label: e.Label.Key()}]; ok {
		return g.edgeAttrs[i]
	}
	return nil
}

// Successors returns distinct targets of n's outgoing edges.
func (g *Graph) Successors(n Node) []Node {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	return g.ends(g.out[i], true)
}

// Predecessors returns distinct sources of n's incoming edges.
func (g *Graph) Predecessors(n Node) []Node {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	return g.ends(g.in[i], false)
}

func (g *Graph) ends(edgeIdx []int, targets bool) []Node {
	seen := make(map[Node]bool, len(edgeIdx))
	var out []Node
	for _, ei := range edgeIdx {
		n := g.edges[ei].From
		if targets {
			n = g.edges[ei].To
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Ancestors returns every node with a directed path to n, n excluded.
func (g *Graph) Ancestors(n Node) []Node {
	return g.reach(n, g.Predecessors, -1)
}

// Descendants returns every node reachable from n, n excluded.
func (g *Graph) Descendants(n Node) []Node {
	return g.reach(n, g.Successors, -1)
}

// Within returns nodes at most depth hops from n following next, n excluded,
// in breadth-first order. A negative depth is unbounded.
func (g *Graph) Within(n Node, depth int, forward bool) []Node {
	next := g.Successors
	if !forward {
		next = g.Predecessors
	}
	return g.reach(n, next, depth)
}

func (g *Graph) reach(start Node, next func(Node) []Node, depth int) []Node {
	if !g.HasNode(start) {
		return nil
	}
	seen := map[Node]bool{start: true}
	frontier := []Node{start}
	var out []Node
	for level := 0; len(frontier) > 0 && (depth < 0 || level < depth); level++ {
		var following []Node
		for _, n := range frontier {
			for _, m := range next(n) {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
					following = append(following, m)
				}
			}
		}
		frontier = following
	}
	return out
}

// Subgraph returns the subgraph induced by nodes: those nodes present in g and
// every edge of g between two of them, with attributes.
func (g *Graph) Subgraph(nodes []Node) *Graph {
	keep := make(map[int]bool, len(nodes))
	sub := NewGraph()
	for _, n := range nodes {
		if i, ok := g.index[n]; ok {
			keep[i] = true
		}
	}
	idx := make([]int, 0, len(keep))
	for i := range keep {
		idx = append(idx, i)
	}
	// g's insertion order, whatever the order of nodes
	sort.Ints(idx)
	for _, i := range idx {
		sub.AddNode(g.nodes[i], g.nodeAttrs[i])
	}
	for ei, e := range g.edges {
		if keep[g.index[e.From]] && keep[g.index[e.To]] {
			sub.AddEdge(e.From, e.To, e.Label, g.edgeAttrs[ei])
		}
	}
	return sub
}

// Merge adds every node and edge of other to g and returns the nodes that
// were new to g, in other's order.
func (g *Graph) Merge(other *Graph) []Node {
	var added []Node
	for i, n := range other.nodes {
		if g.AddNode(n, other.nodeAttrs[i]) {
			added = append(added, n)
		}
	}
	for i, e := range other.edges {
		g.AddEdge(e.From, e.To, e.Label, other.edgeAttrs[i])
	}
	return added
}

func extendAttrs(dst, src Attrs) Attrs {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(Attrs, len(src))
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}
