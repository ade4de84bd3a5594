// Package pattern is a small subgraph pattern matcher over plain directed
// property graphs. Provenance graphs are exported into this shape for
// querying; the matcher knows nothing about artifacts or steps.
package pattern

import (
	"fmt"
)

// Node is a property graph vertex.
type Node struct {
	ID    string
	Label string
	Props map[string]interface{}
}

// Edge is a directed property graph edge.
type Edge struct {
	From  string
	To    string
	Props map[string]interface{}
}

// Graph is a directed property graph with at most one edge per ordered node
// pair. Parallel edges are flattened on insert: properties that disagree
// become lists of their distinct values.
type Graph struct {
	nodes     []Node
	index     map[string]int
	edges     []Edge
	edgeIndex map[[2]string]int
	out       map[string][]int
	in        map[string][]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index:     make(map[string]int),
		edgeIndex: make(map[[2]string]int),
		out:       make(map[string][]int),
		in:        make(map[string][]int),
	}
}

// AddNode inserts n, or merges its props into an existing node with the same id.
func (g *Graph) AddNode(n Node) {
	if i, ok := g.index[n.ID]; ok {
		g.nodes[i].Props = mergeProps(g.nodes[i].Props, n.Props)
		return
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: n.ID, Label: n.Label, Props: mergeProps(nil, n.Props)})
}

// AddEdge inserts e, creating missing endpoints with empty labels.
func (g *Graph) AddEdge(e Edge) {
	for _, id := range []string{e.From, e.To} {
		if _, ok := g.index[id]; !ok {
			g.AddNode(Node{ID: id})
		}
	}
	key := [2]string{e.From, e.To}
	if i, ok := g.edgeIndex[key]; ok {
		g.edges[i].Props = mergeProps(g.edges[i].Props, e.Props)
		return
	}
	idx := len(g.edges)
	g.edgeIndex[key] = idx
	g.edges = append(g.edges, Edge{From: e.From, To: e.To, Props: mergeProps(nil, e.Props)})
	g.out[e.From] = append(g.out[e.From], idx)
	g.in[e.To] = append(g.in[e.To], idx)
}

// Node returns the node with id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Edge returns the edge from -> to.
func (g *Graph) Edge(from, to string) (Edge, bool) {
	i, ok := g.edgeIndex[[2]string{from, to}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

func mergeProps(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		old, ok := dst[k]
		if !ok {
			dst[k] = v
			continue
		}
		dst[k] = appendDistinct(old, v)
	}
	return dst
}

// appendDistinct folds v into old, turning scalars into a list on conflict.
func appendDistinct(old, v interface{}) interface{} {
	list, isList := old.([]interface{})
	if !isList {
		if fmt.Sprint(old) == fmt.Sprint(v) {
			return old
		}
		list = []interface{}{old}
	}
	for _, existing := range list {
		if fmt.Sprint(existing) == fmt.Sprint(v) {
			return list
		}
	}
	return append(list, v)
}
