package attach

import (
	"go.uber.org/zap"

	"github.com/teranos/provgraph/logger"
)

type edge struct {
	to  int
	rel Relation
}

// Edge is a labeled attachment edge.
type Edge struct {
	From     Node
	To       Node
	Relation Relation
}

// Graph is the attachment multigraph of one operation. Nodes live in an arena
// addressed by index; removed slots are tombstoned, never reused.
type Graph struct {
	nodes []Node
	alive []bool
	out   [][]edge
	in    [][]edge
	index map[NodeKey]int

	// byFullPath indexes live nodes by dotted full path for parent lookup.
	byFullPath map[string][]int

	// kinds declared by the transform list, including kinds with no artifacts.
	kinds map[string]*kindEntry

	logger *zap.SugaredLogger
}

type kindEntry struct {
	path       []string
	parameters interface{}
}

// New returns a graph holding only the root node.
func New(log *zap.SugaredLogger) *Graph {
	g := &Graph{
		index:      make(map[NodeKey]int),
		byFullPath: make(map[string][]int),
		kinds:      make(map[string]*kindEntry),
		logger:     logger.OrNop(log),
	}
	g.AddNode(RootNode())
	return g
}

// Root returns the synthetic root node.
func (g *Graph) Root() Node {
	return RootNode()
}

// AddNode inserts n. Re-adding an equal node is a no-op; the return value
// reports whether n was new.
func (g *Graph) AddNode(n Node) bool {
	key := n.Key()
	if _, ok := g.index[key]; ok {
		return false
	}
	stored := Node{
		KindPath:   append([]string(nil), n.KindPath...),
		ArtifactID: n.ArtifactID,
		Mode:       n.Mode,
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, stored)
	g.alive = append(g.alive, true)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[key] = idx
	full := stored.ArtifactPath()
	g.byFullPath[full] = append(g.byFullPath[full], idx)
	return true
}

// BuildNode inserts the node (idempotently) and links it under its parent.
// A node whose parent is missing is kept and reported as an orphan.
func (g *Graph) BuildNode(kindPath []string, artifactID string, mode Mode) Node {
	n := Node{KindPath: kindPath, ArtifactID: artifactID, Mode: mode}
	if g.AddNode(n) {
		g.linkToParent(g.index[n.Key()])
	}
	return g.nodes[g.index[n.Key()]]
}

// HasNode reports whether n is in the graph.
func (g *Graph) HasNode(n Node) bool {
	_, ok := g.index[n.Key()]
	return ok
}

// Len returns the number of live nodes, root included.
func (g *Graph) Len() int {
	return len(g.index)
}

// Nodes returns live nodes in insertion order, root first.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.index))
	for i, n := range g.nodes {
		if g.alive[i] {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Edges returns every edge in source insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for i := range g.nodes {
		if !g.alive[i] {
			continue
		}
		for _, e := range g.out[i] {
			edges = append(edges, Edge{From: g.nodes[i], To: g.nodes[e.to], Relation: e.rel})
		}
	}
	return edges
}

// AddEdge links from → to. Both nodes must exist; an identical edge is not duplicated.
func (g *Graph) AddEdge(from, to Node, rel Relation) bool {
	fi, ok := g.index[from.Key()]
	if !ok {
		return false
	}
	ti, ok := g.index[to.Key()]
	if !ok {
		return false
	}
	return g.addEdge(fi, ti, rel)
}

func (g *Graph) addEdge(fi, ti int, rel Relation) bool {
	for _, e := range g.out[fi] {
		if e.to == ti && e.rel == rel {
			return false
		}
	}
	g.out[fi] = append(g.out[fi], edge{to: ti, rel: rel})
	g.in[ti] = append(g.in[ti], edge{to: fi, rel: rel})
	return true
}

// linkToParent adds CHILD edges from every node whose full path equals the
// node's kind path minus its last segment.
func (g *Graph) linkToParent(idx int) {
	n := g.nodes[idx]
	if n.IsRoot() {
		return
	}
	parentPath := joinPath(n.KindPath[:max(len(n.KindPath)-1, 0)])
	linked := false
	for _, p := range g.byFullPath[parentPath] {
		if p == idx || !g.alive[p] {
			continue
		}
		g.addEdge(p, idx, RelationChild)
		linked = true
	}
	if !linked {
		g.logger.Warnw("Orphaned attachment node",
			logger.FieldKindPath, n.KindURN(),
			logger.FieldArtifactID, n.ArtifactID,
			"mode", n.Mode.String(),
		)
	}
}

// Parent returns the first CHILD-edge predecessor of n.
func (g *Graph) Parent(n Node) (Node, bool) {
	idx, ok := g.index[n.Key()]
	if !ok {
		return Node{}, false
	}
	for _, e := range g.in[idx] {
		if e.rel == RelationChild {
			return g.nodes[e.to], true
		}
	}
	return Node{}, false
}

// Parents returns every CHILD-edge predecessor of n.
func (g *Graph) Parents(n Node) []Node {
	idx, ok := g.index[n.Key()]
	if !ok {
		return nil
	}
	var parents []Node
	for _, e := range g.in[idx] {
		if e.rel == RelationChild {
			parents = append(parents, g.nodes[e.to])
		}
	}
	return parents
}

// Children returns the CHILD-edge successors of n.
func (g *Graph) Children(n Node) []Node {
	idx, ok := g.index[n.Key()]
	if !ok {
		return nil
	}
	var children []Node
	for _, e := range g.out[idx] {
		if e.rel == RelationChild {
			children = append(children, g.nodes[e.to])
		}
	}
	return children
}

// RemoveNodeAndDescendants removes n and every node reachable from it over
// any outgoing edge. It returns the removed nodes; nothing is removed when n
// is absent.
func (g *Graph) RemoveNodeAndDescendants(n Node) []Node {
	start, ok := g.index[n.Key()]
	if !ok {
		return nil
	}

	// Collect first so the graph is never observed half-removed.
	doomed := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.out[cur] {
			if !doomed[e.to] {
				doomed[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}

	var removed []Node
	for i := range g.nodes {
		if doomed[i] {
			removed = append(removed, g.nodes[i])
		}
	}
	for idx := range doomed {
		g.dropIndex(idx)
	}
	for i := range g.nodes {
		if g.alive[i] {
			g.out[i] = filterEdges(g.out[i], doomed)
			g.in[i] = filterEdges(g.in[i], doomed)
		}
	}

	prefix := n.FullPath()
	for urn, k := range g.kinds {
		if len(k.path) > len(prefix) && comparePaths(k.path[:len(prefix)], prefix) == 0 {
			delete(g.kinds, urn)
		}
	}
	return removed
}

// ReplaceNode moves every edge of old onto new, keeping relation labels, and
// drops old. It is a no-op when old is absent or equal to new.
func (g *Graph) ReplaceNode(old, new Node) {
	oi, ok := g.index[old.Key()]
	if !ok || old.Equal(new) {
		return
	}
	g.AddNode(new)
	ni := g.index[new.Key()]

	outs := append([]edge(nil), g.out[oi]...)
	ins := append([]edge(nil), g.in[oi]...)
	g.dropIndex(oi)
	doomed := map[int]bool{oi: true}
	for i := range g.nodes {
		if g.alive[i] {
			g.out[i] = filterEdges(g.out[i], doomed)
			g.in[i] = filterEdges(g.in[i], doomed)
		}
	}

	for _, e := range outs {
		if e.to == oi {
			g.addEdge(ni, ni, e.rel)
			continue
		}
		g.addEdge(ni, e.to, e.rel)
	}
	for _, e := range ins {
		if e.to == oi {
			continue
		}
		g.addEdge(e.to, ni, e.rel)
	}
}

func (g *Graph) dropIndex(idx int) {
	n := g.nodes[idx]
	g.alive[idx] = false
	delete(g.index, n.Key())
	full := n.ArtifactPath()
	kept := g.byFullPath[full][:0]
	for _, i := range g.byFullPath[full] {
		if i != idx {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		delete(g.byFullPath, full)
	} else {
		g.byFullPath[full] = kept
	}
	g.out[idx] = nil
	g.in[idx] = nil
}

func filterEdges(edges []edge, doomed map[int]bool) []edge {
	kept := edges[:0]
	for _, e := range edges {
		if !doomed[e.to] {
			kept = append(kept, e)
		}
	}
	return kept
}

func joinPath(path []string) string {
	return Node{KindPath: path}.KindURN()
}
