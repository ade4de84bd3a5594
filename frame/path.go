package frame

import (
	"context"
	"sort"
)

// Step is one edge of a path with the direction it is walked in.
type Step struct {
	From string
	To   string
	Edge Edge
}

// TowardsRoot reports whether the step walks from child to parent.
func (s Step) TowardsRoot() bool {
	return s.From == s.Edge.Child
}

// Transform maps points of the From frame into the To frame. Walking towards
// the root applies the stored transform; walking away from it applies the
// inverse.
func (s Step) Transform() Transform {
	t := s.Edge.Transform()
	if s.TowardsRoot() {
		return t
	}
	return t.Inverse()
}

// Path is an immutable walk through a frame graph.
type Path struct {
	nodes []string
	steps []Step
}

// Nodes returns the artifact ids along the path.
func (p *Path) Nodes() []string { return append([]string(nil), p.nodes...) }

// Steps returns the walked edges; len(Steps) == len(Nodes)-1.
func (p *Path) Steps() []Step { return append([]Step(nil), p.steps...) }

// Edges returns the underlying frame edges in path order.
func (p *Path) Edges() []Edge {
	out := make([]Edge, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Edge
	}
	return out
}

// From returns the first frame.
func (p *Path) From() string { return p.nodes[0] }

// To returns the last frame.
func (p *Path) To() string { return p.nodes[len(p.nodes)-1] }

// Reverse returns the same path walked the other way.
func (p *Path) Reverse() *Path {
	r := &Path{
		nodes: make([]string, len(p.nodes)),
		steps: make([]Step, len(p.steps)),
	}
	for i, n := range p.nodes {
		r.nodes[len(p.nodes)-1-i] = n
	}
	for i, s := range p.steps {
		r.steps[len(p.steps)-1-i] = Step{From: s.To, To: s.From, Edge: s.Edge}
	}
	return r
}

// Transform composes the steps in path order: the result maps points of the
// first frame into the last.
func (p *Path) Transform() Transform {
	m := Identity()
	for _, s := range p.steps {
		m = s.Transform().Mul(m)
	}
	return m
}

// MapPoint maps a point of the first frame into the last.
func (p *Path) MapPoint(v Vec3) Vec3 {
	return p.Transform().ApplyPoint(v)
}

// MapBox maps a box of the first frame into the last, as the bounding box of
// its transformed corners.
func (p *Path) MapBox(b Box) Box {
	return p.Transform().ApplyBox(b)
}

// ShortestPath searches g ignoring edge direction. Neighbours are visited in
// id order. It returns nil when either end is absent or they are not
// connected.
func ShortestPath(g *Graph, from, to string) *Path {
	if !g.HasNode(from) || !g.HasNode(to) {
		return nil
	}
	via := map[string]int{from: -1} // edge index the node was reached by
	queue := []string{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == to {
			break
		}
		for _, ei := range g.sortedAdjacent(n) {
			e := g.edges[ei]
			m := e.Child
			if m == n {
				m = e.Parent
			}
			if _, ok := via[m]; !ok {
				via[m] = ei
				queue = append(queue, m)
			}
		}
	}
	if _, ok := via[to]; !ok {
		return nil
	}

	var steps []Step
	nodes := []string{to}
	for n := to; n != from; {
		e := g.edges[via[n]]
		prev := e.Parent
		if prev == n {
			prev = e.Child
		}
		steps = append(steps, Step{From: prev, To: n, Edge: e})
		nodes = append(nodes, prev)
		n = prev
	}
	p := &Path{nodes: make([]string, len(nodes)), steps: make([]Step, len(steps))}
	for i := range nodes {
		p.nodes[i] = nodes[len(nodes)-1-i]
	}
	for i := range steps {
		p.steps[i] = steps[len(steps)-1-i]
	}
	return p
}

// sortedAdjacent orders a node's edges by the id of the other end.
func (g *Graph) sortedAdjacent(n string) []int {
	idx := append([]int(nil), g.adjacent[n]...)
	other := func(ei int) string {
		if e := g.edges[ei]; e.Parent != n {
			return e.Parent
		}
		return g.edges[ei].Child
	}
	sort.Slice(idx, func(i, j int) bool { return other(idx[i]) < other(idx[j]) })
	return idx
}

// BuildPath builds the full frame graph around from and returns the shortest
// path to to, or nil when there is none. A missing endpoint is not an error.
func (b *Builder) BuildPath(ctx context.Context, from, to string) (*Path, error) {
	g, err := b.Build(ctx, []string{from}, Full)
	if err != nil {
		return nil, err
	}
	return ShortestPath(g, from, to), nil
}
