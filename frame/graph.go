// Package frame builds spatial frame trees from artifacts' parent-frame
// references, finds paths between frames and composes the rigid transforms
// along them.
package frame

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/store"
	"github.com/teranos/provgraph/types"
)

// Strategy selects which frame relations Build follows.
type Strategy int

const (
	Full     Strategy = iota // parents and children
	Parents                  // towards the root only
	Children                 // away from the root only
)

func (s Strategy) String() string {
	switch s {
	case Parents:
		return "parents"
	case Children:
		return "children"
	default:
		return "full"
	}
}

// ParseStrategy parses full, parents or children.
func ParseStrategy(text string) (Strategy, error) {
	switch text {
	case "full":
		return Full, nil
	case "parents":
		return Parents, nil
	case "children":
		return Children, nil
	}
	return Full, errors.WithHint(
		errors.Wrapf(errors.ErrNoMatchingStrategy, "frame strategy %q", text),
		"use full, parents or children")
}

// Edge links a parent frame to a child frame; Frame is the child's spatial
// frame, expressing the child relative to the parent.
type Edge struct {
	Parent string
	Child  string
	Frame  types.SpatialFrame
}

// Transform returns the child-to-parent transform of the edge.
func (e Edge) Transform() Transform {
	return FromSpatialFrame(e.Frame.Transform)
}

// Graph is a directed graph of artifact frames, edges from parent to child.
type Graph struct {
	nodes     []string
	index     map[string]int
	edges     []Edge
	edgeIndex map[[2]string]int
	adjacent  map[string][]int // edges touching a node, either direction
}

// NewGraph returns an empty frame graph.
func NewGraph() *Graph {
	return &Graph{
		index:     make(map[string]int),
		edgeIndex: make(map[[2]string]int),
		adjacent:  make(map[string][]int),
	}
}

// AddNode inserts an artifact id.
func (g *Graph) AddNode(id string) bool {
	if _, ok := g.index[id]; ok {
		return false
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, id)
	return true
}

// AddEdge inserts a parent -> child edge, adding missing nodes.
func (g *Graph) AddEdge(e Edge) bool {
	g.AddNode(e.Parent)
	g.AddNode(e.Child)
	key := [2]string{e.Parent, e.Child}
	if _, ok := g.edgeIndex[key]; ok {
		return false
	}
	idx := len(g.edges)
	g.edgeIndex[key] = idx
	g.edges = append(g.edges, e)
	g.adjacent[e.Parent] = append(g.adjacent[e.Parent], idx)
	g.adjacent[e.Child] = append(g.adjacent[e.Child], idx)
	return true
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Nodes returns artifact ids in insertion order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.nodes...) }

// Edges returns edges in insertion order.
func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Children returns the ids framed directly in id, sorted.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, ei := range g.adjacent[id] {
		if e := g.edges[ei]; e.Parent == id {
			out = append(out, e.Child)
		}
	}
	sort.Strings(out)
	return out
}

// Parents returns the ids id is framed in. A forest has at most one.
func (g *Graph) Parents(id string) []string {
	var out []string
	for _, ei := range g.adjacent[id] {
		if e := g.edges[ei]; e.Child == id {
			out = append(out, e.Parent)
		}
	}
	sort.Strings(out)
	return out
}

// Builder builds frame graphs and paths from an artifact store.
type Builder struct {
	artifacts store.ArtifactStore
	logger    *zap.SugaredLogger
}

// NewBuilder creates a frame graph builder.
func NewBuilder(artifacts store.ArtifactStore, log *zap.SugaredLogger) *Builder {
	return &Builder{
		artifacts: artifacts,
		logger:    logger.OrNop(log).With(logger.FieldComponent, "frames"),
	}
}

// Build walks frame relations outward from ids, one hop per frontier pop.
// Every artifact is expanded at most once, so cyclic parent references end in
// a partial graph rather than a loop. Missing artifacts are skipped.
func (b *Builder) Build(ctx context.Context, ids []string, strategy Strategy) (*Graph, error) {
	g := NewGraph()
	seen := make(map[string]bool, len(ids))
	var frontier []string
	push := func(id string) {
		if !seen[id] {
			seen[id] = true
			frontier = append(frontier, id)
		}
	}
	for _, id := range ids {
		push(id)
	}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "build frame graph")
		}
		id := frontier[0]
		frontier = frontier[1:]

		a, err := b.artifacts.Get(ctx, id)
		if errors.Is(err, errors.ErrNotFound) {
			b.logger.Debugw("Frame artifact not found, skipping", logger.FieldArtifactID, id)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "load frame of %s", id)
		}
		g.AddNode(id)

		if strategy != Children {
			if parent := a.ParentFrame(); parent != "" {
				g.AddEdge(Edge{Parent: parent, Child: id, Frame: *a.SpatialFrame})
				push(parent)
			}
		}
		if strategy != Parents {
			children, err := b.artifacts.ListByParentFrame(ctx, id)
			if err != nil {
				return nil, errors.Wrapf(err, "list frame children of %s", id)
			}
			for _, child := range children {
				g.AddEdge(Edge{Parent: id, Child: child.ID, Frame: *child.SpatialFrame})
				push(child.ID)
			}
		}
	}

	b.logger.Debugw("Built frame graph",
		logger.FieldArtifacts, len(ids),
		logger.FieldStrategy, strategy.String(),
		logger.FieldNodes, g.Len(),
		logger.FieldEdges, len(g.edges),
	)
	return g, nil
}
