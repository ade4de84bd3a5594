package prov

import (
	"context"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/pattern"
)

// QueryResult is the outcome of a provenance pattern query. Bindings holds,
// per query variable, the bound node of each match in match order. Graph is
// the lineage graph the query ran against, for follow-up path queries.
type QueryResult struct {
	Bindings map[string][]Node
	Graph    *Graph
}

// Matches returns the number of matches.
func (r *QueryResult) Matches() int {
	for _, nodes := range r.Bindings {
		return len(nodes)
	}
	return 0
}

// ToPattern exports g as a plain property graph: node ids are Node.ID, labels
// are the node kind and properties are the motif attributes. Parallel edges
// collapse into one edge whose differing properties become lists.
func ToPattern(g *Graph) *pattern.Graph {
	pg := pattern.NewGraph()
	for i, n := range g.nodes {
		pg.AddNode(pattern.Node{ID: n.ID(), Label: n.Kind.String(), Props: g.nodeAttrs[i]})
	}
	for i, e := range g.edges {
		pg.AddEdge(pattern.Edge{From: e.From.ID(), To: e.To.ID(), Props: g.edgeAttrs[i]})
	}
	return pg
}

// QueryProvenance builds the lineage of artifactIDs with motif attributes and
// runs q against it with engine.
func (e *Explorer) QueryProvenance(ctx context.Context, artifactIDs []string, q pattern.Query, strategy Strategy, engine pattern.Engine) (*QueryResult, error) {
	g, err := e.BuildProvenance(ctx, artifactIDs, strategy, Options{Motif: true})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Node, g.Len())
	for _, n := range g.nodes {
		byID[n.ID()] = n
	}

	rows, err := engine.Run(ctx, ToPattern(g), q)
	if err != nil {
		return nil, errors.Wrap(err, "run pattern query")
	}

	result := &QueryResult{Bindings: make(map[string][]Node, len(rows)), Graph: g}
	for v, ids := range rows {
		nodes := make([]Node, 0, len(ids))
		for _, id := range ids {
			n, ok := byID[id]
			if !ok {
				return nil, errors.Newf("engine bound %s to unknown node %s", v, id)
			}
			nodes = append(nodes, n)
		}
		result.Bindings[v] = nodes
	}

	e.logger.Infow("Pattern query complete",
		logger.FieldStrategy, strategy.String(),
		logger.FieldCount, result.Matches(),
		logger.FieldNodes, g.Len(),
	)
	return result, nil
}
