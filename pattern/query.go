package pattern

import (
	"context"
)

// NodePattern constrains one query variable. Label, when set, must equal the
// node label; each property must match (see Matches).
type NodePattern struct {
	Var   string
	Label string
	Props map[string]string
}

// EdgePattern requires an edge between two variables' bindings.
type EdgePattern struct {
	From  string
	To    string
	Props map[string]string
}

// Query is a conjunctive subgraph pattern. Limit caps the number of matches;
// zero means unlimited.
type Query struct {
	Nodes []NodePattern
	Edges []EdgePattern
	Limit int
}

// Vars returns the declared variables in declaration order.
func (q Query) Vars() []string {
	vars := make([]string, 0, len(q.Nodes))
	for _, n := range q.Nodes {
		vars = append(vars, n.Var)
	}
	return vars
}

// Engine evaluates a query against a graph. The result maps each variable to
// its bound node ids, one entry per match, so index i across all variables
// forms the i-th match.
type Engine interface {
	Run(ctx context.Context, g *Graph, q Query) (map[string][]string, error)
}
