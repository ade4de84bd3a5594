package pattern

import (
	"context"
	"fmt"

	"github.com/teranos/provgraph/errors"
)

// LabelKey addresses the node label in property constraints.
const LabelKey = "label"

// Matcher is a backtracking Engine. Distinct variables bind distinct nodes.
type Matcher struct{}

// NewMatcher returns a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

type matchState struct {
	ctx     context.Context
	g       *Graph
	q       Query
	vars    []string
	pattern map[string]NodePattern
	// edges checked once both endpoints of the pattern are bound
	edgesAt [][]EdgePattern
	binding map[string]string
	used    map[string]bool
	rows    map[string][]string
	count   int
}

// Run implements Engine.
func (m *Matcher) Run(ctx context.Context, g *Graph, q Query) (map[string][]string, error) {
	if err := Validate(q); err != nil {
		return nil, err
	}

	st := &matchState{
		ctx:     ctx,
		g:       g,
		q:       q,
		vars:    q.Vars(),
		pattern: make(map[string]NodePattern, len(q.Nodes)),
		binding: make(map[string]string),
		used:    make(map[string]bool),
		rows:    make(map[string][]string, len(q.Nodes)),
	}
	position := make(map[string]int, len(st.vars))
	for i, v := range st.vars {
		position[v] = i
		st.pattern[v] = q.Nodes[i]
		st.rows[v] = []string{}
	}
	st.edgesAt = make([][]EdgePattern, len(st.vars))
	for _, e := range q.Edges {
		at := position[e.From]
		if position[e.To] > at {
			at = position[e.To]
		}
		st.edgesAt[at] = append(st.edgesAt[at], e)
	}

	if len(st.vars) == 0 {
		return st.rows, nil
	}
	if err := st.search(0); err != nil && !errors.Is(err, errLimit) {
		return nil, err
	}
	return st.rows, nil
}

var errLimit = errors.New("match limit reached")

func (st *matchState) search(depth int) error {
	if err := st.ctx.Err(); err != nil {
		return errors.Wrap(err, "pattern match cancelled")
	}
	if depth == len(st.vars) {
		for _, v := range st.vars {
			st.rows[v] = append(st.rows[v], st.binding[v])
		}
		st.count++
		if st.q.Limit > 0 && st.count >= st.q.Limit {
			return errLimit
		}
		return nil
	}

	v := st.vars[depth]
	np := st.pattern[v]
	for _, candidate := range st.candidates(v) {
		if st.used[candidate.ID] || !nodeMatches(candidate, np) {
			continue
		}
		st.binding[v] = candidate.ID
		st.used[candidate.ID] = true
		if st.edgesHold(depth) {
			if err := st.search(depth + 1); err != nil {
				delete(st.used, candidate.ID)
				delete(st.binding, v)
				return err
			}
		}
		delete(st.used, candidate.ID)
		delete(st.binding, v)
	}
	return nil
}

// candidates narrows the scan to neighbours of an already bound variable
// when an edge pattern allows it.
func (st *matchState) candidates(v string) []Node {
	for _, e := range st.edgesAt[indexOf(st.vars, v)] {
		switch {
		case e.To == v && e.From != v:
			if from, ok := st.binding[e.From]; ok {
				return st.neighbours(st.g.out[from], true)
			}
		case e.From == v && e.To != v:
			if to, ok := st.binding[e.To]; ok {
				return st.neighbours(st.g.in[to], false)
			}
		}
	}
	return st.g.nodes
}

func (st *matchState) neighbours(edgeIdx []int, forward bool) []Node {
	out := make([]Node, 0, len(edgeIdx))
	for _, i := range edgeIdx {
		id := st.g.edges[i].From
		if forward {
			id = st.g.edges[i].To
		}
		n, _ := st.g.Node(id)
		out = append(out, n)
	}
	return out
}

func (st *matchState) edgesHold(depth int) bool {
	for _, ep := range st.edgesAt[depth] {
		e, ok := st.g.Edge(st.binding[ep.From], st.binding[ep.To])
		if !ok || !propsMatch(e.Props, ep.Props) {
			return false
		}
	}
	return true
}

func nodeMatches(n Node, np NodePattern) bool {
	if np.Label != "" && n.Label != np.Label {
		return false
	}
	return propsMatch(n.Props, np.Props)
}

func propsMatch(have map[string]interface{}, want map[string]string) bool {
	for k, w := range want {
		v, ok := have[k]
		if !ok || !Matches(v, w) {
			return false
		}
	}
	return true
}

// Matches compares a property value with a wanted string by string form.
// Lists match when any element does.
func Matches(value interface{}, want string) bool {
	switch vs := value.(type) {
	case []interface{}:
		for _, v := range vs {
			if Matches(v, want) {
				return true
			}
		}
		return false
	case []string:
		for _, v := range vs {
			if v == want {
				return true
			}
		}
		return false
	default:
		return fmt.Sprint(value) == want
	}
}

// Validate checks that variables are unique and edges reference declared
// variables.
func Validate(q Query) error {
	declared := make(map[string]bool, len(q.Nodes))
	for _, n := range q.Nodes {
		if n.Var == "" {
			return errors.Invalidf("node pattern without variable")
		}
		if declared[n.Var] {
			return errors.Invalidf("variable %s declared twice", n.Var)
		}
		declared[n.Var] = true
	}
	for _, e := range q.Edges {
		if !declared[e.From] || !declared[e.To] {
			return errors.Invalidf("edge %s -> %s references an undeclared variable", e.From, e.To)
		}
	}
	if q.Limit < 0 {
		return errors.Invalidf("negative limit")
	}
	return nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
