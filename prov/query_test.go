package prov

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/pattern"
	"github.com/teranos/provgraph/schema"
)

func TestQueryProvenance(t *testing.T) {
	e := newExplorer(t, millStore(t), loadSchemas(t))
	q, err := pattern.Parse(`
node raw label=artifact type_urn=urn:part:blank tags=raw
node s label=step step_name=:default
node out label=artifact
edge raw s kind_urn=:stock mode=input
edge s out
`)
	require.NoError(t, err)

	res, err := e.QueryProvenance(context.Background(), []string{"C"}, q, mustStrategy(t, "ancestors"), pattern.NewMatcher())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Matches())
	assert.Equal(t, []Node{ArtifactNode("A")}, res.Bindings["raw"])
	assert.Equal(t, []Node{StepNode("op1", "", schema.DefaultStepName)}, res.Bindings["s"])
	assert.Equal(t, []Node{ArtifactNode("B")}, res.Bindings["out"])

	// the materialized graph supports follow-up path queries
	path := ShortestPath(res.Graph, res.Bindings["raw"][0], ArtifactNode("C"))
	require.NotNil(t, path)
	assert.Equal(t, 5, path.Len())
}

func TestToPatternFlattensParallelEdges(t *testing.T) {
	g := NewGraph()
	a, s := ArtifactNode("A"), StepNode("op", "", schema.DefaultStepName)
	in := attachNode([]string{":in"}, "A")
	alt := attachNode([]string{":alt"}, "A")
	g.AddEdge(a, s, in, Attrs{AttrKindURN: ":in"})
	g.AddEdge(a, s, alt, Attrs{AttrKindURN: ":alt"})
	require.Equal(t, 2, g.EdgeCount())

	pg := ToPattern(g)
	require.Len(t, pg.Edges(), 1)
	e, ok := pg.Edge(a.ID(), s.ID())
	require.True(t, ok)
	assert.True(t, pattern.Matches(e.Props[AttrKindURN], ":alt"))

	n, ok := pg.Node(s.ID())
	require.True(t, ok)
	assert.Equal(t, "step", n.Label)
}

type rogueEngine struct{}

func (rogueEngine) Run(context.Context, *pattern.Graph, pattern.Query) (map[string][]string, error) {
	return map[string][]string{"x": {"artifact:ghost"}}, nil
}

type brokenEngine struct{}

func (brokenEngine) Run(context.Context, *pattern.Graph, pattern.Query) (map[string][]string, error) {
	return nil, errors.New("engine down")
}

func TestQueryProvenanceEngineErrors(t *testing.T) {
	e := newExplorer(t, millStore(t), loadSchemas(t))
	ctx := context.Background()
	strategy := mustStrategy(t, "ancestors")

	_, err := e.QueryProvenance(ctx, []string{"C"}, pattern.Query{}, strategy, rogueEngine{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node artifact:ghost")

	_, err = e.QueryProvenance(ctx, []string{"C"}, pattern.Query{}, strategy, brokenEngine{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run pattern query")
}
