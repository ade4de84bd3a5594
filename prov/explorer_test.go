package prov

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/types"
)

func mustStrategy(t *testing.T, text string) Strategy {
	t.Helper()
	s, err := ParseStrategy(text)
	require.NoError(t, err)
	return s
}

func TestBuildProvenanceIsIdempotent(t *testing.T) {
	e := newExplorer(t, millStore(t), loadSchemas(t))
	ctx := context.Background()

	first, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, "ancestors"), Options{})
	require.NoError(t, err)
	second, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, "ancestors"), Options{})
	require.NoError(t, err)

	assert.ElementsMatch(t, first.Nodes(), second.Nodes())
	assert.ElementsMatch(t, first.Edges(), second.Edges())
}

func TestAncestorDescendantDuality(t *testing.T) {
	e := newExplorer(t, chainStore(t), loadSchemas(t))
	ctx := context.Background()

	up, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, "ancestors"), Options{})
	require.NoError(t, err)
	down, err := e.BuildProvenance(ctx, []string{"A"}, mustStrategy(t, "descendants"), Options{})
	require.NoError(t, err)

	for name, g := range map[string]*Graph{"ancestors of C": up, "descendants of A": down} {
		t.Run(name, func(t *testing.T) {
			assert.ElementsMatch(t, []string{"A", "B", "C"}, artifactIDs(g.ArtifactNodes()))
			assert.Len(t, g.StepNodes(), 2)
			assert.Equal(t, 4, g.EdgeCount())
		})
	}
	assert.ElementsMatch(t, up.Nodes(), down.Nodes())
	assert.ElementsMatch(t, up.Edges(), down.Edges())
}

func TestRadiusPullsInSideBranches(t *testing.T) {
	e := newExplorer(t, millStore(t), loadSchemas(t))
	ctx := context.Background()
	measure := StepNode("op1", ":part.B", "measure")

	plain, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, "ancestors"), Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, artifactIDs(plain.ArtifactNodes()))
	assert.False(t, plain.HasNode(ArtifactNode("M")))
	assert.False(t, plain.HasNode(ArtifactNode("X")), "inactive operations are ignored")

	one, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, "ancestors+1"), Options{})
	require.NoError(t, err)
	assert.True(t, one.HasNode(measure))
	assert.False(t, one.HasNode(ArtifactNode("M")), "radius counts graph hops")

	two, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, "ancestors+2"), Options{})
	require.NoError(t, err)
	assert.True(t, two.HasNode(ArtifactNode("M")))
	assert.Equal(t, []Node{ArtifactNode("M")}, two.Successors(measure))
	assert.Equal(t, plain.EdgeCount()+2, two.EdgeCount())
}

func TestRadiusNeverDropsLineage(t *testing.T) {
	e := newExplorer(t, inspectionStore(t), loadSchemas(t))
	ctx := context.Background()

	plain, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, "ancestors"), Options{})
	require.NoError(t, err)
	want := artifactIDs(plain.ArtifactNodes())
	assert.ElementsMatch(t, []string{"A", "B", "C", "D", "W", "X"}, want)

	for _, text := range []string{"ancestors+1", "ancestors+2", "ancestors+4"} {
		t.Run(text, func(t *testing.T) {
			g, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, text), Options{})
			require.NoError(t, err)
			assert.Subset(t, artifactIDs(g.ArtifactNodes()), want)
			assert.True(t, g.HasNode(ArtifactNode("W")), "X's own ancestors are explored")
		})
	}
}

func TestBuildProvenanceMemoizesSchemas(t *testing.T) {
	schemas := loadSchemas(t)
	e := newExplorer(t, chainStore(t), schemas)

	_, err := e.BuildProvenance(context.Background(), []string{"C"}, mustStrategy(t, "ancestors"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, schemas.calls, "both operations share one type")

	_, err = e.BuildProvenance(context.Background(), []string{"C"}, mustStrategy(t, "ancestors"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, schemas.calls, "memo is per call")
}

func TestBuildProvenanceEdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("unattached seed", func(t *testing.T) {
		e := newExplorer(t, chainStore(t), loadSchemas(t))
		g, err := e.BuildProvenance(ctx, []string{"nowhere"}, mustStrategy(t, "ancestors"), Options{})
		require.NoError(t, err)
		assert.Zero(t, g.Len())
	})

	t.Run("unknown operation type is skipped", func(t *testing.T) {
		s := chainStore(t)
		require.NoError(t, s.PutOperation(ctx, &types.Operation{ID: "opZ", TypeURN: "urn:op:unknown", Active: true,
			Attachments: []types.AttachmentTransform{attached(":in", []string{"C"}, nil), attached(":out", nil, []string{"D"})}}))
		e := newExplorer(t, s, loadSchemas(t))

		g, err := e.BuildProvenance(ctx, []string{"C"}, mustStrategy(t, "descendants"), Options{})
		require.NoError(t, err)
		assert.False(t, g.HasNode(ArtifactNode("D")))
	})

	t.Run("cancelled", func(t *testing.T) {
		e := newExplorer(t, chainStore(t), loadSchemas(t))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.BuildProvenance(cctx, []string{"C"}, mustStrategy(t, "ancestors"), Options{})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestExtendWithOperation(t *testing.T) {
	ctx := context.Background()
	s := millStore(t)
	e := newExplorer(t, s, loadSchemas(t))
	session := e.NewSession(Options{})
	op := millOperation(t, s)
	g := NewGraph()

	lineage, err := e.ExtendWithOperation(ctx, session, g, op, ArtifactNode("B"), mustStrategy(t, "descendants+0"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []Node{ArtifactNode("B"), ArtifactNode("M")}, lineage)
	assert.True(t, g.HasNode(StepNode("op1", ":part.B", "measure")))

	again, err := e.ExtendWithOperation(ctx, session, g, op, ArtifactNode("B"), mustStrategy(t, "descendants"))
	require.NoError(t, err)
	assert.ElementsMatch(t, lineage, again, "nodes already in g are still reported")

	absent, err := e.ExtendWithOperation(ctx, session, g, op, ArtifactNode("C"), mustStrategy(t, "descendants"))
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"ancestors", Strategy{Direction: Ancestors}},
		{"descendants", Strategy{Direction: Descendants}},
		{"ancestors+3", Strategy{Direction: Ancestors, Radius: 3}},
		{" descendants+0 ", Strategy{Direction: Descendants}},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "ancestors+3", Strategy{Direction: Ancestors, Radius: 3}.String())

	for _, bad := range []string{"", "siblings", "ancestors+", "ancestors+-1", "ancestors+x", "Ancestors"} {
		_, err := ParseStrategy(bad)
		assert.True(t, errors.Is(err, errors.ErrNoMatchingStrategy), bad)
	}
	_, err := ParseStrategy("upstream")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestSessionStepGraphPropagatesProviderErrors(t *testing.T) {
	e := NewExplorer(chainStore(t), nil, failingProvider{}, nil)
	session := e.NewSession(Options{})
	_, err := session.StepGraph(context.Background(), &types.Operation{ID: "op", TypeURN: "urn:op:xform"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema for urn:op:xform")
}

type failingProvider struct{}

func (failingProvider) GetOperationSchema(context.Context, string) (*schema.OperationSchema, error) {
	return nil, errors.New("schema registry unavailable")
}
