package prov

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/store"
	"github.com/teranos/provgraph/types"
)

func millOperation(t *testing.T, s *store.MemStore) *types.Operation {
	t.Helper()
	ops, err := s.ListByAttached(context.Background(), "M", store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	return &ops[0]
}

func TestBuildStepGraph(t *testing.T) {
	ctx := context.Background()
	s := millStore(t)
	schemas := loadSchemas(t)
	mill, err := schemas.GetOperationSchema(ctx, "urn:op:mill")
	require.NoError(t, err)

	g, err := BuildStepGraph(ctx, millOperation(t, s), mill, StepOptions{Logger: zaptest.NewLogger(t).Sugar()})
	require.NoError(t, err)

	def := StepNode("op1", "", schema.DefaultStepName)
	measure := StepNode("op1", ":part.B", "measure")
	receive := StepNode("op1", "", "receive")

	assert.ElementsMatch(t, []Node{def, measure, receive}, g.StepNodes(),
		"anneal resolves nothing and is dropped; receive is a source and kept")
	assert.ElementsMatch(t, []string{"A", "B", "M"}, artifactIDs(g.ArtifactNodes()))
	assert.Equal(t, 4, g.EdgeCount())

	assert.Equal(t, []Node{ArtifactNode("A")}, g.Predecessors(def))
	assert.Equal(t, []Node{ArtifactNode("B")}, g.Successors(def))
	assert.Equal(t, []Node{ArtifactNode("B")}, g.Predecessors(measure))
	assert.Equal(t, []Node{ArtifactNode("M")}, g.Successors(measure))
	assert.Empty(t, g.Predecessors(receive))
	assert.Empty(t, g.Successors(receive))

	for _, e := range g.Edges() {
		if e.To == measure {
			assert.Equal(t, ":part", e.Label.KindURN(), "edge keyed by the matched attachment node")
			assert.Equal(t, "B", e.Label.ArtifactID)
		}
	}
	assert.Nil(t, g.NodeAttrs(def), "no motif attributes unless requested")
}

func TestBuildStepGraphDefaultStepAlwaysKept(t *testing.T) {
	op := &types.Operation{ID: "op", TypeURN: "urn:op:xform", Attachments: []types.AttachmentTransform{
		attached(":unrelated", []string{"Q"}, nil),
	}}
	sch := &schema.OperationSchema{TypeURN: "urn:op:xform", Provenance: schema.ProvenanceSchema{Steps: []schema.StepDecl{
		{FromArtifacts: []string{":in"}, ToArtifacts: []string{":out"}},
	}}}

	g, err := BuildStepGraph(context.Background(), op, sch, StepOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Node{StepNode("op", "", schema.DefaultStepName)}, g.Nodes())
	assert.Zero(t, g.EdgeCount())
}

func TestBuildStepGraphMotifAttributes(t *testing.T) {
	ctx := context.Background()
	s := millStore(t)
	mill, err := loadSchemas(t).GetOperationSchema(ctx, "urn:op:mill")
	require.NoError(t, err)

	g, err := BuildStepGraph(ctx, millOperation(t, s), mill, StepOptions{Motif: true, Lookup: s.Get})
	require.NoError(t, err)

	a := g.NodeAttrs(ArtifactNode("A"))
	assert.Equal(t, "artifact", a[AttrKind])
	assert.Equal(t, "urn:part:blank", a[AttrTypeURN])
	assert.Equal(t, []string{"raw"}, a[AttrTags])

	b := g.NodeAttrs(ArtifactNode("B"))
	assert.Equal(t, "SN-1", b["serial"])
	assert.NotContains(t, b, "nested", "only scalar attributes are summarized")

	step := g.NodeAttrs(StepNode("op1", ":part.B", "measure"))
	assert.Equal(t, Attrs{
		AttrKind:             "step",
		AttrOperationID:      "op1",
		AttrOperationTypeURN: "urn:op:mill",
		AttrStepName:         "measure",
		AttrContextPath:      ":part.B",
	}, step)

	edge := g.EdgeAttrs(Edge{
		From:  ArtifactNode("A"),
		To:    StepNode("op1", "", schema.DefaultStepName),
		Label: g.Edges()[0].Label,
	})
	assert.Equal(t, Attrs{AttrKindURN: ":stock", AttrMode: "input"}, edge)
}

func TestBuildStepGraphInvalidExpression(t *testing.T) {
	op := &types.Operation{ID: "op", Attachments: []types.AttachmentTransform{attached(":in", []string{"A"}, nil)}}
	sch := &schema.OperationSchema{Provenance: schema.ProvenanceSchema{Steps: []schema.StepDecl{
		{Name: "broken", FromArtifacts: []string{":in..:x"}},
	}}}

	_, err := BuildStepGraph(context.Background(), op, sch, StepOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPathExpr))
	assert.Contains(t, err.Error(), "operation op step broken")
}
