package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/provgraph/frame"
	"github.com/teranos/provgraph/prov"
	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/store"
	"github.com/teranos/provgraph/types"
)

func inFixture(id, typeURN string, tags ...string) *types.Artifact {
	return &types.Artifact{ID: id, TypeURN: typeURN, Tags: tags, SpatialFrame: &types.SpatialFrame{
		ParentFrame: "FX",
		Transform:   types.FrameTransform{Translation: [3]float64{10, 0, 0}},
	}}
}

// blank A is milled into B (mounted on fixture FX), which is assembled into
// C. Probe T is mounted on FX as well; D is milled elsewhere.
func newResolver(t *testing.T) *Resolver {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemStore()
	artifacts := []*types.Artifact{
		{ID: "FX", TypeURN: "urn:fixture", SpatialFrame: &types.SpatialFrame{}},
		{ID: "A", TypeURN: "urn:part:blank"},
		inFixture("B", "urn:part:milled", "serialized"),
		{ID: "C", TypeURN: "urn:part:assembly"},
		inFixture("T", "urn:sensor:probe"),
		inFixture("D", "urn:part:milled"),
	}
	for _, a := range artifacts {
		require.NoError(t, s.PutArtifact(ctx, a))
	}
	for _, op := range []*types.Operation{
		{ID: "op1", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			{KindURN: ":in", InputArtifacts: []string{"A"}},
			{KindURN: ":out", OutputArtifacts: []string{"B"}},
		}},
		{ID: "op2", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			{KindURN: ":in", InputArtifacts: []string{"B"}},
			{KindURN: ":out", OutputArtifacts: []string{"C"}},
		}},
	} {
		require.NoError(t, s.PutOperation(ctx, op))
	}

	schemas := schema.NewMapProvider(&schema.OperationSchema{
		TypeURN: "urn:op:xform",
		Provenance: schema.ProvenanceSchema{Steps: []schema.StepDecl{
			{FromArtifacts: []string{":in"}, ToArtifacts: []string{":out"}},
		}},
	})
	log := zaptest.NewLogger(t).Sugar()
	return New(prov.NewExplorer(s, s, schemas, log), frame.NewBuilder(s, log), s, s, log)
}

// C is assembled from B and D. B is milled from A and measured into X; X was
// made from raw stock W (mounted on FX) and later turned into D.
func newInspectionResolver(t *testing.T) *Resolver {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemStore()
	for _, a := range []*types.Artifact{
		{ID: "FX", TypeURN: "urn:fixture", SpatialFrame: &types.SpatialFrame{}},
		{ID: "A", TypeURN: "urn:part:blank"},
		{ID: "B", TypeURN: "urn:part:milled"},
		{ID: "C", TypeURN: "urn:part:assembly"},
		{ID: "D", TypeURN: "urn:part:milled"},
		{ID: "X", TypeURN: "urn:part:measured"},
		inFixture("W", "urn:part:raw"),
		inFixture("T", "urn:sensor:probe"),
	} {
		require.NoError(t, s.PutArtifact(ctx, a))
	}
	for _, op := range []*types.Operation{
		{ID: "opC", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			{KindURN: ":in", InputArtifacts: []string{"B", "D"}},
			{KindURN: ":out", OutputArtifacts: []string{"C"}},
		}},
		{ID: "opB", TypeURN: "urn:op:mill", Active: true, Attachments: []types.AttachmentTransform{
			{KindURN: ":stock", InputArtifacts: []string{"A"}},
			{KindURN: ":part", OutputArtifacts: []string{"B"}},
			{KindURN: ":part.B.:measurement", OutputArtifacts: []string{"X"}},
		}},
		{ID: "opD", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			{KindURN: ":in", InputArtifacts: []string{"X"}},
			{KindURN: ":out", OutputArtifacts: []string{"D"}},
		}},
		{ID: "opX", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			{KindURN: ":in", InputArtifacts: []string{"W"}},
			{KindURN: ":out", OutputArtifacts: []string{"X"}},
		}},
	} {
		require.NoError(t, s.PutOperation(ctx, op))
	}

	schemas := schema.NewMapProvider(
		&schema.OperationSchema{
			TypeURN: "urn:op:xform",
			Provenance: schema.ProvenanceSchema{Steps: []schema.StepDecl{
				{FromArtifacts: []string{":in"}, ToArtifacts: []string{":out"}},
			}},
		},
		&schema.OperationSchema{
			TypeURN: "urn:op:mill",
			Provenance: schema.ProvenanceSchema{Steps: []schema.StepDecl{
				{FromArtifacts: []string{":stock"}, ToArtifacts: []string{":part"}},
				{Name: "measure", Context: ":part", FromArtifacts: []string{""}, ToArtifacts: []string{":measurement"}},
			}},
		},
	)
	log := zaptest.NewLogger(t).Sugar()
	return New(prov.NewExplorer(s, s, schemas, log), frame.NewBuilder(s, log), s, s, log)
}

func TestNearestRelatedRadiusKeepsLineage(t *testing.T) {
	r := newInspectionResolver(t)
	ctx := context.Background()

	for _, radius := range []int{0, 1, 2} {
		strategy := prov.Strategy{Direction: prov.Ancestors, Radius: radius}
		t.Run(strategy.String(), func(t *testing.T) {
			m, err := r.NearestRelated(ctx, "C", "T", strategy, TypeIs("urn:part:raw"))
			require.NoError(t, err)
			require.NotNil(t, m, "W stays reachable through X's lineage")
			assert.Equal(t, "W", m.Artifact.ID)
			assert.Equal(t, 3, m.Hops)
			assert.Equal(t, []string{"W", "FX", "T"}, m.Path.Nodes())
		})
	}
}

func ancestors() prov.Strategy {
	return prov.Strategy{Direction: prov.Ancestors}
}

func TestNearestRelated(t *testing.T) {
	r := newResolver(t)
	ctx := context.Background()

	t.Run("one ring out", func(t *testing.T) {
		m, err := r.NearestRelated(ctx, "C", "T", ancestors(), TypeIs("urn:part:milled"))
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "B", m.Artifact.ID)
		assert.Equal(t, 1, m.Hops)
		assert.Equal(t, []string{"B", "FX", "T"}, m.Path.Nodes())
	})

	t.Run("start matches itself", func(t *testing.T) {
		m, err := r.NearestRelated(ctx, "B", "T", ancestors(), All(TypeIs("urn:part:milled"), HasTag("serialized")))
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "B", m.Artifact.ID)
		assert.Zero(t, m.Hops)
	})

	t.Run("descendants", func(t *testing.T) {
		m, err := r.NearestRelated(ctx, "A", "FX", prov.Strategy{Direction: prov.Descendants}, HasTag("serialized"))
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "B", m.Artifact.ID)
		assert.Equal(t, []string{"B", "FX"}, m.Path.Nodes())
	})

	t.Run("match without frame path is passed over", func(t *testing.T) {
		m, err := r.NearestRelated(ctx, "C", "T", ancestors(), TypeIs("urn:part:blank"))
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("unrelated artifacts are never candidates", func(t *testing.T) {
		m, err := r.NearestRelated(ctx, "C", "T", ancestors(), func(a *types.Artifact) bool { return a.ID == "D" })
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("All with no predicates matches the start", func(t *testing.T) {
		m, err := r.NearestRelated(ctx, "B", "B", ancestors(), All())
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, []string{"B"}, m.Path.Nodes())
	})
}
