package prov

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/store"
	"github.com/teranos/provgraph/types"
)

const schemasYAML = `
type_urn: urn:op:xform
provenance:
  steps:
    - from_artifacts: [":in"]
      to_artifacts: [":out"]
---
type_urn: urn:op:mill
provenance:
  steps:
    - from_artifacts: [":stock"]
      to_artifacts: [":part"]
    - name: measure
      context: ":part"
      from_artifacts: [""]
      to_artifacts: [":measurement"]
    - name: anneal
      from_artifacts: [":furnace"]
      to_artifacts: [":annealed"]
    - name: receive
      is_source: true
      to_artifacts: [":delivery"]
`

// countingProvider counts schema lookups.
type countingProvider struct {
	schema.Provider
	calls int
}

func (p *countingProvider) GetOperationSchema(ctx context.Context, typeURN string) (*schema.OperationSchema, error) {
	p.calls++
	return p.Provider.GetOperationSchema(ctx, typeURN)
}

func loadSchemas(t *testing.T) *countingProvider {
	t.Helper()
	p := schema.NewMapProvider()
	dec := yaml.NewDecoder(strings.NewReader(schemasYAML))
	for {
		var s schema.OperationSchema
		if err := dec.Decode(&s); err != nil {
			break
		}
		p.Register(&s)
	}
	require.Len(t, p.TypeURNs(), 2)
	return &countingProvider{Provider: p}
}

func attached(kind string, in, out []string) types.AttachmentTransform {
	return types.AttachmentTransform{KindURN: kind, InputArtifacts: in, OutputArtifacts: out}
}

// chainStore: A -> opA -> B -> opB -> C.
func chainStore(t *testing.T) *store.MemStore {
	t.Helper()
	s := store.NewMemStore()
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, s.PutArtifact(ctx, &types.Artifact{ID: id, TypeURN: "urn:part"}))
	}
	require.NoError(t, s.PutOperation(ctx, &types.Operation{ID: "opA", TypeURN: "urn:op:xform", Active: true,
		Attachments: []types.AttachmentTransform{attached(":in", []string{"A"}, nil), attached(":out", nil, []string{"B"})}}))
	require.NoError(t, s.PutOperation(ctx, &types.Operation{ID: "opB", TypeURN: "urn:op:xform", Active: true,
		Attachments: []types.AttachmentTransform{attached(":in", []string{"B"}, nil), attached(":out", nil, []string{"C"})}}))
	return s
}

// inspectionStore: C is assembled from B and D. B is milled from A and
// measured into X; X was made from W and later turned into D. Seeded at C,
// a radius reaches X from B before D's own lineage does.
func inspectionStore(t *testing.T) *store.MemStore {
	t.Helper()
	s := store.NewMemStore()
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C", "D", "W", "X"} {
		require.NoError(t, s.PutArtifact(ctx, &types.Artifact{ID: id, TypeURN: "urn:part"}))
	}
	for _, op := range []*types.Operation{
		{ID: "opC", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			attached(":in", []string{"B", "D"}, nil), attached(":out", nil, []string{"C"}),
		}},
		{ID: "opB", TypeURN: "urn:op:mill", Active: true, Attachments: []types.AttachmentTransform{
			attached(":stock", []string{"A"}, nil),
			attached(":part", nil, []string{"B"}),
			attached(":part.B.:measurement", nil, []string{"X"}),
		}},
		{ID: "opD", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			attached(":in", []string{"X"}, nil), attached(":out", nil, []string{"D"}),
		}},
		{ID: "opX", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			attached(":in", []string{"W"}, nil), attached(":out", nil, []string{"X"}),
		}},
	} {
		require.NoError(t, s.PutOperation(ctx, op))
	}
	return s
}

// millStore: blank A is milled into part B, which is measured (M) and then
// assembled into C. An inactive operation claims to have produced A from X.
func millStore(t *testing.T) *store.MemStore {
	t.Helper()
	s := store.NewMemStore()
	ctx := context.Background()
	artifacts := []*types.Artifact{
		{ID: "A", TypeURN: "urn:part:blank", Tags: []string{"raw"}},
		{ID: "B", TypeURN: "urn:part:milled", Attributes: map[string]interface{}{"serial": "SN-1", "nested": map[string]interface{}{"x": 1}}},
		{ID: "C", TypeURN: "urn:part:assembly"},
		{ID: "M", TypeURN: "urn:data:cmm"},
		{ID: "X", TypeURN: "urn:part:bar"},
	}
	for _, a := range artifacts {
		require.NoError(t, s.PutArtifact(ctx, a))
	}
	ops := []*types.Operation{
		{ID: "op0", TypeURN: "urn:op:mill", Active: false, Attachments: []types.AttachmentTransform{
			attached(":stock", []string{"X"}, nil), attached(":part", nil, []string{"A"}),
		}},
		{ID: "op1", TypeURN: "urn:op:mill", Active: true, Attachments: []types.AttachmentTransform{
			attached(":stock", []string{"A"}, nil),
			attached(":part", nil, []string{"B"}),
			attached(":part.B.:measurement", nil, []string{"M"}),
		}},
		{ID: "op2", TypeURN: "urn:op:xform", Active: true, Attachments: []types.AttachmentTransform{
			attached(":in", []string{"B"}, nil), attached(":out", nil, []string{"C"}),
		}},
	}
	for _, op := range ops {
		require.NoError(t, s.PutOperation(ctx, op))
	}
	return s
}

func newExplorer(t *testing.T, s *store.MemStore, schemas schema.Provider) *Explorer {
	return NewExplorer(s, s, schemas, zaptest.NewLogger(t).Sugar())
}

func artifactIDs(nodes []Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ArtifactID)
	}
	return ids
}
