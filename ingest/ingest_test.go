package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/provgraph/errors"
	pgtest "github.com/teranos/provgraph/internal/testing"
	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/store"
)

const fixture = `
artifacts:
  - id: FX
    type_urn: urn:fixture
    spatial_frame:
      transform:
        translation_xyz: [0, 0, 0]
        rotation_euler_abg: [0, 0, 0]
  - id: A
    type_urn: urn:part:blank
    tags: [raw]
  - type_urn: urn:part:milled
    spatial_frame:
      parent_frame: FX
      transform:
        translation_xyz: [1000, 1050, 60]
        rotation_euler_abg: [0, 0, 0]
---
operations:
  - id: op1
    type_urn: urn:op:mill
    active: true
    attachments:
      - kind_urn: ":stock"
        input_artifacts: [A]
      - kind_urn: ":fixture"
        input_artifacts: [FX]
`

func millSchemas() *schema.MapProvider {
	return schema.NewMapProvider(&schema.OperationSchema{
		TypeURN: "urn:op:mill",
		Attachments: schema.AttachmentSchema{ChildKinds: []schema.KindSchema{
			{KindURN: ":stock", Types: []schema.TypeSchema{{TypeURN: "urn:part:blank"}}},
			{KindURN: ":fixture", Types: []schema.TypeSchema{{TypeURN: "urn:fixture"}}},
			{KindURN: ":part", Types: []schema.TypeSchema{{TypeURN: "urn:part:milled"}}},
		}},
	}, &schema.OperationSchema{TypeURN: "urn:op:free"})
}

func sequentialIDs(p *Processor) {
	n := 0
	p.newID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestProcess(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(pgtest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	p := NewProcessor(s, millSchemas(), false, zaptest.NewLogger(t).Sugar())
	sequentialIDs(p)

	result, err := p.Process(ctx, strings.NewReader(fixture))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 3, result.Artifacts)
	assert.Equal(t, 1, result.Operations)
	assert.Equal(t, []string{"gen-1"}, result.Generated)
	assert.False(t, result.EndTime.Before(result.StartTime))

	milled, err := s.Get(ctx, "gen-1")
	require.NoError(t, err)
	assert.Equal(t, "FX", milled.ParentFrame())
	assert.Equal(t, [3]float64{1000, 1050, 60}, milled.SpatialFrame.Transform.Translation)

	ops, err := s.ListByAttached(ctx, "A", store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "op1", ops[0].ID)
}

func TestProcessDryRun(t *testing.T) {
	s := store.NewMemStore()
	p := NewProcessor(s, millSchemas(), true, nil)

	result, err := p.Process(context.Background(), strings.NewReader(fixture))
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 3, result.Artifacts)
	require.Len(t, result.Generated, 1)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Stats{}, *stats)
}

func TestProcessResolvesStoredArtifacts(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	p := NewProcessor(s, millSchemas(), false, nil)
	_, err := p.Process(ctx, strings.NewReader("artifacts:\n  - {id: A, type_urn: urn:part:blank}\n"))
	require.NoError(t, err)

	_, err = p.Process(ctx, strings.NewReader(`
operations:
  - id: op2
    type_urn: urn:op:mill
    attachments:
      - {kind_urn: ":stock", input_artifacts: [A]}
`))
	assert.NoError(t, err)
}

func TestProcessRejects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
		detail   string
	}{
		{
			name:     "malformed yaml",
			input:    "artifacts: [",
			sentinel: errors.ErrInvalidRequest,
		},
		{
			name:     "missing type",
			input:    "operations:\n  - id: op\n",
			sentinel: errors.ErrInvalidRequest,
		},
		{
			name:     "unknown schema",
			input:    "operations:\n  - {id: op, type_urn: urn:op:weld}\n",
			sentinel: errors.ErrSchemaNotFound,
		},
		{
			name: "wrong type at kind",
			input: `
artifacts:
  - {id: P, type_urn: urn:part:milled}
operations:
  - id: op
    type_urn: urn:op:mill
    attachments:
      - {kind_urn: ":stock", input_artifacts: [P]}
`,
			sentinel: errors.ErrInvalidRequest,
			detail:   "artifact P of type urn:part:milled not allowed at :stock",
		},
		{
			name: "unknown artifact",
			input: `
operations:
  - id: op
    type_urn: urn:op:mill
    attachments:
      - {kind_urn: ":stock", input_artifacts: [ghost]}
`,
			sentinel: errors.ErrInvalidRequest,
			detail:   "artifact ghost is unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemStore()
			_, err := NewProcessor(s, millSchemas(), false, zaptest.NewLogger(t).Sugar()).
				Process(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			if tt.detail != "" {
				assert.Contains(t, errors.FlattenDetails(err), tt.detail)
			}

			stats, err := s.Stats(context.Background())
			require.NoError(t, err)
			assert.Zero(t, stats.Artifacts, "nothing is written when validation fails")
		})
	}
}

func TestProcessWithoutSchemas(t *testing.T) {
	s := store.NewMemStore()
	result, err := NewProcessor(s, nil, false, nil).Process(context.Background(),
		strings.NewReader("operations:\n  - {id: op, type_urn: urn:op:anything}\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Operations)
}
