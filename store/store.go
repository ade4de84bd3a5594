// Package store provides read access to artifacts and operations, backed by
// SQLite or held in memory. The exploration engine only reads; the write
// methods exist for ingest and tests.
package store

import (
	"context"

	"github.com/teranos/provgraph/types"
)

// ArtifactStore resolves artifacts and frame children.
type ArtifactStore interface {
	// Get returns the artifact or an error wrapping errors.ErrNotFound.
	Get(ctx context.Context, id string) (*types.Artifact, error)
	// ListByParentFrame returns artifacts whose spatial frame is defined in
	// the frame of id, ordered by id.
	ListByParentFrame(ctx context.Context, id string) ([]types.Artifact, error)
}

// ListOptions filters ListByAttached.
type ListOptions struct {
	OutputOnly bool // only operations that produced the artifact
	ActiveOnly bool // skip deactivated operations
}

// OperationStore lists operations by attached artifact.
type OperationStore interface {
	// ListByAttached returns the operations the artifact is attached to,
	// ordered by operation id.
	ListByAttached(ctx context.Context, artifactID string, opts ListOptions) ([]types.Operation, error)
}

// Writer persists artifacts and operations.
type Writer interface {
	PutArtifact(ctx context.Context, a *types.Artifact) error
	PutOperation(ctx context.Context, op *types.Operation) error
}

// Store is the full store surface.
type Store interface {
	ArtifactStore
	OperationStore
	Writer
	Stats(ctx context.Context) (*Stats, error)
}

// Stats summarizes store contents.
type Stats struct {
	Artifacts        int `json:"artifacts"`
	FramedArtifacts  int `json:"framed_artifacts"`
	Operations       int `json:"operations"`
	ActiveOperations int `json:"active_operations"`
	Attachments      int `json:"attachments"`
}

// attachmentRows flattens an operation's attachment list into distinct
// (artifact, direction) pairs.
func attachmentRows(op *types.Operation) [][2]string {
	seen := make(map[[2]string]bool)
	var rows [][2]string
	add := func(ids []string, direction string) {
		for _, id := range ids {
			row := [2]string{id, direction}
			if !seen[row] {
				seen[row] = true
				rows = append(rows, row)
			}
		}
	}
	for _, t := range op.Attachments {
		add(t.InputArtifacts, directionInput)
		add(t.OutputArtifacts, directionOutput)
	}
	return rows
}

const (
	directionInput  = "input"
	directionOutput = "output"
)
