package store

import (
	"context"
	"sort"
	"sync"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/types"
)

// MemStore implements Store in memory. Records are copied on the way in and
// out so callers cannot alias stored state.
type MemStore struct {
	mu         sync.RWMutex
	artifacts  map[string]types.Artifact
	operations map[string]types.Operation
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		artifacts:  make(map[string]types.Artifact),
		operations: make(map[string]types.Operation),
	}
}

// Get implements ArtifactStore.
func (s *MemStore) Get(ctx context.Context, id string) (*types.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[id]
	if !ok {
		return nil, errors.ArtifactNotFound(id)
	}
	c := copyArtifact(a)
	return &c, nil
}

// ListByParentFrame implements ArtifactStore.
func (s *MemStore) ListByParentFrame(ctx context.Context, id string) ([]types.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Artifact
	for _, a := range s.artifacts {
		if a.SpatialFrame != nil && a.SpatialFrame.ParentFrame == id {
			out = append(out, copyArtifact(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListByAttached implements OperationStore.
func (s *MemStore) ListByAttached(ctx context.Context, artifactID string, opts ListOptions) ([]types.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Operation
	for _, op := range s.operations {
		if opts.ActiveOnly && !op.Active {
			continue
		}
		for _, row := range attachmentRows(&op) {
			if row[0] == artifactID && (!opts.OutputOnly || row[1] == directionOutput) {
				out = append(out, copyOperation(op))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutArtifact implements Writer.
func (s *MemStore) PutArtifact(ctx context.Context, a *types.Artifact) error {
	if a == nil || a.ID == "" {
		return errors.Invalidf("artifact needs an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[a.ID] = copyArtifact(*a)
	return nil
}

// PutOperation implements Writer.
func (s *MemStore) PutOperation(ctx context.Context, op *types.Operation) error {
	if op == nil || op.ID == "" {
		return errors.Invalidf("operation needs an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations[op.ID] = copyOperation(*op)
	return nil
}

// Stats implements Store.
func (s *MemStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := &Stats{Artifacts: len(s.artifacts), Operations: len(s.operations)}
	for _, a := range s.artifacts {
		if a.SpatialFrame != nil {
			st.FramedArtifacts++
		}
	}
	for _, op := range s.operations {
		if op.Active {
			st.ActiveOperations++
		}
		st.Attachments += len(attachmentRows(&op))
	}
	return st, nil
}

func copyArtifact(a types.Artifact) types.Artifact {
	a.Tags = append([]string(nil), a.Tags...)
	if a.SpatialFrame != nil {
		f := *a.SpatialFrame
		a.SpatialFrame = &f
	}
	if a.Attributes != nil {
		attrs := make(map[string]interface{}, len(a.Attributes))
		for k, v := range a.Attributes {
			attrs[k] = v
		}
		a.Attributes = attrs
	}
	return a
}

func copyOperation(op types.Operation) types.Operation {
	attachments := make([]types.AttachmentTransform, len(op.Attachments))
	for i, t := range op.Attachments {
		t.InputArtifacts = append([]string(nil), t.InputArtifacts...)
		t.OutputArtifacts = append([]string(nil), t.OutputArtifacts...)
		attachments[i] = t
	}
	op.Attachments = attachments
	return op
}
