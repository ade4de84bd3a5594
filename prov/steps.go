package prov

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/provgraph/attach"
	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/types"
)

// Motif attribute keys.
const (
	AttrKind             = "kind"
	AttrArtifactID       = "artifact_id"
	AttrTypeURN          = "type_urn"
	AttrTags             = "tags"
	AttrOperationID      = "operation_id"
	AttrOperationTypeURN = "operation_type_urn"
	AttrStepName         = "step_name"
	AttrContextPath      = "context_path"
	AttrKindURN          = "kind_urn"
	AttrMode             = "mode"
)

// ArtifactLookup fetches an artifact for motif attributes.
type ArtifactLookup func(ctx context.Context, id string) (*types.Artifact, error)

// StepOptions configures BuildStepGraph.
type StepOptions struct {
	// Motif attaches descriptive attributes to nodes and edges. Artifact
	// attributes are only filled when Lookup is set.
	Motif  bool
	Lookup ArtifactLookup
	Logger *zap.SugaredLogger
}

// BuildStepGraph turns one operation's attachments and its schema's step
// declarations into a bipartite artifact/step graph.
//
// Each declaration is instantiated once per attachment node matching its
// context expression (the root when it has none). From and to expressions are
// resolved relative to that node; attachment positions without an artifact
// produce no edges. A declaration that resolves no edges is dropped unless it
// is a source, a sink, or the default step.
func BuildStepGraph(ctx context.Context, op *types.Operation, s *schema.OperationSchema, opts StepOptions) (*Graph, error) {
	log := logger.OrNop(opts.Logger)
	ag := attach.FromTransformList(op.Attachments, log)
	b := &stepBuilder{op: op, ag: ag, opts: opts, g: NewGraph(), log: log}

	for _, decl := range s.Provenance.Steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "build step graph")
		}
		if err := b.instantiate(ctx, decl); err != nil {
			return nil, errors.Wrapf(err, "operation %s step %s", op.ID, decl.StepName())
		}
	}

	log.Debugw("Built step graph",
		logger.FieldOperationID, op.ID,
		logger.FieldTypeURN, op.TypeURN,
		logger.FieldNodes, b.g.Len(),
		logger.FieldEdges, b.g.EdgeCount(),
	)
	return b.g, nil
}

type stepBuilder struct {
	op   *types.Operation
	ag   *attach.Graph
	opts StepOptions
	g    *Graph
	log  *zap.SugaredLogger
}

func (b *stepBuilder) instantiate(ctx context.Context, decl schema.StepDecl) error {
	contexts := []attach.Node{b.ag.Root()}
	if decl.Context != "" {
		found, err := b.ag.FindNodesByPathExpr(decl.Context, nil)
		if err != nil {
			return errors.Wrap(err, "context")
		}
		contexts = found
	}

	name := decl.StepName()
	for _, cn := range contexts {
		from, err := b.resolve(decl.FromArtifacts, cn)
		if err != nil {
			return errors.Wrap(err, "from_artifacts")
		}
		to, err := b.resolve(decl.ToArtifacts, cn)
		if err != nil {
			return errors.Wrap(err, "to_artifacts")
		}

		if len(from) == 0 && len(to) == 0 && !decl.IsSource && !decl.IsSink && name != schema.DefaultStepName {
			b.log.Debugw("Step does not apply",
				logger.FieldOperationID, b.op.ID,
				logger.FieldStep, name,
				logger.FieldContextPath, cn.ArtifactPath(),
			)
			continue
		}

		step := StepNode(b.op.ID, cn.ArtifactPath(), name)
		b.g.AddNode(step, b.stepAttrs(step))
		for _, an := range from {
			artifact := ArtifactNode(an.ArtifactID)
			if err := b.addArtifact(ctx, artifact); err != nil {
				return err
			}
			b.g.AddEdge(artifact, step, an, b.edgeAttrs(an))
		}
		for _, an := range to {
			artifact := ArtifactNode(an.ArtifactID)
			if err := b.addArtifact(ctx, artifact); err != nil {
				return err
			}
			b.g.AddEdge(step, artifact, an, b.edgeAttrs(an))
		}
	}
	return nil
}

// resolve evaluates expressions relative to cn, keeping nodes that carry an
// artifact.
func (b *stepBuilder) resolve(exprs []string, cn attach.Node) ([]attach.Node, error) {
	var out []attach.Node
	for _, expr := range exprs {
		found, err := b.ag.FindNodesByPathExpr(expr, &cn)
		if err != nil {
			return nil, err
		}
		for _, n := range found {
			if n.HasArtifact() {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

func (b *stepBuilder) addArtifact(ctx context.Context, n Node) error {
	if b.g.HasNode(n) {
		return nil
	}
	attrs, err := b.artifactAttrs(ctx, n)
	if err != nil {
		return err
	}
	b.g.AddNode(n, attrs)
	return nil
}

func (b *stepBuilder) artifactAttrs(ctx context.Context, n Node) (Attrs, error) {
	if !b.opts.Motif {
		return nil, nil
	}
	attrs := Attrs{AttrKind: KindArtifact.String(), AttrArtifactID: n.ArtifactID}
	if b.opts.Lookup == nil {
		return attrs, nil
	}
	a, err := b.opts.Lookup(ctx, n.ArtifactID)
	if errors.Is(err, errors.ErrNotFound) {
		b.log.Debugw("Artifact missing for motif attributes", logger.FieldArtifactID, n.ArtifactID)
		return attrs, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "look up artifact %s", n.ArtifactID)
	}
	return ArtifactAttrs(a), nil
}

// ArtifactAttrs summarizes an artifact for pattern matching: id, type, tags
// and its scalar attributes. Attributes never shadow the fixed keys.
func ArtifactAttrs(a *types.Artifact) Attrs {
	attrs := Attrs{
		AttrKind:       KindArtifact.String(),
		AttrArtifactID: a.ID,
		AttrTypeURN:    a.TypeURN,
	}
	if len(a.Tags) > 0 {
		attrs[AttrTags] = append([]string(nil), a.Tags...)
	}
	for k, v := range a.Attributes {
		if _, reserved := attrs[k]; reserved || k == AttrTags {
			continue
		}
		switch v.(type) {
		case string, bool, int, int64, float64:
			attrs[k] = v
		}
	}
	return attrs
}

func (b *stepBuilder) stepAttrs(step Node) Attrs {
	if !b.opts.Motif {
		return nil
	}
	return Attrs{
		AttrKind:             KindStep.String(),
		AttrOperationID:      step.OperationID,
		AttrOperationTypeURN: b.op.TypeURN,
		AttrStepName:         step.StepName,
		AttrContextPath:      step.ContextPath,
	}
}

func (b *stepBuilder) edgeAttrs(an attach.Node) Attrs {
	if !b.opts.Motif {
		return nil
	}
	return Attrs{
		AttrKindURN: an.KindURN(),
		AttrMode:    an.Mode.String(),
	}
}
