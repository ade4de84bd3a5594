package prov

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/store"
	"github.com/teranos/provgraph/types"
)

// Explorer builds lineage graphs across operations. It only reads from its
// stores and holds no state between calls.
type Explorer struct {
	operations store.OperationStore
	artifacts  store.ArtifactStore
	schemas    schema.Provider
	logger     *zap.SugaredLogger
}

// NewExplorer creates an explorer. artifacts may be nil when motif attributes
// are never requested.
func NewExplorer(operations store.OperationStore, artifacts store.ArtifactStore, schemas schema.Provider, log *zap.SugaredLogger) *Explorer {
	return &Explorer{
		operations: operations,
		artifacts:  artifacts,
		schemas:    schemas,
		logger:     logger.OrNop(log).With(logger.FieldComponent, "lineage"),
	}
}

// Options configures one exploration.
type Options struct {
	Motif bool // attach motif attributes for pattern matching
}

// Session is the memo of one exploration: step graphs by operation id,
// schemas by type URN and looked-up artifacts. It must not be shared between
// explorations.
type Session struct {
	explorer  *Explorer
	opts      Options
	steps     map[string]*Graph
	schemas   map[string]*schema.OperationSchema
	artifacts map[string]*types.Artifact
}

// NewSession starts a call-scoped memo.
func (e *Explorer) NewSession(opts Options) *Session {
	return &Session{
		explorer:  e,
		opts:      opts,
		steps:     make(map[string]*Graph),
		schemas:   make(map[string]*schema.OperationSchema),
		artifacts: make(map[string]*types.Artifact),
	}
}

// StepGraph returns the operation's step graph, building it on first use.
// An operation whose schema is unknown contributes an empty graph.
func (s *Session) StepGraph(ctx context.Context, op *types.Operation) (*Graph, error) {
	if g, ok := s.steps[op.ID]; ok {
		return g, nil
	}

	sch, ok := s.schemas[op.TypeURN]
	if !ok {
		var err error
		sch, err = s.explorer.schemas.GetOperationSchema(ctx, op.TypeURN)
		if errors.Is(err, errors.ErrSchemaNotFound) {
			s.explorer.logger.Warnw("No schema for operation type, skipping",
				logger.FieldOperationID, op.ID,
				logger.FieldTypeURN, op.TypeURN,
			)
			sch = nil
		} else if err != nil {
			return nil, errors.Wrapf(err, "schema for %s", op.TypeURN)
		}
		s.schemas[op.TypeURN] = sch
	}

	g := NewGraph()
	if sch != nil {
		var err error
		g, err = BuildStepGraph(ctx, op, sch, StepOptions{
			Motif:  s.opts.Motif,
			Lookup: s.lookup,
			Logger: s.explorer.logger,
		})
		if err != nil {
			return nil, err
		}
	}
	s.steps[op.ID] = g
	return g, nil
}

func (s *Session) lookup(ctx context.Context, id string) (*types.Artifact, error) {
	if a, ok := s.artifacts[id]; ok {
		if a == nil {
			return nil, errors.ArtifactNotFound(id)
		}
		return a, nil
	}
	if s.explorer.artifacts == nil {
		return nil, errors.ArtifactNotFound(id)
	}
	a, err := s.explorer.artifacts.Get(ctx, id)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	s.artifacts[id] = a
	if a == nil {
		return nil, err
	}
	return a, nil
}

// BuildProvenance builds the lineage graph of the given artifacts.
//
// Starting from the seeds, every active operation attaching a frontier
// artifact contributes the ancestor (or descendant) subgraph of that artifact
// in its step graph. Every lineage artifact not yet seen joins the frontier,
// even one a radius expansion already placed in the result; the seen set only
// grows, so the walk terminates. Seeds no active operation attaches
// do not appear in the result.
func (e *Explorer) BuildProvenance(ctx context.Context, artifactIDs []string, strategy Strategy, opts Options) (*Graph, error) {
	start := time.Now()
	session := e.NewSession(opts)
	g := NewGraph()

	frontier := make([]Node, 0, len(artifactIDs))
	seen := make(map[Node]bool, len(artifactIDs))
	for _, id := range artifactIDs {
		n := ArtifactNode(id)
		if !seen[n] {
			seen[n] = true
			frontier = append(frontier, n)
		}
	}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "build provenance")
		}
		next := frontier[0]
		frontier = frontier[1:]

		ops, err := e.operations.ListByAttached(ctx, next.ArtifactID, store.ListOptions{ActiveOnly: true})
		if err != nil {
			return nil, errors.Wrapf(err, "operations attached to %s", next.ArtifactID)
		}
		for i := range ops {
			lineage, err := e.ExtendWithOperation(ctx, session, g, &ops[i], next, strategy)
			if err != nil {
				return nil, err
			}
			for _, n := range lineage {
				if !seen[n] {
					seen[n] = true
					frontier = append(frontier, n)
				}
			}
		}

		if logger.ShouldLogTrace(logger.Verbosity) {
			e.logger.Debugw("Lineage frontier",
				logger.FieldArtifactID, next.ArtifactID,
				logger.FieldFrontier, len(frontier),
				logger.FieldNodes, g.Len(),
			)
		}
	}

	e.logger.Infow("Built provenance graph",
		logger.FieldArtifacts, len(artifactIDs),
		logger.FieldStrategy, strategy.String(),
		logger.FieldNodes, g.Len(),
		logger.FieldEdges, g.EdgeCount(),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return g, nil
}

// ExtendWithOperation merges into g the lineage of node within a single
// operation: node plus its ancestors (or descendants) in the operation's step
// graph. With a radius, every artifact of that lineage also pulls in the
// nodes within Radius hops of it, following edges forward for ancestors and
// backward for descendants. It returns the artifact nodes of the lineage,
// whether or not g already held them; radius nodes are merged but not
// returned.
func (e *Explorer) ExtendWithOperation(ctx context.Context, session *Session, g *Graph, op *types.Operation, node Node, strategy Strategy) ([]Node, error) {
	steps, err := session.StepGraph(ctx, op)
	if err != nil {
		return nil, err
	}
	if !steps.HasNode(node) {
		return nil, nil
	}

	var related []Node
	if strategy.Direction == Ancestors {
		related = steps.Ancestors(node)
	} else {
		related = steps.Descendants(node)
	}
	lineage := steps.Subgraph(append(related, node))
	g.Merge(lineage)

	if strategy.Radius > 0 {
		forward := strategy.Direction == Ancestors
		for _, n := range lineage.ArtifactNodes() {
			near := steps.Within(n, strategy.Radius, forward)
			if len(near) == 0 {
				continue
			}
			g.Merge(steps.Subgraph(append(near, n)))
		}
	}
	return lineage.ArtifactNodes(), nil
}
