// Package resolve finds, among the artifacts provenance-related to a starting
// artifact, the nearest one satisfying a predicate that also has a spatial
// frame path to a target.
package resolve

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/frame"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/prov"
	"github.com/teranos/provgraph/store"
	"github.com/teranos/provgraph/types"
)

// Predicate selects candidate artifacts.
type Predicate func(a *types.Artifact) bool

// TypeIs matches artifacts of the given type URN.
func TypeIs(typeURN string) Predicate {
	return func(a *types.Artifact) bool { return a.TypeURN == typeURN }
}

// HasTag matches artifacts carrying tag.
func HasTag(tag string) Predicate {
	return func(a *types.Artifact) bool { return a.HasTag(tag) }
}

// All matches when every predicate does. All() matches everything.
func All(preds ...Predicate) Predicate {
	return func(a *types.Artifact) bool {
		for _, p := range preds {
			if !p(a) {
				return false
			}
		}
		return true
	}
}

// Match is the resolved artifact, how many provenance rings out it was found
// and its frame path to the target.
type Match struct {
	Artifact *types.Artifact
	Hops     int
	Path     *frame.Path
}

// Resolver combines lineage exploration and frame paths.
type Resolver struct {
	explorer   *prov.Explorer
	frames     *frame.Builder
	artifacts  store.ArtifactStore
	operations store.OperationStore
	logger     *zap.SugaredLogger
}

// New creates a resolver.
func New(explorer *prov.Explorer, frames *frame.Builder, artifacts store.ArtifactStore, operations store.OperationStore, log *zap.SugaredLogger) *Resolver {
	return &Resolver{
		explorer:   explorer,
		frames:     frames,
		artifacts:  artifacts,
		operations: operations,
		logger:     logger.OrNop(log).With(logger.FieldComponent, "resolve"),
	}
}

// NearestRelated expands the lineage of fromID ring by ring. Ring 0 is fromID
// itself; ring n holds the artifacts first reached while expanding ring n-1.
// Within a ring, candidates are checked in id order and the first one that
// satisfies pred and has a frame path to targetID wins. It returns nil when
// the lineage is exhausted without a match.
func (r *Resolver) NearestRelated(ctx context.Context, fromID, targetID string, strategy prov.Strategy, pred Predicate) (*Match, error) {
	session := r.explorer.NewSession(prov.Options{})
	g := prov.NewGraph()
	seen := map[string]bool{fromID: true}
	ring := []string{fromID}

	for hops := 0; len(ring) > 0; hops++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "resolve nearest related")
		}
		sort.Strings(ring)

		m, err := r.firstMatch(ctx, ring, targetID, hops, pred)
		if err != nil || m != nil {
			return m, err
		}

		var next []string
		for _, id := range ring {
			ops, err := r.operations.ListByAttached(ctx, id, store.ListOptions{ActiveOnly: true})
			if err != nil {
				return nil, errors.Wrapf(err, "operations attached to %s", id)
			}
			for i := range ops {
				lineage, err := r.explorer.ExtendWithOperation(ctx, session, g, &ops[i], prov.ArtifactNode(id), strategy)
				if err != nil {
					return nil, err
				}
				for _, n := range lineage {
					if !seen[n.ArtifactID] {
						seen[n.ArtifactID] = true
						next = append(next, n.ArtifactID)
					}
				}
			}
		}
		r.logger.Debugw("Expanded provenance ring",
			logger.FieldRadius, hops+1,
			logger.FieldFrontier, len(next),
		)
		ring = next
	}
	return nil, nil
}

func (r *Resolver) firstMatch(ctx context.Context, ring []string, targetID string, hops int, pred Predicate) (*Match, error) {
	for _, id := range ring {
		a, err := r.artifacts.Get(ctx, id)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "load candidate %s", id)
		}
		if !pred(a) {
			continue
		}
		path, err := r.frames.BuildPath(ctx, id, targetID)
		if err != nil {
			return nil, err
		}
		if path == nil {
			continue
		}
		r.logger.Infow("Resolved nearest related artifact",
			logger.FieldArtifactID, id,
			logger.FieldTypeURN, a.TypeURN,
			logger.FieldRadius, hops,
		)
		return &Match{Artifact: a, Hops: hops, Path: path}, nil
	}
	return nil, nil
}
