package attach

import (
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/provgraph/types"
)

// FromTransformList parses an operation's persisted attachment list.
func FromTransformList(transforms []types.AttachmentTransform, log *zap.SugaredLogger) *Graph {
	g := New(log)

	var pending []Node
	for _, t := range transforms {
		kindPath := SplitKindURN(t.KindURN)
		g.declareKind(t.KindURN, kindPath, t.Parameters)
		for _, id := range t.InputArtifacts {
			pending = append(pending, Node{KindPath: kindPath, ArtifactID: id, Mode: ModeInput})
		}
		for _, id := range t.OutputArtifacts {
			pending = append(pending, Node{KindPath: kindPath, ArtifactID: id, Mode: ModeOutput})
		}
	}

	// Parents sort before their children, so every parent is registered by the
	// time a child links.
	sort.SliceStable(pending, func(i, j int) bool {
		return comparePaths(pending[i].KindPath, pending[j].KindPath) < 0
	})
	for _, n := range pending {
		g.BuildNode(n.KindPath, n.ArtifactID, n.Mode)
	}
	return g
}

func (g *Graph) declareKind(urn string, path []string, params interface{}) {
	if k, ok := g.kinds[urn]; ok {
		if k.parameters == nil {
			k.parameters = params
		}
		return
	}
	g.kinds[urn] = &kindEntry{path: path, parameters: params}
}

// ToTransformList renders the graph back to the persisted format: one
// transform per kind URN in ascending order, artifacts in discovery order.
func (g *Graph) ToTransformList() []types.AttachmentTransform {
	byKind := make(map[string]*types.AttachmentTransform)
	for urn, k := range g.kinds {
		byKind[urn] = &types.AttachmentTransform{
			KindURN:         urn,
			InputArtifacts:  []string{},
			OutputArtifacts: []string{},
			Parameters:      k.parameters,
		}
	}

	for i, n := range g.nodes {
		if !g.alive[i] || n.IsRoot() {
			continue
		}
		urn := n.KindURN()
		t, ok := byKind[urn]
		if !ok {
			t = &types.AttachmentTransform{KindURN: urn, InputArtifacts: []string{}, OutputArtifacts: []string{}}
			byKind[urn] = t
		}
		if !n.HasArtifact() {
			continue
		}
		if n.Mode == ModeInput {
			t.InputArtifacts = append(t.InputArtifacts, n.ArtifactID)
		} else {
			t.OutputArtifacts = append(t.OutputArtifacts, n.ArtifactID)
		}
	}

	urns := make([]string, 0, len(byKind))
	for urn := range byKind {
		urns = append(urns, urn)
	}
	sort.Strings(urns)

	list := make([]types.AttachmentTransform, 0, len(urns))
	for _, urn := range urns {
		list = append(list, *byKind[urn])
	}
	return list
}
