package graph

import (
	"fmt"

	"github.com/teranos/provgraph/frame"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/prov"
)

// FromProvenance renders a provenance graph. Artifact nodes are typed by
// their type URN when the graph carries motif attributes and "untyped"
// otherwise; step nodes are typed "step". Links are typed by the attachment
// kind URN of the edge label.
func (b *Builder) FromProvenance(g *prov.Graph, description string) *Graph {
	a := b.newAssembly()
	for _, n := range g.Nodes() {
		attrs := g.NodeAttrs(n)
		if n.IsStep() {
			node := a.addNode(n.ID(), KindStep, TypeStep, fmt.Sprintf("%s/%s", n.OperationID, n.StepName))
			node.OperationID = n.OperationID
			node.Step = n.StepName
			node.Metadata = metadataFrom(attrs)
			continue
		}
		nodeType := "untyped"
		if t, ok := attrs[prov.AttrTypeURN].(string); ok && t != "" {
			nodeType = t
		}
		node := a.addNode(n.ID(), KindArtifact, nodeType, n.ArtifactID)
		node.ArtifactID = n.ArtifactID
		node.Metadata = metadataFrom(attrs)
	}
	for _, e := range g.Edges() {
		kind := e.Label.KindURN()
		a.addLink(e.From.ID(), e.To.ID(), kind, kind)
	}

	graph := a.finish("provenance", description)
	b.logger.Debugw("Rendered provenance graph",
		logger.FieldNodes, graph.Meta.Stats.TotalNodes,
		logger.FieldEdges, graph.Meta.Stats.TotalEdges,
	)
	return graph
}

// FromFrames renders a frame graph. Links run from parent frame to child
// frame and are labeled with the child's translation.
func (b *Builder) FromFrames(g *frame.Graph, description string) *Graph {
	a := b.newAssembly()
	for _, id := range g.Nodes() {
		a.addNode(id, KindFrame, TypeFrame, id).ArtifactID = id
	}
	for _, e := range g.Edges() {
		pose := e.Frame.Transform
		t := pose.Translation
		a.addLink(e.Parent, e.Child, LinkFrameChild, fmt.Sprintf("t=(%g, %g, %g)", t[0], t[1], t[2]))
		a.addNode(e.Child, KindFrame, TypeFrame, e.Child).Pose = &pose
	}

	graph := a.finish("frames", description)
	b.logger.Debugw("Rendered frame graph",
		logger.FieldNodes, graph.Meta.Stats.TotalNodes,
		logger.FieldEdges, graph.Meta.Stats.TotalEdges,
	)
	return graph
}
