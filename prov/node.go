// Package prov builds provenance graphs: per-operation step graphs derived
// from attachments and schema step declarations, and cross-operation lineage
// merged from them.
package prov

import (
	"github.com/teranos/provgraph/attach"
)

// NodeKind distinguishes the two sides of the bipartite provenance graph.
type NodeKind int

const (
	KindArtifact NodeKind = iota
	KindStep
)

func (k NodeKind) String() string {
	if k == KindStep {
		return "step"
	}
	return "artifact"
}

// Node is either an artifact (identified by id alone) or an operation step
// (identified by operation, context path and step name). Node is comparable.
type Node struct {
	Kind        NodeKind
	ArtifactID  string
	OperationID string
	ContextPath string
	StepName    string
}

// ArtifactNode returns the artifact node for id.
func ArtifactNode(id string) Node {
	return Node{Kind: KindArtifact, ArtifactID: id}
}

// StepNode returns the step node of an operation instantiated under the
// attachment node at contextPath.
func StepNode(operationID, contextPath, stepName string) Node {
	return Node{Kind: KindStep, OperationID: operationID, ContextPath: contextPath, StepName: stepName}
}

// IsArtifact reports whether n is an artifact node.
func (n Node) IsArtifact() bool { return n.Kind == KindArtifact }

// IsStep reports whether n is a step node.
func (n Node) IsStep() bool { return n.Kind == KindStep }

// ID is a stable string identity, used when exporting the graph.
func (n Node) ID() string {
	if n.IsArtifact() {
		return "artifact:" + n.ArtifactID
	}
	return "step:" + n.OperationID + "/" + n.ContextPath + "/" + n.StepName
}

func (n Node) String() string {
	return n.ID()
}

// Edge links an artifact and a step. Label is the attachment node the edge
// was resolved from; parallel edges between the same pair differ by label.
type Edge struct {
	From  Node
	To    Node
	Label attach.Node
}

type edgeKey struct {
	from, to int
	label    attach.NodeKey
}
