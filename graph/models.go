package graph

import (
	"time"

	"github.com/teranos/provgraph/types"
)

// Node kinds
const (
	KindArtifact = "artifact"
	KindStep     = "step"
	KindFrame    = "frame"
)

// Graph is the node/link document handed to D3 force-layout viewers.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Meta  Meta   `json:"meta"`
}

// Node is an artifact, an operation step or a spatial frame. Type is the
// artifact type URN ("untyped" without motif attributes), "step" or "frame"
// and selects the node style.
type Node struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Type  string `json:"type"`
	Label string `json:"label"`
	Group int    `json:"group,omitempty"`

	ArtifactID  string `json:"artifact_id,omitempty"`
	OperationID string `json:"operation_id,omitempty"`
	Step        string `json:"step,omitempty"`

	// Pose places a frame node in its parent frame
	Pose *types.FrameTransform `json:"pose,omitempty"`

	// Metadata holds motif attributes not already shown above
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Link is a provenance edge typed by attachment kind URN, or a frame_child
// edge from parent frame to child frame.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"value"` // D3 reads "value"
	Label  string  `json:"label,omitempty"`
}

// Meta describes how the graph was produced and which styles apply.
type Meta struct {
	GeneratedAt       time.Time              `json:"generated_at"`
	Source            string                 `json:"source"` // "provenance" or "frames"
	Description       string                 `json:"description,omitempty"`
	Stats             Stats                  `json:"stats"`
	NodeTypes         []NodeTypeInfo         `json:"node_types"`
	RelationshipTypes []RelationshipTypeInfo `json:"relationship_types"`
}

// NodeTypeInfo is the legend entry for one node type present in the graph.
type NodeTypeInfo struct {
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Color   string   `json:"color,omitempty"`
	Count   int      `json:"count,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
}

// RelationshipTypeInfo is the legend and force settings for one link type.
type RelationshipTypeInfo struct {
	Type         string   `json:"type"`
	Label        string   `json:"label"`
	Color        string   `json:"color,omitempty"`
	LinkDistance *float64 `json:"link_distance,omitempty"`
	LinkStrength *float64 `json:"link_strength,omitempty"`
	Count        int      `json:"count,omitempty"`
}

type Stats struct {
	TotalNodes int `json:"total_nodes,omitempty"`
	TotalEdges int `json:"total_edges,omitempty"`
}
