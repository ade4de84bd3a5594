// Package attach models the attachments of a single operation as a
// path-addressable multigraph and converts it to and from the flat transform
// list operations are persisted with.
package attach

import (
	"strings"
)

// Mode is the direction an artifact is attached to an operation with.
type Mode int

const (
	ModeInput Mode = iota
	ModeOutput
)

func (m Mode) String() string {
	if m == ModeInput {
		return "input"
	}
	return "output"
}

// Relation labels attachment edges.
type Relation int

// RelationChild: the target's kind path is the source's full path plus one segment.
const RelationChild Relation = iota

func (r Relation) String() string {
	return "child"
}

// PathSeparator joins kind path segments in kind URNs and artifact paths.
const PathSeparator = "."

// Node is an artifact attached at a kind-path position of an operation.
// Nodes are values: two nodes with the same kind path, artifact id and mode
// are the same node.
type Node struct {
	KindPath   []string
	ArtifactID string // "" when the position carries no artifact
	Mode       Mode
}

// NodeKey is the comparable identity of a Node.
type NodeKey struct {
	Kind       string
	ArtifactID string
	Mode       Mode
}

// keySeparator cannot occur in kind segments, which come from splitting on ".".
const keySeparator = "\x1f"

// Key returns the node's comparable identity.
func (n Node) Key() NodeKey {
	return NodeKey{
		Kind:       strings.Join(n.KindPath, keySeparator),
		ArtifactID: n.ArtifactID,
		Mode:       n.Mode,
	}
}

// Equal reports structural equality.
func (n Node) Equal(o Node) bool {
	return n.Key() == o.Key()
}

// IsRoot reports whether n is the synthetic root node.
func (n Node) IsRoot() bool {
	return len(n.KindPath) == 0 && n.ArtifactID == "" && n.Mode == ModeOutput
}

// HasArtifact reports whether an artifact is attached at this position.
func (n Node) HasArtifact() bool {
	return n.ArtifactID != ""
}

// KindURN is the dotted kind path.
func (n Node) KindURN() string {
	return strings.Join(n.KindPath, PathSeparator)
}

// FullPath is the kind path followed by the artifact id, when there is one.
// A child's kind path is its parent's full path plus one segment.
func (n Node) FullPath() []string {
	full := make([]string, 0, len(n.KindPath)+1)
	full = append(full, n.KindPath...)
	if n.ArtifactID != "" {
		full = append(full, n.ArtifactID)
	}
	return full
}

// ArtifactPath is the dotted full path; "" for the root.
func (n Node) ArtifactPath() string {
	return strings.Join(n.FullPath(), PathSeparator)
}

func (n Node) String() string {
	if n.IsRoot() {
		return "<root>"
	}
	return n.ArtifactPath() + "(" + n.Mode.String() + ")"
}

// RootNode returns the synthetic root every operation's attachment tree hangs from.
func RootNode() Node {
	return Node{Mode: ModeOutput}
}

// SplitKindURN splits a kind URN into its kind path. The empty URN is the empty path.
func SplitKindURN(kindURN string) []string {
	if kindURN == "" {
		return nil
	}
	return strings.Split(kindURN, PathSeparator)
}

func comparePaths(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
