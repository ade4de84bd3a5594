// Package schema describes operation types: the attachment kinds an operation
// may carry and the provenance steps that link its consumed artifacts to the
// ones it produced.
package schema

import (
	"context"
)

// DefaultStepName names steps declared without a name.
const DefaultStepName = ":default"

// OperationSchema is the declarative description of one operation type.
type OperationSchema struct {
	TypeURN     string           `yaml:"type_urn" json:"type_urn"`
	Version     string           `yaml:"version,omitempty" json:"version,omitempty"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Attachments AttachmentSchema `yaml:"attachments" json:"attachments"`
	Provenance  ProvenanceSchema `yaml:"provenance" json:"provenance"`
}

// AttachmentSchema is the root of the kind tree.
type AttachmentSchema struct {
	ChildKinds []KindSchema `yaml:"child_kinds" json:"child_kinds"`
}

// KindSchema is one attachment position. Each allowed artifact type may open
// further child kinds beneath the attached artifact.
type KindSchema struct {
	KindURN string       `yaml:"kind_urn" json:"kind_urn"`
	Types   []TypeSchema `yaml:"types" json:"types"`
}

// TypeSchema is an artifact type allowed at a kind.
type TypeSchema struct {
	TypeURN    string       `yaml:"type_urn" json:"type_urn"`
	ChildKinds []KindSchema `yaml:"child_kinds,omitempty" json:"child_kinds,omitempty"`
}

// ProvenanceSchema lists step declarations in order.
type ProvenanceSchema struct {
	Steps []StepDecl `yaml:"steps" json:"steps"`
}

// StepDecl declares a provenance step. Context is an absolute path expression
// selecting the attachment nodes the step is instantiated under; artifact
// expressions are evaluated relative to each such node.
type StepDecl struct {
	Name          string   `yaml:"name,omitempty" json:"name,omitempty"`
	Context       string   `yaml:"context,omitempty" json:"context,omitempty"`
	FromArtifacts []string `yaml:"from_artifacts,omitempty" json:"from_artifacts,omitempty"`
	ToArtifacts   []string `yaml:"to_artifacts,omitempty" json:"to_artifacts,omitempty"`
	IsSource      bool     `yaml:"is_source,omitempty" json:"is_source,omitempty"`
	IsSink        bool     `yaml:"is_sink,omitempty" json:"is_sink,omitempty"`
}

// StepName returns the declared name or DefaultStepName.
func (d StepDecl) StepName() string {
	if d.Name == "" {
		return DefaultStepName
	}
	return d.Name
}

// Provider resolves operation schemas by type URN.
type Provider interface {
	GetOperationSchema(ctx context.Context, typeURN string) (*OperationSchema, error)
}
