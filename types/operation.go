package types

// Operation is a process instance that consumed and produced artifacts.
type Operation struct {
	ID          string                 `json:"id" yaml:"id"`
	TypeURN     string                 `json:"type_urn" yaml:"type_urn"`
	Active      bool                   `json:"active" yaml:"active"`
	Attachments []AttachmentTransform  `json:"attachments" yaml:"attachments"`
	Parameters  map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// AttachmentTransform is one entry of an operation's persisted attachment list:
// the artifacts attached at kind position KindURN, by direction.
type AttachmentTransform struct {
	KindURN         string      `json:"kind_urn" yaml:"kind_urn"`
	InputArtifacts  []string    `json:"input_artifacts" yaml:"input_artifacts"`
	OutputArtifacts []string    `json:"output_artifacts" yaml:"output_artifacts"`
	Parameters      interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// AttachedIDs returns every artifact id attached by the operation, in list
// order, without duplicates. When outputOnly is set only outputs are returned.
func (o *Operation) AttachedIDs(outputOnly bool) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(list []string) {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	for _, t := range o.Attachments {
		if !outputOnly {
			add(t.InputArtifacts)
		}
		add(t.OutputArtifacts)
	}
	return ids
}
