// Package types defines the records provgraph reads from its stores: artifacts,
// operations and the flat attachment list operations persist.
package types

// Artifact is a tracked physical or digital object (part, file, measurement).
type Artifact struct {
	ID           string                 `json:"id" yaml:"id"`
	TypeURN      string                 `json:"type_urn" yaml:"type_urn"`
	Tags         []string               `json:"tags,omitempty" yaml:"tags,omitempty"`
	SpatialFrame *SpatialFrame          `json:"spatial_frame,omitempty" yaml:"spatial_frame,omitempty"`
	Attributes   map[string]interface{} `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// ParentFrame returns the id of the artifact whose frame this artifact's frame
// is defined in, or "" for root frames and artifacts without a frame.
func (a *Artifact) ParentFrame() string {
	if a == nil || a.SpatialFrame == nil {
		return ""
	}
	return a.SpatialFrame.ParentFrame
}

// HasTag reports whether the artifact carries tag.
func (a *Artifact) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
