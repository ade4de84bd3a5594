package types

// SpatialFrame places an artifact's coordinate system relative to the frame of
// ParentFrame. An empty ParentFrame marks a root frame.
type SpatialFrame struct {
	ParentFrame string         `json:"parent_frame,omitempty" yaml:"parent_frame,omitempty"`
	Transform   FrameTransform `json:"transform" yaml:"transform"`
}

// FrameTransform expresses the child frame relative to its parent:
// p_parent = R(alpha, beta, gamma) * p_child + translation, where R is the
// intrinsic Z-Y-X Euler rotation in radians.
type FrameTransform struct {
	Translation [3]float64 `json:"translation_xyz" yaml:"translation_xyz"`
	Rotation    [3]float64 `json:"rotation_euler_abg" yaml:"rotation_euler_abg"`
}
