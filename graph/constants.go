package graph

const (
	// Link weight constants
	defaultLinkWeight   = 1.0 // Initial weight for new links
	linkWeightIncrement = 0.5 // Weight increase for duplicate relationships

	// Default color for types without a style
	defaultUntypedColor = "rgba(149, 165, 166, 0.3)" // Transparent gray

	// Node types that are not artifact type URNs
	TypeStep  = "step"
	TypeFrame = "frame"

	// LinkFrameChild joins a parent frame to a frame defined in it
	LinkFrameChild = "frame_child"
)
