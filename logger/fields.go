package logger

import (
	"go.uber.org/zap"
)

// Field names shared by every structured log call.
const (
	// Identity
	FieldArtifactID  = "artifact_id"
	FieldOperationID = "operation_id"
	FieldTypeURN     = "type_urn"

	// Attachments and steps
	FieldKindPath    = "kind_path"
	FieldKindURN     = "kind_urn"
	FieldContextPath = "context_path"
	FieldStep        = "step"
	FieldExpr        = "expr"

	// Exploration
	FieldStrategy = "strategy"
	FieldRadius   = "radius"
	FieldFrontier = "frontier"

	// Components
	FieldComponent = "component"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount     = "count"
	FieldNodes     = "nodes"
	FieldEdges     = "edges"
	FieldArtifacts = "artifacts"
	FieldSteps     = "steps"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)

// ComponentLogger returns Logger named for one component, for passing into
// constructors such as app.Open.
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
