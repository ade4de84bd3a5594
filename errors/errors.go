// Package errors wraps github.com/cockroachdb/errors for provgraph. Errors
// carry stack traces, and user-facing hints travel with the error so the CLI
// and the MCP tools can print them.
//
//	if err := st.Get(ctx, id); err != nil {
//	    return errors.Wrapf(err, "load artifact %s", id)
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

var (
	New       = crdb.New
	Newf      = crdb.Newf
	Wrap      = crdb.Wrap
	Wrapf     = crdb.Wrapf
	WithStack = crdb.WithStack

	WithHint   = crdb.WithHint
	WithHintf  = crdb.WithHintf
	WithDetail = crdb.WithDetail

	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails

	// GetStack returns the reportable stack trace attached to err, if any.
	GetStack = crdb.GetReportableStackTrace
)

// Sentinels. Wrap them to add the offending id; errors.Is still matches.
var (
	// ErrNotFound: no artifact, operation or config key by that name
	ErrNotFound = New("not found")

	// ErrInvalidRequest: malformed input such as a pattern, point or box
	ErrInvalidRequest = New("invalid request")

	// ErrNoMatchingStrategy: the strategy text names no known strategy
	ErrNoMatchingStrategy = New("no matching strategy")

	// ErrInvalidPathExpr: an attachment path expression failed to compile
	ErrInvalidPathExpr = New("invalid path expression")

	// ErrSchemaNotFound: no operation schema is registered for a type URN
	ErrSchemaNotFound = New("operation schema not found")
)

// ArtifactNotFound reports a missing artifact id.
func ArtifactNotFound(id string) error {
	return crdb.WrapWithDepthf(1, ErrNotFound, "artifact %s", id)
}

// Invalidf wraps ErrInvalidRequest with a formatted description.
func Invalidf(format string, args ...interface{}) error {
	return crdb.WrapWithDepthf(1, ErrInvalidRequest, format, args...)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}
