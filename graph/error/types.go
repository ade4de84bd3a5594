package grapherror

import (
	"context"

	"github.com/teranos/provgraph/db"
	"github.com/teranos/provgraph/errors"
)

// GraphError is an error classified for display. The CLI and the MCP tools
// both report through it so a failure reads the same in either place.
type GraphError struct {
	Err         error
	Category    Category
	Subcategory string
	UserMessage string                 // overrides the category message when set
	Context     map[string]interface{} // logged, never shown
}

func (e *GraphError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMessage
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// New classifies err under category.
func New(category Category, err error, userMsg string) *GraphError {
	return &GraphError{Err: err, Category: category, UserMessage: userMsg}
}

// Newf classifies a new error built from format.
func Newf(category Category, userMsg, format string, args ...interface{}) *GraphError {
	return New(category, errors.Newf(format, args...), userMsg)
}

func (e *GraphError) WithSubcategory(sub string) *GraphError {
	e.Subcategory = sub
	return e
}

// WithContext records a key-value pair for the log line.
func (e *GraphError) WithContext(key string, value interface{}) *GraphError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Classify wraps err in a GraphError whose category follows the sentinel it
// carries. An existing GraphError is returned as is; nil stays nil.
func Classify(err error) *GraphError {
	if err == nil {
		return nil
	}
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge
	}

	switch {
	case errors.Is(err, errors.ErrNoMatchingStrategy):
		return New(CategoryParse, err, hintOr(err, "")).WithSubcategory(SubcategoryParseStrategy)
	case errors.Is(err, errors.ErrInvalidPathExpr):
		return New(CategoryParse, err, "").WithSubcategory(SubcategoryParsePathExpr)
	case errors.Is(err, errors.ErrInvalidRequest):
		return New(CategoryParse, err, "").WithSubcategory(SubcategoryParseInvalidValue)
	case errors.Is(err, errors.ErrSchemaNotFound):
		return New(CategorySchema, err, "").WithSubcategory(SubcategorySchemaNotFound)
	case errors.Is(err, errors.ErrNotFound):
		return New(CategoryQuery, err, "").WithSubcategory(SubcategoryQueryNoResults)
	case errors.Is(err, context.DeadlineExceeded):
		return New(CategoryQuery, err, "Query timed out - narrow the strategy or raise explore.timeout_seconds").WithSubcategory(SubcategoryQueryTimeout)
	case errors.Is(err, context.Canceled):
		return New(CategoryQuery, err, "").WithSubcategory(SubcategoryQueryCanceled)
	case db.IsBusy(err):
		return New(CategoryStorage, err, "Database is busy - another provgraph process holds a lock; retry").WithSubcategory(SubcategoryStorageBusy)
	case db.IsDatabaseClosed(err):
		return New(CategoryStorage, err, "").WithSubcategory(SubcategoryStorageClosed)
	}
	return New(CategoryInternal, err, "")
}

func hintOr(err error, fallback string) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return fallback
}
