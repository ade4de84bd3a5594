package grapherror

import "github.com/teranos/provgraph/errors"

var categoryMessages = map[Category]string{
	CategoryParse:    "Invalid request - check the strategy, path expression or pattern",
	CategoryQuery:    "Query failed - please try again or narrow the request",
	CategorySchema:   "Operation schema problem - check the schema directory",
	CategoryStorage:  "Storage error - check the database path and try again",
	CategoryGraph:    "Failed to build graph from query results",
	CategoryInternal: "An internal error occurred - please try again",
}

// Subcategories that deserve a sharper message than their category.
var subcategoryMessages = map[Category]map[string]string{
	CategoryParse: {
		SubcategoryParseStrategy: "Unknown exploration strategy",
		SubcategoryParsePathExpr: "Malformed attachment path expression",
	},
	CategoryQuery: {
		SubcategoryQueryNoResults: "Nothing matched",
		SubcategoryQueryCanceled:  "Query canceled",
	},
	CategorySchema: {
		SubcategorySchemaNotFound: "No operation schema for this operation type",
	},
	CategoryStorage: {
		SubcategoryStorageClosed: "Database closed while the query was running",
	},
}

// ToUIMessage returns the message shown to a user: the explicit UserMessage,
// else the subcategory message, else the category default.
func (e *GraphError) ToUIMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if msg, ok := subcategoryMessages[e.Category][e.Subcategory]; ok {
		return msg
	}
	if msg, ok := categoryMessages[e.Category]; ok {
		return msg
	}
	return "An error occurred"
}

// Summary is the one-line report for CLI and tool output. Generic messages
// carry the underlying error so the offending id or expression stays visible.
func (e *GraphError) Summary() string {
	if e.UserMessage != "" || e.Err == nil {
		return e.ToUIMessage()
	}
	return e.ToUIMessage() + ": " + e.Err.Error()
}

// Hints returns the hints attached anywhere in the wrapped chain, minus one
// already promoted to UserMessage.
func (e *GraphError) Hints() []string {
	if e.Err == nil {
		return nil
	}
	var out []string
	for _, h := range errors.GetAllHints(e.Err) {
		if h != e.UserMessage {
			out = append(out, h)
		}
	}
	return out
}

// ToLogFields converts error to structured log fields for logger.Warnw()
func (e *GraphError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_category", e.Category,
		"error_message", e.Error(),
		"user_message", e.ToUIMessage(),
	}
	if e.Subcategory != "" {
		fields = append(fields, "error_subcategory", e.Subcategory)
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}
	return fields
}

// IsCategory checks if the error matches a specific category
func (e *GraphError) IsCategory(cat Category) bool {
	return e.Category == cat
}

// IsSubcategory checks if the error matches a specific subcategory
func (e *GraphError) IsSubcategory(sub string) bool {
	return e.Subcategory == sub
}
