package grapherror

// Category represents the main error category for graph operations
type Category string

const (
	// CategoryParse indicates a strategy, path expression or pattern could not be parsed
	CategoryParse Category = "parse"

	// CategoryQuery indicates lineage, frame or pattern evaluation failed
	CategoryQuery Category = "query"

	// CategorySchema indicates an operation schema problem
	CategorySchema Category = "schema"

	// CategoryStorage indicates the artifact or operation store failed
	CategoryStorage Category = "storage"

	// CategoryInternal indicates internal errors
	CategoryInternal Category = "internal"

	// CategoryGraph indicates graph building/rendering errors
	CategoryGraph Category = "graph"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Parse Subcategories
const (
	// SubcategoryParseStrategy indicates an exploration strategy string was not recognized
	SubcategoryParseStrategy = "strategy"

	// SubcategoryParsePathExpr indicates an attachment path expression was malformed
	SubcategoryParsePathExpr = "path_expr"

	// SubcategoryParseInvalidValue indicates an invalid request value
	SubcategoryParseInvalidValue = "invalid_value"
)

// Query Subcategories
const (
	// SubcategoryQueryTimeout indicates the query ran past its deadline
	SubcategoryQueryTimeout = "timeout"

	// SubcategoryQueryCanceled indicates the caller canceled the query
	SubcategoryQueryCanceled = "canceled"

	// SubcategoryQueryNoResults indicates a requested record does not exist (not necessarily an error)
	SubcategoryQueryNoResults = "no_results"
)

// Schema Subcategories
const (
	// SubcategorySchemaNotFound indicates no schema matches an operation type
	SubcategorySchemaNotFound = "not_found"
)

// Storage Subcategories
const (
	// SubcategoryStorageClosed indicates the database was closed underneath the query
	SubcategoryStorageClosed = "closed"

	// SubcategoryStorageBusy indicates SQLite reported a lock held by another connection
	SubcategoryStorageBusy = "busy"
)

// Graph Subcategories
const (
	// SubcategoryGraphEmpty indicates graph is empty (not necessarily an error)
	SubcategoryGraphEmpty = "empty"
)
