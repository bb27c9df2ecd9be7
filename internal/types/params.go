package types

// FilterOp is a backend-agnostic filter operator. The Pulp serializer
// maps each operator onto a Django field-lookup suffix; operators the
// upstream cannot evaluate for a given field are applied client-side.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="
	FilterOpNotEqual  FilterOp = "!="
	FilterOpIn        FilterOp = "in"
	FilterOpIContains FilterOp = "~"
	FilterOpContains  FilterOp = "~~"
	FilterOpGt        FilterOp = ">"
	FilterOpGte       FilterOp = ">="
	FilterOpLt        FilterOp = "<"
	FilterOpLte       FilterOp = "<="
)

// SortDirection orders a sort field ascending or descending.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Filter matches a single field against one or more values. Multiple
// values are joined with commas when serialized for Pulp.
type Filter struct {
	Field  string
	Op     FilterOp
	Values []string
}

// Sort names a field and a direction.
type Sort struct {
	Field     string
	Direction SortDirection
}

// Page is a 1-based page selection.
type Page struct {
	Number  int
	PerPage int
}

// Offset returns the zero-based item offset of the page start.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.PerPage
}

// RequestParams is the backend-agnostic filter/sort/page triple used by
// every catalog operation. It is independent of the upstream wire
// representation; per-backend serializers translate it.
type RequestParams struct {
	Filters []Filter
	Sort    *Sort
	Page    Page
}
