package adapters

import (
	"net/url"
	"strconv"
	"strings"

	"calunga-catalog/internal/types"
)

// djangoLookup maps a backend-agnostic filter operator onto the Pulp
// (Django REST) field-lookup suffix. This table must be kept in
// lockstep with the lookups the upstream API actually supports; the
// filter policy decides which filters reach this serializer at all.
var djangoLookup = map[types.FilterOp]string{
	types.FilterOpEqual:     "",
	types.FilterOpNotEqual:  "__exclude",
	types.FilterOpIn:        "__in",
	types.FilterOpIContains: "__icontains",
	types.FilterOpContains:  "__contains",
	types.FilterOpGt:        "__gt",
	types.FilterOpGte:       "__gte",
	types.FilterOpLt:        "__lt",
	types.FilterOpLte:       "__lte",
}

// SerializeRequestParams translates the backend-agnostic request shape
// into Pulp query parameters: page selection becomes limit/offset, the
// sort becomes an ordering value with a "-" prefix for descending, and
// each filter becomes a field-lookup key. Multi-value filters join
// with commas. A bare equality lookup is an exact match on the literal
// string upstream, so set membership must go through the in lookup.
func SerializeRequestParams(params types.RequestParams) url.Values {
	values := url.Values{}
	if params.Page.PerPage > 0 {
		values.Set("limit", strconv.Itoa(params.Page.PerPage))
		values.Set("offset", strconv.Itoa(params.Page.Offset()))
	}
	if params.Sort != nil && params.Sort.Field != "" {
		ordering := params.Sort.Field
		if params.Sort.Direction == types.SortDescending {
			ordering = "-" + ordering
		}
		values.Set("ordering", ordering)
	}
	for _, filter := range params.Filters {
		if len(filter.Values) == 0 {
			continue
		}
		suffix, ok := djangoLookup[filter.Op]
		if !ok {
			continue
		}
		values.Set(filter.Field+suffix, strings.Join(filter.Values, ","))
	}
	return values
}
