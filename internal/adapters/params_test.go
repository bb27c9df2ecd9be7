package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"calunga-catalog/internal/types"
)

func TestSerializeRequestParamsPagination(t *testing.T) {
	values := SerializeRequestParams(types.RequestParams{
		Page: types.Page{Number: 2, PerPage: 50},
	})
	assert.Equal(t, "50", values.Get("limit"))
	assert.Equal(t, "50", values.Get("offset"))
}

func TestSerializeRequestParamsFirstPage(t *testing.T) {
	values := SerializeRequestParams(types.RequestParams{
		Page: types.Page{Number: 1, PerPage: 25},
	})
	assert.Equal(t, "25", values.Get("limit"))
	assert.Equal(t, "0", values.Get("offset"))
}

func TestSerializeRequestParamsSortDescending(t *testing.T) {
	values := SerializeRequestParams(types.RequestParams{
		Sort: &types.Sort{Field: "name", Direction: types.SortDescending},
	})
	assert.Equal(t, "-name", values.Get("ordering"))
}

func TestSerializeRequestParamsSortAscending(t *testing.T) {
	values := SerializeRequestParams(types.RequestParams{
		Sort: &types.Sort{Field: "version", Direction: types.SortAscending},
	})
	assert.Equal(t, "version", values.Get("ordering"))
}

func TestSerializeRequestParamsFilterLookups(t *testing.T) {
	tests := []struct {
		op  types.FilterOp
		key string
	}{
		{types.FilterOpEqual, "name"},
		{types.FilterOpNotEqual, "name__exclude"},
		{types.FilterOpIn, "name__in"},
		{types.FilterOpIContains, "name__icontains"},
		{types.FilterOpContains, "name__contains"},
		{types.FilterOpGt, "name__gt"},
		{types.FilterOpGte, "name__gte"},
		{types.FilterOpLt, "name__lt"},
		{types.FilterOpLte, "name__lte"},
	}
	for _, tt := range tests {
		values := SerializeRequestParams(types.RequestParams{
			Filters: []types.Filter{{Field: "name", Op: tt.op, Values: []string{"foo"}}},
		})
		assert.Equal(t, "foo", values.Get(tt.key), "operator %q", tt.op)
	}
}

func TestSerializeRequestParamsMultiValueJoinsWithCommas(t *testing.T) {
	values := SerializeRequestParams(types.RequestParams{
		Filters: []types.Filter{{Field: "version", Op: types.FilterOpEqual, Values: []string{"1.0.0", "2.0.0"}}},
	})
	assert.Equal(t, "1.0.0,2.0.0", values.Get("version"))
}

// Django's bare name lookup is an exact match on the literal string,
// so a set of names has to go out as name__in, never as a comma-joined
// name value.
func TestSerializeRequestParamsNameSetUsesInLookup(t *testing.T) {
	values := SerializeRequestParams(types.RequestParams{
		Filters: []types.Filter{{Field: "name", Op: types.FilterOpIn, Values: []string{"requests", "flask"}}},
	})
	assert.Equal(t, "requests,flask", values.Get("name__in"))
	assert.Empty(t, values.Get("name"))
}

func TestSerializeRequestParamsSkipsEmptyAndUnknown(t *testing.T) {
	values := SerializeRequestParams(types.RequestParams{
		Filters: []types.Filter{
			{Field: "name", Op: types.FilterOpEqual},
			{Field: "name", Op: types.FilterOp("??"), Values: []string{"x"}},
		},
	})
	assert.Empty(t, values)
}
