package core

import (
	"sort"
	"strings"

	"calunga-catalog/internal/types"
)

// Refined is the result of applying local filters, sorting, and
// pagination to a deduplicated working set.
type Refined struct {
	// Items is the slice for the requested page.
	Items []types.PackageContent

	// Total is the number of items after filtering, before slicing.
	Total int
}

// Refine applies the residual (not upstream-evaluable) filters, the
// requested sort, and pagination slicing to an already deduplicated
// working set. It is a pure derivation: the input slice is not
// mutated, and calling it again on the same inputs yields the same
// output regardless of how the working set was accumulated.
func Refine(items []types.PackageContent, params types.RequestParams) Refined {
	filtered := ApplyFilters(items, params.Filters)
	sorted := SortPackages(filtered, params.Sort)
	page, total := PaginateSlice(sorted, params.Page)
	return Refined{Items: page, Total: total}
}

// ApplyFilters keeps the items matching every filter. Multiple values
// within one filter match as alternatives. Filters on fields the
// matcher does not know are ignored rather than dropping everything.
func ApplyFilters(items []types.PackageContent, filters []types.Filter) []types.PackageContent {
	if len(filters) == 0 {
		return items
	}
	out := make([]types.PackageContent, 0, len(items))
	for _, item := range items {
		if matchesAll(item, filters) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll(item types.PackageContent, filters []types.Filter) bool {
	for _, filter := range filters {
		if len(filter.Values) == 0 {
			continue
		}
		if filter.Field == "classifiers" {
			if !matchesClassifiers(item.Classifiers, filter) {
				return false
			}
			continue
		}
		value, known := scalarField(item, filter.Field)
		if !known {
			continue
		}
		if !matchesAny(value, filter) {
			return false
		}
	}
	return true
}

func scalarField(item types.PackageContent, field string) (string, bool) {
	switch field {
	case "name":
		return item.Name, true
	case "version":
		return item.Version, true
	case "license":
		return item.License, true
	case "author":
		return item.Author, true
	case "summary":
		return item.Summary, true
	case "filename":
		return item.Filename, true
	default:
		return "", false
	}
}

func matchesAny(value string, filter types.Filter) bool {
	for _, candidate := range filter.Values {
		if matchesValue(value, filter.Op, candidate) {
			return true
		}
	}
	return false
}

func matchesValue(value string, op types.FilterOp, candidate string) bool {
	switch op {
	case types.FilterOpEqual, types.FilterOpIn:
		return value == candidate
	case types.FilterOpNotEqual:
		return value != candidate
	case types.FilterOpIContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(candidate))
	case types.FilterOpContains:
		return strings.Contains(value, candidate)
	case types.FilterOpGt:
		return value > candidate
	case types.FilterOpGte:
		return value >= candidate
	case types.FilterOpLt:
		return value < candidate
	case types.FilterOpLte:
		return value <= candidate
	default:
		return true
	}
}

// matchesClassifiers treats equality as exact membership and the
// contains operators as substring membership across the classifier
// list.
func matchesClassifiers(classifiers []string, filter types.Filter) bool {
	for _, candidate := range filter.Values {
		for _, classifier := range classifiers {
			if matchesValue(classifier, filter.Op, candidate) {
				return true
			}
		}
	}
	return false
}

// SortPackages returns a sorted copy of items. Version sorting uses
// CompareVersions; unknown fields fall back to name ordering so the
// output stays deterministic.
func SortPackages(items []types.PackageContent, by *types.Sort) []types.PackageContent {
	out := make([]types.PackageContent, len(items))
	copy(out, items)
	if by == nil {
		return out
	}
	less := lessFunc(by.Field)
	descending := by.Direction == types.SortDescending
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(field string) func(a, b types.PackageContent) bool {
	switch field {
	case "version":
		return func(a, b types.PackageContent) bool {
			return CompareVersions(a.Version, b.Version) < 0
		}
	case "created", "pulp_created":
		return func(a, b types.PackageContent) bool {
			return a.Created.Before(b.Created)
		}
	default:
		return func(a, b types.PackageContent) bool {
			return a.Name < b.Name
		}
	}
}

// PaginateSlice slices one page out of items and reports the total
// count before slicing. Page numbers beyond the end yield an empty
// slice, not an error.
func PaginateSlice(items []types.PackageContent, page types.Page) ([]types.PackageContent, int) {
	total := len(items)
	if page.PerPage <= 0 {
		return items, total
	}
	start := page.Offset()
	if start >= total {
		return nil, total
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}
	return items[start:end], total
}
