package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calunga-catalog/internal/types"
)

// fakeSource is an in-memory PackageSourcePort shared by the loader
// tests. It honors name equality and membership filters,
// name/pulp_created ordering, and limit/offset paging the way the
// real upstream does.
type fakeSource struct {
	mu         sync.Mutex
	items      []types.PackageContent
	names      []string
	listCalls  int
	nameCalls  int
	lastParams types.RequestParams
	failNext   bool
}

func (f *fakeSource) ListDistributions(ctx context.Context, params types.RequestParams) (types.Paginated[types.Distribution], error) {
	return types.Paginated[types.Distribution]{}, nil
}

func (f *fakeSource) ListPackageContent(ctx context.Context, repoVersion string, params types.RequestParams) (types.Paginated[types.PackageContent], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastParams = params
	if f.failNext {
		f.failNext = false
		return types.Paginated[types.PackageContent]{}, fmt.Errorf("upstream unavailable")
	}

	filtered := make([]types.PackageContent, 0, len(f.items))
	for _, item := range f.items {
		if fakeMatchesNameFilters(item.Name, params.Filters) {
			filtered = append(filtered, item)
		}
	}

	if params.Sort != nil && params.Sort.Field == "pulp_created" && params.Sort.Direction == types.SortDescending {
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[j].Created.Before(filtered[i].Created) })
	} else {
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })
	}

	results, count := PaginateSlice(filtered, params.Page)
	return types.Paginated[types.PackageContent]{Count: count, Results: results}, nil
}

func (f *fakeSource) ListPackageNames(ctx context.Context, repoVersion string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameCalls++
	return append([]string(nil), f.names...), nil
}

func (f *fakeSource) calls() (list int, names int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.nameCalls
}

func fakeMatchesNameFilters(name string, filters []types.Filter) bool {
	for _, filter := range filters {
		if filter.Field != "name" || (filter.Op != types.FilterOpEqual && filter.Op != types.FilterOpIn) {
			continue
		}
		found := false
		for _, v := range filter.Values {
			if v == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func generatedPackages(n int) []types.PackageContent {
	items := make([]types.PackageContent, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, types.PackageContent{
			Name:    fmt.Sprintf("pkg-%03d", i),
			Version: "1.0.0",
			Created: time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC),
		})
	}
	return items
}

// ---------------------------------------------------------------------------
// ProgressiveLoader
// ---------------------------------------------------------------------------

func TestProgressiveLoaderFetchesAheadOfWindow(t *testing.T) {
	source := &fakeSource{items: generatedPackages(25)}
	loader := NewProgressiveLoader(source, 10)

	page, err := loader.Load(context.Background(), "repo/v1", types.RequestParams{
		Page: types.Page{Number: 1, PerPage: 5},
	})
	require.NoError(t, err)

	// Window end 5 plus two pages of fetch-ahead needs 15 items, so
	// two upstream pages of 10 suffice.
	listCalls, _ := source.calls()
	assert.Equal(t, 2, listCalls)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "pkg-000", page.Items[0].Name)
	assert.Equal(t, 20, page.Total)
	assert.Equal(t, 25, page.UpstreamCount)
	assert.False(t, page.Exhausted)
}

func TestProgressiveLoaderExhaustsSmallSet(t *testing.T) {
	source := &fakeSource{items: generatedPackages(3)}
	loader := NewProgressiveLoader(source, 10)

	page, err := loader.Load(context.Background(), "repo/v1", types.RequestParams{
		Page: types.Page{Number: 1, PerPage: 20},
	})
	require.NoError(t, err)
	assert.True(t, page.Exhausted)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 3, page.UpstreamCount)
	require.Len(t, page.Items, 3)
}

func TestProgressiveLoaderDeduplicatesAcrossPages(t *testing.T) {
	items := generatedPackages(4)
	items = append(items, types.PackageContent{Name: "pkg-001", Version: "2.0.0"})
	source := &fakeSource{items: items}
	loader := NewProgressiveLoader(source, 10)

	page, err := loader.Load(context.Background(), "repo/v1", types.RequestParams{
		Page: types.Page{Number: 1, PerPage: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	for _, item := range page.Items {
		if item.Name == "pkg-001" {
			assert.Equal(t, "2.0.0", item.Version)
		}
	}
	assert.Equal(t, 5, page.UpstreamCount)
}

func TestProgressiveLoaderFilterChangeKeepsAccumulation(t *testing.T) {
	source := &fakeSource{items: generatedPackages(12)}
	loader := NewProgressiveLoader(source, 10)

	_, err := loader.Load(context.Background(), "repo/v1", types.RequestParams{
		Page: types.Page{Number: 1, PerPage: 5},
	})
	require.NoError(t, err)
	listCalls, _ := source.calls()

	// A narrow filter shrinks the derived set; the loader walks the
	// remaining upstream pages but never refetches what it has.
	page, err := loader.Load(context.Background(), "repo/v1", types.RequestParams{
		Filters: []types.Filter{{Field: "name", Op: types.FilterOpIContains, Values: []string{"pkg-003"}}},
		Page:    types.Page{Number: 1, PerPage: 5},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Exhausted)

	afterCalls, _ := source.calls()
	assert.LessOrEqual(t, afterCalls, listCalls+1)
}

func TestProgressiveLoaderResetsOnDistributionChange(t *testing.T) {
	source := &fakeSource{items: generatedPackages(3)}
	loader := NewProgressiveLoader(source, 10)

	_, err := loader.Load(context.Background(), "repo/v1", types.RequestParams{Page: types.Page{Number: 1, PerPage: 5}})
	require.NoError(t, err)
	listCalls, _ := source.calls()

	_, err = loader.Load(context.Background(), "repo/v2", types.RequestParams{Page: types.Page{Number: 1, PerPage: 5}})
	require.NoError(t, err)
	afterCalls, _ := source.calls()
	assert.Equal(t, listCalls+1, afterCalls)
}

func TestProgressiveLoaderErrorLeavesAccumulationIntact(t *testing.T) {
	source := &fakeSource{items: generatedPackages(30)}
	loader := NewProgressiveLoader(source, 10)

	_, err := loader.Load(context.Background(), "repo/v1", types.RequestParams{Page: types.Page{Number: 1, PerPage: 5}})
	require.NoError(t, err)

	source.mu.Lock()
	source.failNext = true
	source.mu.Unlock()

	_, err = loader.Load(context.Background(), "repo/v1", types.RequestParams{Page: types.Page{Number: 4, PerPage: 5}})
	require.Error(t, err)

	// Already-fetched pages still serve the first window without a
	// new upstream call.
	listCalls, _ := source.calls()
	page, err := loader.Load(context.Background(), "repo/v1", types.RequestParams{Page: types.Page{Number: 1, PerPage: 5}})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	afterCalls, _ := source.calls()
	assert.Equal(t, listCalls, afterCalls)

	// Retrying the deeper page resumes the walk where it stopped.
	page, err = loader.Load(context.Background(), "repo/v1", types.RequestParams{Page: types.Page{Number: 4, PerPage: 5}})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	assert.True(t, page.Exhausted)
}
