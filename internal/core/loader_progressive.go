package core

import (
	"context"
	"sync"

	"calunga-catalog/internal/ports"
	"calunga-catalog/internal/types"
)

const defaultUpstreamPageSize = 100

// fetchAheadPages is how close (in pages) the requested window may get
// to the end of the refined working set before another upstream page
// is pulled in.
const fetchAheadPages = 2

// CatalogPage is one rendered page of the catalog view.
type CatalogPage struct {
	// Items is the deduplicated, filtered, sorted slice for the page.
	Items []types.PackageContent

	// Total is the size of the refined working set the page was cut
	// from. For the progressive loader this grows as upstream pages
	// accumulate.
	Total int

	// UpstreamCount is the raw artifact total reported by upstream,
	// before deduplication.
	UpstreamCount int

	// Exhausted reports whether every upstream page has been consumed,
	// i.e. Total is final for the current filters.
	Exhausted bool
}

// ProgressiveLoader accumulates upstream pages per distribution
// selection and derives the filtered, deduplicated catalog view from
// the accumulated raw set. All filters are applied locally: the raw
// accumulation is filter-independent, so toggling filters never
// discards fetched pages.
//
// The loader is safe for concurrent use; a single mutex serializes
// mutation of the accumulated state.
type ProgressiveLoader struct {
	source   ports.PackageSourcePort
	pageSize int

	mu          sync.Mutex
	repoVersion string
	accumulated []types.PackageContent
	upstream    int
	fetched     int
	exhausted   bool
}

func NewProgressiveLoader(source ports.PackageSourcePort, upstreamPageSize int) *ProgressiveLoader {
	if upstreamPageSize <= 0 {
		upstreamPageSize = defaultUpstreamPageSize
	}
	return &ProgressiveLoader{
		source:   source,
		pageSize: upstreamPageSize,
	}
}

// Load renders the requested catalog page, pulling in further upstream
// pages while the requested window sits within fetchAheadPages pages
// of the end of the refined set and upstream pages remain. A fetch
// failure is returned as-is and leaves the accumulated set intact.
func (l *ProgressiveLoader) Load(ctx context.Context, repoVersion string, params types.RequestParams) (CatalogPage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if repoVersion != l.repoVersion {
		l.reset(repoVersion)
	}

	perPage := params.Page.PerPage
	if perPage <= 0 {
		perPage = l.pageSize
	}
	windowEnd := params.Page.Offset() + perPage

	view := l.derive(params, perPage)
	for !l.exhausted && view.Total < windowEnd+fetchAheadPages*perPage {
		if err := l.fetchNextPage(ctx); err != nil {
			return CatalogPage{}, err
		}
		view = l.derive(params, perPage)
	}

	return CatalogPage{
		Items:         view.Items,
		Total:         view.Total,
		UpstreamCount: l.upstream,
		Exhausted:     l.exhausted,
	}, nil
}

// Reset discards the accumulated state, forcing the next Load to start
// from the first upstream page.
func (l *ProgressiveLoader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset("")
}

func (l *ProgressiveLoader) reset(repoVersion string) {
	l.repoVersion = repoVersion
	l.accumulated = nil
	l.upstream = 0
	l.fetched = 0
	l.exhausted = false
}

// derive recomputes the refined view from the raw accumulated set. It
// is intentionally not maintained incrementally: correctness must not
// depend on fetch order beyond last-duplicate-wins.
func (l *ProgressiveLoader) derive(params types.RequestParams, perPage int) Refined {
	return Refine(DeduplicateByLatestVersion(l.accumulated), types.RequestParams{
		Filters: params.Filters,
		Sort:    params.Sort,
		Page:    types.Page{Number: params.Page.Number, PerPage: perPage},
	})
}

func (l *ProgressiveLoader) fetchNextPage(ctx context.Context) error {
	pageNumber := l.fetched/l.pageSize + 1
	page, err := l.source.ListPackageContent(ctx, l.repoVersion, types.RequestParams{
		// Stable upstream ordering keeps limit/offset pagination
		// consistent across the walk.
		Sort: &types.Sort{Field: "name", Direction: types.SortAscending},
		Page: types.Page{Number: pageNumber, PerPage: l.pageSize},
	})
	if err != nil {
		return err
	}
	l.accumulated = append(l.accumulated, page.Results...)
	l.fetched += len(page.Results)
	l.upstream = page.Count
	if len(page.Results) == 0 || l.fetched >= page.Count {
		l.exhausted = true
	}
	return nil
}
