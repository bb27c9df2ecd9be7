package core

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"calunga-catalog/internal/policies"
	"calunga-catalog/internal/ports"
	"calunga-catalog/internal/types"
)

// NameFirstLoader trades one lightweight distinct-name request for
// avoiding a full metadata walk: it fetches the complete name list
// once per distribution selection, then batches full metadata only for
// the names on the visible page via a single name-in query ordered
// newest first. Cross-page sorting by date or popularity is therefore
// unavailable; only the visible page can be resorted. That is a
// documented behavioral trade-off of this strategy, not a defect.
type NameFirstLoader struct {
	source ports.PackageSourcePort
	policy policies.FilterPolicy
	cache  *QueryCache[[]types.PackageContent]

	mu          sync.Mutex
	repoVersion string
	names       []string
}

func NewNameFirstLoader(source ports.PackageSourcePort, policy policies.FilterPolicy, cache *QueryCache[[]types.PackageContent]) *NameFirstLoader {
	if cache == nil {
		cache = NewQueryCache[[]types.PackageContent](0)
	}
	return &NameFirstLoader{
		source: source,
		policy: policy,
		cache:  cache,
	}
}

// Load renders the requested catalog page. Once the page resolves, the
// next page's metadata batch is prefetched speculatively through the
// query cache so paging forward is usually served without an upstream
// round trip.
func (l *NameFirstLoader) Load(ctx context.Context, repoVersion string, params types.RequestParams) (CatalogPage, error) {
	names, err := l.namesFor(ctx, repoVersion)
	if err != nil {
		return CatalogPage{}, err
	}

	nameFilters, metadataFilters := splitNameFilters(params.Filters)
	filteredNames := filterNames(names, nameFilters)
	serverFilters, residualFilters := l.policy.Split(metadataFilters)

	perPage := params.Page.PerPage
	if perPage <= 0 {
		perPage = len(filteredNames)
	}
	pageNames := sliceNames(filteredNames, params.Page.Number, perPage)
	if len(pageNames) == 0 {
		return CatalogPage{Total: len(filteredNames), UpstreamCount: len(names), Exhausted: true}, nil
	}

	batch, err := l.fetchBatch(ctx, repoVersion, pageNames, serverFilters)
	if err != nil {
		return CatalogPage{}, err
	}

	// The page was already cut from the name list, so the refinement
	// carries no page selection of its own.
	items := Refine(firstOccurrencePerName(batch), types.RequestParams{
		Filters: residualFilters,
		Sort:    params.Sort,
	}).Items

	l.prefetchNextPage(repoVersion, filteredNames, serverFilters, params.Page.Number, perPage)

	return CatalogPage{
		Items:         items,
		Total:         len(filteredNames),
		UpstreamCount: len(names),
		Exhausted:     true,
	}, nil
}

func (l *NameFirstLoader) namesFor(ctx context.Context, repoVersion string) ([]string, error) {
	l.mu.Lock()
	if repoVersion != l.repoVersion {
		l.repoVersion = repoVersion
		l.names = nil
		l.cache.Invalidate()
	}
	cached := l.names
	l.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	names, err := l.source.ListPackageNames(ctx, repoVersion)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	if l.repoVersion == repoVersion {
		l.names = names
	}
	l.mu.Unlock()
	return names, nil
}

// fetchBatch loads full metadata for the given names with one batched
// name-in query, newest first, walking the batch's pages completely.
func (l *NameFirstLoader) fetchBatch(ctx context.Context, repoVersion string, names []string, serverFilters []types.Filter) ([]types.PackageContent, error) {
	filters := make([]types.Filter, 0, len(serverFilters)+1)
	filters = append(filters, types.Filter{Field: "name", Op: types.FilterOpIn, Values: names})
	filters = append(filters, serverFilters...)
	key := batchKey(repoVersion, filters)
	return l.cache.Do(ctx, key, func(ctx context.Context) ([]types.PackageContent, error) {
		page, err := l.source.ListPackageContent(ctx, repoVersion, types.RequestParams{
			Filters: filters,
			Sort:    &types.Sort{Field: "pulp_created", Direction: types.SortDescending},
		})
		if err != nil {
			return nil, err
		}
		return page.Results, nil
	})
}

// prefetchNextPage warms the cache for the following page in the
// background. Failures only cost the later cache hit, so they are
// logged at debug and otherwise ignored.
func (l *NameFirstLoader) prefetchNextPage(repoVersion string, filteredNames []string, serverFilters []types.Filter, pageNumber int, perPage int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	nextNames := sliceNames(filteredNames, pageNumber+1, perPage)
	if len(nextNames) == 0 {
		return
	}
	go func() {
		ctx := context.Background()
		if _, err := l.fetchBatch(ctx, repoVersion, nextNames, serverFilters); err != nil {
			log.Debug().Err(err).Int("page", pageNumber+1).Msg("next page prefetch failed")
		}
	}()
}

// firstOccurrencePerName keeps the first entry per name. With the
// batch ordered newest first, the first occurrence is the latest
// upload.
func firstOccurrencePerName(items []types.PackageContent) []types.PackageContent {
	seen := map[string]struct{}{}
	out := make([]types.PackageContent, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Name]; ok {
			continue
		}
		seen[item.Name] = struct{}{}
		out = append(out, item)
	}
	return out
}

// splitNameFilters separates filters that can run against the bare
// name list from those that need full metadata.
func splitNameFilters(filters []types.Filter) (nameFilters []types.Filter, metadataFilters []types.Filter) {
	for _, filter := range filters {
		if filter.Field == "name" {
			nameFilters = append(nameFilters, filter)
		} else {
			metadataFilters = append(metadataFilters, filter)
		}
	}
	return nameFilters, metadataFilters
}

func filterNames(names []string, filters []types.Filter) []string {
	if len(filters) == 0 {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		stub := types.PackageContent{Name: name}
		if matchesAll(stub, filters) {
			out = append(out, name)
		}
	}
	return out
}

func sliceNames(names []string, pageNumber int, perPage int) []string {
	if perPage <= 0 {
		return names
	}
	start := types.Page{Number: pageNumber, PerPage: perPage}.Offset()
	if start >= len(names) {
		return nil
	}
	end := start + perPage
	if end > len(names) {
		end = len(names)
	}
	return names[start:end]
}

func batchKey(repoVersion string, filters []types.Filter) string {
	var b strings.Builder
	b.WriteString(repoVersion)
	for _, filter := range filters {
		b.WriteString("|")
		b.WriteString(filter.Field)
		b.WriteString(string(filter.Op))
		b.WriteString(strings.Join(filter.Values, ","))
	}
	return b.String()
}
