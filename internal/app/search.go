package app

import (
	"context"

	"calunga-catalog/internal/core"
	"calunga-catalog/internal/types"
)

// Search renders one page of the catalog for a distribution, using the
// requested loader strategy.
func (s Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	dist, err := s.distribution(ctx, req.Distribution)
	if err != nil {
		return SearchResult{}, err
	}

	var page core.CatalogPage
	switch req.Strategy {
	case types.LoaderStrategyNameFirst:
		page, err = s.NameFirst.Load(ctx, dist.RepositoryVersion, req.Params)
	case types.LoaderStrategyProgressive, "":
		page, err = s.Progressive.Load(ctx, dist.RepositoryVersion, req.Params)
	default:
		return SearchResult{}, errUnknownStrategy(string(req.Strategy))
	}
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{
		Distribution:  dist,
		Items:         page.Items,
		Total:         page.Total,
		UpstreamCount: page.UpstreamCount,
		Exhausted:     page.Exhausted,
	}, nil
}
