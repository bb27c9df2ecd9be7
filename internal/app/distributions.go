package app

import (
	"context"

	"calunga-catalog/internal/types"
)

// Distributions lists the browsable package indexes. Entries without a
// backing repository version are skipped rather than surfaced as
// errors.
func (s Service) Distributions(ctx context.Context) (DistributionsResult, error) {
	page, err := s.Source.ListDistributions(ctx, types.RequestParams{
		Sort: &types.Sort{Field: "name", Direction: types.SortAscending},
	})
	if err != nil {
		return DistributionsResult{}, err
	}
	browsable := make([]types.Distribution, 0, len(page.Results))
	for _, dist := range page.Results {
		if dist.Browsable() {
			browsable = append(browsable, dist)
		}
	}
	return DistributionsResult{Distributions: browsable}, nil
}

// distribution resolves a distribution by name. An empty name selects
// the first browsable distribution.
func (s Service) distribution(ctx context.Context, name string) (types.Distribution, error) {
	result, err := s.Distributions(ctx)
	if err != nil {
		return types.Distribution{}, err
	}
	if len(result.Distributions) == 0 {
		return types.Distribution{}, errNoDistributions()
	}
	if name == "" {
		return result.Distributions[0], nil
	}
	for _, dist := range result.Distributions {
		if dist.Name == name {
			return dist, nil
		}
	}
	return types.Distribution{}, errDistributionNotFound(name)
}
