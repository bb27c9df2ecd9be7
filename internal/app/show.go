package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"calunga-catalog/internal/core"
	"calunga-catalog/internal/shared"
	"calunga-catalog/internal/types"
)

// Show assembles the detail view for one package: the latest artifact's
// metadata, the aggregated version list, attestations, and the trust
// score. The public release history is best-effort; a failed index
// lookup degrades to an empty list instead of failing the detail page.
func (s Service) Show(ctx context.Context, req ShowRequest) (ShowResult, error) {
	dist, err := s.distribution(ctx, req.Distribution)
	if err != nil {
		return ShowResult{}, err
	}

	name := shared.NormalizePackageName(req.Name)
	page, err := s.Source.ListPackageContent(ctx, dist.RepositoryVersion, types.RequestParams{
		Filters: []types.Filter{{Field: "name", Op: types.FilterOpEqual, Values: []string{name}}},
		Sort:    &types.Sort{Field: "pulp_created", Direction: types.SortDescending},
	})
	if err != nil {
		return ShowResult{}, err
	}
	if len(page.Results) == 0 {
		return ShowResult{}, errPackageNotFound(req.Name)
	}

	latest := core.DeduplicateByLatestVersion(page.Results)[0]
	pkg := types.Package{
		PackageContent: latest,
		Versions:       versionList(page.Results),
	}

	attestations, err := s.Attestations.ListAttestations(ctx, latest.Href)
	if err != nil {
		return ShowResult{}, err
	}
	pkg.Attestations = attestations
	trust := core.ComputeTrustScore(attestations)
	pkg.Trust = &trust

	published, err := s.Releases.ProjectVersions(ctx, name)
	if err != nil {
		log.Debug().Err(err).Str("package", name).Msg("release history lookup failed")
		published = nil
	}

	return ShowResult{Package: pkg, PublishedVersions: published}, nil
}

// versionList collapses per-artifact entries into the distinct version
// strings, newest first by the catalog's version ordering.
func versionList(items []types.PackageContent) []string {
	versions := make([]string, 0, len(items))
	for _, item := range items {
		versions = append(versions, item.Version)
	}
	versions = shared.UniqueStrings(versions)
	core.SortVersionStrings(versions)
	return versions
}
