package adapters

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"calunga-catalog/internal/ports"
	"calunga-catalog/internal/shared"
	"calunga-catalog/internal/types"
)

// FixtureSourceAdapter serves the catalog from a recorded YAML fixture
// file instead of live upstreams. It backs mock mode, where the full
// gateway runs without a Pulp server behind it.
type FixtureSourceAdapter struct {
	distributions []types.Distribution
	packages      []types.PackageContent
	attestations  map[string][]types.Attestation
	releases      map[string][]string
}

type fixtureFile struct {
	Distributions []fixtureDistribution           `yaml:"distributions"`
	Packages      []fixturePackage                `yaml:"packages"`
	Attestations  map[string][]fixtureAttestation `yaml:"attestations"`
	Releases      map[string][]string             `yaml:"releases"`
}

type fixtureDistribution struct {
	Name              string `yaml:"name"`
	BasePath          string `yaml:"base_path"`
	BaseURL           string `yaml:"base_url"`
	RepositoryVersion string `yaml:"repository_version"`
}

type fixturePackage struct {
	Href        string   `yaml:"pulp_href"`
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Summary     string   `yaml:"summary"`
	Description string   `yaml:"description"`
	Author      string   `yaml:"author"`
	License     string   `yaml:"license"`
	Classifiers []string `yaml:"classifiers"`
	Filename    string   `yaml:"filename"`
	SHA256      string   `yaml:"sha256"`
	Created     string   `yaml:"pulp_created"`
}

type fixtureAttestation struct {
	PredicateType string `yaml:"predicate_type"`
	Verified      bool   `yaml:"verified"`
	VerifierID    string `yaml:"verifier_id"`
	SLSALevel     int    `yaml:"slsa_level"`
	SignedAt      string `yaml:"signed_at"`
}

func NewFixtureSourceAdapter(path string) (*FixtureSourceAdapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read fixture file").
			WithCause(err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a fixture document. Separated from the file
// read so tests can feed fixtures inline.
func ParseFixtures(data []byte) (*FixtureSourceAdapter, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse fixture file").
			WithCause(err)
	}
	adapter := &FixtureSourceAdapter{
		attestations: map[string][]types.Attestation{},
		releases:     file.Releases,
	}
	for _, item := range file.Distributions {
		adapter.distributions = append(adapter.distributions, types.Distribution{
			Name:              item.Name,
			BasePath:          item.BasePath,
			BaseURL:           item.BaseURL,
			RepositoryVersion: item.RepositoryVersion,
		})
	}
	for _, item := range file.Packages {
		adapter.packages = append(adapter.packages, types.PackageContent{
			Href:        item.Href,
			Name:        item.Name,
			Version:     item.Version,
			Summary:     item.Summary,
			Description: item.Description,
			Author:      item.Author,
			License:     item.License,
			Classifiers: item.Classifiers,
			Filename:    item.Filename,
			SHA256:      item.SHA256,
			Created:     parseTimeFlexible(item.Created),
		})
	}
	for href, list := range file.Attestations {
		for _, item := range list {
			adapter.attestations[href] = append(adapter.attestations[href], types.Attestation{
				PackageHref:   href,
				PredicateType: item.PredicateType,
				Verified:      item.Verified,
				VerifierID:    item.VerifierID,
				SLSALevel:     item.SLSALevel,
				SignedAt:      parseTimeFlexible(item.SignedAt),
			})
		}
	}
	return adapter, nil
}

func (a *FixtureSourceAdapter) ListDistributions(_ context.Context, params types.RequestParams) (types.Paginated[types.Distribution], error) {
	start, end := pageBounds(len(a.distributions), params.Page)
	return types.Paginated[types.Distribution]{
		Count:   len(a.distributions),
		Results: a.distributions[start:end],
	}, nil
}

// ListPackageContent honors the filters the real backend would
// evaluate server-side (name equality and membership lookups) plus
// ordering and limit/offset paging. Residual filters stay with the
// caller, exactly as with the live adapter.
func (a *FixtureSourceAdapter) ListPackageContent(_ context.Context, repoVersion string, params types.RequestParams) (types.Paginated[types.PackageContent], error) {
	if strings.TrimSpace(repoVersion) == "" {
		return types.Paginated[types.PackageContent]{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository version is required")
	}
	matched := make([]types.PackageContent, 0, len(a.packages))
	for _, item := range a.packages {
		if matchesServerFilters(item, params.Filters) {
			matched = append(matched, item)
		}
	}
	applyFixtureOrdering(matched, params.Sort)
	start, end := pageBounds(len(matched), params.Page)
	return types.Paginated[types.PackageContent]{
		Count:   len(matched),
		Results: matched[start:end],
	}, nil
}

func (a *FixtureSourceAdapter) ListPackageNames(_ context.Context, repoVersion string) ([]string, error) {
	if strings.TrimSpace(repoVersion) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository version is required")
	}
	names := make([]string, 0, len(a.packages))
	for _, item := range a.packages {
		names = append(names, item.Name)
	}
	return shared.UniqueStrings(names), nil
}

func (a *FixtureSourceAdapter) ListAttestations(_ context.Context, packageHref string) ([]types.Attestation, error) {
	return a.attestations[packageHref], nil
}

func (a *FixtureSourceAdapter) ProjectVersions(_ context.Context, name string) ([]string, error) {
	normalized := shared.NormalizePackageName(name)
	if versions, ok := a.releases[normalized]; ok {
		return versions, nil
	}
	var versions []string
	for _, item := range a.packages {
		if shared.NormalizePackageName(item.Name) == normalized {
			versions = append(versions, item.Version)
		}
	}
	if len(versions) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("project not found in fixtures")
	}
	return shared.UniqueStrings(versions), nil
}

// matchesServerFilters mimics the lookups the Pulp backend evaluates:
// name equality, name set membership, and the negated equality.
// Everything else is passed through unmatched on purpose.
func matchesServerFilters(item types.PackageContent, filters []types.Filter) bool {
	for _, filter := range filters {
		if filter.Field != "name" || len(filter.Values) == 0 {
			continue
		}
		member := false
		for _, value := range filter.Values {
			if item.Name == value {
				member = true
				break
			}
		}
		switch filter.Op {
		case types.FilterOpEqual, types.FilterOpIn:
			if !member {
				return false
			}
		case types.FilterOpNotEqual:
			if member {
				return false
			}
		}
	}
	return true
}

func applyFixtureOrdering(items []types.PackageContent, by *types.Sort) {
	if by == nil || by.Field == "" {
		return
	}
	descending := by.Direction == types.SortDescending
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		switch by.Field {
		case "pulp_created", "created":
			less = items[i].Created.Before(items[j].Created)
		default:
			less = items[i].Name < items[j].Name
		}
		if descending {
			return !less && !equalForField(items[i], items[j], by.Field)
		}
		return less
	})
}

func equalForField(a types.PackageContent, b types.PackageContent, field string) bool {
	switch field {
	case "pulp_created", "created":
		return a.Created.Equal(b.Created)
	default:
		return a.Name == b.Name
	}
}

func pageBounds(total int, page types.Page) (int, int) {
	if page.PerPage <= 0 {
		return 0, total
	}
	start := page.Offset()
	if start >= total {
		return total, total
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}
	return start, end
}

var _ ports.PackageSourcePort = (*FixtureSourceAdapter)(nil)
var _ ports.AttestationSourcePort = (*FixtureSourceAdapter)(nil)
var _ ports.ReleaseIndexPort = (*FixtureSourceAdapter)(nil)
