package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calunga-catalog/internal/types"
)

const fixtureDoc = `
distributions:
  - name: prod
    base_path: prod
    base_url: https://pulp.example.com/prod/
    repository_version: /pulp/api/v3/repositories/python/python/1/versions/7/
  - name: stale
    base_path: stale
    base_url: https://pulp.example.com/stale/
packages:
  - pulp_href: /content/python/packages/1/
    name: requests
    version: 2.31.0
    license: Apache-2.0
    pulp_created: 2026-02-01T10:00:00Z
  - pulp_href: /content/python/packages/2/
    name: requests
    version: 2.30.0
    license: Apache-2.0
    pulp_created: 2026-01-01T10:00:00Z
  - pulp_href: /content/python/packages/3/
    name: flask
    version: 3.0.0
    license: BSD-3-Clause
    pulp_created: 2026-03-01T10:00:00Z
attestations:
  /content/python/packages/1/:
    - predicate_type: https://slsa.dev/provenance/v1
      verified: true
      verifier_id: sigstore
      slsa_level: 3
      signed_at: 2026-02-02T08:00:00Z
releases:
  requests: ["2.31.0", "2.30.0"]
`

func newFixtureAdapter(t *testing.T) *FixtureSourceAdapter {
	t.Helper()
	adapter, err := ParseFixtures([]byte(fixtureDoc))
	require.NoError(t, err)
	return adapter
}

func TestFixtureDistributions(t *testing.T) {
	adapter := newFixtureAdapter(t)
	page, err := adapter.ListDistributions(t.Context(), types.RequestParams{})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.True(t, page.Results[0].Browsable())
	assert.False(t, page.Results[1].Browsable())
}

func TestFixturePackageContentNameFilter(t *testing.T) {
	adapter := newFixtureAdapter(t)
	page, err := adapter.ListPackageContent(t.Context(), "/repo/versions/7/", types.RequestParams{
		Filters: []types.Filter{{Field: "name", Op: types.FilterOpEqual, Values: []string{"flask"}}},
	})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "flask", page.Results[0].Name)
}

func TestFixturePackageContentNameMembershipFilter(t *testing.T) {
	adapter := newFixtureAdapter(t)
	page, err := adapter.ListPackageContent(t.Context(), "/repo/versions/7/", types.RequestParams{
		Filters: []types.Filter{{Field: "name", Op: types.FilterOpIn, Values: []string{"flask", "requests"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	for _, item := range page.Results {
		assert.Contains(t, []string{"flask", "requests"}, item.Name)
	}
}

func TestFixturePackageContentNewestFirstOrdering(t *testing.T) {
	adapter := newFixtureAdapter(t)
	page, err := adapter.ListPackageContent(t.Context(), "/repo/versions/7/", types.RequestParams{
		Sort: &types.Sort{Field: "pulp_created", Direction: types.SortDescending},
	})
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "flask", page.Results[0].Name)
	assert.Equal(t, "2.31.0", page.Results[1].Version)
}

func TestFixturePackageContentPaging(t *testing.T) {
	adapter := newFixtureAdapter(t)
	page, err := adapter.ListPackageContent(t.Context(), "/repo/versions/7/", types.RequestParams{
		Page: types.Page{Number: 2, PerPage: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	assert.Len(t, page.Results, 1)
}

func TestFixturePackageNames(t *testing.T) {
	adapter := newFixtureAdapter(t)
	names, err := adapter.ListPackageNames(t.Context(), "/repo/versions/7/")
	require.NoError(t, err)
	assert.Equal(t, []string{"requests", "flask"}, names)
}

func TestFixtureAttestations(t *testing.T) {
	adapter := newFixtureAdapter(t)
	attestations, err := adapter.ListAttestations(t.Context(), "/content/python/packages/1/")
	require.NoError(t, err)
	require.Len(t, attestations, 1)
	assert.True(t, attestations[0].Verified)
	assert.Equal(t, 3, attestations[0].SLSALevel)

	none, err := adapter.ListAttestations(t.Context(), "/content/python/packages/3/")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFixtureProjectVersions(t *testing.T) {
	adapter := newFixtureAdapter(t)
	versions, err := adapter.ProjectVersions(t.Context(), "requests")
	require.NoError(t, err)
	assert.Equal(t, []string{"2.31.0", "2.30.0"}, versions)

	derived, err := adapter.ProjectVersions(t.Context(), "Flask")
	require.NoError(t, err)
	assert.Equal(t, []string{"3.0.0"}, derived)

	_, err = adapter.ProjectVersions(t.Context(), "ghost")
	require.Error(t, err)
}

func TestFixtureRequiresRepositoryVersion(t *testing.T) {
	adapter := newFixtureAdapter(t)
	_, err := adapter.ListPackageContent(t.Context(), "", types.RequestParams{})
	require.Error(t, err)
	_, err = adapter.ListPackageNames(t.Context(), "")
	require.Error(t, err)
}
