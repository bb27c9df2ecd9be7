package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calunga-catalog/internal/types"
)

// ---------------------------------------------------------------------------
// CompareVersions
// ---------------------------------------------------------------------------

func TestCompareVersionsNumericOrdering(t *testing.T) {
	assert.Negative(t, CompareVersions("1.9.0", "1.10.0"))
	assert.Positive(t, CompareVersions("1.10.0", "1.9.0"))
	assert.Zero(t, CompareVersions("1.2.3", "1.2.3"))
}

func TestCompareVersionsStablePreferredOverPrerelease(t *testing.T) {
	assert.Positive(t, CompareVersions("1.0.0", "1.0.0a1"))
	assert.Negative(t, CompareVersions("1.0.0rc1", "1.0.0"))
}

func TestCompareVersionsBothPrerelease(t *testing.T) {
	// Numeric parts equal and both carry suffixes: treated as equal.
	assert.Zero(t, CompareVersions("1.0.0a1", "1.0.0b2"))
}

func TestCompareVersionsFourParts(t *testing.T) {
	assert.Negative(t, CompareVersions("1.2.3.4", "1.2.3.5"))
	assert.Zero(t, CompareVersions("1.2.3", "1.2.3.0"))
}

func TestCompareVersionsMissingParts(t *testing.T) {
	assert.Negative(t, CompareVersions("1", "1.0.1"))
	assert.Zero(t, CompareVersions("2", "2.0.0.0"))
}

func TestCompareVersionsSeparatedPrereleaseSuffix(t *testing.T) {
	// A dash-separated suffix still strips at the first letter.
	assert.Negative(t, CompareVersions("2.0.0-rc1", "2.0.0"))
}

// ---------------------------------------------------------------------------
// DeduplicateByLatestVersion
// ---------------------------------------------------------------------------

func packageVersion(name string, version string) types.PackageContent {
	return types.PackageContent{Name: name, Version: version, Filename: name + "-" + version + ".whl"}
}

func TestDeduplicateByLatestVersionOnePerName(t *testing.T) {
	items := []types.PackageContent{
		packageVersion("requests", "2.30.0"),
		packageVersion("requests", "2.31.0"),
		packageVersion("flask", "3.0.0"),
		packageVersion("requests", "2.29.0"),
	}

	out := DeduplicateByLatestVersion(items)
	require.Len(t, out, 2)

	byName := map[string]types.PackageContent{}
	for _, item := range out {
		byName[item.Name] = item
	}
	assert.Equal(t, "2.31.0", byName["requests"].Version)
	assert.Equal(t, "3.0.0", byName["flask"].Version)
}

func TestDeduplicateByLatestVersionWinnerDominates(t *testing.T) {
	items := []types.PackageContent{
		packageVersion("numpy", "1.9.0"),
		packageVersion("numpy", "1.10.0"),
		packageVersion("numpy", "1.10.0b1"),
	}

	out := DeduplicateByLatestVersion(items)
	require.Len(t, out, 1)
	winner := out[0]
	for _, item := range items {
		assert.GreaterOrEqual(t, CompareVersions(winner.Version, item.Version), 0)
	}
}

func TestDeduplicateByLatestVersionLastDuplicateWins(t *testing.T) {
	first := packageVersion("pydantic", "2.5.0")
	second := packageVersion("pydantic", "2.5.0")
	second.Summary = "fresher metadata"

	out := DeduplicateByLatestVersion([]types.PackageContent{first, second})
	require.Len(t, out, 1)
	assert.Equal(t, "fresher metadata", out[0].Summary)
}

func TestDeduplicateByLatestVersionPreservesFirstSeenOrder(t *testing.T) {
	items := []types.PackageContent{
		packageVersion("zeta", "1.0.0"),
		packageVersion("alpha", "1.0.0"),
		packageVersion("zeta", "2.0.0"),
	}

	out := DeduplicateByLatestVersion(items)
	require.Len(t, out, 2)
	assert.Equal(t, "zeta", out[0].Name)
	assert.Equal(t, "2.0.0", out[0].Version)
	assert.Equal(t, "alpha", out[1].Name)
}

func TestDeduplicateByLatestVersionEmpty(t *testing.T) {
	assert.Empty(t, DeduplicateByLatestVersion(nil))
}
