package core

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"calunga-catalog/internal/types"
)

// prereleaseSuffix matches everything from the first letter onward, so
// "1.0.0a1" and "1.0.0-rc2" both reduce to their numeric release part.
var prereleaseSuffix = regexp.MustCompile(`[a-zA-Z].*$`)

const versionParts = 4

// CompareVersions returns a negative, zero, or positive value ordering
// two version strings. It performs a simplified four-part numeric
// comparison after stripping a trailing pre-release suffix; equal
// numeric parts are broken by preferring the non-prerelease string.
//
// This is deliberately not a full PEP 440 implementation: epochs, post
// releases, and build tags are not handled. The catalog only needs a
// stable "which of these two is newer" answer for deduplication.
func CompareVersions(a string, b string) int {
	releaseA := releaseParts(a)
	releaseB := releaseParts(b)
	for i := 0; i < versionParts; i++ {
		if releaseA[i] != releaseB[i] {
			if releaseA[i] < releaseB[i] {
				return -1
			}
			return 1
		}
	}
	preA := isPrerelease(a)
	preB := isPrerelease(b)
	switch {
	case preA && !preB:
		return -1
	case !preA && preB:
		return 1
	default:
		return 0
	}
}

// releaseParts splits the numeric release segment of a version into a
// fixed number of parts, padding missing parts with zero.
func releaseParts(version string) [versionParts]int {
	stripped := prereleaseSuffix.ReplaceAllString(strings.TrimSpace(version), "")
	var out [versionParts]int
	for i, part := range strings.SplitN(stripped, ".", versionParts) {
		out[i] = leadingInt(part)
	}
	return out
}

// leadingInt parses the leading digit run of a part, so "0-" and "7+x"
// still yield usable numbers instead of failing the whole comparison.
func leadingInt(part string) int {
	end := 0
	for end < len(part) && part[end] >= '0' && part[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	value, err := strconv.Atoi(part[:end])
	if err != nil {
		return 0
	}
	return value
}

func isPrerelease(version string) bool {
	return prereleaseSuffix.MatchString(strings.TrimSpace(version))
}

// DeduplicateByLatestVersion reduces package content to one entry per
// distinct name: the one with the highest version under
// CompareVersions. On a full tie the later occurrence wins, so callers
// that append newer pages last keep the freshest metadata.
func DeduplicateByLatestVersion(items []types.PackageContent) []types.PackageContent {
	latest := map[string]types.PackageContent{}
	var order []string
	for _, item := range items {
		current, ok := latest[item.Name]
		if !ok {
			latest[item.Name] = item
			order = append(order, item.Name)
			continue
		}
		if CompareVersions(item.Version, current.Version) >= 0 {
			latest[item.Name] = item
		}
	}
	out := make([]types.PackageContent, 0, len(order))
	for _, name := range order {
		out = append(out, latest[name])
	}
	return out
}

// SortVersionStrings orders version strings newest first in place,
// using the same comparator as deduplication.
func SortVersionStrings(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i], versions[j]) > 0
	})
}
