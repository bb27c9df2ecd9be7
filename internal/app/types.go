package app

import "calunga-catalog/internal/types"

type SearchRequest struct {
	Distribution string
	Strategy     types.LoaderStrategy
	Params       types.RequestParams
}

type SearchResult struct {
	Distribution  types.Distribution
	Items         []types.PackageContent
	Total         int
	UpstreamCount int
	Exhausted     bool
}

type ShowRequest struct {
	Distribution string
	Name         string
}

type ShowResult struct {
	Package types.Package

	// PublishedVersions is the release history known to the public
	// index, newest first. Absent when the index lookup failed.
	PublishedVersions []string
}

type DistributionsResult struct {
	Distributions []types.Distribution
}
