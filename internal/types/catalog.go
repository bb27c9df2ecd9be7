package types

import "time"

// Distribution is a named, browsable view into a Pulp repository,
// analogous to a package index. Distributions are fetched once at
// catalog-load time and treated as immutable for the session.
type Distribution struct {
	// Name is the distribution's display name, e.g. "prod-python".
	Name string `json:"name"`

	// BasePath is the path segment under which the index is published.
	BasePath string `json:"base_path"`

	// BaseURL is the full URL of the published index.
	BaseURL string `json:"base_url"`

	// RepositoryVersion is the href of the backing repository version.
	// Distributions without one cannot be browsed and are skipped.
	RepositoryVersion string `json:"repository_version,omitempty"`
}

// Browsable reports whether the distribution has a backing repository
// version that content queries can be scoped to.
func (d Distribution) Browsable() bool {
	return d.RepositoryVersion != ""
}

// PackageContent is one published artifact (wheel or sdist) of a named
// package at a version. Multiple PackageContent entries share a name
// across versions and file types.
type PackageContent struct {
	Href        string    `json:"pulp_href"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	License     string    `json:"license,omitempty"`
	Classifiers []string  `json:"classifiers,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	SHA256      string    `json:"sha256,omitempty"`
	Created     time.Time `json:"pulp_created,omitzero"`
}

// Attestation is a cryptographic build-provenance record associated
// with one PackageContent.
type Attestation struct {
	PackageHref   string    `json:"package_href,omitempty"`
	PredicateType string    `json:"predicate_type,omitempty"`
	Verified      bool      `json:"verified"`
	VerifierID    string    `json:"verifier_id,omitempty"`
	SLSALevel     int       `json:"slsa_level"`
	SignedAt      time.Time `json:"signed_at,omitzero"`
}

// TrustLevel labels a computed trust score band.
type TrustLevel string

const (
	TrustLevelNone   TrustLevel = "none"
	TrustLevelLow    TrustLevel = "low"
	TrustLevelMedium TrustLevel = "medium"
	TrustLevelHigh   TrustLevel = "high"
)

// TrustScore is the aggregate supply-chain trust rating for a package,
// derived from its attestations.
type TrustScore struct {
	Score        int        `json:"score"`
	Level        TrustLevel `json:"level"`
	MaxSLSALevel int        `json:"max_slsa_level"`
	Verified     int        `json:"verified_attestations"`
}

// Package is the deduplicated, caller-facing projection of the latest
// PackageContent per name, optionally enriched with the aggregated
// version list, attestations, and a computed trust score.
type Package struct {
	PackageContent

	// Versions lists all known versions of the package, newest first.
	// Populated only on detail lookups.
	Versions []string `json:"versions,omitempty"`

	Attestations []Attestation `json:"attestations,omitempty"`
	Trust        *TrustScore   `json:"trust,omitempty"`
}

// Paginated is the Pulp-style envelope for a page of results.
type Paginated[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}
