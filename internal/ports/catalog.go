// Package ports declares the interfaces between the catalog core and
// the upstream adapters. Adapters implement them against Pulp, PyPI,
// or local fixtures; the loaders and the app service consume them.
package ports

import (
	"context"

	"calunga-catalog/internal/types"
)

// PackageSourcePort is the upstream package index the catalog browses.
type PackageSourcePort interface {
	// ListDistributions returns the browsable package indexes.
	ListDistributions(ctx context.Context, params types.RequestParams) (types.Paginated[types.Distribution], error)

	// ListPackageContent returns one page of package metadata scoped to
	// a repository version. The translated request may be partially
	// evaluated upstream; residual filters are the caller's concern.
	ListPackageContent(ctx context.Context, repoVersion string, params types.RequestParams) (types.Paginated[types.PackageContent], error)

	// ListPackageNames returns every distinct package name in the
	// repository version, walking all upstream pages.
	ListPackageNames(ctx context.Context, repoVersion string) ([]string, error)
}

// AttestationSourcePort serves build-provenance records for package
// content.
type AttestationSourcePort interface {
	ListAttestations(ctx context.Context, packageHref string) ([]types.Attestation, error)
}

// ReleaseIndexPort looks up the published release history of a package
// from a PEP 503/691 style index.
type ReleaseIndexPort interface {
	// ProjectVersions returns the known versions of a project, newest
	// first.
	ProjectVersions(ctx context.Context, name string) ([]string, error)
}
