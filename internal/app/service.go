// Package app wires the catalog core to concrete upstream adapters and
// exposes the operations the CLI and the gateway share.
package app

import (
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"calunga-catalog/internal/adapters"
	"calunga-catalog/internal/config"
	"calunga-catalog/internal/core"
	"calunga-catalog/internal/policies"
	"calunga-catalog/internal/ports"
	"calunga-catalog/internal/types"
)

type Service struct {
	Source       ports.PackageSourcePort
	Attestations ports.AttestationSourcePort
	Releases     ports.ReleaseIndexPort
	Progressive  *core.ProgressiveLoader
	NameFirst    *core.NameFirstLoader
	Clock        func() time.Time
}

// NewService builds a service against the configured upstreams. In
// mock mode every port is served by the fixture file instead.
func NewService(settings config.Settings) (Service, error) {
	var (
		source       ports.PackageSourcePort
		attestations ports.AttestationSourcePort
		releases     ports.ReleaseIndexPort
	)
	if settings.Mock {
		fixtures, err := adapters.NewFixtureSourceAdapter(settings.MockFixtures)
		if err != nil {
			return Service{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to load mock fixtures").
				WithCause(err)
		}
		source = fixtures
		attestations = fixtures
		releases = fixtures
	} else {
		pulp := adapters.NewPulpClientAdapter(settings.PulpAPIURL, settings.PulpUsername, settings.PulpPassword, settings.PulpVerifySSL, 0, 0, 0)
		source = pulp
		attestations = pulp
		releases = adapters.NewPyPIClientAdapter(settings.PyPIAPIURL, 0)
	}
	return Service{
		Source:       source,
		Attestations: attestations,
		Releases:     releases,
		Progressive:  core.NewProgressiveLoader(source, 0),
		NameFirst:    core.NewNameFirstLoader(source, policies.NewPulpFilterPolicy(), core.NewQueryCache[[]types.PackageContent](0)),
		Clock:        time.Now,
	}, nil
}
