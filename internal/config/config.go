// Package config defines the recognized environment settings, splits
// them into server-only and client-visible subsets, and loads them via
// viper so values can come from flags, a config file, or the process
// environment.
package config

import (
	"context"
	"net/url"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/viper"
)

// Settings is the full server-side configuration. Only the subset
// returned by Client() may ever be handed to browsers.
type Settings struct {
	ListenAddr string
	StaticDir  string
	LogLevel   string

	PulpAPIURL    string
	PulpUsername  string
	PulpPassword  string
	PulpVerifySSL bool

	CalungaAPIURL string
	PyPIAPIURL    string

	OIDCServerURL        string
	OIDCServerIsEmbedded bool

	Mock         bool
	MockFixtures string
	AuthRequired bool
}

// ClientSettings is the client-visible subset injected into the served
// index.html and exposed at /settings.json. Credentials and upstream
// connection details stay server-side; the browser reaches upstreams
// only through the gateway's proxy prefixes.
type ClientSettings struct {
	CalungaAPIURL        string `json:"CALUNGA_API_URL,omitempty"`
	OIDCServerURL        string `json:"OIDC_SERVER_URL,omitempty"`
	OIDCServerIsEmbedded bool   `json:"OIDC_SERVER_IS_EMBEDDED"`
	Mock                 bool   `json:"MOCK"`
	AuthRequired         bool   `json:"AUTH_REQUIRED"`
}

// Environment variable names recognized by the loader.
const (
	EnvListenAddr   = "LISTEN_ADDR"
	EnvStaticDir    = "STATIC_DIR"
	EnvLogLevel     = "LOG_LEVEL"
	EnvPulpAPIURL   = "PULP_API_URL"
	EnvPulpUsername = "PULP_USERNAME"
	EnvPulpPassword = "PULP_PASSWORD"
	EnvPulpVerify   = "PULP_VERIFY_SSL"
	EnvCalungaAPI   = "CALUNGA_API_URL"
	EnvPyPIAPIURL   = "PYPI_API_URL"
	EnvOIDCServer   = "OIDC_SERVER_URL"
	EnvOIDCEmbedded = "OIDC_SERVER_IS_EMBEDDED"
	EnvMock         = "MOCK"
	EnvMockFixtures = "MOCK_FIXTURES"
	EnvAuthRequired = "AUTH_REQUIRED"
)

var envBindings = map[string]string{
	"listen_addr":             EnvListenAddr,
	"static_dir":              EnvStaticDir,
	"log_level":               EnvLogLevel,
	"pulp_api_url":            EnvPulpAPIURL,
	"pulp_username":           EnvPulpUsername,
	"pulp_password":           EnvPulpPassword,
	"pulp_verify_ssl":         EnvPulpVerify,
	"calunga_api_url":         EnvCalungaAPI,
	"pypi_api_url":            EnvPyPIAPIURL,
	"oidc_server_url":         EnvOIDCServer,
	"oidc_server_is_embedded": EnvOIDCEmbedded,
	"mock":                    EnvMock,
	"mock_fixtures":           EnvMockFixtures,
	"auth_required":           EnvAuthRequired,
}

// Bind registers defaults and environment bindings on the given viper
// instance. Callers layer flags and config files on top.
func Bind(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("static_dir", "dist")
	v.SetDefault("log_level", "info")
	v.SetDefault("pulp_verify_ssl", true)
	v.SetDefault("pypi_api_url", "https://pypi.org")
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// Load reads settings out of the viper instance and validates them.
func Load(v *viper.Viper) (Settings, error) {
	settings := Settings{
		ListenAddr:           v.GetString("listen_addr"),
		StaticDir:            v.GetString("static_dir"),
		LogLevel:             v.GetString("log_level"),
		PulpAPIURL:           strings.TrimRight(strings.TrimSpace(v.GetString("pulp_api_url")), "/"),
		PulpUsername:         v.GetString("pulp_username"),
		PulpPassword:         v.GetString("pulp_password"),
		PulpVerifySSL:        v.GetBool("pulp_verify_ssl"),
		CalungaAPIURL:        strings.TrimRight(strings.TrimSpace(v.GetString("calunga_api_url")), "/"),
		PyPIAPIURL:           strings.TrimRight(strings.TrimSpace(v.GetString("pypi_api_url")), "/"),
		OIDCServerURL:        strings.TrimSpace(v.GetString("oidc_server_url")),
		OIDCServerIsEmbedded: v.GetBool("oidc_server_is_embedded"),
		Mock:                 v.GetBool("mock"),
		MockFixtures:         v.GetString("mock_fixtures"),
		AuthRequired:         v.GetBool("auth_required"),
	}
	if err := settings.Validate(context.Background()); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks cross-field requirements and URL well-formedness.
func (s Settings) Validate(ctx context.Context) error {
	assert.NotEmpty(ctx, s.ListenAddr, "listen address must be set")
	if !s.Mock && s.PulpAPIURL == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("PULP_API_URL is required outside mock mode")
	}
	if s.Mock && strings.TrimSpace(s.MockFixtures) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("MOCK_FIXTURES path is required in mock mode")
	}
	if s.AuthRequired && s.OIDCServerURL == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("OIDC_SERVER_URL is required when AUTH_REQUIRED is set")
	}
	for name, value := range map[string]string{
		EnvPulpAPIURL: s.PulpAPIURL,
		EnvCalungaAPI: s.CalungaAPIURL,
		EnvPyPIAPIURL: s.PyPIAPIURL,
		EnvOIDCServer: s.OIDCServerURL,
	} {
		if value == "" {
			continue
		}
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(name + " is not an absolute URL")
		}
	}
	return nil
}

// Client returns the client-visible subset.
func (s Settings) Client() ClientSettings {
	return ClientSettings{
		CalungaAPIURL:        s.CalungaAPIURL,
		OIDCServerURL:        s.OIDCServerURL,
		OIDCServerIsEmbedded: s.OIDCServerIsEmbedded,
		Mock:                 s.Mock,
		AuthRequired:         s.AuthRequired,
	}
}
