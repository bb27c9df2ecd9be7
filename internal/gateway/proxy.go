package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// keycloakCookie carries the session token the auth flow stores for
// the browser; proxied API calls get it promoted to a bearer header.
const keycloakCookie = "keycloak_cookie"

func (s *Server) proxyRoutes() error {
	if s.settings.OIDCServerURL != "" {
		authProxy, err := newPrefixProxy(s.settings.OIDCServerURL, "", nil)
		if err != nil {
			return err
		}
		s.router.PathPrefix("/auth").Handler(authProxy)
	}

	if s.settings.CalungaAPIURL != "" {
		apiProxy, err := newPrefixProxy(s.settings.CalungaAPIURL, "", cookieToBearer)
		if err != nil {
			return err
		}
		apiProxy.ModifyResponse = redirectUnauthenticated
		s.router.PathPrefix("/api").Handler(apiProxy)
	}

	if s.settings.PulpAPIURL != "" {
		pulpProxy, err := newPrefixProxy(s.settings.PulpAPIURL, "/pulp", s.pulpBasicAuth)
		if err != nil {
			return err
		}
		s.router.PathPrefix("/pulp").Handler(pulpProxy)
	}

	if s.settings.PyPIAPIURL != "" {
		pypiProxy, err := newPrefixProxy(s.settings.PyPIAPIURL, "/pypi", nil)
		if err != nil {
			return err
		}
		s.router.PathPrefix("/pypi").Handler(pypiProxy)
	}
	return nil
}

// newPrefixProxy builds a reverse proxy to target. stripPrefix, when
// set, is removed from the forwarded path. decorate runs on each
// outbound request after the standard rewrite.
func newPrefixProxy(target string, stripPrefix string, decorate func(*http.Request)) (*httputil.ReverseProxy, error) {
	upstream, err := url.Parse(target)
	if err != nil || upstream.Scheme == "" || upstream.Host == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid proxy target %q", target)).
			WithCause(err)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(upstream)
			r.SetXForwarded()
			if stripPrefix != "" {
				r.Out.URL.Path = strings.TrimPrefix(r.In.URL.Path, stripPrefix)
				if r.Out.URL.Path == "" {
					r.Out.URL.Path = "/"
				}
				if upstream.Path != "" && upstream.Path != "/" {
					r.Out.URL.Path = strings.TrimRight(upstream.Path, "/") + r.Out.URL.Path
				}
			}
			r.Out.Host = upstream.Host
			if decorate != nil {
				decorate(r.Out)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("proxy upstream failure")
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	return proxy, nil
}

// cookieToBearer promotes the auth cookie to an Authorization header
// when the client did not send one itself.
func cookieToBearer(r *http.Request) {
	if r.Header.Get("Authorization") != "" {
		return
	}
	cookie, err := r.Cookie(keycloakCookie)
	if err != nil || cookie.Value == "" {
		return
	}
	r.Header.Set("Authorization", "Bearer "+cookie.Value)
}

func (s *Server) pulpBasicAuth(r *http.Request) {
	if s.settings.PulpUsername == "" && s.settings.PulpPassword == "" {
		return
	}
	username := s.settings.PulpUsername
	if username == "" {
		username = "admin"
	}
	r.SetBasicAuth(username, s.settings.PulpPassword)
}

// redirectUnauthenticated turns an upstream 401 into a redirect to the
// application root for browser clients, forcing re-authentication
// through the login flow. JSON clients keep the raw 401.
func redirectUnauthenticated(resp *http.Response) error {
	if resp.StatusCode != http.StatusUnauthorized {
		return nil
	}
	accept := resp.Request.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return nil
	}
	resp.StatusCode = http.StatusFound
	resp.Status = http.StatusText(http.StatusFound)
	resp.Header.Set("Location", "/")
	resp.Body = http.NoBody
	resp.Header.Del("Content-Length")
	return nil
}
