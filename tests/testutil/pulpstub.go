package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"calunga-catalog/internal/types"
)

// PulpStub is an in-process stand-in for a Pulp server's python
// content API. It speaks the paginated envelope with working
// limit/offset and next links, honors the exact name and name__in
// lookups and the fields=name projection, and serves attestations
// filtered by package href.
type PulpStub struct {
	Distributions []types.Distribution
	Packages      []types.PackageContent
	Attestations  map[string][]types.Attestation

	// RequireAuth, when set, rejects requests without these basic auth
	// credentials.
	RequireAuth bool
	Username    string
	Password    string
}

// Start runs the stub on an httptest server, closed with the test.
func (s *PulpStub) Start(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	return server
}

func (s *PulpStub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/pulp/api/v3/distributions/python/pypi/", s.handleDistributions)
	mux.HandleFunc("/pulp/api/v3/content/python/packages/", s.handlePackages)
	mux.HandleFunc("/pulp/api/v3/content/python/attestations/", s.handleAttestations)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.RequireAuth {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.Username || pass != s.Password {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		mux.ServeHTTP(w, r)
	})
}

func (s *PulpStub) handleDistributions(w http.ResponseWriter, r *http.Request) {
	results := make([]any, 0, len(s.Distributions))
	for _, dist := range s.Distributions {
		results = append(results, map[string]any{
			"name":               dist.Name,
			"base_path":          dist.BasePath,
			"base_url":           dist.BaseURL,
			"repository_version": dist.RepositoryVersion,
		})
	}
	writeEnvelope(w, r, results)
}

func (s *PulpStub) handlePackages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("repository_version") == "" {
		http.Error(w, "repository_version is required", http.StatusBadRequest)
		return
	}

	filtered := filterPackages(s.Packages, query)
	orderPackages(filtered, query.Get("ordering"))

	if query.Get("fields") == "name" {
		seen := map[string]struct{}{}
		var results []any
		for _, pkg := range filtered {
			if _, ok := seen[pkg.Name]; ok {
				continue
			}
			seen[pkg.Name] = struct{}{}
			results = append(results, map[string]any{"name": pkg.Name})
		}
		writeEnvelope(w, r, results)
		return
	}

	results := make([]any, 0, len(filtered))
	for _, pkg := range filtered {
		results = append(results, packageWire(pkg))
	}
	writeEnvelope(w, r, results)
}

func (s *PulpStub) handleAttestations(w http.ResponseWriter, r *http.Request) {
	href := r.URL.Query().Get("package")
	var results []any
	for _, att := range s.Attestations[href] {
		results = append(results, map[string]any{
			"package":        att.PackageHref,
			"predicate_type": att.PredicateType,
			"verified":       att.Verified,
			"verifier_id":    att.VerifierID,
			"slsa_level":     att.SLSALevel,
			"signed_at":      att.SignedAt.Format(time.RFC3339),
		})
	}
	writeEnvelope(w, r, results)
}

// filterPackages evaluates the name lookups the way Django does: a
// bare name is an exact match on the literal value, commas included,
// while name__in splits on commas and matches membership.
func filterPackages(packages []types.PackageContent, query url.Values) []types.PackageContent {
	exact := query.Get("name")
	members := splitNonEmpty(query.Get("name__in"))
	var out []types.PackageContent
	for _, pkg := range packages {
		if query.Has("name") && pkg.Name != exact {
			continue
		}
		if len(members) > 0 && !contains(members, pkg.Name) {
			continue
		}
		out = append(out, pkg)
	}
	return out
}

func orderPackages(packages []types.PackageContent, ordering string) {
	switch ordering {
	case "name":
		sort.SliceStable(packages, func(i, j int) bool { return packages[i].Name < packages[j].Name })
	case "-pulp_created":
		sort.SliceStable(packages, func(i, j int) bool { return packages[j].Created.Before(packages[i].Created) })
	}
}

func packageWire(pkg types.PackageContent) map[string]any {
	wire := map[string]any{
		"pulp_href": pkg.Href,
		"name":      pkg.Name,
		"version":   pkg.Version,
		"summary":   pkg.Summary,
		"author":    pkg.Author,
		"license":   pkg.License,
		"filename":  pkg.Filename,
		"sha256":    pkg.SHA256,
	}
	if len(pkg.Classifiers) > 0 {
		wire["classifiers"] = pkg.Classifiers
	}
	if !pkg.Created.IsZero() {
		wire["pulp_created"] = pkg.Created.Format(time.RFC3339)
	}
	return wire
}

// writeEnvelope slices the result set per limit/offset and emits the
// Pulp pagination envelope, with a next link when more pages remain.
func writeEnvelope(w http.ResponseWriter, r *http.Request, results []any) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	total := len(results)
	page := results
	next := ""
	if limit > 0 {
		if offset >= total {
			page = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			page = results[offset:end]
			if end < total {
				nextQuery := r.URL.Query()
				nextQuery.Set("offset", strconv.Itoa(end))
				next = fmt.Sprintf("http://%s%s?%s", r.Host, r.URL.Path, nextQuery.Encode())
			}
		}
	}
	if page == nil {
		page = []any{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":    total,
		"next":     next,
		"previous": "",
		"results":  page,
	})
}

func splitNonEmpty(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
