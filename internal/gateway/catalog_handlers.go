package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"calunga-catalog/internal/app"
	"calunga-catalog/internal/types"
)

const defaultPageSize = 25

type packagesResponse struct {
	Distribution  string                 `json:"distribution"`
	Count         int                    `json:"count"`
	UpstreamCount int                    `json:"upstream_count"`
	Exhausted     bool                   `json:"exhausted"`
	Results       []types.PackageContent `json:"results"`
}

type distributionsResponse struct {
	Count   int                  `json:"count"`
	Results []types.Distribution `json:"results"`
}

type packageDetailResponse struct {
	types.Package
	PublishedVersions []string `json:"published_versions,omitempty"`
}

func (s *Server) handleDistributions(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Distributions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, distributionsResponse{
		Count:   len(result.Distributions),
		Results: result.Distributions,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := app.SearchRequest{
		Distribution: query.Get("distribution"),
		Strategy:     types.LoaderStrategy(query.Get("strategy")),
		Params:       searchParams(query.Get, defaultPageSize),
	}
	result, err := s.service.Search(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, packagesResponse{
		Distribution:  result.Distribution.Name,
		Count:         result.Total,
		UpstreamCount: result.UpstreamCount,
		Exhausted:     result.Exhausted,
		Results:       result.Items,
	})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	req := app.ShowRequest{
		Distribution: r.URL.Query().Get("distribution"),
		Name:         mux.Vars(r)["name"],
	}
	result, err := s.service.Show(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, packageDetailResponse{
		Package:           result.Package,
		PublishedVersions: result.PublishedVersions,
	})
}

// searchParams maps the catalog query string to request parameters.
// `search` is a name substring; `name`, `license`, and `classifier`
// are exact matches; `ordering` follows the Django convention of a
// `-` prefix for descending.
func searchParams(get func(string) string, fallbackPageSize int) types.RequestParams {
	var filters []types.Filter
	if v := get("search"); v != "" {
		filters = append(filters, types.Filter{Field: "name", Op: types.FilterOpIContains, Values: []string{v}})
	}
	if v := get("name"); v != "" {
		filters = append(filters, types.Filter{Field: "name", Op: types.FilterOpEqual, Values: splitValues(v)})
	}
	if v := get("license"); v != "" {
		filters = append(filters, types.Filter{Field: "license", Op: types.FilterOpEqual, Values: splitValues(v)})
	}
	if v := get("classifier"); v != "" {
		filters = append(filters, types.Filter{Field: "classifiers", Op: types.FilterOpContains, Values: splitValues(v)})
	}

	var sortBy *types.Sort
	if ordering := get("ordering"); ordering != "" {
		direction := types.SortAscending
		field := ordering
		if strings.HasPrefix(ordering, "-") {
			direction = types.SortDescending
			field = ordering[1:]
		}
		sortBy = &types.Sort{Field: field, Direction: direction}
	}

	page := types.Page{Number: positiveInt(get("page"), 1), PerPage: positiveInt(get("page_size"), fallbackPageSize)}
	return types.RequestParams{Filters: filters, Sort: sortBy, Page: page}
}

func splitValues(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func positiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
