package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"calunga-catalog/internal/ports"
	"calunga-catalog/internal/shared"
)

const defaultPyPITimeout = 30 * time.Second

// PyPIClientAdapter reads release history from a PyPI-compatible index.
// The JSON metadata endpoint (PEP 566 shape) is preferred; indexes that
// only publish the PEP 503 Simple API are handled by parsing the
// project's file listing.
type PyPIClientAdapter struct {
	BaseURL string

	client *http.Client
}

func NewPyPIClientAdapter(baseURL string, timeoutSec int) *PyPIClientAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultPyPITimeout
	}
	return &PyPIClientAdapter{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type pypiProjectWire struct {
	Releases map[string][]json.RawMessage `json:"releases"`
}

// ProjectVersions returns the project's published versions sorted
// newest first under PEP 440 ordering. Versions that do not parse as
// PEP 440 are skipped.
func (c *PyPIClientAdapter) ProjectVersions(ctx context.Context, name string) ([]string, error) {
	normalized := shared.NormalizePackageName(name)
	if normalized == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project name is required")
	}
	versions, notFound, err := c.versionsFromJSON(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if notFound {
		versions, err = c.versionsFromSimple(ctx, normalized)
		if err != nil {
			return nil, err
		}
	}
	return sortVersionsDescending(versions), nil
}

func (c *PyPIClientAdapter) versionsFromJSON(ctx context.Context, name string) ([]string, bool, error) {
	endpoint := fmt.Sprintf("%s/pypi/%s/json", c.BaseURL, name)
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNotFound {
		return nil, true, nil
	}
	if status < 200 || status >= 300 {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to fetch project metadata").
			WithCause(shared.HTTPStatusError(status, endpoint))
	}
	var project pypiProjectWire
	if err := json.Unmarshal(body, &project); err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse project metadata").
			WithCause(err)
	}
	versions := make([]string, 0, len(project.Releases))
	for version := range project.Releases {
		if _, err := pep440.Parse(version); err != nil {
			continue
		}
		versions = append(versions, version)
	}
	return versions, false, nil
}

func (c *PyPIClientAdapter) versionsFromSimple(ctx context.Context, name string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/simple/%s/", c.BaseURL, name)
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("project not found").
			WithCause(shared.HTTPStatusError(status, endpoint))
	}
	if status < 200 || status >= 300 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to fetch simple project index").
			WithCause(shared.HTTPStatusError(status, endpoint))
	}
	return parseVersionsFromSimple(string(body)), nil
}

func (c *PyPIClientAdapter) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create pypi request").
			WithCause(err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pypi request failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read pypi response").
			WithCause(err)
	}
	return body, resp.StatusCode, nil
}

var simpleHrefPattern = regexp.MustCompile(`href=["']([^"']+)["']`)

// parseVersionsFromSimple extracts release versions from a PEP 503
// project page by parsing artifact filenames out of the anchor hrefs.
func parseVersionsFromSimple(content string) []string {
	matches := simpleHrefPattern.FindAllStringSubmatch(content, -1)
	versions := map[string]struct{}{}
	for _, match := range matches {
		raw := strings.Split(match[1], "#")[0]
		raw = strings.Split(raw, "?")[0]
		filename := filepath.Base(raw)
		version := parseVersionFromFilename(filename)
		if version == "" {
			continue
		}
		if _, err := pep440.Parse(version); err != nil {
			continue
		}
		versions[version] = struct{}{}
	}
	out := make([]string, 0, len(versions))
	for version := range versions {
		out = append(out, version)
	}
	return out
}

var wheelFilePattern = regexp.MustCompile(`^(.+?)-([0-9][^-]*)(?:-[^-]+)?-[^-]+-[^-]+-[^-]+\.whl$`)
var sdistFilePattern = regexp.MustCompile(`^(.+?)-([0-9][^-]*)\.(?:tar\.gz|zip|tar\.bz2|tar\.xz|tgz)$`)

func parseVersionFromFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return ""
	}
	if match := wheelFilePattern.FindStringSubmatch(filename); len(match) == 3 {
		return match[2]
	}
	if match := sdistFilePattern.FindStringSubmatch(filename); len(match) == 3 {
		return match[2]
	}
	return ""
}

func sortVersionsDescending(versions []string) []string {
	sort.Slice(versions, func(i, j int) bool {
		vi, err := pep440.Parse(versions[i])
		if err != nil {
			return versions[i] > versions[j]
		}
		vj, err := pep440.Parse(versions[j])
		if err != nil {
			return versions[i] > versions[j]
		}
		return vi.Compare(vj) > 0
	})
	return versions
}

var _ ports.ReleaseIndexPort = (*PyPIClientAdapter)(nil)
