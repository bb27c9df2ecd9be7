package adapters

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"calunga-catalog/internal/ports"
	"calunga-catalog/internal/shared"
	"calunga-catalog/internal/types"
)

// Pulp REST paths consumed by the catalog. The python plugin publishes
// distributions, package content, and provenance attestations.
const (
	pulpDistributionsPath = "/pulp/api/v3/distributions/python/pypi/"
	pulpPackagesPath      = "/pulp/api/v3/content/python/packages/"
	pulpAttestationsPath  = "/pulp/api/v3/content/python/attestations/"
)

const defaultPulpTimeout = 60 * time.Second
const defaultPulpRetries = 3
const defaultPulpRetryDelay = 200 * time.Millisecond
const maxPulpRetryDelay = 2 * time.Second

// nameWalkPageSize is the page size used when walking the full distinct
// name listing; names are tiny, so large pages keep the walk short.
const nameWalkPageSize = 1000

// PulpClientAdapter talks to a Pulp server's Django-REST style API with
// basic auth and bounded retries.
type PulpClientAdapter struct {
	BaseURL    string
	Username   string
	Password   string
	Retries    int
	RetryDelay time.Duration

	client *http.Client
}

func NewPulpClientAdapter(baseURL string, username string, password string, verifySSL bool, timeoutSec int, retries int, retryDelayMs int) *PulpClientAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultPulpTimeout
	}
	retryCount := retries
	if retryCount <= 0 {
		retryCount = defaultPulpRetries
	}
	retryDelay := time.Duration(retryDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultPulpRetryDelay
	}
	transport := http.DefaultTransport
	if !verifySSL {
		transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	return &PulpClientAdapter{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Username:   username,
		Password:   password,
		Retries:    retryCount,
		RetryDelay: retryDelay,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// wire representations; Pulp timestamps and classifier fields are not
// uniform across plugin versions, so both are decoded leniently.

type distributionWire struct {
	Name              string `json:"name"`
	BasePath          string `json:"base_path"`
	BaseURL           string `json:"base_url"`
	RepositoryVersion string `json:"repository_version"`
}

type packageContentWire struct {
	Href        string          `json:"pulp_href"`
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Author      string          `json:"author"`
	License     string          `json:"license"`
	Classifiers json.RawMessage `json:"classifiers"`
	Filename    string          `json:"filename"`
	SHA256      string          `json:"sha256"`
	Created     string          `json:"pulp_created"`
}

type packageNameWire struct {
	Name string `json:"name"`
}

type attestationWire struct {
	PackageHref   string `json:"package"`
	PredicateType string `json:"predicate_type"`
	Verified      bool   `json:"verified"`
	VerifierID    string `json:"verifier_id"`
	SLSALevel     int    `json:"slsa_level"`
	SignedAt      string `json:"signed_at"`
}

func (c *PulpClientAdapter) ListDistributions(ctx context.Context, params types.RequestParams) (types.Paginated[types.Distribution], error) {
	query := SerializeRequestParams(params)
	page, err := getPaginated[distributionWire](ctx, c, c.endpoint(pulpDistributionsPath, query), params.Page.PerPage)
	if err != nil {
		return types.Paginated[types.Distribution]{}, err
	}
	out := types.Paginated[types.Distribution]{
		Count:    page.Count,
		Next:     page.Next,
		Previous: page.Previous,
	}
	for _, item := range page.Results {
		out.Results = append(out.Results, types.Distribution{
			Name:              item.Name,
			BasePath:          item.BasePath,
			BaseURL:           item.BaseURL,
			RepositoryVersion: item.RepositoryVersion,
		})
	}
	return out, nil
}

func (c *PulpClientAdapter) ListPackageContent(ctx context.Context, repoVersion string, params types.RequestParams) (types.Paginated[types.PackageContent], error) {
	if strings.TrimSpace(repoVersion) == "" {
		return types.Paginated[types.PackageContent]{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository version is required")
	}
	query := SerializeRequestParams(params)
	query.Set("repository_version", repoVersion)
	page, err := getPaginated[packageContentWire](ctx, c, c.endpoint(pulpPackagesPath, query), params.Page.PerPage)
	if err != nil {
		return types.Paginated[types.PackageContent]{}, err
	}
	out := types.Paginated[types.PackageContent]{
		Count:    page.Count,
		Next:     page.Next,
		Previous: page.Previous,
	}
	for _, item := range page.Results {
		out.Results = append(out.Results, item.toPackageContent())
	}
	return out, nil
}

func (c *PulpClientAdapter) ListPackageNames(ctx context.Context, repoVersion string) ([]string, error) {
	if strings.TrimSpace(repoVersion) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository version is required")
	}
	query := url.Values{}
	query.Set("repository_version", repoVersion)
	query.Set("fields", "name")
	query.Set("limit", strconv.Itoa(nameWalkPageSize))
	page, err := getPaginated[packageNameWire](ctx, c, c.endpoint(pulpPackagesPath, query), 0)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(page.Results))
	for _, item := range page.Results {
		if item.Name == "" {
			continue
		}
		names = append(names, item.Name)
	}
	return shared.UniqueStrings(names), nil
}

// ListAttestations returns the provenance records attached to one
// package content unit. A 404 means the attestation endpoint is not
// enabled on this Pulp instance and yields an empty list.
func (c *PulpClientAdapter) ListAttestations(ctx context.Context, packageHref string) ([]types.Attestation, error) {
	query := url.Values{}
	query.Set("package", packageHref)
	endpoint := c.endpoint(pulpAttestationsPath, query)
	page, err := getPaginated[attestationWire](ctx, c, endpoint, 0)
	if err != nil {
		if errbuilder.CodeOf(err) == errbuilder.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	out := make([]types.Attestation, 0, len(page.Results))
	for _, item := range page.Results {
		out = append(out, types.Attestation{
			PackageHref:   item.PackageHref,
			PredicateType: item.PredicateType,
			Verified:      item.Verified,
			VerifierID:    item.VerifierID,
			SLSALevel:     item.SLSALevel,
			SignedAt:      parseTimeFlexible(item.SignedAt),
		})
	}
	return out, nil
}

func (w packageContentWire) toPackageContent() types.PackageContent {
	return types.PackageContent{
		Href:        w.Href,
		Name:        w.Name,
		Version:     w.Version,
		Summary:     w.Summary,
		Description: w.Description,
		Author:      w.Author,
		License:     w.License,
		Classifiers: decodeClassifiers(w.Classifiers),
		Filename:    w.Filename,
		SHA256:      w.SHA256,
		Created:     parseTimeFlexible(w.Created),
	}
}

// decodeClassifiers accepts both wire shapes Pulp has used: a JSON
// array of strings and a string containing a JSON array.
func decodeClassifiers(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var embedded string
	if err := json.Unmarshal(raw, &embedded); err == nil {
		if err := json.Unmarshal([]byte(embedded), &list); err == nil {
			return list
		}
	}
	return nil
}

// getPaginated fetches one page and, while the response's next cursor
// is present and fewer results than the requested limit have
// accumulated, follows next and concatenates. A limit of zero walks
// every page. The returned Count is the upstream-reported total, which
// may exceed the number of fetched results when the walk stops early.
func getPaginated[T any](ctx context.Context, c *PulpClientAdapter, endpoint string, limit int) (types.Paginated[T], error) {
	accumulated, err := fetchPage[T](ctx, c, endpoint)
	if err != nil {
		return types.Paginated[T]{}, err
	}
	for accumulated.Next != "" && (limit <= 0 || len(accumulated.Results) < limit) {
		next, err := fetchPage[T](ctx, c, c.absoluteURL(accumulated.Next))
		if err != nil {
			return types.Paginated[T]{}, err
		}
		accumulated.Results = append(accumulated.Results, next.Results...)
		accumulated.Next = next.Next
	}
	return accumulated, nil
}

func fetchPage[T any](ctx context.Context, c *PulpClientAdapter, endpoint string) (types.Paginated[T], error) {
	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return types.Paginated[T]{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Paginated[T]{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read pulp response").
			WithCause(err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return types.Paginated[T]{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("pulp resource not found").
			WithCause(shared.HTTPStatusError(resp.StatusCode, endpoint))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.Paginated[T]{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pulp request failed").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, endpoint, string(body)))
	}
	var page types.Paginated[T]
	if err := json.Unmarshal(body, &page); err != nil {
		return types.Paginated[T]{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse pulp response").
			WithCause(err)
	}
	return page, nil
}

// doRequest issues a GET with basic auth and bounded retries on
// transport errors, 5xx, and 429 responses.
func (c *PulpClientAdapter) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.Retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request canceled").
				WithCause(ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create pulp request").
				WithCause(err)
		}
		req.Header.Set("Accept", "application/json")
		if strings.TrimSpace(c.Password) != "" {
			user := strings.TrimSpace(c.Username)
			if user == "" {
				user = "admin"
			}
			req.SetBasicAuth(user, c.Password)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < c.Retries-1 {
				time.Sleep(c.retryDelay(attempt))
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("pulp request failed").
				WithCause(err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < c.Retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			time.Sleep(c.retryDelay(attempt))
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("pulp request failed").
		WithCause(lastErr)
}

func (c *PulpClientAdapter) retryDelay(attempt int) time.Duration {
	delay := c.RetryDelay * time.Duration(1<<attempt)
	if delay > maxPulpRetryDelay {
		delay = maxPulpRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

func (c *PulpClientAdapter) endpoint(path string, query url.Values) string {
	endpoint := c.BaseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	return endpoint
}

// absoluteURL resolves a next cursor that may be absolute or
// server-relative against the configured base.
func (c *PulpClientAdapter) absoluteURL(cursor string) string {
	if strings.HasPrefix(cursor, "http://") || strings.HasPrefix(cursor, "https://") {
		return cursor
	}
	return c.BaseURL + "/" + strings.TrimLeft(cursor, "/")
}

var _ ports.PackageSourcePort = (*PulpClientAdapter)(nil)
var _ ports.AttestationSourcePort = (*PulpClientAdapter)(nil)
