// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entrez queries PubMed through the NCBI E-utilities API.
// ESearch resolves a query to PMIDs; EFetch returns the citations for them.
package entrez

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pubmed-extract/internal/httputil"
	"github.com/pdiddy/pubmed-extract/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	eSearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	eFetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

const (
	database    = "pubmed"
	defaultTool = "pubmed-extract"

	// NCBI usage policy: 3 requests/s per client, 10 with an API key.
	rateWithoutKey = 3
	rateWithKey    = 10
)

// Client talks to the E-utilities service.
type Client struct {
	HTTP *http.Client
	cfg  types.EntrezConfig

	limiter *rate.Limiter
}

// NewClient returns a client that identifies itself with cfg.Email and
// cfg.Tool and throttles itself to the NCBI rate limit.
func NewClient(httpClient *http.Client, cfg types.EntrezConfig) *Client {
	if cfg.Tool == "" {
		cfg.Tool = defaultTool
	}
	perSecond := rateWithoutKey
	if cfg.APIKey != "" {
		perSecond = rateWithKey
	}
	return &Client{
		HTTP:    httpClient,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Search runs a relevance-sorted ESearch for term and returns at most
// maxResults PMIDs in the order the service ranked them.
func (c *Client) Search(ctx context.Context, term string, maxResults int) ([]string, error) {
	if term == "" {
		return nil, fmt.Errorf("empty search term")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("max results must be positive, got %d", maxResults)
	}

	params := c.baseParams()
	params.Set("term", term)
	params.Set("sort", "relevance")
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("retmode", "xml")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := httputil.Do(ctx, c.HTTP, c.limiter, req)
	if err != nil {
		return nil, fmt.Errorf("ESearch request: %w", err)
	}
	defer resp.Body.Close()

	var result eSearchResult
	if err := xml.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: parsing ESearch response: %w", types.ErrNetwork, err)
	}
	if msg := strings.TrimSpace(result.Error); msg != "" {
		return nil, fmt.Errorf("%w: ESearch error: %s", types.ErrNetwork, msg)
	}

	ids := result.IDs
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// Fetch retrieves the citations for ids in a single EFetch request. The
// identifiers are sent as a form body so long lists are not bounded by URL
// length limits. Records are returned in the order the service sent them.
func (c *Client) Fetch(ctx context.Context, ids []string) ([]types.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := c.baseParams()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, eFetchURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setHeaders(req)

	resp, err := httputil.Do(ctx, c.HTTP, c.limiter, req)
	if err != nil {
		return nil, fmt.Errorf("EFetch request: %w", err)
	}
	defer resp.Body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: parsing EFetch response: %w", types.ErrNetwork, err)
	}

	records := make([]types.Record, 0, len(set.Articles))
	for _, a := range set.Articles {
		records = append(records, a.record())
	}
	return records, nil
}

func (c *Client) baseParams() url.Values {
	params := url.Values{
		"db":    {database},
		"tool":  {c.cfg.Tool},
		"email": {c.cfg.Email},
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	return params
}

func (c *Client) setHeaders(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}
