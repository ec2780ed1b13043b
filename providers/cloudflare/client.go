// Package cloudflare implements the provider interface against the
// Cloudflare v4 REST API.
package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/karstloch/dnspin/pkg/httputil"
	"github.com/karstloch/dnspin/pkg/provider"
)

// DefaultAPIEndpoint is the base URL for Cloudflare API v4.
const DefaultAPIEndpoint = "https://api.cloudflare.com/client/v4"

// Page sizes for list endpoints. Listings must exhaust pagination; a zone or
// record beyond the first page is still authoritative.
const (
	zonesPerPage   = 50
	recordsPerPage = 100
)

// apiError represents an error from the Cloudflare API.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// resultInfo carries pagination state on list responses.
type resultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
}

// apiResponse is the standard Cloudflare API response wrapper.
type apiResponse struct {
	Success    bool            `json:"success"`
	Errors     []apiError      `json:"errors"`
	Messages   []string        `json:"messages"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *resultInfo     `json:"result_info"`
}

// zone represents a zone from the Cloudflare API.
type zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// dnsRecord represents a DNS record from the Cloudflare API.
type dnsRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
	ZoneID  string `json:"zone_id"`
}

// recordRequest is the request body for creating or updating a DNS record.
type recordRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

// Client is a Cloudflare DNS API client.
type Client struct {
	apiEndpoint string
	token       string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client. The shared process-wide client
// should be passed here.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAPIEndpoint sets a custom API endpoint (useful for testing).
func WithAPIEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.apiEndpoint = strings.TrimSuffix(endpoint, "/")
		}
	}
}

// NewClient creates a new Cloudflare API client.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		apiEndpoint: DefaultAPIEndpoint,
		token:       token,
		httpClient:  httputil.DefaultClient(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// doRequest performs one HTTP request against the Cloudflare API and decodes
// the response envelope.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*apiResponse, error) {
	reqURL := c.apiEndpoint + path

	c.logger.Debug("making API request",
		slog.String("method", method),
		slog.String("path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiResp apiResponse
		if err := json.Unmarshal(respBody, &apiResp); err == nil && len(apiResp.Errors) > 0 {
			return nil, apiStatusError(resp.StatusCode, apiResp.Errors)
		}
		return nil, apiStatusError(resp.StatusCode, nil)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrMalformedResponse, err)
	}

	if !apiResp.Success {
		return nil, apiStatusError(resp.StatusCode, apiResp.Errors)
	}

	return &apiResp, nil
}

// apiStatusError maps an API failure to the provider error taxonomy.
func apiStatusError(statusCode int, errs []apiError) error {
	var detail string
	if len(errs) > 0 {
		detail = fmt.Sprintf("%s (code %d)", errs[0].Message, errs[0].Code)
	} else {
		detail = fmt.Sprintf("status %d", statusCode)
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", provider.ErrUnauthorized, detail)
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		return fmt.Errorf("%w: %s", provider.ErrUnavailable, detail)
	}

	if len(errs) > 0 {
		switch errs[0].Code {
		// 10000 = "authentication error", regardless of HTTP status
		case 10000:
			return fmt.Errorf("%w: %s", provider.ErrUnauthorized, detail)
		// 81044 = "record does not exist", e.g. updating a deleted record id
		case 81044:
			return fmt.Errorf("%w: %s", provider.ErrRecordNotFound, detail)
		// 81053 = "record with that host already exists"
		// 81058 = "an identical record already exists"
		case 81053, 81058:
			return fmt.Errorf("%w: %s", provider.ErrRecordExists, detail)
		}
		return fmt.Errorf("api error: %s", detail)
	}
	return fmt.Errorf("unexpected %s", detail)
}

// VerifyToken checks that the configured token is valid.
// Uses the /user/tokens/verify endpoint which is lightweight.
func (c *Client) VerifyToken(ctx context.Context) error {
	if _, err := c.doRequest(ctx, http.MethodGet, "/user/tokens/verify", nil); err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}
	return nil
}

// ListZones returns every zone visible to the token, walking all pages.
func (c *Client) ListZones(ctx context.Context) ([]zone, error) {
	var all []zone

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", fmt.Sprint(page))
		params.Set("per_page", fmt.Sprint(zonesPerPage))

		resp, err := c.doRequest(ctx, http.MethodGet, "/zones?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("listing zones page %d: %w", page, err)
		}

		var zones []zone
		if err := json.Unmarshal(resp.Result, &zones); err != nil {
			return nil, fmt.Errorf("%w: parsing zones: %v", provider.ErrMalformedResponse, err)
		}
		all = append(all, zones...)

		if resp.ResultInfo == nil || page >= resp.ResultInfo.TotalPages || len(zones) == 0 {
			break
		}
	}

	c.logger.Debug("listed zones", slog.Int("count", len(all)))

	return all, nil
}

// ListRecords returns the records in a zone matching name and type, walking
// all pages.
func (c *Client) ListRecords(ctx context.Context, zoneID, name, recordType string) ([]dnsRecord, error) {
	var all []dnsRecord

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("type", recordType)
		params.Set("name", name)
		params.Set("page", fmt.Sprint(page))
		params.Set("per_page", fmt.Sprint(recordsPerPage))

		path := fmt.Sprintf("/zones/%s/dns_records?%s", zoneID, params.Encode())
		resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("listing records page %d: %w", page, err)
		}

		var records []dnsRecord
		if err := json.Unmarshal(resp.Result, &records); err != nil {
			return nil, fmt.Errorf("%w: parsing records: %v", provider.ErrMalformedResponse, err)
		}
		all = append(all, records...)

		if resp.ResultInfo == nil || page >= resp.ResultInfo.TotalPages || len(records) == 0 {
			break
		}
	}

	c.logger.Debug("listed records",
		slog.String("zone_id", zoneID),
		slog.String("name", name),
		slog.String("type", recordType),
		slog.Int("count", len(all)),
	)

	return all, nil
}

// CreateRecord creates a new DNS record in the given zone and returns it as
// stored by the API.
func (c *Client) CreateRecord(ctx context.Context, zoneID string, record recordRequest) (dnsRecord, error) {
	bodyBytes, err := json.Marshal(record)
	if err != nil {
		return dnsRecord{}, fmt.Errorf("marshaling request: %w", err)
	}

	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, strings.NewReader(string(bodyBytes)))
	if err != nil {
		return dnsRecord{}, fmt.Errorf("creating record: %w", err)
	}

	var created dnsRecord
	if err := json.Unmarshal(resp.Result, &created); err != nil {
		return dnsRecord{}, fmt.Errorf("%w: parsing created record: %v", provider.ErrMalformedResponse, err)
	}

	c.logger.Info("created DNS record",
		slog.String("zone_id", zoneID),
		slog.String("record_id", created.ID),
		slog.String("type", record.Type),
		slog.String("name", record.Name),
		slog.String("content", record.Content),
		slog.Bool("proxied", record.Proxied),
	)

	return created, nil
}

// UpdateRecord replaces the record identified by recordID and returns it as
// stored by the API.
func (c *Client) UpdateRecord(ctx context.Context, zoneID, recordID string, record recordRequest) (dnsRecord, error) {
	bodyBytes, err := json.Marshal(record)
	if err != nil {
		return dnsRecord{}, fmt.Errorf("marshaling request: %w", err)
	}

	path := fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID)
	resp, err := c.doRequest(ctx, http.MethodPut, path, strings.NewReader(string(bodyBytes)))
	if err != nil {
		return dnsRecord{}, fmt.Errorf("updating record: %w", err)
	}

	var updated dnsRecord
	if err := json.Unmarshal(resp.Result, &updated); err != nil {
		return dnsRecord{}, fmt.Errorf("%w: parsing updated record: %v", provider.ErrMalformedResponse, err)
	}

	c.logger.Info("updated DNS record",
		slog.String("zone_id", zoneID),
		slog.String("record_id", recordID),
		slog.String("type", record.Type),
		slog.String("name", record.Name),
		slog.String("content", record.Content),
		slog.Bool("proxied", record.Proxied),
	)

	return updated, nil
}
