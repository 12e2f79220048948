// Package registry provides a client for the company-registry search,
// profile, and officers endpoints.
package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/resilience"
)

const defaultBaseURL = "https://api.company-information.service.gov.uk"

// ErrNotFound is returned when the registry reports no such resource.
// Callers skip the item rather than aborting the pipeline.
var ErrNotFound = eris.New("registry: not found")

// Client defines the registry operations the pipeline depends on.
type Client interface {
	// Search returns one page of company summaries for a query term.
	Search(ctx context.Context, query string, itemsPerPage, startIndex int) (*SearchPage, error)
	// Profile returns the full profile for a company number.
	Profile(ctx context.Context, companyNumber string) (*CompanyProfile, error)
	// Officers returns the officer list for a company number.
	Officers(ctx context.Context, companyNumber string) (*OfficerList, error)
}

// SearchPage is one page of GET /search/companies.
type SearchPage struct {
	Items        []SearchItem `json:"items"`
	TotalResults int          `json:"total_results"`
	ItemsPerPage int          `json:"items_per_page"`
	StartIndex   int          `json:"start_index"`
}

// SearchItem is a company summary from the search endpoint.
type SearchItem struct {
	CompanyNumber string `json:"company_number"`
	Title         string `json:"title"`
	CompanyStatus string `json:"company_status"`
}

// CompanyProfile is the response of GET /company/{companyNumber}.
type CompanyProfile struct {
	CompanyNumber           string                   `json:"company_number"`
	CompanyName             string                   `json:"company_name"`
	CompanyStatus           string                   `json:"company_status"`
	AccountingReferenceDate *AccountingReferenceDate `json:"accounting_reference_date,omitempty"`
	RegisteredOfficeAddress Address                  `json:"registered_office_address"`
	Links                   Links                    `json:"links"`
}

// AccountingReferenceDate is the financial year end; the wire format carries
// day and month as strings.
type AccountingReferenceDate struct {
	Day   string `json:"day"`
	Month string `json:"month"`
}

// Address holds the registered-office address fields used for filtering.
type Address struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	Locality     string `json:"locality"`
	Region       string `json:"region"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// Links holds related resource links published on a profile.
type Links struct {
	Website string `json:"website,omitempty"`
}

// OfficerList is the response of GET /company/{companyNumber}/officers.
type OfficerList struct {
	Items      []Officer `json:"items"`
	TotalCount int       `json:"total_results"`
}

// Officer is one officer entry.
type Officer struct {
	Name        string `json:"name"`
	OfficerRole string `json:"officer_role"`
	ResignedOn  string `json:"resigned_on,omitempty"`
}

// Resigned reports whether the officer has a resignation date.
func (o Officer) Resigned() bool {
	return o.ResignedOn != ""
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithRetryDelay overrides the fixed delay used between the two attempts
// when the server does not supply a Retry-After.
func WithRetryDelay(d time.Duration) Option {
	return func(c *httpClient) {
		c.retryDelay = d
	}
}

type httpClient struct {
	apiKey     string
	baseURL    string
	retryDelay time.Duration
	http       *http.Client
}

// NewClient creates a registry client. The key is sent as the basic-auth
// username, per the registry's auth scheme.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		retryDelay: 2 * time.Second,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, itemsPerPage, startIndex int) (*SearchPage, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("items_per_page", strconv.Itoa(itemsPerPage))
	q.Set("start_index", strconv.Itoa(startIndex))

	var page SearchPage
	if err := c.getJSON(ctx, "/search/companies", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *httpClient) Profile(ctx context.Context, companyNumber string) (*CompanyProfile, error) {
	var profile CompanyProfile
	if err := c.getJSON(ctx, "/company/"+url.PathEscape(companyNumber), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *httpClient) Officers(ctx context.Context, companyNumber string) (*OfficerList, error) {
	q := url.Values{}
	q.Set("items_per_page", "100")

	var list OfficerList
	if err := c.getJSON(ctx, "/company/"+url.PathEscape(companyNumber)+"/officers", q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// getJSON performs one GET with a single retry on rate limits and transient
// transport failures. A server-supplied Retry-After replaces the fixed delay.
func (c *httpClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	cfg := resilience.SingleRetry(c.retryDelay)
	cfg.OnRetry = resilience.RetryLogger("registry", path)

	return resilience.Do(ctx, cfg, func(ctx context.Context) error {
		return c.doOnce(ctx, path, query, out)
	})
}

func (c *httpClient) doOnce(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "registry: create request")
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection errors pass the transient check and get
		// the single retry.
		return eris.Wrap(err, "registry: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "registry: read response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(body, out); err != nil {
			return eris.Wrap(err, "registry: unmarshal response")
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return eris.Wrapf(ErrNotFound, "%s", path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return resilience.NewRateLimitedError(
			eris.Errorf("registry: rate limited on %s", path),
			retryAfter(resp),
		)
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return resilience.NewTransientError(
			eris.Errorf("registry: status %d on %s: %s", resp.StatusCode, path, string(body)),
			resp.StatusCode,
		)
	default:
		return eris.Errorf("registry: unexpected status %d on %s: %s", resp.StatusCode, path, string(body))
	}
}

// retryAfter parses the Retry-After header, seconds form only.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
