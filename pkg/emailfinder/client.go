// Package emailfinder provides a client for the person/email lookup API.
package emailfinder

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/resilience"
)

const defaultBaseURL = "https://api.anymailfinder.com/v5.0"

// ErrNotFound is returned when the provider explicitly reports that no email
// exists for the person. It is never retried.
var ErrNotFound = eris.New("emailfinder: email not found")

// Client defines the email-lookup operation the pipeline depends on.
type Client interface {
	// Find looks up an email address for a person at a company.
	Find(ctx context.Context, req FindRequest) (*FindResult, error)
}

// FindRequest identifies the person to look up. Domain is preferred; when it
// is empty CompanyName is sent instead.
type FindRequest struct {
	FullName    string
	Domain      string
	CompanyName string
}

// FindResult is the provider's answer.
type FindResult struct {
	Email  string `json:"email"`
	Status string `json:"status"`
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

// WithRetryDelay overrides the fixed delay between the two attempts.
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

// NewClient creates an email-finder client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		retryDelay: 2 * time.Second,
		http: &http.Client{
			Timeout: 15 * time.Second,
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

func (c *httpClient) Find(ctx context.Context, req FindRequest) (*FindResult, error) {
	if req.FullName == "" {
		return nil, eris.New("emailfinder: full name is required")
	}
	if req.Domain == "" && req.CompanyName == "" {
		return nil, eris.New("emailfinder: domain or company name is required")
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("full_name", req.FullName)
	if req.Domain != "" {
		q.Set("domain", req.Domain)
	} else {
		q.Set("company_name", req.CompanyName)
	}

	cfg := resilience.SingleRetry(c.retryDelay)
	cfg.OnRetry = resilience.RetryLogger("emailfinder", "find")

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*FindResult, error) {
		return c.doOnce(ctx, q)
	})
}

func (c *httpClient) doOnce(ctx context.Context, q url.Values) (*FindResult, error) {
	reqURL := c.baseURL + "/search/person.json?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "emailfinder: create request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "emailfinder: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "emailfinder: read response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var result FindResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, eris.Wrap(err, "emailfinder: unmarshal response")
		}
		return &result, nil
	case resp.StatusCode == http.StatusNotFound:
		// The provider's explicit "no email for this person" answer.
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resilience.NewTransientError(
			eris.New("emailfinder: rate limited"), resp.StatusCode)
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			eris.Errorf("emailfinder: status %d: %s", resp.StatusCode, string(body)),
			resp.StatusCode,
		)
	default:
		return nil, eris.Errorf("emailfinder: unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
