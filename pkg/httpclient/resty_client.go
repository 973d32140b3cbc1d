package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// Options configures a RestyClient built with New.
type Options struct {
	// BaseURL is prepended to relative request paths.
	BaseURL string
	// Timeout of zero leaves the transport without a timeout.
	Timeout time.Duration
	// Tokens, when set, installs BearerTokenHook.
	Tokens TokenSource
	// Logger receives resty's internal warnings.
	Logger resty.Logger
}

// New creates a RestyClient with a base URL and an optional bearer token hook.
// The returned client is safe for concurrent use; its configuration is fixed after construction.
func New(opts Options) *RestyClient {
	c := newRestyBaseClient(opts.Timeout)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		c.SetBaseURL(base)
	}
	if opts.Logger != nil {
		c.SetLogger(opts.Logger)
	}
	if opts.Tokens != nil {
		c.OnBeforeRequest(BearerTokenHook(opts.Tokens))
	}
	return &RestyClient{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// BearerTokenHook returns a request middleware that sets "Authorization: Bearer <token>"
// when src yields a non-empty token, and leaves headers untouched otherwise.
// A lookup error aborts the request.
func BearerTokenHook(src TokenSource) resty.RequestMiddleware {
	return func(_ *resty.Client, req *resty.Request) error {
		token, err := src.AccessToken(req.Context())
		if err != nil {
			return fmt.Errorf("lookup access token: %w", err)
		}
		if token == "" {
			return nil
		}
		req.SetHeader("Authorization", "Bearer "+token)
		return nil
	}
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// BaseURL reports the configured base address.
func (r *RestyClient) BaseURL() string { return r.client.BaseURL }

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
