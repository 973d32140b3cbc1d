package catalog

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/samvad-hq/samvad-catalog-client/pkg/httpclient"
)

// DefaultBaseURL is the base address used when no override is configured.
const DefaultBaseURL = "/productos"

// Payload is a decoded response body. Its shape is owned by the backend.
type Payload = any

// Resource identifies one of the backend collections.
type Resource struct {
	Name string
	Path string
}

var (
	Products   = Resource{Name: "products", Path: "/productos"}
	Categories = Resource{Name: "categories", Path: "/categorias"}
)

// ResolveBaseURL returns override when it is non-blank, DefaultBaseURL otherwise.
func ResolveBaseURL(override string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	return DefaultBaseURL
}

// Client fetches the catalog collections through a shared HTTP client.
type Client struct {
	http httpclient.Client
	log  Logger
}

// New builds a Client on top of an already configured transport.
func New(transport httpclient.Client, log Logger) *Client {
	return &Client{http: transport, log: ensureLogger(log)}
}

// NewWithTokens builds the transport (base URL + bearer token hook) and the Client in one step.
func NewWithTokens(baseURL string, tokens httpclient.TokenSource, log Logger) *Client {
	transport := httpclient.New(httpclient.Options{
		BaseURL: ResolveBaseURL(baseURL),
		Tokens:  tokens,
	})
	return New(transport, log)
}

// GetProducts fetches the products collection.
func (c *Client) GetProducts(ctx context.Context) (Payload, error) {
	return c.fetch(ctx, Products)
}

// GetCategories fetches the categories collection.
func (c *Client) GetCategories(ctx context.Context) (Payload, error) {
	return c.fetch(ctx, Categories)
}

// fetch issues a single GET for res. Failures are logged once and returned unchanged.
func (c *Client) fetch(ctx context.Context, res Resource) (Payload, error) {
	payload, err := c.get(ctx, res)
	if err != nil {
		c.log.ErrorObj("error fetching "+res.Name, "catalog_fetch_error", map[string]any{
			"resource": res.Name,
			"path":     res.Path,
			"error":    err.Error(),
		})
		return nil, err
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, res Resource) (Payload, error) {
	resp, err := c.http.Get(ctx, res.Path, nil)
	if err != nil {
		return nil, err
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{
			Method:     "GET",
			Path:       res.Path,
			StatusCode: code,
			Body:       responseSnippet(resp.Body()),
		}
	}
	return decodePayload(resp.Header().Get("Content-Type"), resp.Body())
}

var defaultClient atomic.Pointer[Client]

// ErrNoDefaultClient is returned by the package-level functions before SetDefault is called.
var ErrNoDefaultClient = errors.New("catalog: default client not configured")

// SetDefault installs the process-wide client used by GetProducts and GetCategories.
func SetDefault(c *Client) { defaultClient.Store(c) }

// Default returns the process-wide client, or nil.
func Default() *Client { return defaultClient.Load() }

// GetProducts fetches products through the default client.
func GetProducts(ctx context.Context) (Payload, error) {
	c := Default()
	if c == nil {
		return nil, ErrNoDefaultClient
	}
	return c.GetProducts(ctx)
}

// GetCategories fetches categories through the default client.
func GetCategories(ctx context.Context) (Payload, error) {
	c := Default()
	if c == nil {
		return nil, ErrNoDefaultClient
	}
	return c.GetCategories(ctx)
}
