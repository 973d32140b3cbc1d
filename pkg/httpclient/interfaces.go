package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// TokenSource supplies the bearer token for outgoing requests.
// An empty token with a nil error means no token is available.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}
