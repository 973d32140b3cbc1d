package credentials

import (
	"context"
	"fmt"
)

// CookieGetter is the read side of storage.CookieJar.
type CookieGetter interface {
	Get(name string) (string, bool, error)
}

// CookieSource reads the access token from a local cookie jar.
type CookieSource struct {
	jar CookieGetter
}

func NewCookieSource(jar CookieGetter) *CookieSource {
	return &CookieSource{jar: jar}
}

func (c *CookieSource) AccessToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, ok, err := c.jar.Get(AccessTokenKey)
	if err != nil {
		return "", fmt.Errorf("read %s cookie: %w", AccessTokenKey, err)
	}
	if !ok {
		return "", nil
	}
	return value, nil
}
