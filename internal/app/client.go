package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-catalog-client/internal/config"
	"github.com/samvad-hq/samvad-catalog-client/internal/logger"
	"github.com/samvad-hq/samvad-catalog-client/internal/storage"
	"github.com/samvad-hq/samvad-catalog-client/pkg/catalog"
	"github.com/samvad-hq/samvad-catalog-client/pkg/credentials"
	"github.com/samvad-hq/samvad-catalog-client/pkg/httpclient"
)

// CatalogClient bundles the shared catalog client with the resources backing its token source.
type CatalogClient struct {
	*catalog.Client
	BaseURL string
	jar     storage.CookieJar
}

// Close releases the cookie jar, if one was opened.
func (c *CatalogClient) Close() error {
	if c == nil || c.jar == nil {
		return nil
	}
	return c.jar.Close()
}

// NewCatalogClient builds the token source, transport and catalog client from config.
func NewCatalogClient(cfg *config.Config, log logger.Logger) (*CatalogClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	var jar storage.CookieJar
	if isCookieKind(cfg.TokenSource) {
		var err error
		jar, err = storage.NewCookieJar("bbolt", cfg.CookieJarPath, storage.Options{})
		if err != nil {
			return nil, fmt.Errorf("open cookie jar: %w", err)
		}
	}

	tokens, err := credentials.NewSource(cfg.TokenSource, credentials.Options{
		Token:          cfg.AccessToken,
		Jar:            jar,
		KeyringService: cfg.KeyringService,
	})
	if err != nil {
		if jar != nil {
			jar.Close()
		}
		return nil, fmt.Errorf("init token source: %w", err)
	}

	baseURL := catalog.ResolveBaseURL(cfg.APIURL)
	transport := httpclient.New(httpclient.Options{
		BaseURL: baseURL,
		Timeout: cfg.HTTPTimeout,
		Tokens:  tokens,
		Logger:  restyLogger(log),
	})

	log.InfoObj("catalog client initialized", "catalog_client", map[string]any{
		"base_url":     baseURL,
		"token_source": cfg.TokenSource,
		"timeout":      cfg.HTTPTimeout.String(),
	})

	return &CatalogClient{
		Client:  catalog.New(transport, log),
		BaseURL: baseURL,
		jar:     jar,
	}, nil
}

func restyLogger(log logger.Logger) resty.Logger {
	if zl, ok := log.(*logger.ZapLogger); ok {
		return zl.Sugar()
	}
	return nil
}

func isCookieKind(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case credentials.KindCookie, credentials.KindBBolt:
		return true
	}
	return false
}

// TokenStore writes or removes the stored access token for the configured source.
type TokenStore interface {
	Store(token string, ttl time.Duration) error
	Clear() error
	Close() error
}

// OpenTokenStore returns the writable store behind cfg.TokenSource.
// Only cookie and keyring sources are writable.
func OpenTokenStore(cfg *config.Config) (TokenStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	switch {
	case isCookieKind(cfg.TokenSource):
		jar, err := storage.NewCookieJar("bbolt", cfg.CookieJarPath, storage.Options{})
		if err != nil {
			return nil, fmt.Errorf("open cookie jar: %w", err)
		}
		return cookieTokenStore{jar: jar}, nil
	case strings.EqualFold(strings.TrimSpace(cfg.TokenSource), credentials.KindKeyring):
		src, err := credentials.NewKeyringSource(cfg.KeyringService)
		if err != nil {
			return nil, err
		}
		return keyringTokenStore{src: src}, nil
	default:
		return nil, fmt.Errorf("token source %q is not writable", cfg.TokenSource)
	}
}

type cookieTokenStore struct {
	jar storage.CookieJar
}

func (c cookieTokenStore) Store(token string, ttl time.Duration) error {
	return c.jar.Set(credentials.AccessTokenKey, token, ttl)
}
func (c cookieTokenStore) Clear() error { return c.jar.Delete(credentials.AccessTokenKey) }
func (c cookieTokenStore) Close() error { return c.jar.Close() }

// keyringTokenStore ignores ttl; keyring entries do not expire.
type keyringTokenStore struct {
	src *credentials.KeyringSource
}

func (k keyringTokenStore) Store(token string, _ time.Duration) error { return k.src.Store(token) }
func (k keyringTokenStore) Clear() error                              { return k.src.Clear() }
func (k keyringTokenStore) Close() error                              { return nil }
