package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-catalog-client/internal/config"
	"github.com/zalando/go-keyring"
)

func TestNewCatalogClientUsesCookieJarToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		APIURL:        srv.URL,
		TokenSource:   "cookie",
		CookieJarPath: filepath.Join(t.TempDir(), "cookies.db"),
	}

	store, err := OpenTokenStore(cfg)
	if err != nil {
		t.Fatalf("OpenTokenStore: %v", err)
	}
	if err := store.Store("jar-token", time.Hour); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close store: %v", err)
	}

	client, err := NewCatalogClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewCatalogClient: %v", err)
	}
	defer client.Close()

	if _, err := client.GetProducts(context.Background()); err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if auth != "Bearer jar-token" {
		t.Fatalf("unexpected Authorization header %q", auth)
	}
}

func TestNewCatalogClientDefaultsBaseURL(t *testing.T) {
	client, err := NewCatalogClient(&config.Config{TokenSource: "none"}, nil)
	if err != nil {
		t.Fatalf("NewCatalogClient: %v", err)
	}
	defer client.Close()

	if client.BaseURL != "/productos" {
		t.Fatalf("unexpected base url %q", client.BaseURL)
	}
}

func TestNewCatalogClientRejectsUnknownSource(t *testing.T) {
	if _, err := NewCatalogClient(&config.Config{TokenSource: "vault"}, nil); err == nil {
		t.Fatalf("expected error for unknown token source")
	}
}

func TestOpenTokenStoreKeyring(t *testing.T) {
	keyring.MockInit()

	store, err := OpenTokenStore(&config.Config{TokenSource: "keyring", KeyringService: "catalog-app-test"})
	if err != nil {
		t.Fatalf("OpenTokenStore: %v", err)
	}
	if err := store.Store("kr", 0); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, err := keyring.Get("catalog-app-test", "accessToken")
	if err != nil || got != "kr" {
		t.Fatalf("unexpected keyring value %q err=%v", got, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
}

func TestOpenTokenStoreRejectsReadOnlySources(t *testing.T) {
	if _, err := OpenTokenStore(&config.Config{TokenSource: "env"}); err == nil {
		t.Fatalf("env source should not be writable")
	}
}

func TestCookieTokenRotationReachesNextRequest(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		APIURL:        srv.URL,
		TokenSource:   "cookie",
		CookieJarPath: filepath.Join(t.TempDir(), "cookies.db"),
	}

	setToken := func(token string) {
		t.Helper()
		store, err := OpenTokenStore(cfg)
		if err != nil {
			t.Fatalf("OpenTokenStore while client open: %v", err)
		}
		defer store.Close()
		if err := store.Store(token, 0); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}

	setToken("old-token")
	client, err := NewCatalogClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewCatalogClient: %v", err)
	}
	defer client.Close()

	if _, err := client.GetProducts(context.Background()); err != nil {
		t.Fatalf("GetProducts: %v", err)
	}

	setToken("new-token")
	if _, err := client.GetCategories(context.Background()); err != nil {
		t.Fatalf("GetCategories: %v", err)
	}

	second, err := NewCatalogClient(cfg, nil)
	if err != nil {
		t.Fatalf("second client on the same jar: %v", err)
	}
	defer second.Close()
	if _, err := second.GetProducts(context.Background()); err != nil {
		t.Fatalf("GetProducts via second client: %v", err)
	}

	want := []string{"Bearer old-token", "Bearer new-token", "Bearer new-token"}
	if len(auths) != len(want) {
		t.Fatalf("expected %d requests, got %v", len(want), auths)
	}
	for i := range want {
		if auths[i] != want[i] {
			t.Fatalf("request %d: expected %q, got %q", i, want[i], auths[i])
		}
	}
}
