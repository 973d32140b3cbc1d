package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/samvad-hq/samvad-catalog-client/pkg/credentials"
	"github.com/samvad-hq/samvad-catalog-client/pkg/httpclient"
)

// recordingLogger captures error entries.
type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingLogger) ErrorObj(msg, _ string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, msg)
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// catalogServer serves fixed JSON bodies and records request details.
type catalogServer struct {
	*httptest.Server
	hits     atomic.Int32
	mu       sync.Mutex
	paths    []string
	authHdrs [][]string
}

func newCatalogServer(t *testing.T, status int, body string) *catalogServer {
	t.Helper()
	cs := &catalogServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		cs.mu.Lock()
		cs.paths = append(cs.paths, r.Method+" "+r.URL.Path)
		cs.authHdrs = append(cs.authHdrs, r.Header.Values("Authorization"))
		cs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(cs.Close)
	return cs
}

func mustJSON(t *testing.T, raw string) any {
	t.Helper()
	v, err := decodeJSON([]byte(raw))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

func TestGetProductsReturnsBodyVerbatim(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, `[{"id":1,"name":"Widget"}]`)
	log := &recordingLogger{}
	client := NewWithTokens(srv.URL, credentials.None(), log)

	got, err := client.GetProducts(context.Background())
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}

	want := []any{map[string]any{"id": json.Number("1"), "name": "Widget"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected payload: %#v", got)
	}
	if n := srv.hits.Load(); n != 1 {
		t.Fatalf("expected exactly one request, got %d", n)
	}
	if srv.paths[0] != "GET /productos" {
		t.Fatalf("unexpected request %q", srv.paths[0])
	}
	if log.count() != 0 {
		t.Fatalf("success should not log, got %d entries", log.count())
	}
}

func TestGetCategoriesReturnsBodyVerbatim(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, `[{"id":7,"name":"Tools"}]`)
	client := NewWithTokens(srv.URL, credentials.None(), nil)

	got, err := client.GetCategories(context.Background())
	if err != nil {
		t.Fatalf("GetCategories: %v", err)
	}
	if want := mustJSON(t, `[{"id":7,"name":"Tools"}]`); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected payload: %#v", got)
	}
	if n := srv.hits.Load(); n != 1 {
		t.Fatalf("expected exactly one request, got %d", n)
	}
	if srv.paths[0] != "GET /categorias" {
		t.Fatalf("unexpected request %q", srv.paths[0])
	}
}

func TestBearerHeaderFollowsTokenSource(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, `[]`)

	withToken := NewWithTokens(srv.URL, credentials.Static("stored.jwt.value"), nil)
	if _, err := withToken.GetProducts(context.Background()); err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	withoutToken := NewWithTokens(srv.URL, credentials.None(), nil)
	if _, err := withoutToken.GetCategories(context.Background()); err != nil {
		t.Fatalf("GetCategories: %v", err)
	}

	if got := srv.authHdrs[0]; len(got) != 1 || got[0] != "Bearer stored.jwt.value" {
		t.Fatalf("expected single bearer header, got %v", got)
	}
	if got := srv.authHdrs[1]; len(got) != 0 {
		t.Fatalf("expected no Authorization header, got %v", got)
	}
}

func TestFetchFailureLogsOnceAndReturnsError(t *testing.T) {
	cases := []struct {
		name  string
		fetch func(*Client, context.Context) (Payload, error)
		label string
	}{
		{name: "products", fetch: (*Client).GetProducts, label: "error fetching products"},
		{name: "categories", fetch: (*Client).GetCategories, label: "error fetching categories"},
	}

	for _, tc := range cases {
		t.Run(tc.name+"/status", func(t *testing.T) {
			srv := newCatalogServer(t, http.StatusInternalServerError, `{"error":"boom"}`)
			log := &recordingLogger{}
			client := NewWithTokens(srv.URL, credentials.None(), log)

			payload, err := tc.fetch(client, context.Background())
			if err == nil {
				t.Fatalf("expected error, got payload %#v", payload)
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
				t.Fatalf("expected StatusError 500, got %v", err)
			}
			if log.count() != 1 || log.entries[0] != tc.label {
				t.Fatalf("expected one %q entry, got %v", tc.label, log.entries)
			}
			if n := srv.hits.Load(); n != 1 {
				t.Fatalf("expected no retry, got %d requests", n)
			}
		})

		t.Run(tc.name+"/connection_refused", func(t *testing.T) {
			srv := httptest.NewServer(http.NotFoundHandler())
			url := srv.URL
			srv.Close()

			log := &recordingLogger{}
			client := NewWithTokens(url, credentials.None(), log)

			if _, err := tc.fetch(client, context.Background()); err == nil {
				t.Fatalf("expected transport error")
			}
			if log.count() != 1 || log.entries[0] != tc.label {
				t.Fatalf("expected one %q entry, got %v", tc.label, log.entries)
			}
		})
	}
}

type fakeResponse struct {
	status int
	body   []byte
	header http.Header
}

func (f fakeResponse) Body() []byte        { return f.body }
func (f fakeResponse) StatusCode() int     { return f.status }
func (f fakeResponse) Header() http.Header { return f.header }

type fakeTransport struct {
	resp fakeResponse
	err  error
	urls []string
}

func (f *fakeTransport) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestTransportErrorReturnedUnchanged(t *testing.T) {
	sentinel := errors.New("dial tcp: connection refused")
	transport := &fakeTransport{err: sentinel}
	log := &recordingLogger{}

	_, err := New(transport, log).GetCategories(context.Background())
	if err != sentinel {
		t.Fatalf("expected the transport error itself, got %v", err)
	}
	if log.count() != 1 {
		t.Fatalf("expected one log entry, got %d", log.count())
	}
	if len(transport.urls) != 1 || transport.urls[0] != "/categorias" {
		t.Fatalf("unexpected requests %v", transport.urls)
	}
}

func TestInvalidJSONBodyIsDecodeError(t *testing.T) {
	transport := &fakeTransport{resp: fakeResponse{
		status: http.StatusOK,
		body:   []byte(`[{"id":`),
		header: http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
	}}
	log := &recordingLogger{}

	if _, err := New(transport, log).GetProducts(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
	if log.count() != 1 {
		t.Fatalf("expected one log entry, got %d", log.count())
	}
}

func TestResolveBaseURL(t *testing.T) {
	if got := ResolveBaseURL(""); got != DefaultBaseURL {
		t.Fatalf("empty override: got %q", got)
	}
	if got := ResolveBaseURL("   "); got != DefaultBaseURL {
		t.Fatalf("blank override: got %q", got)
	}
	if got := ResolveBaseURL("https://api.example.com"); got != "https://api.example.com" {
		t.Fatalf("override ignored: got %q", got)
	}
}

func TestDefaultClientFunctions(t *testing.T) {
	SetDefault(nil)
	if _, err := GetProducts(context.Background()); !errors.Is(err, ErrNoDefaultClient) {
		t.Fatalf("expected ErrNoDefaultClient, got %v", err)
	}

	srv := newCatalogServer(t, http.StatusOK, `[{"id":7,"name":"Tools"}]`)
	SetDefault(NewWithTokens(srv.URL, credentials.None(), nil))
	t.Cleanup(func() { SetDefault(nil) })

	if _, err := GetCategories(context.Background()); err != nil {
		t.Fatalf("GetCategories: %v", err)
	}
	if _, err := GetProducts(context.Background()); err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if n := srv.hits.Load(); n != 2 {
		t.Fatalf("expected 2 requests through default client, got %d", n)
	}
}
