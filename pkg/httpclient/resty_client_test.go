package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type staticTokens struct {
	token string
	err   error
	calls atomic.Int32
}

func (s *staticTokens) AccessToken(context.Context) (string, error) {
	s.calls.Add(1)
	return s.token, s.err
}

func TestBearerTokenHookAttachesHeader(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Values("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := &staticTokens{token: "tok-123"}
	client := New(Options{BaseURL: srv.URL, Tokens: tokens})

	if _, err := client.Get(context.Background(), "/productos", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 1 || got[0] != "Bearer tok-123" {
		t.Fatalf("expected single bearer header, got %v", got)
	}
	if n := tokens.calls.Load(); n != 1 {
		t.Fatalf("expected one token lookup per request, got %d", n)
	}
}

func TestBearerTokenHookSkipsEmptyToken(t *testing.T) {
	present := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, Tokens: &staticTokens{}})

	if _, err := client.Get(context.Background(), "/categorias", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if present {
		t.Fatalf("expected no Authorization header when token is absent")
	}
}

func TestBearerTokenHookRunsPerRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := &staticTokens{token: "t"}
	client := New(Options{BaseURL: srv.URL, Tokens: tokens})
	for i := 0; i < 3; i++ {
		if _, err := client.Get(context.Background(), "/productos", nil); err != nil {
			t.Fatalf("Get #%d: %v", i, err)
		}
	}
	if n := tokens.calls.Load(); n != 3 {
		t.Fatalf("expected 3 token lookups, got %d", n)
	}
}

func TestBearerTokenHookLookupErrorAbortsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	lookupErr := errors.New("jar locked")
	client := New(Options{BaseURL: srv.URL, Tokens: &staticTokens{err: lookupErr}})

	_, err := client.Get(context.Background(), "/productos", nil)
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("request should not be sent when token lookup fails")
	}
}

func TestGetJoinsBaseURLAndPath(t *testing.T) {
	var path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL + "/api"})
	resp, err := client.Get(context.Background(), "/categorias", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if method != http.MethodGet || path != "/api/categorias" {
		t.Fatalf("unexpected request %s %s", method, path)
	}
	if resp.StatusCode() != http.StatusOK || string(resp.Body()) != "[]" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode(), resp.Body())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if client.BaseURL() != srv.URL+"/api" {
		t.Fatalf("unexpected base url %q", client.BaseURL())
	}
}
