package nango

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/connection/conn-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("provider_config_key"); got != "spotify-prod" {
			t.Errorf("provider_config_key = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"credentials":{"access_token":"tok-123"},"scopes":["user-top-read"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "spotify-prod", time.Second, zap.NewNop())
	cred, err := c.Exchange(context.Background(), "conn-1")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if cred.AccessToken != "tok-123" {
		t.Errorf("token = %q", cred.AccessToken)
	}
	if len(cred.Scopes) != 1 || cred.Scopes[0] != "user-top-read" {
		t.Errorf("scopes = %v", cred.Scopes)
	}
}

func TestExchangeEmptyCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"credentials":{"access_token":""}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "spotify-prod", time.Second, zap.NewNop())
	if _, err := c.Exchange(context.Background(), "conn-1"); err == nil {
		t.Fatal("expected error for empty credential")
	}
}

func TestExchangeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown connection", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "spotify-prod", time.Second, zap.NewNop())
	if _, err := c.Exchange(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestExchangeUnconfigured(t *testing.T) {
	c := NewClient("https://api.nango.dev", "your_secret_key_here", "spotify-prod", time.Second, zap.NewNop())
	if c.Configured() {
		t.Fatal("placeholder secret must read as unconfigured")
	}
	if _, err := c.Exchange(context.Background(), "conn-1"); err == nil {
		t.Fatal("expected configuration error")
	}
}
