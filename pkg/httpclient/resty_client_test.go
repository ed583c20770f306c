package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func cookieServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			seen = append(seen, c.Value)
		} else {
			seen = append(seen, "")
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestNewRestyHTTPClientKeepsCookiesWithCredentials(t *testing.T) {
	srv, seen := cookieServer(t)
	c := NewRestyHTTPClient(Options{BaseURL: srv.URL, Timeout: time.Second, WithCredentials: true})

	for i := 0; i < 2; i++ {
		if _, err := c.R().Get("/"); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if got := (*seen)[1]; got != "abc" {
		t.Fatalf("expected cookie replayed on second request, got %q", got)
	}
}

func TestNewRestyHTTPClientDropsCookiesWithoutCredentials(t *testing.T) {
	srv, seen := cookieServer(t)
	c := NewRestyHTTPClient(Options{BaseURL: srv.URL, Timeout: time.Second})

	for i := 0; i < 2; i++ {
		if _, err := c.R().Get("/"); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if got := (*seen)[1]; got != "" {
		t.Fatalf("expected no cookie, got %q", got)
	}
}

func TestRestyClientDoSendsHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := NewRestyClient(time.Second).Do(context.Background(), http.MethodPut, srv.URL, map[string]string{"X-Test": "1"}, map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusAccepted || string(resp.Body()) != "ok" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode(), resp.Body())
	}
}
