package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu    sync.Mutex
	token string
	err   error
	reads int
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.token, f.err
}

func (f *fakeTokens) SetToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	return nil
}

func (f *fakeTokens) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	return nil
}

type logEntry struct {
	level string
	msg   string
	obj   interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordingLogger) add(level, msg string, obj interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: level, msg: msg, obj: obj})
}

func (r *recordingLogger) InfoObj(msg, _ string, obj interface{})  { r.add("info", msg, obj) }
func (r *recordingLogger) DebugObj(msg, _ string, obj interface{}) { r.add("debug", msg, obj) }
func (r *recordingLogger) WarnObj(msg, _ string, obj interface{})  { r.add("warn", msg, obj) }
func (r *recordingLogger) ErrorObj(msg, _ string, obj interface{}) { r.add("error", msg, obj) }

func (r *recordingLogger) has(msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.msg == msg {
			return true
		}
	}
	return false
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func quiet() bool { return false }

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL:  srv.URL,
		IsNative: true,
		Timeout:  2 * time.Second,
		DevMode:  quiet,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
