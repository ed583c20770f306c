package notifiers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aira-hq/hubclient/pkg/httpclient"
)

type httpNotifier struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  httpclient.Client
	typ     string
	log     Logger
}

func newHTTPNotifier(_ context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("notifier %q missing http configuration", cfg.ID)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range cfg.HTTP.Headers {
		headers[k] = v
	}

	return &httpNotifier{
		id:      cfg.ID,
		typ:     TypeHTTP,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: headers,
		client:  httpclient.NewRestyClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (h *httpNotifier) ID() string   { return h.id }
func (h *httpNotifier) Type() string { return h.typ }

func (h *httpNotifier) Notify(ctx context.Context, evt Event) error {
	resp, err := h.client.Do(ctx, h.method, h.url, h.headers, evt)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode() > 399 {
		snippet := readBodySnippet(resp.Body())
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), snippet)
	}
	h.log.DebugObj("http notifier delivered event", "notifier_http_delivery", map[string]any{
		"notifier_id": h.id,
		"event_id":    evt.ID,
	})
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
