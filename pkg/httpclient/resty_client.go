package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures the underlying resty client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// WithCredentials keeps resty's cookie jar so cookies set by the server
	// are replayed on later requests. When false no cookies are stored or sent.
	WithCredentials bool
	Headers         map[string]string
	Logger          resty.Logger
	Transport       http.RoundTripper
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: NewRestyHTTPClient(Options{Timeout: timeout})}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(opts Options) *resty.Client {
	c := resty.New()
	if opts.Transport != nil {
		c.SetTransport(opts.Transport)
	}
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if opts.BaseURL != "" {
		c.SetBaseURL(opts.BaseURL)
	}
	if !opts.WithCredentials {
		c.SetCookieJar(nil)
	}
	if len(opts.Headers) > 0 {
		c.SetHeaders(opts.Headers)
	}
	if opts.Logger != nil {
		c.SetLogger(opts.Logger)
	}
	return c
}

// Do performs an HTTP request with the specified context, method, URL, headers and optional body.
func (r *RestyClient) Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
