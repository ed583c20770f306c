package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/aira-hq/hubclient/pkg/httpclient"
)

// Client is the hub API client. It is safe for concurrent use; every call
// builds its own request.
type Client struct {
	http                 *resty.Client
	tokens               TokenStorage
	onUnauthorized       UnauthorizedHook
	unauthorizedStatuses []int
	devMode              func() bool
	log                  Logger

	requestMW  []RequestMiddleware
	responseMW []ResponseMiddleware

	hooks sync.WaitGroup
}

// FormData is a multipart body for PostFormData.
type FormData struct {
	Fields map[string]string
	Files  []FormFile
}

// FormFile is one file part of a multipart body.
type FormFile struct {
	Field    string
	FileName string
	Content  io.Reader
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if _, err := url.Parse(baseURL); err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
	}

	c := &Client{
		http: httpclient.NewRestyHTTPClient(httpclient.Options{
			BaseURL:         baseURL,
			Timeout:         cfg.Timeout,
			WithCredentials: !cfg.IsNative,
			Headers:         map[string]string{"Content-Type": "application/json"},
			Logger:          cfg.RestyLogger,
			Transport:       cfg.Transport,
		}),
		tokens:               cfg.TokenStorage,
		onUnauthorized:       cfg.OnUnauthorized,
		unauthorizedStatuses: cfg.UnauthorizedStatuses,
		devMode:              cfg.DevMode,
		log:                  cfg.Logger,
	}

	c.requestMW = append([]RequestMiddleware{c.bearerAuth, c.logRequest}, cfg.RequestMiddleware...)
	c.responseMW = append([]ResponseMiddleware{c.logResponse, c.notifyUnauthorized, classify}, cfg.ResponseMiddleware...)

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx := req.Context()
		for _, mw := range c.requestMW {
			if err := mw(ctx, req); err != nil {
				return err
			}
		}
		return nil
	})

	return c, nil
}

// WaitHooks blocks until every unauthorized hook started so far has
// returned, or ctx is done. Short-lived processes call it before exiting.
func (c *Client) WaitHooks(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.hooks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string { return c.http.BaseURL }

// Get issues a GET and decodes the response into out (may be nil). When
// schema is non-nil the body must satisfy it before out is written.
func (c *Client) Get(ctx context.Context, path string, out any, schema Schema) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, schema)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, schema Schema) error {
	return c.Do(ctx, http.MethodPost, path, body, out, schema)
}

// PostFormData issues a POST with a multipart/form-data body.
func (c *Client) PostFormData(ctx context.Context, path string, form FormData, out any, schema Schema) error {
	return c.send(ctx, http.MethodPost, path, func(req *resty.Request) {
		req.SetMultipartFormData(form.Fields)
		for _, f := range form.Files {
			req.SetFileReader(f.Field, f.FileName, f.Content)
		}
	}, out, schema)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, schema Schema) error {
	return c.Do(ctx, http.MethodPut, path, body, out, schema)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any, schema Schema) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, schema)
}

// Delete issues a DELETE; body is optional.
func (c *Client) Delete(ctx context.Context, path string, body, out any, schema Schema) error {
	return c.Do(ctx, http.MethodDelete, path, body, out, schema)
}

// Do issues a request with an arbitrary method and optional JSON body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, schema Schema) error {
	return c.send(ctx, method, path, func(req *resty.Request) {
		if body != nil {
			req.SetBody(body)
		}
	}, out, schema)
}

func (c *Client) send(ctx context.Context, method, path string, prepare func(*resty.Request), out any, schema Schema) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req := c.http.R().SetContext(ctx)
	prepare(req)

	resp, err := req.Execute(method, path)
	for _, mw := range c.responseMW {
		err = mw(ctx, resp, err)
	}
	if err == nil && resp != nil {
		err = decodeResponse(resp.Body(), out, schema)
	}
	if err != nil {
		c.logRequestError(method, path, err)
		return err
	}
	return nil
}

func decodeResponse(body []byte, out any, schema Schema) error {
	if schema != nil {
		if err := validateBody(body, schema); err != nil {
			return err
		}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) logRequestError(method, path string, err error) {
	if !c.devMode() {
		return
	}
	fields := map[string]any{
		"method": method,
		"url":    path,
		"error":  err.Error(),
	}
	if status := StatusOf(err); status > 0 {
		fields["status"] = status
	}
	c.log.WarnObj("api request failed", "api_error", fields)
}
