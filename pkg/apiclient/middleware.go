package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/go-resty/resty/v2"
)

// RequestMiddleware runs before every outbound request, in order. It may read
// and modify headers. A returned error aborts the request and is handed back
// to the caller unchanged.
type RequestMiddleware func(ctx context.Context, req *resty.Request) error

// ResponseMiddleware runs after every exchange, in order, and receives the
// outcome so far. resp is nil or has no RawResponse when nothing came back.
// It returns the (possibly reclassified) outcome and must not modify resp.
type ResponseMiddleware func(ctx context.Context, resp *resty.Response, err error) error

const headerAuthorization = "Authorization"

// bearerAuth attaches the stored token. Storage failures are logged and the
// request goes out unauthenticated.
func (c *Client) bearerAuth(ctx context.Context, req *resty.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.log.WarnObj("token lookup failed; sending request without authorization", "token_error", map[string]any{
			"url":   req.URL,
			"error": err.Error(),
		})
		return nil
	}
	if token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}
	return nil
}

func (c *Client) logRequest(_ context.Context, req *resty.Request) error {
	if !c.devMode() {
		return nil
	}
	c.log.InfoObj("api request", "api_request", map[string]any{
		"method":        req.Method,
		"url":           req.URL,
		"authenticated": req.Header.Get(headerAuthorization) != "",
	})
	return nil
}

func (c *Client) logResponse(_ context.Context, resp *resty.Response, err error) error {
	if !c.devMode() || !received(resp) {
		return err
	}
	c.log.InfoObj("api response", "api_response", map[string]any{
		"method":     resp.Request.Method,
		"url":        resp.Request.URL,
		"status":     resp.StatusCode(),
		"elapsed_ms": resp.Time().Milliseconds(),
	})
	return err
}

// notifyUnauthorized fires the hook once per failing response whose status is
// in the unauthorized set. It never changes the outcome.
func (c *Client) notifyUnauthorized(ctx context.Context, resp *resty.Response, err error) error {
	if c.onUnauthorized == nil || !received(resp) {
		return err
	}
	status := resp.StatusCode()
	if !slices.Contains(c.unauthorizedStatuses, status) {
		return err
	}
	c.fireUnauthorized(ctx, status)
	return err
}

// fireUnauthorized runs the hook detached from the caller. Its failures and
// panics are only visible in the logs.
func (c *Client) fireUnauthorized(ctx context.Context, status int) {
	hook := c.onUnauthorized
	hookCtx := context.WithoutCancel(ctx)
	c.hooks.Add(1)
	go func() {
		defer c.hooks.Done()
		defer func() {
			if r := recover(); r != nil {
				c.log.ErrorObj("unauthorized hook panicked", "unauthorized_hook", map[string]any{
					"status": status,
					"panic":  fmt.Sprint(r),
				})
			}
		}()
		if err := hook(hookCtx); err != nil {
			c.log.ErrorObj("unauthorized hook failed", "unauthorized_hook", map[string]any{
				"status": status,
				"error":  err.Error(),
			})
		}
	}()
}

// classify maps the raw outcome onto the error taxonomy.
func classify(_ context.Context, resp *resty.Response, err error) error {
	if received(resp) && resp.IsError() {
		return newResponseError(resp)
	}
	if err == nil {
		return nil
	}
	if isTransportFailure(err) {
		return newNetworkError(err)
	}
	return err
}

func received(resp *resty.Response) bool {
	return resp != nil && resp.RawResponse != nil
}

// isTransportFailure reports whether err came from the round trip itself
// (timeout, reset, DNS) rather than from building the request.
func isTransportFailure(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Op != "parse"
}

type errorPayload struct {
	Message string `json:"message"`
	Code    any    `json:"code"`
}

func newResponseError(resp *resty.Response) *APIError {
	status := resp.StatusCode()
	body := resp.Body()

	apiErr := &APIError{
		Message: fmt.Sprintf("Request failed with status code %d", status),
		Status:  status,
		Code:    CodeBadRequest,
		Body:    body,
	}
	if status >= 500 {
		apiErr.Code = CodeBadResponse
	}

	var payload errorPayload
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			apiErr.Message = payload.Message
		}
		switch code := payload.Code.(type) {
		case string:
			if code != "" {
				apiErr.Code = code
			}
		case float64:
			apiErr.Code = fmt.Sprintf("%v", code)
		}
	}
	return apiErr
}

func newNetworkError(err error) *APIError {
	code := CodeNetwork
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.Canceled):
		code = CodeCanceled
	case errors.As(err, &urlErr) && urlErr.Timeout():
		code = CodeTimeout
	}
	return &APIError{Message: NetworkErrorMessage, Code: code, Err: err}
}
