package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts one-shot HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}
