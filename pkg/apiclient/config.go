package apiclient

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// DefaultUnauthorizedStatuses trigger OnUnauthorized. 404 is deliberately
// included: the hub answers 404 for resources of a session it no longer
// recognises, so it is treated as a possible loss of auth. This is a product
// policy; override UnauthorizedStatuses to narrow it.
var DefaultUnauthorizedStatuses = []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound}

// TokenStorage is where the client reads the bearer token from. The client
// never writes or clears it; token lifecycle belongs to the caller.
type TokenStorage interface {
	// Token returns the current token, or "" when none is stored.
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// UnauthorizedHook is notified when a response signals lost authorization.
// It runs detached from the request and may be called concurrently.
type UnauthorizedHook func(ctx context.Context) error

// Config configures a Client. It is copied by New.
type Config struct {
	BaseURL string
	// IsNative disables the cookie jar: native callers authenticate with the
	// bearer token only, browser-like callers also replay session cookies.
	IsNative       bool
	TokenStorage   TokenStorage
	OnUnauthorized UnauthorizedHook
	Timeout        time.Duration

	UnauthorizedStatuses []int
	Logger               Logger
	// DevMode gates verbose request/response logging. Defaults to DetectDevMode.
	DevMode     func() bool
	RestyLogger resty.Logger
	Transport   http.RoundTripper

	// Appended after the built-in middleware.
	RequestMiddleware  []RequestMiddleware
	ResponseMiddleware []ResponseMiddleware
}

func (cfg Config) withDefaults() Config {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UnauthorizedStatuses == nil {
		cfg.UnauthorizedStatuses = DefaultUnauthorizedStatuses
	}
	cfg.UnauthorizedStatuses = slices.Clone(cfg.UnauthorizedStatuses)
	cfg.RequestMiddleware = slices.Clone(cfg.RequestMiddleware)
	cfg.ResponseMiddleware = slices.Clone(cfg.ResponseMiddleware)
	cfg.Logger = ensureLogger(cfg.Logger)
	if cfg.DevMode == nil {
		cfg.DevMode = DetectDevMode
	}
	return cfg
}
