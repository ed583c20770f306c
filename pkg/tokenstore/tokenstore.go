package tokenstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Package tokenstore persists the hub bearer token between runs.

// Store keeps a single bearer token. Token returns "" when nothing valid is stored.
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}

// Options controls retention for concrete store implementations.
type Options struct {
	// TTL applies to tokens without a readable exp claim.
	TTL time.Duration
}

// Supported store types.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeBBolt  = "bbolt"
)

const defaultTTL = 365 * 24 * time.Hour

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeMemory:
		return NewMemoryStore(opts), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt token storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported token storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	return opts
}

// tokenExpiry prefers the JWT exp claim and falls back to now+ttl for opaque
// tokens. The signature is not checked; only the server can do that.
func tokenExpiry(token string, now time.Time, ttl time.Duration) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return now.Add(ttl)
}

type noopStore struct{}

func (noopStore) Token(context.Context) (string, error)   { return "", nil }
func (noopStore) SetToken(context.Context, string) error { return nil }
func (noopStore) Clear(context.Context) error            { return nil }
func (noopStore) Close() error                           { return nil }

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(opts Options) *MemoryStore {
	opts = normalizeOptions(opts)
	return &MemoryStore{ttl: opts.TTL, now: time.Now}
}

func (m *MemoryStore) Token(context.Context) (string, error) {
	m.mu.RLock()
	token, expiry := m.token, m.expiry
	m.mu.RUnlock()
	if token == "" || !expiry.After(m.now()) {
		return "", nil
	}
	return token, nil
}

func (m *MemoryStore) SetToken(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}
	now := m.now()
	m.mu.Lock()
	m.token = token
	m.expiry = tokenExpiry(token, now, m.ttl)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.expiry = time.Time{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
