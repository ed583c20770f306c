package notifiers

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Notifier from a config entry.
type Builder func(ctx context.Context, cfg NotifierConfig, log Logger) (Notifier, error)

// Registry maps notifier types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	NotifierFor(ctx context.Context, cfg NotifierConfig, log Logger) (Notifier, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a notifier type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// NotifierFor returns the notifier built for the provided config.
func (r *registry) NotifierFor(ctx context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("notifier %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no notifier registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up known notifiers.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:   newHTTPNotifier,
		TypeSQS:    newSQSNotifier,
		TypeSNS:    newSNSNotifier,
		TypePubSub: newPubSubNotifier,
	})
}

// BuildAll instantiates notifiers for configs using the registry.
func BuildAll(ctx context.Context, reg Registry, cfgs []NotifierConfig, log Logger) ([]Notifier, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var out []Notifier
	for _, cfg := range cfgs {
		n, err := reg.NotifierFor(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("build notifier %q: %w", cfg.ID, err)
		}
		out = append(out, n)
	}
	return out, nil
}
